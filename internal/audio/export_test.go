package audio

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ProbeArgs exports probeArgs for testing.
var ProbeArgs = probeArgs

// ParseProbeDuration exports parseProbeDuration for testing.
var ParseProbeDuration = parseProbeDuration

// ExtractArgs exports extractArgs for testing.
var ExtractArgs = extractArgs

// FormatSeconds exports formatSeconds for testing.
var FormatSeconds = formatSeconds

// ToolRunner exports toolRunner interface for testing.
type ToolRunner = toolRunner

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter
