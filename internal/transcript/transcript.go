// Package transcript holds the timed transcription model and merges
// per-chunk results into one transcript on the source media's timeline.
package transcript

import (
	"strings"
	"time"
)

// Word is a single timed word. Times are seconds, chunk-relative as
// returned by the service and absolute after stitching.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a timed span of text with the service's quality scores.
type Segment struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
}

// ChunkResult is what the transcription service returns for one chunk.
type ChunkResult struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
	Words    []Word    `json:"words"`
}

// Part pairs a chunk result with the chunk's start in the source.
type Part struct {
	Index  int
	Offset float64
	Result ChunkResult
}

// Metadata describes how a transcript was produced.
type Metadata struct {
	OriginalFile     string `json:"original_file"`
	FileName         string `json:"file_name"`
	ChunksProcessed  int    `json:"chunks_processed"`
	ChunksSucceeded  int    `json:"chunks_succeeded"`
	ModelUsed        string `json:"model_used"`
	Language         string `json:"language"`
	ChunkSizeSeconds int    `json:"chunk_size_seconds"`
	ProcessedAt      string `json:"processed_at"`
	RunID            string `json:"run_id"`
}

// Transcript is the merged result for one media file.
// Segments and Words are never nil so they serialize as [].
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Words    []Word    `json:"words"`
	Duration float64   `json:"duration"`
	Metadata Metadata  `json:"metadata"`
}

// WordCount returns the number of whitespace-separated words in Text.
func (t Transcript) WordCount() int {
	return len(strings.Fields(t.Text))
}

// Stamp formats ts the way Metadata.ProcessedAt stores it.
func Stamp(ts time.Time) string {
	return ts.Format(time.RFC3339)
}
