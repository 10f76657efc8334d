package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-aula/internal/format"
	"github.com/alnah/go-aula/internal/pipeline"
	"github.com/alnah/go-aula/internal/report"
)

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Transcribe a video without building a lesson",
		Long: `Transcribe a video with the Groq Whisper API.

The audio track is cut into fixed-length chunks (CHUNK_SIZE_SECONDS),
each chunk is transcribed with up to MAX_RETRIES attempts, and the timed
results are stitched into one transcript.

The transcript is written to <TEMP_DIR_NAME>/<video>_transcription.json.
No analysis is run and no lesson directory is created.`,
		Example: `  aula transcribe videos/aula-01.mp4
  CHUNK_SIZE_SECONDS=300 aula transcribe lecture.mkv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args[0])
		},
	}
}

// runTranscribe executes the transcription-only mode.
// A run where no chunk succeeds still writes the empty transcript and
// returns pipeline.ErrNothingTranscribed.
func runTranscribe(cmd *cobra.Command, env *Env, input string) error {
	ctx := cmd.Context()

	if err := checkInput(input); err != nil {
		return err
	}
	st, err := setup(ctx, env)
	if err != nil {
		return err
	}

	start := env.Now()
	fmt.Fprintf(env.Stderr, "Transcribing %s...\n", input)
	res, runErr := st.runner.Run(ctx, input)
	if runErr != nil && !errors.Is(runErr, pipeline.ErrNothingTranscribed) {
		return runErr
	}

	tr := res.Transcript
	path, err := report.WriteLegacy(st.cfg.TempDir, tr.Metadata.FileName, tr)
	if err != nil {
		return err
	}

	size := "?"
	if info, err := os.Stat(path); err == nil {
		size = format.Size(info.Size())
	}
	fmt.Fprintf(env.Stderr, "Transcript saved to %s (%s)\n", path, size)
	fmt.Fprintf(env.Stderr, "  chunks: %d/%d, words: %s, segments: %s, elapsed: %s\n",
		tr.Metadata.ChunksSucceeded, tr.Metadata.ChunksProcessed,
		format.Thousands(len(tr.Words)), format.Thousands(len(tr.Segments)),
		format.DurationHuman(env.Now().Sub(start)))
	return runErr
}
