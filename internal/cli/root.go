package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd creates the aula command tree. A single positional file is
// shorthand for "aula transcribe <file>".
func RootCmd(env *Env, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "aula [video]",
		Short: "Turn recorded lessons into documented lesson directories",
		Long: `Transcribe lesson videos with Groq Whisper, analyze them with Gemini and
write a documented lesson directory for each one.

Required environment:
  GROQ_API_KEY     transcription (always)
  GEMINI_API_KEY   structured analysis (optional, keyword analysis otherwise)

Layout:
  videos/          input videos for batch mode
  modulo-XX/       generated lessons
  temp/            chunk files, legacy transcripts and debug files`,
		Example: `  aula videos/aula01.mp4                          # transcription only
  aula complete videos/aula01.mp4 --modulo 1 --aula 1
  aula batch videos --start-modulo 1`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if err := cmd.Help(); err != nil {
					return err
				}
				return ErrNoInput
			}
			return runTranscribe(cmd, env, args[0])
		},
	}

	root.AddCommand(TranscribeCmd(env))
	root.AddCommand(CompleteCmd(env))
	root.AddCommand(BatchCmd(env))
	root.AddCommand(ConfigCmd(env))

	return root
}
