package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-aula/internal/lesson"
)

// CompleteCmd creates the complete command.
// The env parameter provides injectable dependencies for testing.
func CompleteCmd(env *Env) *cobra.Command {
	var modulo, aula int

	cmd := &cobra.Command{
		Use:   "complete <video>",
		Short: "Transcribe, analyze and document one lesson",
		Long: `Turn one video into a lesson directory.

The video is transcribed, the transcript is analyzed (with Gemini when
GEMINI_API_KEY is set, by keyword detection otherwise), and the lesson is
written under OUTPUT_BASE_DIR/AULA_DIR_PATTERN:

  README.md            lesson summary
  transcricao.json     timed transcript
  analise.json         structured analysis
  scripts/comandos.md  detected commands (when any)
  assets/`,
		Example: `  aula complete videos/aula01.mp4
  aula complete videos/aula01.mp4 --modulo 2 --aula 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, env, args[0], modulo, aula)
		},
	}

	cmd.Flags().IntVarP(&modulo, "modulo", "m", 1, "Module number")
	cmd.Flags().IntVarP(&aula, "aula", "a", 1, "Lesson number within the module")

	return cmd
}

// runComplete processes one video end to end.
// Validation order: numbers -> file exists -> config -> API key -> tools
func runComplete(cmd *cobra.Command, env *Env, video string, modulo, aula int) error {
	ctx := cmd.Context()

	if modulo < 1 {
		return fmt.Errorf("--modulo %d: %w", modulo, ErrInvalidNumber)
	}
	if aula < 1 {
		return fmt.Errorf("--aula %d: %w", aula, ErrInvalidNumber)
	}
	if err := checkInput(video); err != nil {
		return err
	}

	st, err := setup(ctx, env)
	if err != nil {
		return err
	}
	proc, err := st.processor(env)
	if err != nil {
		return err
	}

	out := proc.Process(ctx, video, modulo, aula)
	if out.Status != lesson.StatusSuccess {
		return out.Err
	}
	return nil
}
