package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-aula/internal/config"
	"github.com/alnah/go-aula/internal/lesson"
)

// BatchCmd creates the batch command.
// The env parameter provides injectable dependencies for testing.
func BatchCmd(env *Env) *cobra.Command {
	var startModulo int

	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "Build a lesson for every video in a directory",
		Long: `Process every video under a directory, in path order.

Defaults to VIDEOS_DIR. Module and lesson numbers come from names such as
"modulo-02" or "aula_05"; otherwise the module is --start-modulo and the
lesson is the video's position in the list.

Videos are processed one at a time with BATCH_PAUSE_SECONDS between them.
When LEDGER_REDIS_ADDR is set, videos already turned into lessons are
skipped and successes are recorded.

Supported extensions: mp4, avi, mov, mkv, webm, m4v`,
		Example: `  aula batch
  aula batch videos/modulo-03 --start-modulo 3
  LEDGER_REDIS_ADDR=localhost:6379 aula batch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runBatch(cmd, env, dir, startModulo)
		},
	}

	cmd.Flags().IntVarP(&startModulo, "start-modulo", "s", 1, "Module number for videos without one in their name")

	return cmd
}

// runBatch processes a directory. It fails only when nothing could be
// attempted or no video succeeded.
func runBatch(cmd *cobra.Command, env *Env, dir string, startModulo int) error {
	ctx := cmd.Context()

	if startModulo < 1 {
		return fmt.Errorf("--start-modulo %d: %w", startModulo, ErrInvalidNumber)
	}

	st, err := setup(ctx, env)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.ExpandPath(st.cfg.VideosDir)
	}
	proc, err := st.processor(env)
	if err != nil {
		return err
	}

	opts := []lesson.BatchOption{
		lesson.WithPause(st.cfg.BatchPause),
		lesson.WithBatchLogger(st.logger),
		lesson.WithBatchProgress(env.Stderr),
	}
	if st.cfg.LedgerRedisAddr != "" {
		ledger, err := env.LedgerFactory.Connect(ctx, st.cfg.LedgerRedisAddr, st.cfg.LedgerRedisKey)
		if err != nil {
			// Without a ledger every video is processed.
			st.logger.Warn("ledger unavailable, processing every video", "error", err)
			fmt.Fprintf(env.Stderr, "Warning: ledger unavailable: %v\n", err)
		} else {
			defer func() { _ = ledger.Close() }()
			opts = append(opts, lesson.WithLedger(ledger))
		}
	}

	sum, err := lesson.NewBatch(proc, opts...).Run(ctx, dir, startModulo)
	if err != nil {
		return err
	}
	if len(sum.Succeeded()) == 0 && len(sum.Skipped()) == 0 {
		return ErrBatchFailed
	}
	return nil
}
