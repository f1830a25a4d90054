package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskflowr/taskflowr/internal/config"
	"github.com/taskflowr/taskflowr/internal/engine"
	"github.com/taskflowr/taskflowr/pkg/models"
)

var (
	runSession string
	runTone    string
	runTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run \"instruction\"",
	Short: "Execute one instruction through the orchestration engine",
	Long: `Run decomposes the instruction into subtasks, dispatches them to the
capability workers, and prints the merged deliverable.

Drop a file named "cancel" into .taskflowr/signals to stop a run in
flight; waves already dispatched finish, later waves never start, and
session state is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runSession, "session", "s", "default", "Session ID to run under")
	runCmd.Flags().StringVar(&runTone, "tone", "", "Set the session's tone profile before running")
	runCmd.Flags().DurationVar(&runTimeout, "subtask-timeout", 0, "Override the per-subtask deadline")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if runTimeout > 0 {
		cfg.Engine.SubtaskTimeout = runTimeout
	}

	eng, store, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	watcher, err := engine.NewCancelWatcher(filepath.Join(".taskflowr", "signals"))
	if err != nil {
		log.Printf("[run] cancel signal watcher unavailable, run cannot be cancelled via signal file: %v", err)
	} else {
		defer watcher.Close()
		var cancel func()
		ctx, cancel = watcher.Bind(ctx)
		defer cancel()
	}

	if runTone != "" {
		if err := store.SetTone(ctx, runSession, runTone); err != nil {
			return err
		}
	}

	res, err := eng.Run(ctx, models.Instruction{
		Text:       args[0],
		SessionID:  runSession,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	renderResult(res)

	if res.Cancelled {
		fmt.Printf("\n%s run cancelled; session state unchanged\n", color.YellowString("⚠"))
	} else if !res.Saved {
		fmt.Printf("\n%s session state could not be saved: %s\n", color.YellowString("⚠"), res.SaveErr)
	}
	return nil
}
