package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskflowr",
	Short: "Task orchestration engine",
	Long: `TaskFlowr turns a single free-form instruction into typed subtasks,
routes each one to a specialized capability worker, executes them
concurrently, and merges the outputs into one deliverable.

Core capabilities:
- Decomposes instructions into structured-operations and natural-language subtasks
- Dispatches independent subtasks concurrently, dependents wave by wave
- Absorbs worker failures and timeouts into partial deliverables
- Remembers tone preferences and recent deliverables per session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(versionCmd)
}
