package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskflowr/taskflowr/internal/config"
	"github.com/taskflowr/taskflowr/internal/evaluate"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the built-in evaluation suite",
	Long: `Eval runs each built-in scenario end to end through the engine and
checks that the deliverable contains the expected output kinds. Every
scenario uses a throwaway session, so existing session state is untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		eng, _, cleanup, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := evaluate.RunSuite(cmd.Context(), eng.RunFunc(), evaluate.DefaultTestCases())
		if err != nil {
			return err
		}

		for _, cr := range result.Results {
			mark := color.GreenString("✓")
			detail := ""
			if cr.Err != "" {
				mark = color.RedString("✗")
				detail = "  " + cr.Err
			} else if !cr.Report.Passed {
				mark = color.RedString("✗")
				detail = fmt.Sprintf("  missing: %v", cr.Report.Missing)
			}
			fmt.Printf("%s %-28s %6.2fs%s\n", mark, cr.Case.Name, cr.ResponseTime.Seconds(), detail)
		}

		fmt.Printf("\n%d/%d passed (%.1f%%), average response time %.2fs\n",
			result.Passed, result.Total, result.SuccessRate, result.AverageResponseTime.Seconds())
		return nil
	},
}
