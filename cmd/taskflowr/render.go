package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/taskflowr/taskflowr/internal/engine"
	"github.com/taskflowr/taskflowr/pkg/models"
)

// renderResult prints a run's deliverable to stdout.
func renderResult(res *engine.Result) {
	d := res.Deliverable

	bold := color.New(color.Bold)
	bold.Printf("Run %s", res.RunID)
	fmt.Printf("  status: %s  tone: %s\n", statusString(d.Status), res.Tone)

	for _, p := range d.Payloads {
		renderPayload(p)
	}

	if d.Note != "" {
		fmt.Printf("\n%s %s\n", color.YellowString("note:"), d.Note)
	}
}

func statusString(status models.DeliverableStatus) string {
	switch status {
	case models.StatusComplete:
		return color.GreenString(string(status))
	case models.StatusPartial:
		return color.YellowString(string(status))
	default:
		return color.RedString(string(status))
	}
}

func renderPayload(p models.DeliverablePayload) {
	heading := color.New(color.Bold, color.FgCyan)
	heading.Printf("\n[%s] %s\n", p.SubtaskID, p.Class)

	if p.Payload == nil {
		return
	}
	if s := p.Payload.Structured; s != nil {
		for _, c := range s.Checklists {
			fmt.Printf("\n  %s\n", color.New(color.Bold).Sprint(c.Title))
			for _, item := range c.Items {
				fmt.Printf("    ☐ %s\n", item)
			}
		}
		for _, w := range s.Workflows {
			fmt.Printf("\n  %s\n", color.New(color.Bold).Sprint(w.Name))
			for i, step := range w.Steps {
				fmt.Printf("    %d. %s\n", i+1, step)
			}
		}
		for _, t := range s.Templates {
			fmt.Printf("\n  %s", color.New(color.Bold).Sprint(t.Name))
			if t.Format != "" {
				fmt.Printf(" (%s)", t.Format)
			}
			fmt.Println()
			for _, f := range t.Fields {
				fmt.Printf("    - %s\n", f)
			}
		}
	}
	if c := p.Payload.Communication; c != nil {
		for _, e := range c.Emails {
			fmt.Println()
			if e.Recipient != "" {
				fmt.Printf("  To: %s\n", e.Recipient)
			}
			fmt.Printf("  Subject: %s\n\n", color.New(color.Bold).Sprint(e.Subject))
			fmt.Printf("  %s\n", e.Body)
		}
		for _, s := range c.Summaries {
			fmt.Println()
			if s.Title != "" {
				fmt.Printf("  %s\n", color.New(color.Bold).Sprint(s.Title))
			}
			fmt.Printf("  %s\n", s.Content)
			for _, kp := range s.KeyPoints {
				fmt.Printf("    • %s\n", kp)
			}
		}
		for _, a := range c.Announcements {
			fmt.Println()
			if a.Title != "" {
				fmt.Printf("  %s\n", color.New(color.Bold).Sprint(a.Title))
			}
			fmt.Printf("  %s\n", a.Content)
			for _, item := range a.ActionItems {
				fmt.Printf("    → %s\n", item)
			}
		}
	}
}
