package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskflowr/taskflowr/internal/config"
	"github.com/taskflowr/taskflowr/internal/session"
	"github.com/taskflowr/taskflowr/internal/tone"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and manage session state",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("no sessions")
			return nil
		}

		fmt.Printf("%-20s %-14s %6s  %s\n", "ID", "TONE", "TURNS", "UPDATED")
		for _, s := range sessions {
			toneName := s.ToneProfile
			if toneName == "" {
				toneName = "-"
			}
			fmt.Printf("%-20s %-14s %6d  %s\n", s.ID, toneName, s.TurnCount, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's tone and recent deliverable history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sess, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		bold.Printf("Session %s\n", sess.ID)
		toneName := sess.ToneProfile
		if toneName == "" {
			toneName = "(default)"
		}
		fmt.Printf("  tone:  %s\n", toneName)
		fmt.Printf("  turns: %d\n", sess.TurnCount)

		if len(sess.History) == 0 {
			fmt.Println("  no deliverables yet")
			return nil
		}
		fmt.Println("\n  recent deliverables:")
		for _, h := range sess.History {
			line := fmt.Sprintf("    %s  %-8s  %d payloads", h.CreatedAt.Local().Format("2006-01-02 15:04"), h.Status, h.PayloadCount)
			if h.Note != "" {
				line += "  " + h.Note
			}
			fmt.Println(line)
		}
		return nil
	},
}

var sessionsSetToneCmd = &cobra.Command{
	Use:   "set-tone <session-id> <tone>",
	Short: "Set a session's tone profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		tones := tone.NewCatalog()
		if cfg.Tone.PresetsPath != "" {
			if err := tones.LoadPresets(cfg.Tone.PresetsPath); err != nil {
				return err
			}
		}
		if !tones.Known(args[1]) {
			return fmt.Errorf("unknown tone %q (available: %s)", args[1], strings.Join(tones.Names(), ", "))
		}

		store, err := openStoreWith(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetTone(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("session %s tone set to %s\n", args[0], args[1])
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("session %s deleted\n", args[0])
		return nil
	},
}

func openStore() (*session.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openStoreWith(cfg)
}

func openStoreWith(cfg *config.Config) (*session.Store, error) {
	dbPath := cfg.Session.DBPath
	if dbPath == "" {
		dbPath = session.DefaultDBPath()
	}
	return session.Open(dbPath, cfg.Session.HistoryLimit)
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsSetToneCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
