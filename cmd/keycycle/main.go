package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"keycycle/internal/bootstrap"
	"keycycle/internal/modules/session/domain"
	"keycycle/internal/platform/config"
	"keycycle/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "keycycle",
		Short:         "Practice all twelve keys, one session at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", ".", "data directory for receipts and state")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newReceiptCmd(&dataDir))
	root.AddCommand(newReindexCmd(&dataDir))
	root.AddCommand(newKeysCmd(&dataDir))
	root.AddCommand(newThemeCmd(&dataDir))
	return root
}

// loadApp wires the application. Logs go to w, which is stderr for CLI
// commands and the log file for the TUI.
func loadApp(dataDir string, w io.Writer) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return bootstrap.New(cfg, logging.New("keycycle", cfg.LogLevel, w))
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the practice terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.New(*dataDir)
			if err != nil {
				return err
			}
			logFile, err := logging.OpenFile(cfg.LogPath)
			if err != nil {
				return err
			}
			defer logFile.Close()
			app, err := loadApp(*dataDir, logFile)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

func newSessionCmd(dataDir *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Drive a practice session from the command line"}

	run := &cobra.Command{
		Use:   "run <action>...",
		Short: "Run actions in order: request, skip, pause, resume, end",
		Long: "Runs the given actions against one fresh session and prints the state after each.\n" +
			"Ending the session writes a receipt note and indexes it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				if _, err := domain.ParseAction(raw); err != nil {
					return err
				}
			}
			app, err := loadApp(*dataDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := context.Background()
			for _, action := range args {
				out, err := app.SessionCLI.Perform(ctx, action)
				if err != nil {
					return fmt.Errorf("%s: %w", action, err)
				}
				snap, err := app.SessionCLI.Snapshot(ctx)
				if err != nil {
					return err
				}
				line := fmt.Sprintf("%-8s state=%s", action, snap.State)
				if snap.HasCurrentKey {
					line += fmt.Sprintf(" key=%s reps=%d", snap.CurrentKey.Name, snap.CurrentKey.Repetitions)
				}
				if out.Recovered {
					line += " recovered=true"
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
				if out.Finished {
					r := out.Receipt
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "receipt %s reps=%d keys=%d duration=%s note=%s\n",
						r.ID, r.TotalRepetitions, r.KeysPracticed, time.Duration(r.DurationSec)*time.Second, r.NotePath)
				}
			}
			return nil
		},
	}

	states := &cobra.Command{
		Use:   "states",
		Short: "Print the transition table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, s := range domain.States() {
				targets := make([]string, 0)
				for _, t := range domain.LegalTargets(s) {
					targets = append(targets, string(t))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-20s -> %s\n", s, strings.Join(targets, ", "))
			}
			return nil
		},
	}

	session.AddCommand(run, states)
	return session
}

func newReceiptCmd(dataDir *string) *cobra.Command {
	receipt := &cobra.Command{Use: "receipt", Short: "Saved practice receipts"}

	receipt.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List receipts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			receipts, err := app.SessionCLI.ListReceipts(context.Background())
			if err != nil {
				return err
			}
			if len(receipts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no receipts")
				return nil
			}
			for _, r := range receipts {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d reps\t%d keys\t%s\n",
					r.ID, r.EndedAt.Format(time.RFC3339), r.TotalRepetitions, r.KeysPracticed, time.Duration(r.DurationSec)*time.Second)
			}
			return nil
		},
	})

	var receiptID string
	var render bool
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show one receipt note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(receiptID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*dataDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			r, err := app.SessionCLI.GetReceipt(context.Background(), receiptID)
			if err != nil {
				return err
			}
			content := r.Content
			if render {
				if rendered, err := glamour.Render(content, "auto"); err == nil {
					content = rendered
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), content)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "note: %s\n", r.NotePath)
			return nil
		},
	}
	show.Flags().StringVar(&receiptID, "id", "", "receipt id")
	show.Flags().BoolVar(&render, "render", false, "render markdown for the terminal")
	receipt.AddCommand(show)
	return receipt
}

func newReindexCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite receipt index from receipt notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.SessionCLI.Reindex(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
			return nil
		},
	}
}

func newKeysCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show lifetime repetitions per key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			keys, err := app.SessionCLI.KeyTotals(context.Background())
			if err != nil {
				return err
			}
			for _, k := range keys {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%2d\t%s\t%d\n", k.NID, k.Name, k.Repetitions)
			}
			return nil
		},
	}
}

func newThemeCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [mocha|latte]",
		Short: "Show or set the saved TUI theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := context.Background()
			if len(args) == 0 {
				prefs, err := app.SessionCLI.GetPreferences(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), prefs.Theme)
				return nil
			}
			prefs, err := app.SessionCLI.SetTheme(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "theme set to %s\n", prefs.Theme)
			return nil
		},
	}
}
