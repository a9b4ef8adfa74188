package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pitwall/internal/replaytool"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "pitwall-replay",
		Short:         "Generate telemetry captures and drive a pitwall service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)

	var baseURL string
	var timeout time.Duration
	root.PersistentFlags().StringVar(&baseURL, "url", replaytool.DefaultBaseURL, "base URL of the service")
	root.PersistentFlags().DurationVar(&timeout, "timeout", replaytool.DefaultTimeout, "HTTP request timeout")

	root.AddCommand(newGenerateCmd(), newUploadCmd(&baseURL, &timeout), newDriveCmd(&baseURL, &timeout))
	return root
}

func newGenerateCmd() *cobra.Command {
	cfg := &replaytool.Config{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic telemetry CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := replaytool.WriteFile(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfg.Output, "out", "o", "", "output file (default: telemetry_TIMESTAMP.csv)")
	cmd.Flags().IntVar(&cfg.Seconds, "seconds", replaytool.DefaultSeconds, "capture length in seconds")
	cmd.Flags().IntVar(&cfg.Hz, "hz", replaytool.DefaultHz, "samples per second")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "generator seed")
	return cmd
}

func newUploadCmd(baseURL *string, timeout *time.Duration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a CSV capture as the replay source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := replaytool.NewHTTPClient(*baseURL, *timeout)
			n, err := client.Upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replay loaded: %d frames\n", n)
			return nil
		},
	}
	return cmd
}

func newDriveCmd(baseURL *string, timeout *time.Duration) *cobra.Command {
	cfg := &replaytool.Config{}
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Run a session, optionally on an uploaded capture, and print the debrief",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.BaseURL = *baseURL
			cfg.Timeout = *timeout
			stats, err := replaytool.Drive(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "session %s: %d log entries, replay index %d\n", stats.SessionID, stats.LogEntries, stats.MaxReplayIndex)
			if stats.Debrief == nil {
				fmt.Fprintln(w, "no debrief (session too short)")
				return nil
			}
			fmt.Fprintf(w, "score %d: %s\nprimary issue: %s\n", stats.Debrief.Score, stats.Debrief.Verdict, stats.Debrief.PrimaryIssue)
			for _, step := range stats.Debrief.ActionPlan {
				fmt.Fprintf(w, "  - %s\n", step)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfg.File, "file", "f", "", "CSV capture to upload first (synthetic telemetry when empty)")
	cmd.Flags().DurationVarP(&cfg.Duration, "duration", "d", replaytool.DefaultDuration, "how long the session runs")
	cmd.Flags().DurationVar(&cfg.PollInterval, "poll", replaytool.DefaultPollInterval, "snapshot polling period")
	return cmd
}
