package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dannytech/default-server/internal/logging"
	"github.com/dannytech/default-server/internal/notifier"
	"github.com/dannytech/default-server/internal/output"
	"github.com/dannytech/default-server/internal/runner"
	"github.com/dannytech/default-server/internal/watermark"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run <logdir>",
	Short: "Scan logdir once: notify new logs, purge expired ones",
	Long: `Scan logdir once. Files whose name carries a "YYYY-MM-DD HH-MM-SS"
stamp newer than the previous run are forwarded to Slack (if --slack is set);
files stamped before now minus --retention days are deleted.

Examples:
  lognotify run /srv/logs
  lognotify run /srv/logs --slack https://hooks.slack.com/services/T/B/X --retention 7
  LOGNOTIFY_SLACK=https://hooks.slack.com/services/T/B/X lognotify run /srv/logs -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "interrupted, aborting run")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger := logging.New(viper.GetString("log-level"))
	defer func() { _ = logger.Sync() }()

	cfg := runner.Config{
		LogDir:        args[0],
		Pattern:       viper.GetString("pattern"),
		RetentionDays: viper.GetInt("retention"),
	}

	var reporter output.Reporter
	switch strings.ToLower(viper.GetString("output")) {
	case "json":
		reporter = output.NewJSONReporter()
	default:
		reporter = output.NewTextReporter()
	}

	opts := []runner.Option{
		runner.WithReporter(reporter),
		runner.WithLogger(logger),
	}
	if url := viper.GetString("slack"); url != "" {
		opts = append(opts, runner.WithSender(notifier.NewSlackNotifier(url, viper.GetDuration("timeout"))))
	}

	store := watermark.NewFileStore(viper.GetString("state"))
	_, err := runner.New(cfg, store, opts...).Run(ctx)
	return err
}
