package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dannytech/default-server/internal/retention"
	"github.com/dannytech/default-server/internal/scanner"
	"github.com/dannytech/default-server/internal/watermark"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command. Given a directory it behaves like "run",
// which keeps the original cron invocation working.
var rootCmd = &cobra.Command{
	Use:   "lognotify [logdir]",
	Short: "Forward client log notifications to chat and purge old logs",
	Long: `lognotify scans a directory of client log files, posts every entry of
files that arrived since the previous run to a Slack incoming webhook,
and deletes files older than the retention window.

It is meant to be run periodically, e.g. from cron:
  */5 * * * * lognotify /srv/logs --slack https://hooks.slack.com/services/...

A log directory literally named "run" collides with the run subcommand;
pass it as "lognotify run ./run" instead.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runScan(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.lognotify.yaml)")
	flags.String("slack", "", "Slack webhook URL; notifications are disabled when empty")
	flags.Int("retention", retention.DefaultDays, "days to retain log files")
	flags.String("state", watermark.DefaultPath, "file holding the last run timestamp")
	flags.String("pattern", scanner.DefaultPattern, "glob selecting log file names inside logdir")
	flags.Duration("timeout", 0, "timeout for each webhook request (0 = none)")
	flags.StringP("output", "o", "text", "output format: text, json")
	flags.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")

	for _, name := range []string{"slack", "retention", "state", "pattern", "timeout", "output", "log-level"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".lognotify")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("lognotify")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
