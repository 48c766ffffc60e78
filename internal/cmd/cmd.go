package cmd

import (
	"errors"
	"fmt"
	"github.com/clambin/go-common/charmer"
	"github.com/clambin/slack-blocks/internal/cmd/notify"
	"github.com/clambin/slack-blocks/internal/cmd/post"
	"github.com/clambin/slack-blocks/internal/cmd/serve"
	"github.com/clambin/slack-blocks/internal/cmd/show"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
	"os"
	"strings"
)

var (
	configFilename string
	envFilename    string
	RootCmd        = cobra.Command{
		Use:   "slack-blocks",
		Short: "Send Slack messages through named credentials and webhooks",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			charmer.SetJSONLogger(cmd, viper.GetBool("debug"))
		},
	}
)

var args = charmer.Arguments{
	"debug":         {Default: false, Help: "Log debug messages"},
	"blocks":        {Default: "", Help: "Blocks file (default: blocks.yaml next to the configuration file)"},
	"host.version":  {Default: "3.0.0", Help: "Version of the host whose webhook behaviour to follow. Before 2.17.2, failed webhook calls are not reported"},
	"slack.token":   {Default: "", Help: "Slack bot token, registered as the \"default\" credentials"},
	"slack.webhook": {Default: "", Help: "Slack incoming webhook URL, registered as the \"default\" webhook"},
	"slack.apiURL":  {Default: "", Help: "Slack API URL (for testing)"},
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&configFilename, "config", "", "Configuration file")
	RootCmd.PersistentFlags().StringVar(&envFilename, "env-file", "", "Load environment variables from this file")
	_ = charmer.SetPersistentFlags(&RootCmd, viper.GetViper(), args)

	RootCmd.AddCommand(&notify.Cmd, &post.Cmd, &show.Cmd, &serve.Cmd)
}

func initConfig() {
	if err := loadConfig(viper.GetViper(), configFilename, envFilename); err != nil {
		slog.Error("failed to read configuration", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file into v. If no file is given, the standard locations are searched and
// a missing file is not an error.
func loadConfig(v *viper.Viper, filename string, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("env file: %w", err)
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.AddConfigPath("/etc/slack-blocks/")
		v.AddConfigPath("$HOME/.slack-blocks")
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SLACK_BLOCKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && (filename != "" || !errors.As(err, &notFound)) {
		return err
	}
	return nil
}
