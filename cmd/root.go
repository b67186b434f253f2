package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dnd-portal",
	Short: "Browse and manage the resources of a tabletop campaign",
	Long: `dnd-portal reads and edits the weapons, armors, and spells of a campaign
through the portal backend. Every flag can also be set through a DND_ prefixed
environment variable, e.g. DND_API_URL.`,
	SilenceUsage: true,
}

// Execute runs the command line. It exits the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	viper.SetEnvPrefix("dnd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "http://127.0.0.1:9090", "Base address of the portal backend.")
	flags.String("api-key", "", "API key sent with every call.")
	flags.Duration("timeout", 10*time.Second, "Timeout of every backend call.")
	flags.StringP("data", "d", "dnd-data", "Dirname where filters and preferences are stored.")
	flags.Bool("mem", false, "Keep filters and preferences in memory only.")
	flags.String("prefs-backend", "pebble", "Where preferences are stored: pebble or redis.")
	flags.String("redis-url", "redis://127.0.0.1:6379/0", "Redis address used by the redis preferences backend.")
	flags.String("profile", "default", "Preferences profile.")
	flags.String("lang", "", "Display language for this invocation. Defaults to the stored preference.")
	flags.Bool("debug", false, "Log at debug level.")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}
