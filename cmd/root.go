package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/opaque/internal/config"
	"github.com/conneroisu/opaque/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "opaque",
	Short: "A small blog engine that shows terminal output as it looked",
	Long: `Opaque serves a Markdown blog. Posts can embed captured terminal output
with <opaque-ansi-output source="file.txt"> placeholders, which are replaced
by the output's colors and styles rendered as HTML.

Quick Start:
  opaque posts                    List discovered posts
  opaque serve                    Serve the blog
  opaque render build.txt         Preview one snippet as HTML`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .opaque.yml, can also use OPAQUE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{"log-level": "log.level"})
}

// bindFlags binds each named flag to its configuration key so a flag set
// on the command line overrides the file and the environment.
func bindFlags(flags *pflag.FlagSet, bindings map[string]string) {
	for flagName, configKey := range bindings {
		if flag := flags.Lookup(flagName); flag != nil {
			viper.BindPFlag(configKey, flag)
		}
	}
}

// initConfig points viper at the config file and the environment.
//
// The file is the --config flag, else OPAQUE_CONFIG_FILE, else .opaque.yml
// in the working directory. A missing file is not an error: defaults and
// the environment still apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".opaque")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logging.NewLogger(cfg.LoggerConfig()), nil
}
