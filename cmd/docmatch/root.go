package main

import (
	"fmt"
	"os"
	"strings"

	"docmatch/internal/config"
	"docmatch/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "DOCMATCH"

// commandContext carries settings shared by every subcommand.
type commandContext struct {
	v          *viper.Viper
	configFile *string
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := &commandContext{
		v:          newViper(),
		configFile: &configFlag,
	}

	rootCmd := &cobra.Command{
		Use:           "docmatch",
		Short:         "Find likely duplicate documents across two collections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.readConfigFile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (TOML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (match defaults to warn)")
	_ = ctx.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newMatchCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func (c *commandContext) readConfigFile() error {
	if *c.configFile == "" {
		return nil
	}
	c.v.SetConfigFile(*c.configFile)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", *c.configFile, err)
	}
	return nil
}

// loadConfig reads the environment configuration and applies overrides from
// flags, DOCMATCH_* variables and the config file.
func (c *commandContext) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if level := c.v.GetString("log_level"); level != "" {
		cfg.Logger.Level = level
	}
	if url := c.v.GetString("storage_url"); url != "" {
		cfg.Storage.URL = url
	}
	if key := c.v.GetString("storage_key"); key != "" {
		cfg.Storage.Key = key
	}
	if bucket := c.v.GetString("storage_bucket"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger keeps stdout for command output.
func initLogger(cfg *config.Config) {
	logger.InitWithWriter(cfg.Logger, os.Stderr)
}
