package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dbf-pump/internal/logging"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string

	// logger is built once per invocation and handed to every component.
	logger = zerolog.Nop()

	// RunID tags every log line of one invocation.
	RunID string
)

var RootCmd = &cobra.Command{
	Use:   "dbf-pump",
	Short: "Merge tenant DBF files into one store and report on it",
	Long: `
  ____  ____  _____   ____  _   _ __  __ ____
 |  _ \| __ )|  ___| |  _ \| | | |  \/  |  _ \
 | | | |  _ \| |_    | |_) | | | | |\/| | |_) |
 | |_| | |_) |  _|   |  __/| |_| | |  | |  __/
 |____/|____/|_|     |_|    \___/|_|  |_|_|

DBF PUMP - idempotent multi-tenant DBF ingestion & daily reports
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		base, err := logging.New(os.Stderr, viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		RunID = uuid.NewString()
		logger = base.With().Str("run_id", RunID).Str("command", cmd.Name()).Logger()
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("config", used).Msg("using config file")
		}
		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Define flags
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dbf-pump.yaml)")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json, ecs)")

	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log-format"))

	setDefaults()
}

// initConfig reads in the dotenv file, config file and ENV variables if set.
func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", envFile, err)
		}
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			exePath := filepath.Dir(ex)
			viper.AddConfigPath(exePath)
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("dbf-pump")
		viper.SetConfigType("yaml")
	}

	// DBF_PUMP_SOURCE_ENCODING -> source.encoding
	viper.SetEnvPrefix("DBF_PUMP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}
