// Package cmd is for command line interactions with the seqcmp application
package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jjtimmons/seqcmp/config"
	"github.com/jjtimmons/seqcmp/internal/history"
	"github.com/jjtimmons/seqcmp/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// stderr is for reporting a failed command
var stderr = log.New(os.Stderr, "", 0)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "seqcmp",
	Short: `Compare sequences with pairwise global alignments.
Pick primary and test sequences from a FASTA file and align every primary against every test`,
	Version:       "0.1.0",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		stderr.Println(err)
		os.Exit(1)
	}
}

func init() {
	// settings is an optional settings file (that overrides the defaults)
	RootCmd.PersistentFlags().StringP("settings", "s", config.RootSettingsFile, "settings file")
	RootCmd.PersistentFlags().String("color", "auto", "color the terminal view: auto, always or never")
	RootCmd.PersistentFlags().Int("wrap", 80, "residues per line in the terminal view, 0 to not wrap")
	RootCmd.PersistentFlags().Int("workers", 0, "max alignments computed at once (default: number of CPUs)")
	RootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	viper.BindPFlag("settings", RootCmd.PersistentFlags().Lookup("settings"))
	viper.BindPFlag("color", RootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("wrap", RootCmd.PersistentFlags().Lookup("wrap"))
	viper.BindPFlag("workers", RootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
}

// setup loads the settings and makes the logger the default one.
func setup() (*config.Config, *slog.Logger, error) {
	c, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(os.Stderr, c.Log)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	return c, logger, nil
}

// openHistory opens the history store in the configured directory.
func openHistory(c *config.Config, logger *slog.Logger) (*history.Store, error) {
	return history.Open(history.Options{
		Dir:      c.History.Dir,
		InMemory: c.History.InMemory,
		Logger:   logger,
	})
}

// commandContext is the command's context, or a background one when the
// command is run outside of Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
