package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/awmpietro/golang-exercise-scoring/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "score",
		Short:         "Replay student answer logs against exercise definitions and score them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("source", "csv", "data source (csv, sqlite, yaml)")
	pf.String("steps", "", "exercise steps CSV file")
	pf.String("answers", "", "exercise answers CSV file")
	pf.String("db", "", "SQLite database file")
	pf.String("file", "", "YAML definitions file")
	pf.String("exercise-type-id", "", "exercise type to score (default: all)")
	pf.String("helper-rule", "depth > 1", "expression classifying a step as helper by its depth")

	root.AddCommand(newRunCmd(), newGraphCmd(), newImportCmd())
	return root
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)
	logger := config.NewLogger(os.Stderr, v.GetString("log-level"), v.GetString("log-format"))
	slog.SetDefault(logger)
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("exscore")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/exscore")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}
