package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-exercise-scoring/internal/source/sqlitesource"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy definitions and answers from a csv or yaml source into an SQLite file",
		RunE:  runImport,
	}
	cmd.Flags().String("into", "", "SQLite database file to write")
	_ = cmd.MarkFlagRequired("into")
	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	if v.GetString("source") == "sqlite" {
		return fmt.Errorf("import reads from a csv or yaml source")
	}
	src, closeSrc, err := openSource(ctx, v)
	if err != nil {
		return err
	}
	defer closeSrc()

	steps, err := src.Steps(ctx)
	if err != nil {
		return fmt.Errorf("load steps: %w", err)
	}
	answers, err := src.Answers(ctx)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}

	store, err := sqlitesource.Open(ctx, v.GetString("into"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InsertSteps(ctx, steps); err != nil {
		return err
	}
	if err := store.InsertAnswers(ctx, answers); err != nil {
		return err
	}

	slog.Info("imported", "steps", len(steps), "answers", len(answers), "into", v.GetString("into"))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d steps and %d answers\n", len(steps), len(answers))
	return nil
}
