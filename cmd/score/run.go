package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/render"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score every attempt found in the answer log",
		RunE:  runScore,
	}

	f := cmd.Flags()
	f.String("student-id", "", "only score this student")
	f.Float64("weight", exercise.DefaultIncompleteWeight, "share of the max score subtracted from unfinished attempts")
	f.Int("k", exercise.DefaultIncorrectThreshold, "incorrect attempts on one step before the penalty applies")
	f.Int("max-steps", exercise.DefaultMaxSteps, "upper bound on transitions per attempt")
	f.Int("workers", 4, "attempts scored in parallel")
	f.String("graph", "", "also write the state graph of the exercise as DOT to this file")
	f.String("output", "text", "output format (text, json)")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	k := v.GetInt("k")
	weight := v.GetFloat64("weight")
	svc, err := newService(v, exercise.WithMaxSteps(v.GetInt("max-steps")))
	if err != nil {
		return err
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

	filter := app.Filter{
		ExerciseTypeID: v.GetString("exercise-type-id"),
		StudentID:      v.GetString("student-id"),
	}
	batch := app.NewBatch(svc,
		app.WithWorkers(v.GetInt("workers")),
		app.WithScoreOptions(app.ScoreOptions{K: &k, IncompleteWeight: &weight}),
		app.WithLogger(slog.Default()),
	)

	report, err := batch.Run(ctx, steps, answers, filter)
	if err != nil {
		return err
	}

	if path := v.GetString("graph"); path != "" {
		if err := writeGraph(svc, steps, filter.ExerciseTypeID, path); err != nil {
			return err
		}
		slog.Info("graph written", "path", path)
	}

	out := cmd.OutOrStdout()
	if v.GetString("output") == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d exercise definition(s) rejected", len(report.Failed))
	}
	return nil
}

func writeGraph(svc *app.Service, steps []exercise.Step, exerciseTypeID, path string) error {
	if exerciseTypeID == "" {
		return fmt.Errorf("--graph needs --exercise-type-id")
	}
	m, err := svc.Model(app.FilterSteps(steps, exerciseTypeID))
	if err != nil {
		return err
	}
	dot, err := render.DOT(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(dot), 0o644)
}

func printReport(w io.Writer, report *app.BatchReport) {
	for _, typeID := range sortedKeys(report.MaxScores) {
		fmt.Fprintf(w, "exercise %s max_score=%g\n", typeID, report.MaxScores[typeID])
	}
	for _, typeID := range sortedKeys(report.Failed) {
		fmt.Fprintf(w, "exercise %s rejected: %s\n", typeID, report.Failed[typeID])
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXERCISE\tSTUDENT\tATTEMPT\tANSWERS\tIGNORED\tFINISHED\tSCORE\tMAX\tERROR")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%t\t%g\t%g\t%s\n",
			r.ExerciseTypeID, r.StudentID, r.AttemptID, r.Answers, r.Ignored, r.Finished, r.Score, r.MaxScore, r.Error)
	}
	_ = tw.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
