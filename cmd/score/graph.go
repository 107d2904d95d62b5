package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-exercise-scoring/internal/app"
	"github.com/awmpietro/golang-exercise-scoring/internal/exercise/render"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the state graph of one exercise as DOT",
		RunE:  runGraph,
	}

	f := cmd.Flags()
	f.String("out", "", "output file (default: stdout)")
	f.String("rankdir", "TB", "graphviz rank direction (TB, LR)")
	f.Bool("highlight-primary", true, "draw primary path edges in bold")

	return cmd
}

func runGraph(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	typeID := v.GetString("exercise-type-id")
	if typeID == "" {
		return fmt.Errorf("--exercise-type-id is required")
	}

	svc, err := newService(v)
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
	m, err := svc.Model(app.FilterSteps(steps, typeID))
	if err != nil {
		return err
	}

	dot, err := render.DOT(m,
		render.WithRankDir(v.GetString("rankdir")),
		render.WithPrimaryHighlight(v.GetBool("highlight-primary")),
	)
	if err != nil {
		return err
	}

	if path := v.GetString("out"); path != "" {
		return os.WriteFile(path, []byte(dot), 0o644)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), dot)
	return err
}
