package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wmcornejo/reView/internal/application/mapview"
	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/domain/signal"
	"github.com/wmcornejo/reView/internal/infrastructure/tabular"
	"github.com/wmcornejo/reView/pkg/errors"
)

// renderOptions collects the render command's flags.
type renderOptions struct {
	Project     string
	Y           string
	Path        string
	Path2       string
	Out         string
	Basemap     string
	Color       string
	PointSize   int
	MapFunction string
	YMin        float64
	YMax        float64
}

// NewRenderCmd creates the render command.  It builds a map figure entirely
// from local files, so it needs a readable project config directory but no
// running server.
func NewRenderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build a map figure locally and write its JSON",
		Long: "render loads the named project's configuration, reads the scenario file,\n" +
			"and writes the plotly figure JSON to stdout or --out.  --path accepts a\n" +
			"scenario name or a file path; it defaults to the project's first scenario.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Project, "project", "p", "", "project name (required)")
	f.StringVarP(&opts.Y, "y", "y", "", "column to plot (required)")
	f.StringVar(&opts.Path, "path", "", "scenario name or file path (default: first scenario)")
	f.StringVar(&opts.Path2, "path2", "", "comparison scenario for difference columns")
	f.StringVar(&opts.Out, "out", "", "write figure JSON to this file instead of stdout")
	f.StringVar(&opts.Basemap, "basemap", "", "mapbox basemap style")
	f.StringVar(&opts.Color, "color", "", "colorscale name")
	f.IntVar(&opts.PointSize, "point-size", 0, "marker size in px")
	f.StringVar(&opts.MapFunction, "map-function", "", "derived map behavior (demand-prefixed functions overlay demand nodes)")
	f.Float64Var(&opts.YMin, "ymin", 0, "colorbar lower bound (overrides the project scale)")
	f.Float64Var(&opts.YMax, "ymax", 0, "colorbar upper bound (overrides the project scale)")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("y")

	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	reader := tabular.NewSafeReader(nil, cliCtx.Logger)
	registry, err := project.NewRegistry(
		cliCtx.Config.Projects.ConfigDir,
		cliCtx.Config.Projects.DataDir,
		reader,
		cliCtx.Logger,
	)
	if err != nil {
		return fmt.Errorf("loading project configs: %w", err)
	}

	cfg, err := registry.Get(opts.Project)
	if err != nil {
		return err
	}

	path, err := resolveScenarioPath(ctx, cfg, opts.Path)
	if err != nil {
		return err
	}
	path2 := ""
	if opts.Path2 != "" {
		if path2, err = resolveScenarioPath(ctx, cfg, opts.Path2); err != nil {
			return err
		}
	}

	viewOpts := mapview.Options{
		Basemap:     opts.Basemap,
		Color:       opts.Color,
		PointSize:   opts.PointSize,
		MapFunction: opts.MapFunction,
	}
	if cmd.Flags().Changed("ymin") {
		viewOpts.UserYMin = &opts.YMin
	}
	if cmd.Flags().Changed("ymax") {
		viewOpts.UserYMax = &opts.YMax
	}

	service := mapview.NewService(registry, tabular.Reader{}, nil, cliCtx.Logger, nil)
	result, err := service.BuildMap(ctx, &mapview.MapRequest{
		Signal: signal.Signal{
			Path:    path,
			Path2:   path2,
			Y:       opts.Y,
			Project: opts.Project,
		},
		Options: viewOpts,
	})
	if err != nil {
		return fmt.Errorf("building map: %w", err)
	}

	data, err := json.MarshalIndent(result.Figure, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding figure: %w", err)
	}
	data = append(data, '\n')

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.Out, err)
		}
		PrintSuccess(cmd, fmt.Sprintf("wrote %s (%s)", opts.Out, result.Title))
		return nil
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// resolveScenarioPath turns a --path argument into a scenario file path.  A
// bare scenario name resolves through the project's file table, anything
// else passes through as a literal path, and an empty argument picks the
// project's first scenario.
func resolveScenarioPath(ctx context.Context, cfg *project.Config, arg string) (string, error) {
	files, err := cfg.Files(ctx)
	if err != nil {
		return "", err
	}

	if arg != "" {
		if p, ok := files[arg]; ok {
			return p, nil
		}
		return arg, nil
	}

	scenarios, err := cfg.Scenarios(ctx)
	if err != nil {
		return "", err
	}
	if len(scenarios) == 0 {
		return "", errors.NotFound(fmt.Sprintf("project %q has no scenario files", cfg.Name))
	}
	return files[scenarios[0]], nil
}
