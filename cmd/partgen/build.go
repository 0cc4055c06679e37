package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/chazu/printparts/pkg/config"
	"github.com/chazu/printparts/pkg/host"
	"github.com/chazu/printparts/pkg/parts"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	buildParams string
	buildFormat string
	buildAll    bool
	buildMeshes bool
)

var buildCmd = &cobra.Command{
	Use:   "build [part...]",
	Short: "Build built-in parts and report their solids",
	Long: `Build runs each named part script in its own workspace, replays the
construction through the geometry kernel and reports the bounding box, edge
count and lineage of every part it delivers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if buildAll {
			names = parts.Names()
		}
		if len(names) == 0 {
			return errors.New("no parts named; pass part names or --all")
		}

		format := settings.OutputFormat
		if buildFormat != "" {
			format = buildFormat
		}
		if err := config.CheckFormat(format); err != nil {
			return err
		}

		var overrides map[string]float64
		if buildParams != "" {
			p, err := config.LoadParams(buildParams)
			if err != nil {
				return err
			}
			overrides = p
		}

		h := host.NewHeadless(newKernel(),
			host.WithLogger(slog.Default()),
			host.WithStrictNames(settings.Strict),
			host.WithMeshes(buildMeshes),
		)
		reports, err := buildParts(cmd.Context(), h, names, overrides, buildAll)
		if err != nil {
			return err
		}
		return writeReports(cmd.OutOrStdout(), format, reports)
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildParams, "params", "", "parameter override file (.yaml, .yml or .hcl)")
	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", "", "output format: table, json, yaml (default from config)")
	buildCmd.Flags().BoolVar(&buildAll, "all", false, "build every built-in part")
	buildCmd.Flags().BoolVar(&buildMeshes, "meshes", false, "tessellate parts and include meshes in json and yaml output")
	rootCmd.AddCommand(buildCmd)
}

// buildParts builds each part in parallel, one workspace per part, and
// returns the reports in the order of names. When shared is set the
// overrides are offered to every part and each takes only the names it
// declares.
func buildParts(ctx context.Context, h *host.Headless, names []string, overrides map[string]float64, shared bool) ([]report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	names = unique(names)
	reports := make([]report, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			s, err := parts.Lookup(name)
			if err != nil {
				return err
			}
			ov := overrides
			if shared {
				ov = declared(s.Defaults, overrides)
			}

			ws := h.CreateOrResetWorkspace(name)
			res, err := parts.Build(ws, name, ov)
			if err != nil {
				return err
			}
			for _, sol := range res.Solids {
				if err := h.Register(ws, sol); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			doc, err := h.Recompute(ctx, ws)
			if err != nil {
				return err
			}
			reports[i] = report{Part: name, Params: res.Params, Document: doc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// declared keeps the overrides whose names appear in defaults.
func declared(defaults parts.Params, overrides map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for k, v := range overrides {
		if _, ok := defaults[k]; ok {
			out[k] = v
		}
	}
	return out
}

// unique drops repeated names, keeping the first of each.
func unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
