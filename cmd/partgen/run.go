package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/printparts/pkg/config"
	"github.com/chazu/printparts/pkg/engine"
	"github.com/chazu/printparts/pkg/host"
	"github.com/chazu/printparts/pkg/kernel"
	"github.com/spf13/cobra"
)

var (
	runParams string
	runFormat string
	runMeshes bool
)

var runCmd = &cobra.Command{
	Use:   "run <script.lisp>",
	Short: "Evaluate a Lisp construction file and report its solids",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := settings.OutputFormat
		if runFormat != "" {
			format = runFormat
		}
		if err := config.CheckFormat(format); err != nil {
			return err
		}
		var params map[string]float64
		if runParams != "" {
			p, err := config.LoadParams(runParams)
			if err != nil {
				return err
			}
			params = p
		}

		path := args[0]
		r, evalErrs, err := runScript(cmd.Context(), newKernel(), path, params)
		if err != nil {
			return err
		}
		if len(evalErrs) > 0 {
			errs := make([]error, len(evalErrs))
			for i, e := range evalErrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s\n", path, e.Line, e.Col, e.Message)
				errs[i] = e
			}
			return errors.Join(errs...)
		}
		return writeReports(cmd.OutOrStdout(), format, []report{r})
	},
}

func init() {
	runCmd.Flags().StringVar(&runParams, "params", "", "parameter file bound to (param ...) calls (.yaml, .yml or .hcl)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "output format: table, json, yaml (default from config)")
	runCmd.Flags().BoolVar(&runMeshes, "meshes", false, "tessellate solids and include meshes in json and yaml output")
	rootCmd.AddCommand(runCmd)
}

// runScript evaluates the construction file at path and realizes the
// workspace it leaves behind. Script errors come back as EvalErrors; the
// error return is for failures outside the script.
func runScript(ctx context.Context, k kernel.Kernel, path string, params map[string]float64) (report, []engine.EvalError, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return report{}, nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	eng := engine.NewEngine(k,
		engine.WithLogger(slog.Default()),
		engine.WithStrictNames(settings.Strict),
	)
	res, err := eng.EvaluateParams(name, string(src), params)
	if err != nil {
		return report{}, nil, err
	}
	for _, w := range res.Warnings {
		slog.Warn(w.Message, "script", path)
	}
	if len(res.Errors) > 0 {
		return report{}, res.Errors, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	h := host.NewHeadless(k,
		host.WithLogger(slog.Default()),
		host.WithMeshes(runMeshes),
	)
	doc, err := h.Recompute(ctx, res.Workspace)
	if err != nil {
		return report{}, nil, err
	}
	return report{Part: name, Params: params, Document: doc}, nil, nil
}
