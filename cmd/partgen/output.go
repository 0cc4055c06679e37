package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/printparts/pkg/config"
	"github.com/chazu/printparts/pkg/host"
	"github.com/goccy/go-yaml"
)

// report is the outcome of building one part or script.
type report struct {
	Part     string             `json:"part" yaml:"part"`
	Params   map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
	Document *host.Document     `json:"document" yaml:"document"`
}

// writeReports renders reports in the given output format.
func writeReports(w io.Writer, format string, reports []report) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w, yaml.Indent(2))
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatTable:
		return writeTable(w, reports)
	}
	return config.CheckFormat(format)
}

func writeTable(w io.Writer, reports []report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tSOLID\tKIND\tEDGES\tBOUNDS\tLINEAGE")
	for _, r := range reports {
		for _, p := range r.Document.Parts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\t%s\n", r.Part, p.Name, p.Kind, p.Edges, p.Bounds, p.Lineage)
		}
		for _, msg := range r.Document.Warnings {
			fmt.Fprintf(tw, "%s\twarning: %s\t\t\t\t\n", r.Part, msg)
		}
	}
	return tw.Flush()
}
