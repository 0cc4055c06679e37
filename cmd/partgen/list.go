package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/chazu/printparts/pkg/parts"
	"github.com/spf13/cobra"
)

var listDefaults bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in parts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeList(cmd.OutOrStdout(), listDefaults)
	},
}

func init() {
	listCmd.Flags().BoolVar(&listDefaults, "defaults", false, "show each part's parameters and defaults")
	rootCmd.AddCommand(listCmd)
}

func writeList(w io.Writer, defaults bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tDESCRIPTION")
	for _, name := range parts.Names() {
		s, err := parts.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
		if !defaults {
			continue
		}
		kv := make([]string, 0, len(s.Defaults))
		for _, k := range s.Defaults.Keys() {
			kv = append(kv, fmt.Sprintf("%s=%g", k, s.Defaults[k]))
		}
		fmt.Fprintf(tw, "\t  %s\n", strings.Join(kv, " "))
	}
	return tw.Flush()
}
