package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zoobzio/bioquery"
)

// exampleQueries are shown by the examples command.
var exampleQueries = []string{
	"translate ATGGCGAATTACGTAGCT",
	"translate ATGGCGAATTACGTAGCT in frame 2",
	"reverse complement of ATGGCGAATTACGTAGCT",
	"find ORFs longer than 30 bp in the brca1 fragment",
	"what is the GC content of p53 with window 20",
	"search for GAATTC with 1 mismatch in ATGGAATTCGCGTTAGAATTGCAT",
	"show all six reading frames of test_dna",
	"find EcoRI and BamHI sites in GGAATTCCGGATCCAA",
	"sequence statistics for >seq1 sample read\nATGCGCGCATATATGCGC",
}

func newOperationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List supported operations and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs := bioquery.Operations()
			if a.output == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), specs)
			}
			w := cmd.OutOrStdout()
			for _, spec := range specs {
				fmt.Fprintf(w, "%s\n  %s\n", spec.Operation, spec.Description)
				for _, p := range spec.Params {
					def := ""
					switch {
					case p.Required:
						def = " (required)"
					case p.Default != nil:
						def = fmt.Sprintf(" (default %v)", p.Default)
					}
					fmt.Fprintf(w, "    %s: %s%s\n", p.Name, p.Description, def)
				}
			}
			return nil
		},
	}
}

func newEnzymesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enzymes",
		Short: "List the built-in restriction enzymes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enzymes := bioquery.Enzymes()
			if a.output == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), enzymes)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENZYME\tSITE\tCUT\tENDS")
			for _, e := range enzymes {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Name, e.Site, e.Cut, e.Ends())
			}
			return tw.Flush()
		},
	}
}

func newExamplesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show example queries and built-in reference sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			refs := bioquery.References()
			if a.output == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"queries":    exampleQueries,
					"references": refs,
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Example queries:")
			for _, q := range exampleQueries {
				fmt.Fprintf(w, "  bioquery query %q\n", q)
			}
			fmt.Fprintln(w, "\nReference sequences (usable by name):")
			for _, r := range refs {
				fmt.Fprintf(w, "  %-16s %d nt\n", r.Name, len(r.Residues))
			}
			return nil
		},
	}
}
