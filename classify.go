package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"coverage-sim/internal/taxonomy"
)

var classifyRules bool

var classifyCmd = &cobra.Command{
	Use:   "classify [service text]",
	Short: "Show the service categories a text maps to",
	Args: func(cmd *cobra.Command, args []string) error {
		if classifyRules {
			return nil
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()

		if classifyRules {
			fmt.Fprintln(w, "LEVEL\tCATEGORY\tKEYWORDS")
			for _, r := range taxonomy.L1Rules() {
				fmt.Fprintf(w, "1\t%s\t%s\n", r.Category, strings.Join(r.Keywords, ", "))
			}
			for _, r := range taxonomy.L2Rules() {
				fmt.Fprintf(w, "2\t%s\t%s\n", r.Category, strings.Join(r.Keywords, ", "))
			}
			return nil
		}

		text := strings.Join(args, " ")
		cls := taxonomy.Classify(text)
		fmt.Fprintln(w, "TEXT\tLEVEL 1\tLEVEL 2")
		fmt.Fprintf(w, "%s\t%s\t%s\n", text, cls.L1, cls.L2)
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyRules, "rules", false, "list the keyword rules in priority order")
	rootCmd.AddCommand(classifyCmd)
}
