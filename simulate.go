package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coverage-sim/internal/calculator"
	"coverage-sim/internal/dataset"
	"coverage-sim/internal/eligibility"
	"coverage-sim/internal/export"
	"coverage-sim/internal/filter"
	"coverage-sim/internal/models"
	"coverage-sim/internal/simulator"
)

var (
	simCustomers   string
	simProviders   string
	simPrincipals  []string
	simCompetitors []string
	simRadius      float64
	simMode        string
	simDistance    string
	simOutDir      string
	simSegments    []string
	simZones       []string
	simMaxPoints   int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one coverage simulation from files",
	Long: "Loads the customer and provider tables, runs the simulation for the given principals and prints " +
		"the summary. With --out-dir the customer and provider exports, map layers and xlsx report are written too.",
	RunE: func(cmd *cobra.Command, args []string) error {
		customers, err := dataset.LoadCustomers(simCustomers, dataset.Options{ReclassifyCustomers: cfg.Dataset.ReclassifyCustomers})
		if err != nil {
			return err
		}
		providers, err := dataset.LoadProviders(simProviders)
		if err != nil {
			return err
		}

		f := filter.Filters{Segments: simSegments, Zones: simZones}
		snap := simulator.Snapshot{Customers: f.Customers(customers), Providers: providers}

		p := simulator.Params{
			Principals:           simPrincipals,
			ActiveCompetitors:    simCompetitors,
			AllCompetitorsActive: len(simCompetitors) == 0,
			RadiusKM:             cfg.Simulation.RadiusKM,
			Mode:                 eligibility.Mode(cfg.Simulation.Mode),
			Distance:             calculator.Method(cfg.Simulation.Distance),
		}
		if cmd.Flags().Changed("radius") {
			p.RadiusKM = simRadius
		}
		if simMode != "" {
			p.Mode = eligibility.Mode(simMode)
		}
		if simDistance != "" {
			p.Distance = calculator.Method(simDistance)
		}

		engine := simulator.NewEngine(
			simulator.WithWorkers(cfg.Simulation.Workers),
			simulator.WithTimeout(cfg.Simulation.Timeout()),
		)
		res, err := engine.Compute(cmd.Context(), snap, p)
		if err != nil {
			return err
		}

		printResult(cmd.OutOrStdout(), res)

		if simOutDir == "" {
			return nil
		}
		return writeOutputs(simOutDir, res)
	},
}

func printResult(out io.Writer, res *simulator.Result) {
	if res.Empty {
		fmt.Fprintln(out, "no principal workshop selected")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "customers in radius\t%d\n", res.Summary.InRadius)
	fmt.Fprintf(w, "served by principal\t%d\n", res.Summary.Principal)
	fmt.Fprintf(w, "served by competitors\t%d\n", res.Summary.Competitor)
	fmt.Fprintf(w, "%s\t%d\n", models.Unserved, res.Summary.Unserved)
	fmt.Fprintf(w, "competitor candidates\t%d (%d active)\n", len(res.Candidates), len(res.Active))
	w.Flush()

	for _, t := range res.Tables() {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tTOTAL\tPRINCIPAL\tCOMPETITOR\n", t.Dimension)
		for _, r := range t.Rows {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.Value, r.Principal+r.Competitor, r.Principal, r.Competitor)
		}
		w.Flush()
	}
}

func writeOutputs(dir string, res *simulator.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "simulate: create output dir")
	}

	providers := make([]models.Provider, 0, len(res.Principals)+len(res.Candidates))
	providers = append(providers, res.Principals...)
	providers = append(providers, res.Candidates...)

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"customers.csv", func(w io.Writer) error { return export.WriteCustomersCSV(w, res.Customers, res.Assignments) }},
		{"providers.csv", func(w io.Writer) error { return export.WriteProvidersCSV(w, providers) }},
		{"layers.geojson", func(w io.Writer) error { return export.WriteGeoJSON(w, res, simMaxPoints) }},
		{"report.xlsx", func(w io.Writer) error { return export.WriteReport(w, res) }},
	}
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(path, o.write); err != nil {
			return err
		}
		zap.L().Info("simulate: wrote output", zap.String("path", path))
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "simulate: create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return eris.Wrapf(err, "simulate: write %s", path)
	}
	return eris.Wrapf(f.Close(), "simulate: close %s", path)
}

func init() {
	simulateCmd.Flags().StringVar(&simCustomers, "customers", "", "customer table, csv or xlsx (required)")
	simulateCmd.Flags().StringVar(&simProviders, "providers", "", "provider table, csv or xlsx (required)")
	simulateCmd.Flags().StringSliceVar(&simPrincipals, "principal", nil, "principal workshop name (repeatable)")
	simulateCmd.Flags().StringSliceVar(&simCompetitors, "competitor", nil, "active competitor name (repeatable, default all in radius)")
	simulateCmd.Flags().Float64Var(&simRadius, "radius", 0, "radius in km (default from config)")
	simulateCmd.Flags().StringVar(&simMode, "mode", "", "eligibility mode: strict, lenient or service_set (default from config)")
	simulateCmd.Flags().StringVar(&simDistance, "distance", "", "distance method: haversine or vincenty (default from config)")
	simulateCmd.Flags().StringVar(&simOutDir, "out-dir", "", "write exports to this directory")
	simulateCmd.Flags().StringSliceVar(&simSegments, "segment", nil, "keep only these customer segments")
	simulateCmd.Flags().StringSliceVar(&simZones, "zone", nil, "keep only customers in these zones")
	simulateCmd.Flags().IntVar(&simMaxPoints, "max-points", 5000, "cap on customer points in the map layers (0 = all)")
	_ = simulateCmd.MarkFlagRequired("customers")
	_ = simulateCmd.MarkFlagRequired("providers")
	rootCmd.AddCommand(simulateCmd)
}
