package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"voxreport/adapters/nifti"
	"voxreport/adapters/sqlite"
	"voxreport/app"
	"voxreport/domain/report"
	"voxreport/domain/table"
	"voxreport/internal"
	"voxreport/internal/config"
	"voxreport/internal/subload"
)

func main() {
	// Best-effort .env loading; environment wins over a missing file.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "voxreport",
		Short: "Batch summary statistics over volumetric statistical maps",
	}

	rootCmd.AddCommand(
		newSignalCmd(),
		newTimecourseCmd(),
		newRunsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// batchFlags are shared by the two statistic subcommands.
type batchFlags struct {
	template      string
	substitutions string
	saveAs        string
	workers       int
	ledger        string
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.template, "template", "", "file-path template with {field} placeholders (required)")
	cmd.Flags().StringVar(&f.substitutions, "substitutions", "", "CSV file of substitution records, header = field names (required)")
	cmd.Flags().StringVar(&f.saveAs, "save-as", "", "persist the result table (.csv or .xlsx)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent units (default: available parallelism - 2)")
	cmd.Flags().StringVar(&f.ledger, "ledger", "", "SQLite run-ledger path (default: VOXREPORT_DB)")
	cmd.MarkFlagRequired("template")
	cmd.MarkFlagRequired("substitutions")
}

func newSignalCmd() *cobra.Command {
	var flags batchFlags
	var maskPath string

	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Mean and median -log10 of one p-value map per record",
		Long: `Compute the mean and median inverse logarithm of a batch of p-value maps.

A region-of-interest mask is almost always required: statistic images
populate the whole circumscribed space around the structure of interest and
commonly assign null values to the background, which would bias the
inverse-logarithm evaluation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), flags, report.RunSignal, maskPath)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&maskPath, "mask", "", "region-of-interest mask map on the same grid")
	return cmd
}

func newTimecourseCmd() *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "timecourse",
		Short: "Per-timepoint mean/median/mode/stddev of one 4D series per record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), flags, report.RunSeries, "")
		},
	}
	flags.register(cmd)
	return cmd
}

func runBatch(ctx context.Context, flags batchFlags, kind report.RunKind, maskPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flags.workers > 0 {
		cfg.Batch.Workers = flags.workers
	}
	if flags.ledger != "" {
		cfg.Paths.DatabasePath = flags.ledger
	}
	logger := internal.NewDefaultLogger()

	records, err := subload.LoadCSV(flags.substitutions)
	if err != nil {
		return err
	}
	logger.Info("[voxreport] %d substitution records, %d workers", len(records), cfg.Batch.Workers)

	service := app.NewReportService(nifti.NewReader(), app.Options{
		Workers: cfg.Batch.Workers,
		Logger:  logger,
	})

	run := report.NewRun(kind, flags.template, maskPath)
	var tbl *table.Table
	switch kind {
	case report.RunSignal:
		tbl, err = service.SignificantSignal(ctx, flags.template, records, maskPath)
	case report.RunSeries:
		tbl, err = service.BaseMetrics(ctx, flags.template, records)
	}
	if err != nil {
		return err
	}
	run.Finish(len(records), tbl.NumRows())

	if flags.saveAs != "" {
		if err := tbl.Save(flags.saveAs); err != nil {
			return err
		}
		logger.Info("[voxreport] result table saved to %s", flags.saveAs)
	}

	if cfg.Paths.DatabasePath != "" {
		repo, err := sqlite.Open(cfg.Paths.DatabasePath)
		if err != nil {
			return err
		}
		if err := repo.SaveRun(ctx, run, tbl); err != nil {
			return err
		}
		logger.Info("[voxreport] run %s recorded in ledger", run.ID)
	}

	printTable(tbl)
	return nil
}

func newRunsCmd() *cobra.Command {
	var ledger string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded batch runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ledger != "" {
				cfg.Paths.DatabasePath = ledger
			}
			if cfg.Paths.DatabasePath == "" {
				return fmt.Errorf("no ledger configured: pass --ledger or set VOXREPORT_DB")
			}
			repo, err := sqlite.Open(cfg.Paths.DatabasePath)
			if err != nil {
				return err
			}
			runs, err := repo.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Printf("%s  %-18s  units=%-4d rows=%-5d  %s\n",
					r.ID, r.Kind, r.Units, r.Rows, r.Template)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ledger, "ledger", "", "SQLite run-ledger path (default: VOXREPORT_DB)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func printTable(tbl *table.Table) {
	for i, c := range tbl.Columns() {
		if i > 0 {
			fmt.Print("\t")
		}
		fmt.Print(c)
	}
	fmt.Println()
	for i := 0; i < tbl.NumRows(); i++ {
		for j, cell := range tbl.Row(i) {
			if j > 0 {
				fmt.Print("\t")
			}
			fmt.Print(cell)
		}
		fmt.Println()
	}
}
