package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CharlesDeJager/dprof/internal/export"
	"github.com/CharlesDeJager/dprof/internal/profiler"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile tables and export a data quality report",
	Long: `Fetches the selected tables, profiles every column (statistics, semantic
type, value patterns, quality score), and writes the report in the chosen
format. Tables that fail to load are recorded in the report instead of
aborting the run.`,
	Example: `  dprof profile --file ./orders.csv --format html
  dprof profile --dialect postgres --host localhost --port 5432 --username user --password pass --database mydb --tables orders,customers --format json --out report.json`,
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	src, err := setupSource()
	if err != nil {
		return err
	}
	defer src.Close()

	ctx := cmd.Context()

	tables := splitTables(tableList)
	if len(tables) == 0 {
		tables, err = src.Tables(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}
	}
	if len(tables) == 0 {
		return fmt.Errorf("no tables to profile")
	}

	svc, err := profiler.NewService(src, profiler.Config{
		MaxConcurrency:    cfg.MaxConcurrency,
		PatternSampleSize: cfg.SampleSize,
		MaxPatterns:       cfg.MaxPatterns,
		TopValues:         cfg.TopValues,
		TopDates:          cfg.TopDates,
	}, logger)
	if err != nil {
		return err
	}

	report, err := svc.Profile(ctx, tables, cfg.DefaultRowCap, func(percent int) {
		logger.Info("profiling progress", zap.Int("percent", percent))
	})
	if err != nil {
		return err
	}

	path, err := export.New(logger).Export(report, outputFormat, outputFile)
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Printf("Report written to: %s\n", path)
	return nil
}

func splitTables(list string) []string {
	var tables []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			tables = append(tables, name)
		}
	}
	return tables
}

var (
	tableList    string
	outputFormat string
	outputFile   string
)

func init() {
	profileCmd.Flags().StringVarP(&tableList, "tables", "t", "", "Comma-separated tables to profile (default: all)")
	profileCmd.Flags().StringVarP(&outputFormat, "format", "f", export.FormatJSON, "Report format: json, csv, or html")
	profileCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file path (default: data_profile_<timestamp>.<format>)")
}
