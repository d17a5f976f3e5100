package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CharlesDeJager/dprof/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export a saved report in another format",
	Long: `Reads a report previously written by the profile command (JSON) and
renders it again in the requested format without re-profiling the source.`,
	Example: `  dprof export --in report.json --format html --out report.html`,
	RunE:    runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(exportInFile)
	if err != nil {
		return fmt.Errorf("failed to open report %s: %w", exportInFile, err)
	}
	defer f.Close()

	report, err := export.LoadJSON(f)
	if err != nil {
		return err
	}

	path, err := export.New(logger).Export(report, exportFormat, exportOutFile)
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Printf("Report written to: %s\n", path)
	return nil
}

var (
	exportInFile  string
	exportFormat  string
	exportOutFile string
)

func init() {
	exportCmd.Flags().StringVarP(&exportInFile, "in", "i", "", "Path of the saved JSON report (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatHTML, "Target format: json, csv, or html")
	exportCmd.Flags().StringVarP(&exportOutFile, "out", "o", "", "Output file path (default: data_profile_<timestamp>.<format>)")
	_ = exportCmd.MarkFlagRequired("in")
}
