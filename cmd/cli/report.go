package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipamtools/ipamdrift/internal/audit"
	"github.com/ipamtools/ipamdrift/internal/config"
	"github.com/ipamtools/ipamdrift/internal/errors"
	"github.com/ipamtools/ipamdrift/internal/logging"
	"github.com/ipamtools/ipamdrift/internal/report"
	"github.com/ipamtools/ipamdrift/internal/wapi"
)

var (
	reportFormat    string
	reportFile      string
	reportNotInIPAM bool
	reportPageSize  int
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report discovered networks and their IPAM status",
	Long: `Retrieve the discovered-device inventory from the grid manager, flatten
the subnets those devices were observed on, and report each subnet with an
associated device name and whether the subnet is registered in IPAM.

File output (--file) is always CSV; --format controls display output.`,
	Example: `  ipamdrift report
  ipamdrift report --format csv
  ipamdrift report --not-in-ipam --file missing.csv
  ipamdrift report --page-size 500`,
	Run: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFormat, "format", "F", "",
		"Report display format: csv, table (default from config)")
	reportCmd.Flags().StringVarP(&reportFile, "file", "f", "",
		"Write CSV report to file instead of stdout")
	reportCmd.Flags().BoolVarP(&reportNotInIPAM, "not-in-ipam", "n", false,
		"Report only networks that are not in IPAM")
	reportCmd.Flags().IntVarP(&reportPageSize, "page-size", "p", 0,
		"Page size for retrieving discovered devices (default from config)")

	if err := reportCmd.RegisterFlagCompletionFunc("format", completeReportFormats); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to register completion for format flag: %v\n", err)
	}
}

func runReport(cmd *cobra.Command, args []string) {
	withClientOrExit(func(client *wapi.Client, cfg *config.Config) {
		// Resolve effective settings: flags override config.
		format := cfg.Report.Format
		if reportFormat != "" {
			format = reportFormat
		}
		pageSize := cfg.Report.PageSize
		if reportPageSize > 0 {
			pageSize = reportPageSize
		}
		outFile := cfg.Report.File
		if reportFile != "" {
			outFile = reportFile
		}
		notInIPAMOnly := reportNotInIPAM || cfg.Report.NotInIPAMOnly

		// Validate the format before any network I/O.
		parsedFormat, err := report.ParseFormat(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		started := time.Now()

		devices, err := client.FetchDevices(context.Background(), pageSize)
		if err != nil {
			if !errors.IsPartial(err) {
				fmt.Fprintf(os.Stderr, "Error retrieving discovered devices: %v\n", err)
				os.Exit(1)
			}
			// Partial result: report what was retrieved.
			fmt.Fprintf(os.Stderr, "Warning: %v; reporting retrieved devices\n", err)
		}

		records := audit.Flatten(devices)
		if notInIPAMOnly {
			records = audit.NotInIPAM(records)
		}

		summary := audit.Summarize(records)
		logging.InfoReport("Report assembled",
			"devices", len(devices),
			"networks", summary.Total,
			"not_in_ipam", summary.NotInIPAM)

		if outFile != "" {
			if err := report.WriteFile(outFile, records); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Report written to %s (%d networks)\n", outFile, len(records))
		} else {
			if err := report.Write(os.Stdout, parsedFormat, records); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
				os.Exit(1)
			}
		}

		logging.InfoReport("Run complete", "elapsed", time.Since(started).String())
	})
}

// completeReportFormats provides shell completion for the format flag.
func completeReportFormats(cmd *cobra.Command, args []string, toComplete string) (
	[]string, cobra.ShellCompDirective) {
	return []string{string(report.FormatCSV), string(report.FormatTable)},
		cobra.ShellCompDirectiveNoFileComp
}
