// Package report renders network audit records as CSV or a formatted table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ipamtools/ipamdrift/internal/audit"
	"github.com/ipamtools/ipamdrift/internal/errors"
)

// Format selects the report output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// csvHeader matches the column order used by every output format.
var csvHeader = []string{"network", "discovered device name", "in_ipam"}

// ParseFormat validates a format name from a flag or config file.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable:
		return FormatTable, nil
	default:
		return "", errors.NewReportError(errors.CodeFormatInvalid,
			fmt.Sprintf("unknown report format %q (valid: csv, table)", s))
	}
}

// Write renders records in the requested format.
func Write(w io.Writer, format Format, records []audit.NetworkRecord) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatTable:
		return WriteTable(w, records)
	default:
		return errors.NewReportError(errors.CodeFormatInvalid,
			fmt.Sprintf("unknown report format %q", format))
	}
}

// WriteCSV writes records as CSV, header included even when the record list
// is empty.
func WriteCSV(w io.Writer, records []audit.NetworkRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return errors.WrapReportError(errors.CodeReportWrite, "failed to write CSV header", err)
	}

	for _, record := range records {
		row := []string{
			record.Network,
			record.Device,
			strconv.FormatBool(record.InIPAM),
		}
		if err := writer.Write(row); err != nil {
			return errors.WrapReportError(errors.CodeReportWrite, "failed to write CSV row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.WrapReportError(errors.CodeReportWrite, "failed to flush CSV output", err)
	}

	return nil
}

// WriteTable renders records as a formatted table with a summary line.
func WriteTable(w io.Writer, records []audit.NetworkRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No networks found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Network", "Discovered Device Name", "In IPAM")

	for _, record := range records {
		inIPAM := "No"
		if record.InIPAM {
			inIPAM = "Yes"
		}
		if err := table.Append([]string{record.Network, record.Device, inIPAM}); err != nil {
			return errors.WrapReportError(errors.CodeReportWrite, "failed to append table row", err)
		}
	}

	if err := table.Render(); err != nil {
		return errors.WrapReportError(errors.CodeReportWrite, "failed to render table", err)
	}

	summary := audit.Summarize(records)
	fmt.Fprintf(w, "\nSummary: %d networks, %d in IPAM, %d not in IPAM\n",
		summary.Total, summary.InIPAM, summary.NotInIPAM)

	return nil
}

// WriteFile writes records as CSV to the named file. File output is always
// CSV regardless of the display format.
func WriteFile(path string, records []audit.NetworkRecord) error {
	file, err := os.Create(path) // #nosec G304 - path comes from the --file flag
	if err != nil {
		return errors.ErrReportWrite(path, err)
	}
	defer func() { _ = file.Close() }()

	if err := WriteCSV(file, records); err != nil {
		return errors.ErrReportWrite(path, err)
	}

	return nil
}
