package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ipamtools/ipamdrift/internal/config"
	"github.com/ipamtools/ipamdrift/internal/errors"
	"github.com/ipamtools/ipamdrift/internal/wapi"
)

var (
	devicesOutput   string
	devicesPageSize int
)

// devicesCmd represents the devices command group.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Inspect the discovered-device inventory",
	Long: `Inspect the raw device records produced by the appliance's network
discovery scan, before any network flattening or IPAM classification.`,
	Example: `  ipamdrift devices list
  ipamdrift devices list --output json`,
}

// devicesListCmd represents the devices list command.
var devicesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List discovered devices",
	Long: `List all devices found by the network discovery scan with their
address, name, network view and observed subnet count.`,
	Example: `  ipamdrift devices list
  ipamdrift devices list --output json
  ipamdrift devices list --page-size 500`,
	Run: runDevicesList,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd)

	devicesListCmd.Flags().StringVarP(&devicesOutput, "output", "o", "table",
		"Output format: table, json")
	devicesListCmd.Flags().IntVarP(&devicesPageSize, "page-size", "p", 0,
		"Page size for retrieving discovered devices (default from config)")
}

func runDevicesList(cmd *cobra.Command, args []string) {
	// Reject a bad output format before any network I/O.
	if !validOutputFormat(devicesOutput) {
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q (valid: table, json)\n", devicesOutput)
		os.Exit(1)
	}

	withClientOrExit(func(client *wapi.Client, cfg *config.Config) {
		pageSize := cfg.Report.PageSize
		if devicesPageSize > 0 {
			pageSize = devicesPageSize
		}

		devices, err := client.FetchDevices(context.Background(), pageSize)
		if err != nil {
			if !errors.IsPartial(err) {
				fmt.Fprintf(os.Stderr, "Error retrieving discovered devices: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Warning: %v; listing retrieved devices\n", err)
		}

		if devicesOutput == "json" {
			displayDevicesJSON(devices)
		} else {
			displayDevicesTable(devices)
		}
	})
}

// validOutputFormat reports whether s names a supported listing format.
func validOutputFormat(s string) bool {
	return s == "table" || s == "json"
}

// displayDevicesTable displays devices in a table format.
func displayDevicesTable(devices []wapi.Device) {
	if len(devices) == 0 {
		fmt.Println("No discovered devices found")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Address", "Name", "Network View", "Subnets", "In IPAM")

	for i := range devices {
		device := &devices[i]

		inIPAM := 0
		for j := range device.NetworkInfos {
			if device.NetworkInfos[j].InIPAM() {
				inIPAM++
			}
		}

		_ = table.Append([]string{
			device.Address,
			device.Name,
			device.NetworkView,
			strconv.Itoa(len(device.NetworkInfos)),
			strconv.Itoa(inIPAM),
		})
	}

	_ = table.Render()

	fmt.Printf("\nSummary: %d discovered device(s)\n", len(devices))
}

// displayDevicesJSON displays devices in JSON format.
func displayDevicesJSON(devices []wapi.Device) {
	output := struct {
		Devices []wapi.Device `json:"devices"`
		Count   int           `json:"count"`
	}{
		Devices: devices,
		Count:   len(devices),
	}

	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}

	fmt.Println(string(jsonData))
}
