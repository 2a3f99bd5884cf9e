package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ipamtools/ipamdrift/internal/config"
)

var configInitForce bool

// configCmd represents the config command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ipamdrift configuration",
	Long: `Inspect the effective configuration or write a starter config file.

Credentials never appear in 'config show' output.`,
	Example: `  ipamdrift config show
  ipamdrift config init`,
}

// configShowCmd represents the config show command.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run:   runConfigShow,
}

// configInitCmd represents the config init command.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a config file with default values to the path given by --config
(./config.yaml by default). Fill in the grid host and credentials afterwards.`,
	Run: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"Overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadEffectiveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Never print credentials.
	redacted := *cfg
	if redacted.Grid.Password != "" {
		redacted.Grid.Password = "<redacted>"
	}

	data, err := yaml.Marshal(&redacted)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("# config file: %s\n%s", getConfigFilePath(), data)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path := getConfigFilePath()

	if _, err := os.Stat(path); err == nil && !configInitForce {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.Grid.Host = "gm.example.net"
	cfg.Grid.Username = "admin"

	if err := cfg.Save(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Config written to %s\n", path)
	fmt.Println("Edit the grid section with your grid manager host and credentials.")
}
