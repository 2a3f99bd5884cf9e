// Package cli implements the Cobra-based command-line interface for
// ipamdrift: reporting on discovered networks, dumping the discovered-device
// inventory, and managing the tool's configuration.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ipamtools/ipamdrift/internal/config"
	"github.com/ipamtools/ipamdrift/internal/logging"
)

const (
	defaultConfigFile = "config.yaml"
)

var (
	cfgFile string
	verbose bool
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ipamdrift",
	Short: "Discovered-network IPAM audit tool",
	Long: `ipamdrift queries a grid manager's WAPI for devices found by network
discovery, extracts the subnets those devices reside on, and reports which
of them are not yet registered as managed networks in IPAM.`,
	Version: getVersion(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match. Config keys map to env
	// names with dots replaced by underscores, so grid.host becomes
	// IPAMDRIFT_GRID_HOST.
	viper.AutomaticEnv()
	viper.SetEnvPrefix("IPAMDRIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults for common configuration
	setConfigDefaults()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	// Initialize structured logging after config is loaded
	initLogging()
}

// setConfigDefaults registers every config key with viper. Registration
// matters beyond the default values: viper only surfaces environment
// overrides for keys it knows about.
func setConfigDefaults() {
	defaults := config.Default()

	// Grid connection configuration
	viper.SetDefault("grid.host", defaults.Grid.Host)
	viper.SetDefault("grid.wapi_version", defaults.Grid.WAPIVersion)
	viper.SetDefault("grid.username", defaults.Grid.Username)
	viper.SetDefault("grid.password", defaults.Grid.Password)
	viper.SetDefault("grid.verify_tls", defaults.Grid.VerifyTLS)
	viper.SetDefault("grid.timeout", defaults.Grid.Timeout)

	// Report configuration
	viper.SetDefault("report.page_size", defaults.Report.PageSize)
	viper.SetDefault("report.format", defaults.Report.Format)
	viper.SetDefault("report.file", defaults.Report.File)
	viper.SetDefault("report.not_in_ipam_only", defaults.Report.NotInIPAMOnly)

	// Logging configuration
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.output", defaults.Logging.Output)
}

// loadEffectiveConfig builds the effective configuration from viper's merged
// view: defaults, then the config file, then IPAMDRIFT_* environment
// variables (highest precedence).
func loadEffectiveConfig() (*config.Config, error) {
	cfg := config.Default()
	err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return nil, fmt.Errorf("error resolving configuration: %w", err)
	}
	return cfg, nil
}

// getConfigFilePath returns the config file to load, honoring the --config flag.
func getConfigFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigFile
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	// Resolve the effective config so env overrides reach logging too
	cfg, err := loadEffectiveConfig()
	if err != nil {
		// If config loading fails, use default logging
		logger := logging.NewDefault()
		logging.SetDefault(logger)
		return
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	// Convert config logging to our logging config
	logConfig := logging.Config{
		Level:     logging.LogLevel(level),
		Format:    logging.LogFormat(cfg.Logging.Format),
		Output:    cfg.Logging.Output,
		AddSource: level == "debug",
	}

	// Create logger
	logger, err := logging.New(logConfig)
	if err != nil {
		// Fall back to default if creation fails
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	// Set as default logger
	logging.SetDefault(logger)
}
