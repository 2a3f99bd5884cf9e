package cli

import (
	"fmt"
	"os"

	"github.com/ipamtools/ipamdrift/internal/config"
	"github.com/ipamtools/ipamdrift/internal/wapi"
)

// ClientOperation represents a function that operates on a WAPI client.
type ClientOperation func(*wapi.Client, *config.Config) error

// withClient executes the given operation with a configured WAPI client.
// This is the preferred method for operations that can handle errors gracefully.
func withClient(operation ClientOperation) error {
	// Resolve configuration: file plus environment overrides
	cfg, err := loadEffectiveConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := wapi.NewClient(&cfg.Grid)
	if err != nil {
		return fmt.Errorf("error creating WAPI client: %w", err)
	}

	// Execute the operation
	return operation(client, cfg)
}

// withClientOrExit executes the given operation with a configured WAPI client
// and exits the program if any errors occur. This is suitable for CLI
// commands that should terminate on connection or configuration errors.
func withClientOrExit(operation func(*wapi.Client, *config.Config)) {
	err := withClient(func(client *wapi.Client, cfg *config.Config) error {
		operation(client, cfg)
		return nil
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nTo configure the grid connection, create a config.yaml:\n")
		fmt.Fprintf(os.Stderr, "  ipamdrift config init\n")
		os.Exit(1)
	}
}
