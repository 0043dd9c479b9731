// Command evdctl inspects event files and manages the event store offline.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hepevd/internal/codec"
	"hepevd/internal/config"
	"hepevd/internal/domain"
)

var (
	configPath string
	dbPath     string

	// cfg is loaded before every command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "evdctl",
	Short: "Inspect event display files and the stored event library",
	Long: `evdctl works on the same event files and database as the hepevd server.

Examples:
  evdctl tree event.json
  evdctl resolve event.json --dim 2D --toggle charge --type W
  evdctl import event.yaml
  evdctl list
  evdctl export 3f2a... --format yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, _, err = config.LoadFromPath(configPath)
		} else {
			cfg, _, err = config.Load()
		}
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: search $HEPEVD_CONFIG, ./hepevd.yaml, ~/.config/hepevd)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(treeCmd, resolveCmd, importCmd, listCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// readEvent decodes and validates an event file, choosing the codec by
// extension
func readEvent(path string) (*domain.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ev, err := codec.Decode(codec.ForPath(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return ev, nil
}
