// Package main provides the stratvault CLI: the two event hooks an editor
// host invokes around a change (backup, record) plus the management
// surface over the vault (list, restore, diff, clean, info, stats,
// search, export).
//
// Key design goals:
//   - Hooks complete before the host proceeds; a primary-artifact failure
//     exits non-zero, auxiliary bookkeeping degrades to warnings
//   - Distinct no-op signals (untracked path, unchanged content) exit zero
//     without pretending work happened
//   - Destructive operations (restore over an existing file, purge) are
//     gated behind explicit flags
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"stratvault/internal/config"
	"stratvault/internal/engine"
	"stratvault/internal/manage"
	"stratvault/internal/version"
)

const (
	toolName    = "stratvault"
	toolVersion = "1.2.0"
)

var (
	flagConfig  string
	flagVault   string
	flagVerbose bool

	cfg *config.Config
	eng *engine.Engine
	svc *manage.Service
)

var rootCmd = &cobra.Command{
	Use:           toolName,
	Short:         "automatic snapshot and versioning layer for tracked strategy files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(log)

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagVault != "" {
			cfg.VaultDir = flagVault
		}
		eng = engine.New(cfg, log)
		svc = manage.NewService(eng.Store(), eng.Allocator(), log)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print tool version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", toolName, toolVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "stratvault.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&flagVault, "vault", "", "override the vault directory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// renderVersionHistory prints one line per recorded version event.
func renderVersionHistory(recs []version.Record) {
	for _, r := range recs {
		diffNote := r.DiffFile
		if diffNote == "" {
			diffNote = "(no diff artifact)"
		}
		fmt.Printf("v%-10s %-7s %s  %s\n", r.Version, r.ChangeType, r.Timestamp, diffNote)
	}
}
