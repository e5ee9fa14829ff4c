package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stratvault/internal/manage"
	"stratvault/internal/ziputil"
)

var exportArchive string

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "version history of a tracked file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := svc.Info(args[0])
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Printf("no version history for %s\n", args[0])
			return nil
		}
		renderVersionHistory(recs)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "vault totals and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := svc.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("snapshots: %d (%s)\n", st.TotalSnapshots, manage.FormatSize(st.TotalSize))
		fmt.Printf("last 24h:  %d\n", st.LastDay)
		fmt.Printf("last 7d:   %d\n", st.LastWeek)
		for _, fc := range st.PerFile {
			fmt.Printf("  %3d  %s\n", fc.Count, fc.Path)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "full-text scan over snapshot contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := svc.Search(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%s (%s)\n", m.Snapshot.ID, m.Snapshot.Path)
			for _, ln := range m.Lines {
				fmt.Printf("  %4d: %s\n", ln.Number, ln.Text)
			}
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <target-dir>",
	Short: "bulk-copy all snapshots, sidecars, and a manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := svc.Export(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("exported %d snapshot(s), %s (id %s)\n",
			m.SnapshotCount, manage.FormatSize(m.TotalSizeBytes), m.ExportID)
		if exportArchive != "" {
			if err := ziputil.WriteDirArchive(exportArchive, args[0]); err != nil {
				return err
			}
			fmt.Printf("archive written: %s\n", exportArchive)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportArchive, "archive", "", "also write a deterministic zip of the export")
	rootCmd.AddCommand(infoCmd, statsCmd, searchCmd, exportCmd)
}
