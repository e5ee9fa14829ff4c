package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stratvault/internal/manage"
)

var (
	restoreTarget string
	restoreYes    bool
	cleanDays     int
	cleanForce    bool
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "list snapshots, most recent first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		snaps, err := svc.List(filter)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("no snapshots")
			return nil
		}
		for _, s := range snaps {
			fmt.Printf("%s  %8s  %s  %s\n",
				s.Timestamp, manage.FormatSize(s.Size), s.HashPrefix, manage.OriginalPath(s))
			fmt.Printf("  id: %s\n", s.ID())
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot-id>",
	Short: "restore a snapshot to its original location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := svc.Restore(args[0], restoreTarget, restoreYes)
		if err != nil {
			return err
		}
		fmt.Printf("restored %s -> %s\n", args[0], target)
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <snapshot-id-1> <snapshot-id-2>",
	Short: "unified diff between two snapshots",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := svc.DiffBetween(args[0], args[1])
		if err != nil {
			return err
		}
		if body == "" {
			fmt.Println("(no differences)")
			return nil
		}
		fmt.Print(body)
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "purge snapshots older than a threshold (preview unless --force)",
	RunE: func(cmd *cobra.Command, args []string) error {
		days := cleanDays
		if days == 0 {
			days = cfg.Retention.MaxAgeDays
		}
		old, err := eng.Retention().PreviewPurge(days)
		if err != nil {
			return err
		}
		if len(old) == 0 {
			fmt.Printf("no snapshots older than %d days\n", days)
			return nil
		}
		if !cleanForce {
			fmt.Printf("%d snapshot(s) older than %d days would be deleted\n", len(old), days)
			return fmt.Errorf("confirmation required: re-run with --force to delete")
		}
		res, err := eng.Retention().Purge(days)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d snapshot(s)\n", res.Deleted)
		if len(res.Failures) > 0 {
			for _, f := range res.Failures {
				fmt.Printf("  failed: %s: %v\n", f.Snapshot, f.Err)
			}
			return fmt.Errorf("%d deletion(s) failed", len(res.Failures))
		}
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreTarget, "target", "", "restore destination (overrides the sidecar path)")
	restoreCmd.Flags().BoolVar(&restoreYes, "yes", false, "confirm overwriting an existing target")
	cleanCmd.Flags().IntVar(&cleanDays, "days", 0, "age threshold in days (default: config max_age_days)")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "actually delete instead of previewing")
	rootCmd.AddCommand(listCmd, restoreCmd, diffCmd, cleanCmd)
}
