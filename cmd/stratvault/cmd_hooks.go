package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	recordOldFile string
	recordNewFile string
)

// backupCmd is the pre-change hook: the host calls it with the file path
// it is about to modify, before applying the edit.
var backupCmd = &cobra.Command{
	Use:   "backup <path>",
	Short: "snapshot a tracked file before an edit (pre-change hook)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		res, err := eng.PreChange(path)
		if err != nil {
			return err
		}
		switch {
		case !res.Tracked:
			fmt.Printf("not tracked: %s\n", path)
		case res.Missing:
			fmt.Printf("new file, nothing to back up: %s\n", path)
		case res.Skipped:
			fmt.Printf("unchanged since last snapshot: %s\n", path)
		default:
			fmt.Printf("backed up %s -> %s\n", path, res.Snapshot.Name)
		}
		return nil
	},
}

// recordCmd is the post-change hook: the host supplies the old and new
// content it captured around the edit (which may diverge from the backup
// taken at pre-change time).
var recordCmd = &cobra.Command{
	Use:   "record <path>",
	Short: "record a completed edit: classify, bump version, write diff and changelog (post-change hook)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var oldText string
		if recordOldFile != "" {
			b, err := os.ReadFile(recordOldFile)
			if err != nil {
				return fmt.Errorf("read old content: %w", err)
			}
			oldText = string(b)
		}
		newSrc := recordNewFile
		if newSrc == "" {
			// Default to the edited file itself.
			newSrc = path
		}
		b, err := os.ReadFile(newSrc)
		if err != nil {
			return fmt.Errorf("read new content: %w", err)
		}

		res, err := eng.PostChange(path, oldText, string(b))
		if err != nil {
			return err
		}
		if !res.Tracked {
			fmt.Printf("not tracked: %s\n", path)
			return nil
		}
		fmt.Printf("%s: %s change -> v%s\n", path, res.Tier, res.Version)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordOldFile, "old-file", "", "file holding the pre-edit content (omit for file creation)")
	recordCmd.Flags().StringVar(&recordNewFile, "new-file", "", "file holding the post-edit content (defaults to <path>)")
	rootCmd.AddCommand(backupCmd, recordCmd)
}
