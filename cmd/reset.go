package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/blankmap/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetCatalog     bool
	resetFiles       bool
	resetOutput      string
	resetSuperregion string
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset state (Catalog, Generated Sprites)",
	Long:  "Clears generated data. By default, it resets everything. Use flags to clear specific components.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		// If no flags are set, default to clearing EVERYTHING
		if !resetCatalog && !resetFiles {
			resetCatalog = DB != nil
			resetFiles = true
		}

		reader := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		if resetCatalog {
			if err := requireCatalog(); err != nil {
				return err
			}
			if confirm(reader, out, "⚠️  Are you sure you want to DROP all catalog tables?") {
				fmt.Fprintln(out, "🗑️  Clearing Catalog...")
				if err := DB.Reset(cmd.Context()); err != nil {
					utils.ShowError("Failed to reset catalog", err)
					return err
				}
			}
		}

		if resetFiles {
			target := filepath.Join(resetOutput, resetSuperregion)
			if confirm(reader, out, fmt.Sprintf("⚠️  Are you sure you want to delete %s?", target)) {
				fmt.Fprintln(out, "🗑️  Clearing Generated Sprites...")
				removeDir(target)
			}
		}

		fmt.Fprintln(out, "✨ Reset Complete.")
		return nil
	},
}

func init() {
	// --db stays the root's connection string; this only selects what to clear
	resetCmd.Flags().BoolVar(&resetCatalog, "catalog", false, "Drop the catalog tables")
	resetCmd.Flags().BoolVar(&resetFiles, "files", false, "Delete the generated <output>/<superregion> folder")
	resetCmd.Flags().StringVarP(&resetOutput, "output", "o", ".", "Output directory used by generate")
	resetCmd.Flags().StringVarP(&resetSuperregion, "superregion", "s", "United States", "Superregion folder to delete")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removeDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
