package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/blankmap/internal/manifest"
	"github.com/andresmejia3/blankmap/internal/utils"
	"github.com/spf13/cobra"
)

var (
	exportSuperregion string
	exportAreaType    string
	exportOutput      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a manifest from the catalog, including any labels added since generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := requireCatalog(); err != nil {
			return err
		}
		return runExport(cmd.Context())
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportSuperregion, "superregion", "s", "United States", "Superregion of the atlas")
	exportCmd.Flags().StringVarP(&exportAreaType, "area-type", "a", "States", "Area type of the atlas")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Manifest path to write")
	exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(ctx context.Context) error {
	records, err := DB.ListAreas(ctx, exportSuperregion, exportAreaType)
	if err != nil {
		utils.ShowError("Failed to read areas from catalog", err)
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no areas cataloged for %s / %s", exportSuperregion, exportAreaType)
	}
	if err := manifest.Write(exportOutput, records); err != nil {
		utils.ShowError("Failed to write manifest", err)
		return err
	}

	fmt.Fprintf(os.Stderr, "📦 Exported %d areas to %s\n", len(records), exportOutput)
	return nil
}
