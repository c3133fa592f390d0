package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/andresmejia3/blankmap/internal/utils"
	"github.com/spf13/cobra"
)

var (
	labelSuperregion string
	labelAreaType    string
	labelNative      string
	labelPhonetic    string
)

var labelCmd = &cobra.Command{
	Use:   "label <ordinate>",
	Short: "Set the native or phonetic name of a cataloged area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ordinate, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid area ordinate %q: %w", args[0], err)
		}
		if labelNative == "" && labelPhonetic == "" {
			return fmt.Errorf("nothing to label: pass --native and/or --phonetic")
		}
		if err := requireCatalog(); err != nil {
			return err
		}
		return runLabel(cmd.Context(), cmd.OutOrStdout(), ordinate)
	},
}

func init() {
	labelCmd.Flags().StringVarP(&labelSuperregion, "superregion", "s", "United States", "Superregion of the atlas")
	labelCmd.Flags().StringVarP(&labelAreaType, "area-type", "a", "States", "Area type of the atlas")
	labelCmd.Flags().StringVar(&labelNative, "native", "", "Native-language name of the area")
	labelCmd.Flags().StringVar(&labelPhonetic, "phonetic", "", "Phonetic spelling of the area name")
	rootCmd.AddCommand(labelCmd)
}

func runLabel(ctx context.Context, out io.Writer, ordinate int) error {
	if err := DB.LabelArea(ctx, labelSuperregion, labelAreaType, ordinate, labelNative, labelPhonetic); err != nil {
		utils.ShowError("Failed to label area", err)
		return err
	}

	fmt.Fprintf(out, "✅ Area %d of %s / %s labeled\n", ordinate, labelSuperregion, labelAreaType)
	return nil
}
