package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/andresmejia3/blankmap/internal/utils"
	"github.com/spf13/cobra"
)

var (
	listSuperregion string
	listAreaType    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated atlases, or the areas of one atlas, from the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := requireCatalog(); err != nil {
			return err
		}
		if listSuperregion != "" && listAreaType != "" {
			return runListAreas(cmd.Context(), cmd.OutOrStdout(), listSuperregion, listAreaType)
		}
		return runListAtlases(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSuperregion, "superregion", "s", "", "Show the areas of this superregion (requires --area-type)")
	listCmd.Flags().StringVarP(&listAreaType, "area-type", "a", "", "Show the areas of this area type (requires --superregion)")
	listCmd.MarkFlagsRequiredTogether("superregion", "area-type")
	rootCmd.AddCommand(listCmd)
}

func runListAtlases(ctx context.Context, out io.Writer) error {
	atlases, err := DB.ListAtlases(ctx)
	if err != nil {
		utils.ShowError("Failed to list atlases", err)
		return err
	}

	if len(atlases) == 0 {
		fmt.Fprintln(out, "No atlases found in catalog.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSUPERREGION\tAREA TYPE\tAREAS\tGENERATED\tOUTPUT")
	fmt.Fprintln(w, "--\t-----------\t---------\t-----\t---------\t------")

	for _, a := range atlases {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", a.ID, a.Superregion, a.AreaType, a.AreaCount, a.GeneratedAt.Local().Format("2006-01-02 15:04"), a.OutputRoot)
	}
	return w.Flush()
}

func runListAreas(ctx context.Context, out io.Writer, superregion, areaType string) error {
	areas, err := DB.ListAreas(ctx, superregion, areaType)
	if err != nil {
		utils.ShowError("Failed to list areas", err)
		return err
	}

	if len(areas) == 0 {
		fmt.Fprintf(out, "No areas found for %s / %s.\n", superregion, areaType)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tNATIVE\tPHONETIC\tSPRITE")
	fmt.Fprintln(w, "-\t----\t------\t--------\t------")

	for _, a := range areas {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.Ordinate, a.LatinName, a.NativeName, a.PhoneticName, a.SpriteLocation)
	}
	return w.Flush()
}
