package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/andresmejia3/blankmap/internal/filter"
	"github.com/andresmejia3/blankmap/internal/manifest"
	"github.com/andresmejia3/blankmap/internal/types"
	"github.com/andresmejia3/blankmap/internal/utils"
	"github.com/andresmejia3/blankmap/internal/worker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// BackgroundFile is the name of the shared background sprite inside the output root.
const BackgroundFile = "Background.png"

var generateOpts Options

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Cut area sprites, the shared background and the manifest out of highlighted map images",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runGenerate(cmd.Context(), generateOpts)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.InputDir, "input", "i", "", "Directory containing one highlighted map image per area")
	generateCmd.Flags().StringVarP(&generateOpts.OutputDir, "output", "o", ".", "Directory the <superregion> asset folder is created in")
	generateCmd.Flags().StringVarP(&generateOpts.Superregion, "superregion", "s", "United States", "Name of the region the areas belong to")
	generateCmd.Flags().StringVarP(&generateOpts.AreaType, "area-type", "a", "States", "Label for the kind of area (sprite folder and manifest name)")
	generateCmd.Flags().StringSliceVar(&generateOpts.Strip, "strip", []string{"2560px-", "_in_United_States.svg"}, "Substrings removed from source file names")
	generateCmd.Flags().StringVarP(&generateOpts.MarkerColor, "marker", "m", "193,39,55", "Color highlighting the area (r,g,b or #rrggbb)")
	generateCmd.Flags().StringVarP(&generateOpts.BackgroundColor, "background", "b", "254,254,233", "Fill color of the map background (r,g,b or #rrggbb)")
	generateCmd.Flags().Float64Var(&generateOpts.AreaThreshold, "area-threshold", 2, "Max color distance (exclusive) for a pixel to count as marker when masking areas")
	generateCmd.Flags().Float64Var(&generateOpts.BackgroundThreshold, "background-threshold", 10, "Max color distance (exclusive) used when extracting the background")
	generateCmd.Flags().StringVar(&generateOpts.BackgroundSource, "background-source", "", "Image used for the background sprite (default: first input image)")
	generateCmd.Flags().IntVarP(&generateOpts.NumEngines, "engines", "e", runtime.NumCPU(), "Number of images processed in parallel")
	generateCmd.Flags().BoolVar(&generateOpts.RenameInputs, "rename", false, "Rename source files in place using the --strip patterns")

	generateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(generateCmd)
}

// generateConfig is the validated form of Options.
type generateConfig struct {
	Marker     filter.Color
	Background filter.Color
	Root       string // <output>/<superregion>
}

// runGenerate orchestrates a blank map build: area masks, background, manifest, catalog.
func runGenerate(ctx context.Context, opts Options) error {
	start := time.Now()

	cfg, err := validateGenerateFlags(&opts)
	if err != nil {
		utils.ShowError("Invalid options", err)
		return err
	}

	// 1. Prettify source names
	if opts.RenameInputs {
		if err := utils.RenameInputs(opts.InputDir, opts.Strip); err != nil {
			utils.ShowError("Failed to rename inputs", err)
			return err
		}
	}

	// 2. Enumerate sources & plan outputs
	sources, err := utils.ListImages(opts.InputDir)
	if err != nil {
		utils.ShowError("Failed to list input images", err)
		return err
	}
	if len(sources) == 0 {
		err := fmt.Errorf("no images found in %s", opts.InputDir)
		utils.ShowError("Nothing to do", err)
		return err
	}
	tasks, err := planTasks(sources, filepath.Join(cfg.Root, opts.AreaType), opts.Strip)
	if err != nil {
		utils.ShowError("Conflicting area names", err)
		return err
	}

	fmt.Fprintf(os.Stderr, "🗺️  Building %s / %s from %d images\n", opts.Superregion, opts.AreaType, len(tasks))
	fmt.Fprintf(os.Stderr, "⚙️  Spawning %d Worker Engines...\n", opts.NumEngines)

	// 3. Area masks
	bar := progressbar.NewOptions(len(tasks),
		progressbar.OptionSetDescription("✂️  Masking areas"),
		progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
		progressbar.OptionShowCount(),
	)

	pool := worker.NewPool(opts.NumEngines)
	err = pool.Run(ctx, tasks, func(ctx context.Context, task types.AreaTask) error {
		return maskArea(task, cfg.Marker, opts.AreaThreshold)
	}, func(types.AreaTask) {
		bar.Add(1)
	})
	if err != nil {
		utils.ShowError("Area masking failed", err)
		return err
	}
	bar.Finish()

	// 4. Shared background
	bgSource := opts.BackgroundSource
	if bgSource == "" {
		bgSource = sources[0]
	}
	bgPath := filepath.Join(cfg.Root, BackgroundFile)
	if err := buildBackground(bgSource, bgPath, cfg, opts.BackgroundThreshold); err != nil {
		utils.ShowError("Background extraction failed", err)
		return err
	}

	// 5. Manifest
	records, err := manifest.Collect(cfg.Root, opts.AreaType)
	if err != nil {
		utils.ShowError("Failed to collect sprites", err)
		return err
	}
	manifestPath := filepath.Join(cfg.Root, opts.AreaType+".json")
	if err := manifest.Write(manifestPath, records); err != nil {
		utils.ShowError("Failed to write manifest", err)
		return err
	}

	// 6. Catalog (optional)
	if DB != nil {
		atlas := types.Atlas{Superregion: opts.Superregion, AreaType: opts.AreaType, OutputRoot: cfg.Root}
		if _, err := DB.SaveAtlas(ctx, atlas, records); err != nil {
			utils.ShowError("Failed to record atlas in catalog", err)
			return err
		}
		fmt.Fprintf(os.Stderr, "\n📚 Catalog updated for %s / %s\n", opts.Superregion, opts.AreaType)
	}

	fmt.Fprintf(os.Stderr, "\n🏁 Blankmap with %d areas created in %.2f seconds.\n", len(records), time.Since(start).Seconds())
	return nil
}

// planTasks maps every source image to its cleaned sprite path. Two sources
// that clean to the same name would overwrite each other, so that is an error.
func planTasks(sources []string, areaDir string, strip []string) ([]types.AreaTask, error) {
	tasks := make([]types.AreaTask, 0, len(sources))
	seen := make(map[string]string, len(sources))
	for i, src := range sources {
		name := utils.StripExt(utils.CleanName(filepath.Base(src), strip))
		if name == "" {
			return nil, fmt.Errorf("%s has an empty name after cleanup", src)
		}
		target := filepath.Join(areaDir, name+".png")
		if prev, ok := seen[target]; ok {
			return nil, fmt.Errorf("%s and %s both map to %s", prev, src, target)
		}
		seen[target] = src
		tasks = append(tasks, types.AreaTask{Index: i, Source: src, Target: target})
	}
	return tasks, nil
}

func maskArea(task types.AreaTask, marker filter.Color, threshold float64) error {
	img, err := utils.LoadImage(task.Source)
	if err != nil {
		return err
	}
	masked, err := filter.AreaMask(img, marker, threshold)
	if err != nil {
		return fmt.Errorf("filtering %s: %w", task.Source, err)
	}
	return utils.SaveImage(masked, task.Target)
}

func buildBackground(source, target string, cfg generateConfig, threshold float64) error {
	img, err := utils.LoadImage(source)
	if err != nil {
		return err
	}
	bg, err := filter.ExtractBackground(img, cfg.Background, cfg.Marker, threshold)
	if err != nil {
		return fmt.Errorf("filtering %s: %w", source, err)
	}
	return utils.SaveImage(bg, target)
}

// validateGenerateFlags ensures all CLI arguments are valid before touching any file.
func validateGenerateFlags(opts *Options) (generateConfig, error) {
	var cfg generateConfig

	info, err := os.Stat(opts.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("input directory does not exist: %w", err)
		}
		return cfg, fmt.Errorf("unable to access input directory: %w", err)
	}
	if !info.IsDir() {
		return cfg, fmt.Errorf("input path %s is a file, expected a directory", opts.InputDir)
	}
	if opts.BackgroundSource != "" {
		if _, err := os.Stat(opts.BackgroundSource); err != nil {
			return cfg, fmt.Errorf("background source: %w", err)
		}
	}

	for label, v := range map[string]string{"superregion": opts.Superregion, "area-type": opts.AreaType} {
		if strings.TrimSpace(v) == "" {
			return cfg, fmt.Errorf("%s must not be empty", label)
		}
		if strings.ContainsAny(v, `/\`) || v == "." || v == ".." {
			return cfg, fmt.Errorf("%s must be a plain folder name, got %q", label, v)
		}
	}

	if cfg.Marker, err = filter.ParseColor(opts.MarkerColor); err != nil {
		return cfg, fmt.Errorf("marker color: %w", err)
	}
	if cfg.Background, err = filter.ParseColor(opts.BackgroundColor); err != nil {
		return cfg, fmt.Errorf("background color: %w", err)
	}
	if opts.AreaThreshold < 0 {
		return cfg, fmt.Errorf("area threshold must be >= 0, got %f", opts.AreaThreshold)
	}
	if opts.BackgroundThreshold < 0 {
		return cfg, fmt.Errorf("background threshold must be >= 0, got %f", opts.BackgroundThreshold)
	}
	if opts.NumEngines < 1 {
		opts.NumEngines = 1
	}

	cfg.Root = filepath.Join(opts.OutputDir, opts.Superregion)
	return cfg, nil
}
