package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/blankmap/internal/store"
	"github.com/spf13/cobra"
)

// Options holds the configuration for a blank map generation run
type Options struct {
	InputDir            string
	OutputDir           string
	Superregion         string
	AreaType            string
	Strip               []string
	MarkerColor         string
	BackgroundColor     string
	AreaThreshold       float64
	BackgroundThreshold float64
	BackgroundSource    string
	NumEngines          int
	RenameInputs        bool
}

var (
	// DB is the optional catalog connection shared by subcommands (nil when not configured)
	DB *store.Store
	// dbURL is the connection string
	dbURL string
)

// Version is the application version.
const Version = "0.1.0"

var errNoCatalog = errors.New("catalog database not configured (use --db or POSTGRES_HOST)")

var rootCmd = &cobra.Command{
	Use:     "blankmap",
	Short:   "Blank map sprite generator",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// If no flag was provided, try to build the connection string from the environment
		if dbURL == "" {
			if host := os.Getenv("POSTGRES_HOST"); host != "" {
				user := os.Getenv("POSTGRES_USER")
				pass := os.Getenv("POSTGRES_PASSWORD")
				name := os.Getenv("POSTGRES_DB")
				port := os.Getenv("POSTGRES_PORT")
				if port == "" {
					port = "5432"
				}
				dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
			}
		}
		// The catalog is optional: generation works purely on the filesystem
		if dbURL == "" {
			return nil
		}

		var err error
		// Use the command's context (which will be cancellable) for the connection
		DB, err = store.New(cmd.Context(), dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			DB.Close(context.Background())
			DB = nil
		}
	},
}

// requireCatalog fails commands that only make sense with a database.
func requireCatalog() error {
	if DB == nil {
		return errNoCatalog
	}
	return nil
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the optional atlas catalog")
}
