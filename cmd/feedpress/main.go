package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/FeedPress/internal/config"
	"github.com/TobiSchelling/FeedPress/internal/database"
	"github.com/TobiSchelling/FeedPress/internal/ledger"
	"github.com/TobiSchelling/FeedPress/internal/logging"
	"github.com/TobiSchelling/FeedPress/internal/pipeline"
	"github.com/TobiSchelling/FeedPress/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logCloser  io.Closer
)

func main() {
	// Optional; API keys may already be in the environment.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "feedpress",
	Short:   "Summarize feed articles and republish them to WordPress",
	Long:    "FeedPress polls RSS/Atom feeds, summarizes new articles with an LLM, and posts the summaries to WordPress.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logCloser = logging.Setup(cfg.Logging, verbose)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(feedsCmd)
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(logCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("feedpress", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/feedpress/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, the LLM provider, and storage.")
		fmt.Println("Then run 'feedpress feeds import' to load the seed feeds.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s (%s)\n\n", db.Path(), db.Driver())
		fmt.Println("Registry:")
		fmt.Printf("  Feeds: %d\n", stats.Feeds)
		fmt.Printf("  Processed articles: %d\n", stats.ProcessedArticles)
		fmt.Println("\nProcessing log:")
		fmt.Printf("  Entries: %d\n", stats.LogEntries)
		fmt.Printf("  Posted: %d\n", stats.Posted)
		fmt.Printf("  Errors: %d\n", stats.Errors)
		fmt.Println("\nPublishing:")
		if stats.HasPublishTarget {
			fmt.Println("  WordPress: configured")
		} else {
			fmt.Println("  WordPress: not configured (summaries will not be posted)")
		}
		fmt.Printf("  Ledger backend: %s\n", cfg.Ledger.Backend)
		fmt.Printf("  LLM provider: %s\n", cfg.Summarization.Provider)
		return nil
	},
}

// --- run command ---

var dryRun bool

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Process all feeds: fetch -> dedupe -> summarize -> publish",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		led, closeLedger, err := openLedger(ctx, db)
		if err != nil {
			return err
		}
		defer closeLedger()

		pipe := pipeline.FromConfig(cfg, db, led)

		if dryRun {
			preview, err := pipe.Preview(ctx)
			if err != nil {
				return err
			}
			printPreview(preview)
			return nil
		}

		result := pipe.Run(ctx)
		printEntries(result.Entries)
		fmt.Println()
		fmt.Println(result.Message)
		if !result.Success {
			return fmt.Errorf("run failed")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be processed without executing")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		led, closeLedger, err := openLedger(cmd.Context(), db)
		if err != nil {
			return err
		}
		defer closeLedger()

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, pipeline.FromConfig(cfg, db, led), cfg.Server.CORSOrigins, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.Storage.Driver, cfg.DatabaseDSN())
}

// openLedger returns the configured dedup ledger and a function releasing it.
func openLedger(ctx context.Context, db *database.DB) (pipeline.Ledger, func(), error) {
	if cfg.Ledger.Backend != "redis" {
		return db, func() {}, nil
	}
	led, err := ledger.Connect(ctx, cfg.Ledger.RedisURL, cfg.Ledger.Key)
	if err != nil {
		return nil, nil, err
	}
	return led, func() { led.Close() }, nil
}
