package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zzoohub/idea-fork-sub001/internal/api"
	"github.com/zzoohub/idea-fork-sub001/internal/config"
	"github.com/zzoohub/idea-fork-sub001/internal/database"
	"github.com/zzoohub/idea-fork-sub001/internal/pipeline"
	"github.com/zzoohub/idea-fork-sub001/internal/schedule"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	// A missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ideafork",
	Short:   "Market signal aggregation and opportunity briefs",
	Long:    "ideafork ingests posts from Reddit, RSS feeds, and app stores, classifies and clusters them, and synthesizes market-opportunity briefs.",
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
		return nil
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
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ideafork", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/ideafork/",
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
		fmt.Println("Edit it to configure subreddits, feeds, and store apps.")
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

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Posts:")
		fmt.Printf("  Total: %d\n", stats.TotalPosts)
		fmt.Printf("  Tagged: %d\n", stats.TaggedPosts)
		fmt.Printf("  Clustered: %d\n", stats.ClusteredPosts)
		fmt.Println("\nOutput:")
		fmt.Printf("  Clusters: %d\n", stats.Clusters)
		fmt.Printf("  Briefs: %d (%d published)\n", stats.Briefs, stats.PublishedBriefs)
		fmt.Println("\nCatalog:")
		fmt.Printf("  Products: %d\n", stats.Products)
		fmt.Printf("  Tags: %d\n", stats.Tags)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch -> upsert -> tag -> cluster -> synthesize",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		orch := pipeline.New(cfg, db)
		result, err := orch.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Println("\nPipeline complete:")
		fmt.Printf("  Posts fetched: %d\n", result.PostsFetched)
		fmt.Printf("  Posts upserted: %d\n", result.PostsUpserted)
		fmt.Printf("  Posts tagged: %d\n", result.PostsTagged)
		fmt.Printf("  Clusters created: %d\n", result.ClustersCreated)
		fmt.Printf("  Briefs generated: %d\n", result.BriefsGenerated)

		if result.HasErrors() {
			fmt.Printf("\n%d stage error(s):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e)
			}
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server (and the scheduler, if configured)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		orch := pipeline.New(cfg, db)

		if spec := cfg.Pipeline.Schedule; spec != "" {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := schedule.New(orch, spec)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()
		}

		fmt.Printf("Starting server at http://localhost:%d\n", cfg.Server.Port)
		fmt.Println("Press Ctrl+C to stop")
		return api.NewServer(cfg, db, orch, orch.Trends()).Run()
	},
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(filepath.Join(dataDir, "ideafork.db"))
}
