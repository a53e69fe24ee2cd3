package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caentzminger/grokipedia-go/internal/config"
	"github.com/caentzminger/grokipedia-go/internal/storage"
	"github.com/caentzminger/grokipedia-go/internal/types"
	"github.com/caentzminger/grokipedia-go/pkg/grokipedia"
)

var (
	cfgFile     string
	verbose     bool
	outputPath  string
	outputType  string
	userAgent   string
	baseURL     string
	skipRobots  bool
	saveToStore bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "grokipedia",
		Short: "Grokipedia client — fetch, parse, and resolve encyclopedia pages",
		Long: `A client for the Grokipedia encyclopedia.

Commands:
  page     fetch a page by slug and print it as JSON
  search   full-text search for page URLs
  resolve  map a title to its published page URL via the sitemap
  refresh  rebuild the sitemap manifest cache
  config   show the effective configuration`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "custom User-Agent string")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "override the content base URL")
	rootCmd.PersistentFlags().BoolVar(&skipRobots, "skip-robots", false, "bypass the robots.txt gate")

	rootCmd.AddCommand(pageCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// pageCmd creates the "page" subcommand.
func pageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page [slug...]",
		Short: "Fetch one or more pages by slug",
		Long:  "Fetch each page by its slug, parse it, and print (or store) the structured result.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPage,
	}

	cmd.Flags().BoolVarP(&saveToStore, "save", "s", false, "persist pages to configured storage instead of stdout")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (implies --save)")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "storage format: json, jsonl, mongodb")

	return cmd
}

func runPage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(&cfg.Logging)

	ctx, cancel := signalContext()
	defer cancel()

	client := newClient(cfg, logger)

	var pages []*types.Page
	for _, slug := range args {
		page, err := client.Page(ctx, slug)
		if err != nil {
			return fmt.Errorf("fetch page %q: %w", slug, err)
		}
		pages = append(pages, page)
		logger.Info("page fetched",
			"slug", page.Slug,
			"title", page.Title,
			"sections", len(page.Sections),
			"references", len(page.References),
		)
	}

	if saveToStore || outputPath != "" {
		if outputPath != "" {
			cfg.Storage.OutputPath = outputPath
		}
		if outputType != "" {
			cfg.Storage.Type = outputType
		}
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return fmt.Errorf("create storage: %w", err)
		}
		if err := store.Store(pages); err != nil {
			return fmt.Errorf("store pages: %w", err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
		fmt.Printf("stored %d page(s) via %s\n", len(pages), store.Name())
		return nil
	}

	for _, page := range pages {
		out, err := page.ToJSON()
		if err != nil {
			return fmt.Errorf("encode page %q: %w", page.Slug, err)
		}
		fmt.Println(out)
	}
	return nil
}

// searchCmd creates the "search" subcommand.
func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search for pages matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(&cfg.Logging)
			ctx, cancel := signalContext()
			defer cancel()

			urls, err := newClient(cfg, logger).Search(ctx, args[0])
			if err != nil {
				return fmt.Errorf("search %q: %w", args[0], err)
			}
			if len(urls) == 0 {
				fmt.Println("no results")
				return nil
			}
			for _, u := range urls {
				fmt.Println(u)
			}
			return nil
		},
	}
}

// resolveCmd creates the "resolve" subcommand.
func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [title]",
		Short: "Resolve a title to its published page URL",
		Long:  "Look up a title in the sitemap inventory and print the page URL, if published.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(&cfg.Logging)
			ctx, cancel := signalContext()
			defer cancel()

			pageURL, err := newClient(cfg, logger).FindPageURL(ctx, args[0])
			if err != nil {
				return fmt.Errorf("resolve %q: %w", args[0], err)
			}
			if pageURL == "" {
				fmt.Printf("no published page for %q\n", args[0])
				return nil
			}
			fmt.Println(pageURL)
			return nil
		},
	}
}

// refreshCmd creates the "refresh" subcommand.
func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the sitemap manifest cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(&cfg.Logging)
			ctx, cancel := signalContext()
			defer cancel()

			manifest, err := newClient(cfg, logger).RefreshManifest(ctx)
			if err != nil {
				return fmt.Errorf("refresh manifest: %w", err)
			}
			fmt.Printf("manifest refreshed: %d child sitemap(s)\n", len(manifest))
			for sitemapURL := range manifest {
				fmt.Println(sitemapURL)
			}
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("grokipedia %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Client:\n")
			fmt.Printf("  Base URL:          %s\n", cfg.Client.BaseURL)
			fmt.Printf("  User-Agent:        %s\n", cfg.Client.UserAgent)
			fmt.Printf("  Timeout:           %s\n", cfg.Client.Timeout)
			fmt.Printf("  Respect robots:    %v\n", cfg.Client.RespectRobots)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Follow Redirects:  %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nSitemap:\n")
			fmt.Printf("  Index URL:         %s\n", cfg.Sitemap.IndexURL)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			return nil
		},
	}
}

// loadConfig loads the config file and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if userAgent != "" {
		cfg.Client.UserAgent = userAgent
	}
	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}
	if skipRobots {
		cfg.Client.AllowRobotsOverride = true
	}
	return cfg, nil
}

// newClient builds the SDK client from loaded configuration.
func newClient(cfg *config.Config, logger *slog.Logger) *grokipedia.Client {
	return grokipedia.New(
		grokipedia.WithConfig(cfg),
		grokipedia.WithLogger(logger),
	)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// setupLogger creates a structured logger from the logging section,
// with --verbose forcing debug level.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
