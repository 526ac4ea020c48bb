package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is the version of the application, set at build time
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var (
	configPath string
	quiet      bool

	flagSource      string
	flagBaseURL     string
	flagIndex       string
	flagManifests   []string
	flagListing     string
	flagFeed        string
	flagPageSize    int
	flagLogLevel    string
	flagMetricsAddr string

	listQuery string
	listPage  int
	listJSON  bool
)

var rootCmd = &cobra.Command{
	Use:          "shelf",
	Short:        "Search and page through a static site's articles in the terminal",
	SilenceUsage: true,
	RunE:         runTUI,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Ingest the source and print one page of matching articles",
	RunE:  runList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shelf %s\n", Version)
		fmt.Println("Static article index")
		fmt.Println("github.com/pders01/shelf")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration to ~/.config/shelf/config.toml",
	Run: func(cmd *cobra.Command, args []string) {
		configFile, err := generateConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to configuration file")
	pf.StringVar(&flagSource, "source", "", "Source kind: index, manifest, listing or feed")
	pf.StringVar(&flagBaseURL, "base-url", "", "Base URL that relative source paths resolve against")
	pf.StringVar(&flagIndex, "index", "", "Pre-built JSON index (implies --source index)")
	pf.StringArrayVar(&flagManifests, "manifest", nil, "Manifest file, repeatable (implies --source manifest)")
	pf.StringVar(&flagListing, "listing", "", "Directory listing path (implies --source listing)")
	pf.StringVar(&flagFeed, "feed", "", "RSS or Atom feed (implies --source feed)")
	pf.IntVar(&flagPageSize, "page-size", 0, "Results per page")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: off, error, warn, info, debug")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter by title or summary")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page to print, 1-based")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print records as JSON")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(listCmd, versionCmd, configCmd)
}
