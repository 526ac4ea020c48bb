package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
	"github.com/pders01/shelf/internal/fetch"
	"github.com/pders01/shelf/internal/index"
	"github.com/pders01/shelf/internal/ingest"
	"github.com/pders01/shelf/internal/launch"
	"github.com/pders01/shelf/internal/metrics"
	"github.com/pders01/shelf/internal/pager"
	"github.com/pders01/shelf/internal/storage"
	"github.com/pders01/shelf/internal/tui"
)

// session is everything one run needs, built from one config.
type session struct {
	cfg      *config.Config
	store    *storage.Store
	metrics  *metrics.Metrics
	fetcher  *fetch.Fetcher
	ingester *ingest.Ingester
	state    *index.State
}

func (rt *session) Close() {
	if rt.store != nil {
		if n, err := rt.store.PageCount(); err == nil {
			debuglog.Infof("page cache held %d pages", n)
		}
		if err := rt.store.Close(); err != nil {
			debuglog.Warnf("closing page cache: %v", err)
		}
	}
	_ = debuglog.Close()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides config values with flags the user actually set.
// A source path flag also selects its kind unless --source is given.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	if changed("base-url") {
		cfg.Source.BaseURL = flagBaseURL
	}
	if changed("index") {
		cfg.Source.Index = flagIndex
		cfg.Source.Kind = config.SourceIndex
	}
	if changed("manifest") {
		cfg.Source.Manifests = flagManifests
		cfg.Source.Kind = config.SourceManifest
	}
	if changed("listing") {
		cfg.Source.Listing = flagListing
		cfg.Source.Kind = config.SourceListing
	}
	if changed("feed") {
		cfg.Source.Feed = flagFeed
		cfg.Source.Kind = config.SourceFeed
	}
	if changed("source") {
		cfg.Source.Kind = flagSource
	}
	if changed("page-size") {
		cfg.UI.PageSize = flagPageSize
	}
	if changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = flagMetricsAddr
	}
}

func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.Cache.Path, cfg.Cache.Timeout)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	fetcher := fetch.NewFetcher(cfg, fetch.WithStore(store), fetch.WithMetrics(m))

	ingester, err := ingest.NewFromConfig(cfg, fetcher, ingest.WithMetrics(m))
	if err != nil {
		store.Close()
		return nil, err
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				debuglog.Errorf("metrics server: %v", err)
			}
		}()
	}

	debuglog.WithFields(map[string]any{
		"source": ingester.SourceName(),
		"cache":  store.Path(),
	}).Infof("session started")

	return &session{
		cfg:      cfg,
		store:    store,
		metrics:  m,
		fetcher:  fetcher,
		ingester: ingester,
		state:    index.New(cfg.UI.PageSize, m),
	}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !quiet {
		tui.ShowBanner(Version)
	}

	rt, err := newSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.NewApp(cfg, rt.ingester, rt.fetcher, launch.NewLauncher(cfg), rt.state)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rt, err := newSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.ingester.Ingest(cmd.Context())
	if err != nil {
		return err
	}

	rt.state.Load(res.Records)
	rt.state.SetQuery(listQuery)
	rt.state.SetPage(listPage - 1)
	v := rt.state.Snapshot()

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v.Visible)
	}
	printPage(cmd.OutOrStdout(), v, cfg)
	return nil
}

func printPage(w io.Writer, v index.View, cfg *config.Config) {
	if v.Empty() {
		fmt.Fprintln(w, "no matching articles")
		return
	}

	for i, r := range v.Visible {
		fmt.Fprintf(w, "%3d. %s\n", v.Window.Start+i+1, r.Title)
		if r.Summary != "" {
			fmt.Fprintf(w, "     %s\n", article.Truncate(r.Summary, cfg.Extract.SummaryMaxLength))
		}
		fmt.Fprintf(w, "     %s\n", r.DisplayURL)
	}

	controls := pager.Controls(v.PageCount, v.Page, cfg.UI.MaxVisiblePages)
	fmt.Fprintln(w)
	for i, c := range controls {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		if c.Active {
			fmt.Fprintf(w, "[%s]", c.Label)
		} else {
			fmt.Fprint(w, c.Label)
		}
	}
	fmt.Fprintf(w, "\n%d–%d of %d\n", v.Window.Start+1, v.Window.End, v.Matches)
}

func generateConfig() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configFile := filepath.Join(home, ".config", "shelf", "config.toml")
	if err := config.GenerateDefaultConfig(configFile); err != nil {
		return "", err
	}
	return configFile, nil
}
