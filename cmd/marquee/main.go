package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/imageprobe"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/paginator"
	"github.com/mmcdole/marquee/internal/rail"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/mmcdole/marquee/internal/tui/components"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

const plainTimeout = 2 * time.Minute

type options struct {
	configPath string
	plain      bool
	genre      string
	initConfig bool
	clearCache bool
}

func main() {
	var (
		showVersion bool
		opts        options
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configPath, "config", "", "path to config file")
	flag.BoolVar(&opts.plain, "plain", false, "print the homepage as text and exit")
	flag.StringVar(&opts.genre, "genre", "", "genre for the custom rail")
	flag.BoolVar(&opts.initConfig, "init-config", false, "write the effective config file and exit")
	flag.BoolVar(&opts.clearCache, "clear-cache", false, "remove the local cache and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.initConfig {
		return writeConfig(config.DefaultConfig(), opts.configPath)
	}

	// Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.clearCache {
		if err := config.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Printf("Cleared cache in %s\n", cfg.Cache.Dir)
		return nil
	}

	// Setup logger
	logger, closer, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version, "api", cfg.API.BaseURL)

	// Local cache is optional; a nil store disables it
	var cache domain.Store
	if cfg.Cache.Enabled {
		st, err := store.NewCatalogStore(cfg.Cache.Dir, cfg.API.BaseURL, cfg.Cache.DetailTTL, cfg.Images.VerdictTTL)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", "error", err)
		} else {
			defer st.Close()
			cache = st
		}
	}

	client := catalog.NewClient(catalog.Options{
		TitlesURL:         cfg.API.TitlesURL(),
		GenresURL:         cfg.API.GenresURL(),
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		PageSize:          cfg.API.PageSize,
	}, logger)

	prober := imageprobe.New(imageprobe.Options{
		Timeout:     cfg.Images.ProbeTimeout,
		Concurrency: cfg.Images.Concurrency,
		CacheSize:   cfg.Images.CacheSize,
		MaxBytes:    cfg.Images.MaxBytes,
		Store:       cache,
	}, logger)

	rails, custom := service.BuildRails(cfg, client, paginator.New(prober, logger), logger)
	homeSvc := service.NewHomeService(client, cache, prober, rails, custom, service.Options{
		Retries:    cfg.API.Retries,
		RetryDelay: cfg.API.RetryDelay,
	}, logger)

	if opts.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlain(homeSvc, opts.genre, logger)
	}

	model := tui.NewModel(homeSvc, tui.Options{
		CardWidth:    cfg.UI.ItemWidth,
		InitialGenre: opts.genre,
	}, logger)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// writeConfig saves cfg to path, or to the default location when path is empty
func writeConfig(cfg *config.Config, path string) error {
	if path == "" {
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Println("Wrote default config file")
		return nil
	}
	if err := config.SaveConfigAs(cfg, path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// runPlain loads the whole homepage once and prints it
func runPlain(svc *service.HomeService, genre string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), plainTimeout)
	defer cancel()

	var (
		home     tui.PlainHome
		outcomes []rail.Outcome
		genreErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		feature, err := svc.BestMovie(gctx)
		if err != nil {
			home.FeatureErr = err
			return nil
		}
		home.Feature = &feature
		return nil
	})
	g.Go(func() error {
		outcomes, genreErr = svc.LoadHomeWithGenre(gctx, genre)
		return nil
	})

	stopSpinner := startSpinner(os.Stderr, "Loading homepage...")
	g.Wait()
	stopSpinner()

	if genreErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", genreErr)
	}

	for _, out := range outcomes {
		if r := svc.Rail(out.RailID); r != nil {
			home.Rails = append(home.Rails, r.Snapshot())
		}
	}

	if err := tui.RenderPlain(os.Stdout, home); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Exit non-zero only when nothing at all could be shown
	if home.Feature == nil && allFailed(outcomes) {
		logger.Error("homepage unavailable", "error", home.FeatureErr)
		if errors.Is(home.FeatureErr, domain.ErrCatalogOffline) {
			return domain.ErrCatalogOffline
		}
		return errors.New("homepage unavailable")
	}
	return nil
}

func allFailed(outcomes []rail.Outcome) bool {
	for _, out := range outcomes {
		if out.Status != rail.OutcomeFailed {
			return false
		}
	}
	return true
}

// startSpinner animates a status line on w while the homepage loads, when
// w is a terminal. The returned func stops it and clears the line.
func startSpinner(w *os.File, text string) func() {
	if !term.IsTerminal(int(w.Fd())) {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		frame := 0
		for {
			fmt.Fprintf(w, "\r%s %s", components.RenderSpinner(frame), text)
			select {
			case <-done:
				io.WriteString(w, clearSpinnerLine)
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
