package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"hnstories/internal/config"
	"hnstories/internal/eventbus"
	"hnstories/internal/fetch"
	"hnstories/internal/hn"
	"hnstories/internal/logger"
	"hnstories/internal/preferences"
	"hnstories/internal/query"
	"hnstories/internal/stories"
	"hnstories/internal/ui"
)

// errSearchFailed makes --print exit non-zero without printing twice
var errSearchFailed = errors.New("search failed")

type options struct {
	configPath string
	endpoint   string
	term       string
	logLevel   string
	print      bool
	noPersist  bool
	saveConfig bool
}

func main() {
	var opts options
	flag.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default $XDG_CONFIG_HOME/hnstories/config.toml)")
	flag.StringVar(&opts.endpoint, "endpoint", "", "Search endpoint URL")
	flag.StringVarP(&opts.term, "term", "t", "", "Search term to start with")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVarP(&opts.print, "print", "p", false, "Search once, print the results and exit")
	flag.BoolVar(&opts.noPersist, "no-persist", false, "Do not remember the search term")
	flag.BoolVar(&opts.saveConfig, "save-config", false, "Write the effective configuration to the config file and exit")
	flag.Parse()

	if opts.term == "" && flag.NArg() > 0 {
		opts.term = flag.Arg(0)
	}

	if err := run(opts); err != nil {
		if !errors.Is(err, errSearchFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	configSvc := config.NewConfigService(opts.configPath)
	cfg, err := configSvc.Load()
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Path: cfg.Log.Path})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --print has nothing to render asynchronously
	var bus eventbus.EventBus
	if opts.print {
		bus = eventbus.NewSync(log)
	} else {
		bus = eventbus.New(log)
	}
	defer bus.Close()

	if opts.saveConfig {
		bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
			log.Info("Config saved", logger.String("path", e.(eventbus.ConfigSavedEvent).Path))
		})
		return config.NewConfigServiceWithBus(configSvc.Path(), bus).Save(cfg)
	}

	log.Info("Starting",
		logger.String("endpoint", cfg.Endpoint),
		logger.String("preferences", cfg.Preferences.Backend),
		logger.Bool("print", opts.print),
	)

	prefs, err := preferences.Open(ctx, cfg.Preferences.Backend, cfg.Preferences.ResolvedPath())
	if err != nil {
		return err
	}
	defer prefs.Close()

	store := stories.NewStore(bus, log)

	querySvc, err := query.New(ctx, prefs, bus, log, query.Options{
		Endpoint: cfg.Endpoint,
		Key:      cfg.Preferences.Key,
	})
	if err != nil {
		return err
	}

	client := hn.NewClient(hn.Options{
		Timeout:   cfg.Fetch.Timeout.Std(),
		UserAgent: cfg.Fetch.UserAgent,
	}, log)

	controller := fetch.New(client, store, log, fetch.Options{DiscardStale: cfg.Fetch.DiscardStale})
	detach := controller.Attach(bus)
	defer controller.Close()
	defer detach()

	if opts.term != "" {
		if err := querySvc.SetDraft(ctx, opts.term); err != nil {
			log.Warn("Failed to persist search term", logger.Error(err))
		}
	}

	if opts.print {
		return printOnce(querySvc, controller, store)
	}
	return runInteractive(ctx, cfg, log, bus, querySvc, store)
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noPersist {
		cfg.Preferences.Backend = preferences.BackendMemory
	}
}

func printOnce(querySvc *query.Service, controller *fetch.Controller, store *stories.Store) error {
	querySvc.Submit()
	controller.Wait()

	state := store.State()
	if state.IsError {
		fmt.Fprintln(os.Stderr, "Something went wrong ...")
		return errSearchFailed
	}
	renderStories(os.Stdout, state.Items)
	return nil
}

func runInteractive(ctx context.Context, cfg *config.Config, log logger.Logger, bus eventbus.EventBus, querySvc *query.Service, store *stories.Store) error {
	model := ui.NewModel(querySvc, store, log, ui.Options{LocalFilter: cfg.UI.LocalFilter})

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.UI.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(model, programOpts...)
	model.SetProgram(p)

	// Set up event forwarding to UI. Every stories snapshot must arrive, so
	// the bus waits for the forwarder instead of dropping.
	eventChan := make(chan eventbus.DomainEvent, 100)
	done := make(chan struct{})
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		case <-done:
		}
	}
	unsubscribe := []func(){
		bus.Subscribe(eventbus.EventStoriesChanged, forward),
		bus.Subscribe(eventbus.EventFetchDiscarded, forward),
	}
	defer func() {
		for _, u := range unsubscribe {
			u()
		}
	}()

	defer close(done)
	go func() {
		for {
			select {
			case event := <-eventChan:
				p.Send(ui.EventMsg{Event: event})
			case <-done:
				return
			}
		}
	}()

	// Initial search for the remembered term
	querySvc.Submit()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
