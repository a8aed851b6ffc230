package clicmds

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli/v2"
	"gitlab.com/pagek/browser"
	"gitlab.com/pagek/check"
	"gitlab.com/pagek/pagek"
	"gitlab.com/pagek/store"
)

// CheckFlags for the check command, all but config override the config file
func CheckFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "toml file declaring the pages to check",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "base url pages are opened relative to",
			Value: "http://localhost/",
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
			Value: "pagektmp",
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "path to the chrome binary, searched for if empty",
			Value: "",
		},
		&cli.IntFlag{
			Name:  "numbrowsers",
			Usage: "max number of browsers to use in parallel",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "leaser",
			Usage: "how browsers are started, local or socket",
			Value: string(pagek.LocalLeaser),
		},
		&cli.StringFlag{
			Name:  "socket",
			Usage: "unix socket of the leaser service",
			Value: browser.DefaultSocket,
		},
		&cli.BoolFlag{
			Name:  "screenshots",
			Usage: "store a screenshot of every failed page",
			Value: false,
		},
	}
}

// Check every page declared in the config
func Check(ctx *cli.Context) error {
	cfg, err := checkConfig(ctx)
	if err != nil {
		return err
	}
	if len(cfg.Pages) == 0 {
		return errors.New("no pages to check, declare [[pages]] in a config")
	}

	runID := uuid.NewV4().String()
	logger := log.With().Str("run", runID).Logger()
	runCtx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			logger.Info().Msg("Ctrl-C Pressed, shutting down")
			cancel()
		case <-runCtx.Done():
		}
	}()

	results, err := store.Open(cfg.DataPath)
	if err != nil {
		return err
	}
	defer results.Close()

	var leaser browser.LeaserService
	switch cfg.Leaser {
	case pagek.SocketLeaser:
		leaser = browser.NewSocketLeaser(ctx.String("socket"))
	default:
		leaser = browser.NewLocalLeaser(cfg.ChromePath)
	}
	defer leaser.Cleanup()

	pool := browser.NewPool(cfg.NumBrowsers, leaser)
	if err := pool.Init(runCtx); err != nil {
		logger.Error().Err(err).Msg("failed to start browsers")
		return err
	}
	defer pool.Close(context.Background())

	logger.Info().Int("pages", len(cfg.Pages)).Str("url", cfg.BaseURL).Msg("Starting checks")
	failed := runChecks(runCtx, cfg, pool, results, runID, ctx.Bool("screenshots"))
	if failed > 0 {
		return errors.Errorf("%d of %d pages failed in run %s", failed, len(cfg.Pages), runID)
	}
	logger.Info().Msg("all pages passed")
	return nil
}

// runChecks spreads the pages over one worker per browser and returns how many failed
func runChecks(ctx context.Context, cfg *pagek.Config, pool *browser.Pool, results *store.ResultStore, runID string, screenshots bool) int {
	specs := make(chan *check.PageSpec)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i := 0; i < cfg.NumBrowsers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range specs {
				result, err := checkPage(ctx, cfg, pool, runID, spec, screenshots)
				if err != nil {
					log.Ctx(ctx).Error().Err(err).Str("page", spec.Name).Msg("unable to check page")
					result = &check.Result{RunID: runID, Page: spec.Name, Failures: []string{err.Error()}}
				}
				logResult(ctx, result)

				if err := results.Save(result); err != nil {
					log.Ctx(ctx).Error().Err(err).Str("page", spec.Name).Msg("failed to store result")
				}
				if !result.Passed {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}

	for _, spec := range cfg.Pages {
		select {
		case specs <- spec:
		case <-ctx.Done():
		}
	}
	close(specs)
	wg.Wait()
	return failed
}

func checkPage(ctx context.Context, cfg *pagek.Config, pool *browser.Pool, runID string, spec *check.PageSpec, screenshots bool) (*check.Result, error) {
	tab, err := pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Return(ctx, tab)

	setup, err := cfg.NewSetup(tab)
	if err != nil {
		return nil, err
	}
	runner := check.NewRunner(setup, runID)
	runner.Screenshots = screenshots
	return runner.Run(ctx, spec), nil
}

func logResult(ctx context.Context, result *check.Result) {
	if result.Passed {
		log.Ctx(ctx).Info().Str("page", result.Page).Str("url", result.URL).Dur("took", result.Duration).Msg("passed")
		return
	}
	log.Ctx(ctx).Warn().Str("page", result.Page).Str("url", result.URL).Strs("failures", result.Failures).Msg("failed")
}

// checkConfig loads the config file if given, flags set on the command line win
func checkConfig(ctx *cli.Context) (*pagek.Config, error) {
	cfg := pagek.DefaultConfig()
	if path := ctx.String("config"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if cfg, err = pagek.LoadConfig(f); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", path)
		}
	}

	if ctx.IsSet("url") || ctx.String("config") == "" {
		cfg.BaseURL = ctx.String("url")
	}
	if ctx.IsSet("datadir") || cfg.DataPath == "" {
		cfg.DataPath = ctx.String("datadir")
	}
	if ctx.IsSet("chrome") {
		cfg.ChromePath = ctx.String("chrome")
	}
	if ctx.IsSet("numbrowsers") {
		cfg.NumBrowsers = ctx.Int("numbrowsers")
	}
	if ctx.IsSet("leaser") {
		cfg.Leaser = pagek.LeaserType(ctx.String("leaser"))
	}
	return cfg, cfg.Validate()
}
