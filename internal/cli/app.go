package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/cache"
	"github.com/ppiankov/coasterscan/internal/facts"
	"github.com/ppiankov/coasterscan/internal/llm"
	"github.com/ppiankov/coasterscan/internal/metrics"
	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/reconcile"
	"github.com/ppiankov/coasterscan/internal/review"
	"github.com/ppiankov/coasterscan/internal/sources"
	"github.com/ppiankov/coasterscan/internal/store"
)

// app holds the wired components for one command invocation
type app struct {
	cfg        model.Config
	store      store.Store
	metrics    *metrics.Prometheus
	completer  llm.Completer
	official   *sources.Official
	wikidata   *sources.Wikidata
	wikipedia  *sources.Wikipedia
	reconciler *reconcile.Reconciler
	review     *review.Service
}

// openStore loads config and opens only the store
func openStore() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	m := metrics.NewPrometheus()
	return &app{
		cfg:     cfg,
		store:   s,
		metrics: m,
		review:  review.NewService(s, m, logger),
	}, nil
}

// openApp wires the full reconciliation pipeline
func openApp() (*app, error) {
	a, err := openStore()
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	a.completer, err = llm.NewCompleter(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("create text capability: %w", err)
	}
	logger.Debug("text capability", zap.String("provider", a.completer.Name()))

	responses := cache.New(cfg.Cache)
	client := sources.ClientOptions{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		HTTPProxy:         cfg.HTTP.HTTPProxy,
		HTTPSProxy:        cfg.HTTP.HTTPSProxy,
		NoProxy:           cfg.HTTP.NoProxy,
		RequestsPerSecond: cfg.Sources.RequestsPerSecond,
		Cache:             responses,
		CacheTTL:          cfg.Cache.DiskTTL,
	}

	a.official = sources.NewOfficial(sources.OfficialOptions{
		Timeout:       cfg.HTTP.Timeout,
		UserAgent:     cfg.HTTP.UserAgent,
		MaxBytes:      cfg.HTTP.MaxBytes,
		RespectRobots: cfg.HTTP.RespectRobots,
		HTTPProxy:     cfg.HTTP.HTTPProxy,
		HTTPSProxy:    cfg.HTTP.HTTPSProxy,
		NoProxy:       cfg.HTTP.NoProxy,
	}, logger)
	a.wikidata = sources.NewWikidata(cfg.Sources.WikidataAPI, cfg.Sources.WikidataEntityURL, client, logger)
	a.wikipedia = sources.NewWikipedia(cfg.Sources.WikipediaAPI, client, logger)

	a.reconciler = reconcile.New(reconcile.Deps{
		Official:      a.official,
		KnowledgeBase: a.wikidata,
		Encyclopedia:  a.wikipedia,
		Extractor:     facts.NewExtractor(a.completer, logger),
		Summarizer:    facts.NewSummarizer(a.completer, logger),
		Recorder:      a.store,
		Metrics:       a.metrics,
		Logger:        logger,
	}, reconcile.Options{
		Lang:             cfg.Sources.Language,
		MaxSentences:     cfg.Sources.MaxSentences,
		OfficialMaxChars: cfg.Sources.OfficialMaxChars,
		NotesMaxChars:    cfg.Sources.NotesMaxChars,
	})
	return a, nil
}

// close writes the metrics textfile when configured and closes the store
func (a *app) close() error {
	if path := a.cfg.Log.MetricsFile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write metrics: %v\n", err)
		}
	}
	return a.store.Close()
}
