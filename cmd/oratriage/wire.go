package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/agents"
	"github.com/mohammad-safakhou/oratriage/config"
	"github.com/mohammad-safakhou/oratriage/internal/agent/core"
	"github.com/mohammad-safakhou/oratriage/internal/checkpoint"
	"github.com/mohammad-safakhou/oratriage/internal/corpus"
	"github.com/mohammad-safakhou/oratriage/internal/httpclient"
	"github.com/mohammad-safakhou/oratriage/internal/logging"
	"github.com/mohammad-safakhou/oratriage/internal/telemetry"
	"github.com/mohammad-safakhou/oratriage/provider"
	web_fetch "github.com/mohammad-safakhou/oratriage/tools/web_fetch"
	web_search "github.com/mohammad-safakhou/oratriage/tools/web_search"
)

// base holds what every command needs.
type base struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadBase(cfgPath string) (*base, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.General.LogLevel, cfg.General.Debug)
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}
	return &base{cfg: cfg, logger: logger}, nil
}

// app is the fully wired troubleshooting runtime.
type app struct {
	*base
	retriever    *corpus.Retriever
	checkpoints  checkpoint.Store
	orchestrator *core.Orchestrator
	closers      []func(context.Context) error
}

func bootstrap(ctx context.Context, cfgPath string) (*app, error) {
	b, err := loadBase(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg := b.cfg
	a := &app{base: b}

	tracing, _, err := telemetry.SetupTracing(ctx, cfg.Telemetry.ServiceName, version, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, tracing.Shutdown)

	tls := func(o httpclient.Options) httpclient.Options {
		o.InsecureSkipVerify = cfg.TLS.InsecureSkipVerify
		o.CABundle = cfg.TLS.CABundle
		return o
	}
	searchClient, err := httpclient.New(tls(httpclient.Options{Timeout: cfg.Search.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}
	fetchClient, err := httpclient.New(tls(httpclient.Options{Timeout: cfg.Fetch.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("fetch client: %w", err)
	}
	llmClient, err := httpclient.New(tls(httpclient.Options{Timeout: cfg.LLM.Timeout, Retries: cfg.LLM.MaxRetries}))
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	chain, err := web_search.Build(web_search.Provider(cfg.Search.Backend), web_search.Settings{
		SerperAPIKey:   cfg.Search.SerperAPIKey,
		SerperEndpoint: cfg.Search.SerperEndpoint,
		BraveAPIKey:    cfg.Search.BraveAPIKey,
		BraveEndpoint:  cfg.Search.BraveEndpoint,
		HTMLEndpoint:   cfg.Search.HTMLEndpoint,
	}, searchClient, b.logger)
	if err != nil {
		return nil, fmt.Errorf("search chain: %w", err)
	}
	extractor, err := web_fetch.New(web_fetch.RendererType(cfg.Fetch.Renderer), fetchClient, cfg.Fetch.Timeout, cfg.Fetch.MaxChars, b.logger)
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}
	collector := core.NewCollector(chain, extractor, core.CollectorOptions{
		MaxResults: cfg.Search.MaxResults,
		Region:     cfg.Search.Region,
		Tiers:      core.DefaultTiers(cfg.Search.MinLenPrimary, cfg.Search.MinLenFallback, cfg.Search.LastResortPass),
	}, b.logger)

	llm, err := provider.NewProvider(cfg.LLM, llmClient)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	store, closeStore, err := checkpoint.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return closeStore() })
	a.checkpoints = store

	a.retriever = corpus.NewRetriever(b.logger)
	a.closers = append(a.closers, func(context.Context) error { return a.retriever.Close() })

	a.orchestrator = core.NewOrchestrator(
		a.retriever,
		agents.NewAnalyzer(llm, b.logger),
		agents.NewWriter(llm, b.logger),
		collector,
		store,
		core.Options{TopK: cfg.Corpus.TopK, Strict: cfg.Search.StrictMatch, DefaultCorpusDir: cfg.Corpus.DefaultDir},
		b.logger,
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("shutdown", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
