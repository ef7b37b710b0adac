package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/config"
	"github.com/payshield/payment-triage/internal/failure"
	"github.com/payshield/payment-triage/internal/metrics"
	"github.com/payshield/payment-triage/internal/overlay"
	"github.com/payshield/payment-triage/internal/remediation"
	"github.com/payshield/payment-triage/internal/router"
	"github.com/payshield/payment-triage/internal/rules"
	"github.com/payshield/payment-triage/internal/xsd"
)

// app holds the wired pipeline components shared by all commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	engine    *rules.Engine
	assessor  *overlay.Assessor
	analyzer  *failure.Analyzer
	router    *router.Router
	collector *metrics.Collector
}

// buildApp loads configuration and the declarative tables, then wires the
// pipeline. Missing rule or reason-code files fail here, at startup; they
// are never surfaced mid-request.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	baseRules, err := rules.LoadRegistry(cfg.Rules.BasePath)
	if err != nil {
		return nil, err
	}
	overlayRules, err := rules.LoadOverlayRegistry(cfg.Rules.OverlayPath)
	if err != nil {
		return nil, err
	}
	codes, err := failure.LoadCodeTable(cfg.Rules.ReasonCodesPath)
	if err != nil {
		return nil, err
	}

	engine := rules.NewEngine(baseRules, logger)
	assessor := overlay.NewAssessor(engine, overlayRules, logger)
	analyzer := failure.NewAnalyzer(codes, logger)

	// Keep the interface variables nil when a collaborator is not
	// configured; a typed nil pointer would defeat the router's
	// capability checks.
	var schema router.SchemaValidator
	if c := xsd.NewClient(cfg.Schema, logger); c != nil {
		schema = c
	}
	var suggester router.Suggester
	if c := remediation.NewClient(cfg.Remediation, logger); c != nil {
		suggester = c
	}

	collector := metrics.NewCollector()
	rt := router.New(engine, assessor, analyzer, schema, suggester, collector, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		engine:    engine,
		assessor:  assessor,
		analyzer:  analyzer,
		router:    rt,
		collector: collector,
	}, nil
}
