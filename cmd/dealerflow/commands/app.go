package commands

import (
	"fmt"
	"time"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/features"
	"github.com/dealerflow/dealerflow/internal/macro"
	"github.com/dealerflow/dealerflow/internal/marketdata"
	"github.com/dealerflow/dealerflow/internal/pipeline"
	"github.com/dealerflow/dealerflow/internal/scoring"
	"github.com/dealerflow/dealerflow/internal/universe"
	"github.com/dealerflow/dealerflow/pkg/config"
	"github.com/dealerflow/dealerflow/pkg/database"
	"github.com/dealerflow/dealerflow/pkg/logger"
)

// app holds the wired dependencies shared by the CLI commands
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	db       *database.DB
	universe *universe.Universe

	options   contracts.OptionRepository
	futures   contracts.FuturesRepository
	cot       contracts.COTRepository
	fx        contracts.FXRepository
	rates     contracts.RatesRepository
	equities  contracts.EquityFeatureStore
	commods   contracts.CommodityFeatureStore
	fxStore   contracts.FXFeatureStore
	macros    contracts.MacroFeatureStore
	scores    contracts.ScoreStore
	equityExt *features.EquityExtractor
	commodExt *features.CommodityExtractor
	fxExt     *features.FXExtractor
	macroExt  *macro.Extractor
	engine    *scoring.Engine
	runner    *pipeline.Runner
}

// newApp loads config, connects to the database and wires every stage
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	u, err := universe.LoadOrDefault(cfg.UniversePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load universe: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   log,
		db:       db,
		universe: u,
	}

	a.options = marketdata.NewOptionRepository(db.Pool, log)
	a.futures = marketdata.NewFuturesRepository(db.Pool, log)
	a.cot = marketdata.NewCOTRepository(db.Pool, log)
	a.fx = marketdata.NewFXRepository(db.Pool, log)
	a.rates = marketdata.NewRatesRepository(db.Pool, log)

	a.equities = features.NewEquityStore(db.Pool)
	a.commods = features.NewCommodityStore(db.Pool)
	a.fxStore = features.NewFXStore(db.Pool)
	a.macros = macro.NewStore(db.Pool)
	a.scores = scoring.NewStore(db.Pool)

	a.equityExt = features.NewEquityExtractor(a.options, a.equities, log)
	a.commodExt = features.NewCommodityExtractor(a.futures, a.cot, a.commods, log)
	a.fxExt = features.NewFXExtractor(a.fx, a.cot, a.fxStore, log)
	a.macroExt = macro.NewExtractor(a.rates, a.fx, a.options, a.macros, log)
	a.engine = scoring.NewEngine(a.equities, a.commods, a.fxStore, a.scores, log)
	a.runner = pipeline.NewRunner(a.equityExt, a.commodExt, a.fxExt, a.macroExt, a.engine, u, log)

	return a, nil
}

// Close releases held resources
func (a *app) Close() {
	a.db.Close()
}

// parseDateFlag parses a --date flag value, empty meaning today
func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return contracts.NormalizeDate(time.Now()), nil
	}
	asOf, err := time.Parse(contracts.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return contracts.NormalizeDate(asOf), nil
}
