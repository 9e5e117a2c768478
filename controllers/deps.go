package controllers

import (
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/cache"
	"github.com/Xaeon-Innovation/Medflow-sub000/classification"
	"github.com/Xaeon-Innovation/Medflow-sub000/commission"
	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/targets"
)

var (
	loader     *classification.ContextLoader
	ledger     *commission.Ledger
	calculator *targets.Calculator
	appCache   cache.Cache
	logger     *zap.Logger
)

// Init wires the shared services. Must be called after config.ConnectDB.
func Init(c cache.Cache, l *zap.Logger) {
	loader = classification.NewContextLoader(config.DB)
	loader.Log = l
	ledger = commission.NewLedger(config.DB)
	calculator = targets.NewCalculator(config.DB)
	calculator.Loader.Log = l
	appCache = c
	logger = l
}
