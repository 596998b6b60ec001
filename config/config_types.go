package config

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/costs"
	"github.com/ghantakiran/axion-stock-sub003/exchange"
	"github.com/ghantakiran/axion-stock-sub003/risk"
)

// RebalanceFrequency controls how often the engine opens the rebalance gate
type RebalanceFrequency string

const (
	// Daily rebalances on every date change
	Daily RebalanceFrequency = "daily"
	// Weekly rebalances on week crossings or seven elapsed days
	Weekly RebalanceFrequency = "weekly"
	// Monthly rebalances on month boundary crossings or 28 elapsed days,
	// whichever happens first
	Monthly RebalanceFrequency = "monthly"
	// Quarterly rebalances on quarter crossings or 90 elapsed days
	Quarterly RebalanceFrequency = "quarterly"
	// Yearly rebalances on year crossings or 365 elapsed days
	Yearly RebalanceFrequency = "yearly"
)

var (
	// ErrBadDateRange is returned when the end date does not follow the
	// start date
	ErrBadDateRange = errors.New("end date must be after start date")
	// ErrBadInitialCapital is returned for non-positive starting funds
	ErrBadInitialCapital = errors.New("initial capital must be positive")
	// ErrUnknownRebalanceFrequency is returned for values outside the
	// closed set
	ErrUnknownRebalanceFrequency = errors.New("unknown rebalance frequency")
	errNegativeParticipation     = errors.New("max participation rate cannot be negative")
)

// StrategySettings names the strategy to load and its parameters
type StrategySettings struct {
	Name           string         `json:"name" mapstructure:"name"`
	CustomSettings map[string]any `json:"custom-settings" mapstructure:"custom-settings"`
}

// Config is the complete engine configuration. Every field is
// independently overridable; Validate fails fast on malformed values
type Config struct {
	StartDate          time.Time          `json:"start-date" mapstructure:"start-date"`
	EndDate            time.Time          `json:"end-date" mapstructure:"end-date"`
	InitialCapital     decimal.Decimal    `json:"initial-capital" mapstructure:"initial-capital"`
	RiskFreeRate       decimal.Decimal    `json:"risk-free-rate" mapstructure:"risk-free-rate"`
	BenchmarkSymbol    string             `json:"benchmark-symbol" mapstructure:"benchmark-symbol"`
	RebalanceFrequency RebalanceFrequency `json:"rebalance-frequency" mapstructure:"rebalance-frequency"`
	Seed               int64              `json:"seed" mapstructure:"seed"`
	Costs              costs.Settings     `json:"costs" mapstructure:"costs"`
	Execution          exchange.Settings  `json:"execution" mapstructure:"execution"`
	Risk               risk.Settings      `json:"risk" mapstructure:"risk"`
	Strategy           StrategySettings   `json:"strategy" mapstructure:"strategy"`
}

// EnvOverrides are scalar settings that may be supplied through the
// environment, taking precedence over the file values
type EnvOverrides struct {
	Seed            *int64  `envconfig:"BACKTESTER_SEED"`
	InitialCapital  *string `envconfig:"BACKTESTER_INITIAL_CAPITAL"`
	BenchmarkSymbol *string `envconfig:"BACKTESTER_BENCHMARK_SYMBOL"`
}
