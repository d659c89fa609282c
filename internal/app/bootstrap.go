package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/enfq/app/internal/auth"
	"github.com/enfq/app/internal/config"
	"github.com/enfq/app/internal/database"
	"github.com/enfq/app/internal/generator"
	"github.com/enfq/app/internal/payment"
	"github.com/enfq/app/internal/profile"
)

// statusTimeout bounds a single payment status request.
const statusTimeout = 10 * time.Second

// Runtime is a fully wired App and the resources it holds.
type Runtime struct {
	App       *App
	Tokens    *auth.Issuer
	Generator *generator.Generator
	// Simulator is set when payments are simulated.
	Simulator *payment.Simulator

	db *sql.DB
}

// Build migrates the profile database, opens the store and wires the
// question source and payment gate described by cfg. opener presents the
// checkout page.
func Build(ctx context.Context, cfg *config.Config, opener payment.Opener, logger *slog.Logger) (*Runtime, error) {
	if err := database.Migrate(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		return nil, err
	}
	db, err := database.Connect(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	store, err := profile.Open(ctx, db, cfg.Database.ProfileName, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open profile: %w", err)
	}

	llm, err := generator.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	gen := generator.New(llm, cfg.LLM.Model, logger,
		generator.WithRetries(cfg.LLM.MaxRetries, time.Second),
		generator.WithRequestTimeout(cfg.LLM.RequestTimeout))

	rt := &Runtime{Generator: gen, db: db}

	var status payment.StatusSource
	if cfg.Payment.Simulate {
		rt.Simulator = payment.NewSimulator(cfg.Payment.SimulateAfter, opener)
		opener, status = rt.Simulator, rt.Simulator
		logger.Warn("payments are simulated", "approve_after", cfg.Payment.SimulateAfter)
	} else {
		status = payment.NewHTTPStatusSource(cfg.Payment.StatusURL, statusTimeout)
	}
	gate := payment.NewGate(cfg.Payment.CheckoutURL, opener, status,
		cfg.Payment.PollInterval, cfg.Payment.MaxAttempts, logger)

	rt.App = New(store, gen, gate, cfg.Support.ContactURL, logger)
	rt.Tokens = auth.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	return rt, nil
}

// Close stops the app's timers and releases the database.
func (r *Runtime) Close() error {
	r.App.Close()
	return r.db.Close()
}
