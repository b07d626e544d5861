package harvest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/citymetrics/cityrank/internal/browser"
	"github.com/citymetrics/cityrank/internal/config"
	"github.com/citymetrics/cityrank/internal/model"
)

// Campaign drives the full dataset x year matrix over one browsing
// session. Units run sequentially in the fixed order declared by the
// configuration, with a politeness delay between units regardless of
// outcome.
type Campaign struct {
	// browser is the session, exclusively owned by the campaign for
	// its entire run and closed on every exit path.
	browser browser.Browser

	// cfg declares the matrix, pacing, and output locations.
	cfg *config.Config

	// harvester performs each unit.
	harvester *Harvester

	// logger for structured logging.
	logger *slog.Logger
}

// CampaignOption configures a Campaign.
type CampaignOption func(*Campaign)

// WithCampaignLogger sets a custom logger for the campaign.
func WithCampaignLogger(logger *slog.Logger) CampaignOption {
	return func(c *Campaign) {
		c.logger = logger
	}
}

// WithHarvester overrides the harvester, used by tests to inject a
// harvester bound to a fake session.
func WithHarvester(h *Harvester) CampaignOption {
	return func(c *Campaign) {
		c.harvester = h
	}
}

// NewCampaign creates a Campaign over the given session and
// configuration. The campaign takes ownership of the session.
func NewCampaign(b browser.Browser, cfg *config.Config, opts ...CampaignOption) *Campaign {
	c := &Campaign{
		browser: b,
		cfg:     cfg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.harvester == nil {
		c.harvester = NewHarvester(b, cfg, c.logger)
	}
	return c
}

// Run executes the campaign and returns its summary. Unit failures and
// empty units are recorded and skipped; the campaign continues. The
// returned error is non-nil only for cancellation or when no unit at
// all produced data (ErrNoHarvestData).
//
// The session is released before Run returns, on every path.
func (c *Campaign) Run(ctx context.Context) (*model.CampaignSummary, error) {
	defer func() {
		if err := c.browser.Close(); err != nil {
			c.logger.Error("failed to close browsing session", "error", err)
		}
	}()

	summary := &model.CampaignSummary{StartedAt: time.Now()}

	for _, dataset := range c.cfg.Datasets {
		for _, year := range c.cfg.Years {
			if err := ctx.Err(); err != nil {
				summary.FinishedAt = time.Now()
				return summary, err
			}

			start := time.Now()
			batch, err := c.harvester.HarvestUnit(ctx, dataset, year)
			result := model.UnitResult{
				Dataset:  dataset.ID,
				Year:     year,
				Duration: time.Since(start),
			}

			switch {
			case err == nil:
				result.Outcome = model.OutcomeWritten
				result.Rows = batch.RowCount()
				result.Path = batch.Path
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				// Interrupted mid-unit: the unit's partial output was
				// never renamed into place, so nothing is recorded.
				summary.FinishedAt = time.Now()
				return summary, err
			case errors.Is(err, ErrNoData):
				result.Outcome = model.OutcomeEmpty
				c.logger.Info("unit skipped: no data published",
					"dataset", dataset.ID, "year", year)
			default:
				result.Outcome = model.OutcomeFailed
				result.Err = err.Error()
				c.logger.Warn("unit failed, continuing campaign",
					"dataset", dataset.ID, "year", year, "error", err)
			}
			summary.Add(result)

			// Politeness delay between units regardless of outcome.
			if err := c.pause(ctx); err != nil {
				summary.FinishedAt = time.Now()
				return summary, err
			}
		}
	}

	summary.FinishedAt = time.Now()
	c.logger.Info("campaign finished",
		"attempted", summary.Attempted(),
		"written", summary.Written(),
		"empty", summary.Empty(),
		"failed", summary.Failed(),
		"rows", summary.TotalRows(),
	)

	if summary.Written() == 0 {
		return summary, ErrNoHarvestData
	}
	return summary, nil
}

// pause blocks for the politeness delay or until cancellation.
func (c *Campaign) pause(ctx context.Context) error {
	if c.cfg.PolitenessDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cfg.PolitenessDelay):
		return nil
	}
}
