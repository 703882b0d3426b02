package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"cryptoapp-backend/internal/domain"
)

// QuoteSource supplies one batch of symbol→price quotes per call. A batch is
// valid only for the refresh it was fetched for.
type QuoteSource interface {
	Quotes(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Service sequences the upload and refresh pipelines: parser → merge →
// valuation → persistence. Each call is one strictly sequential unit of
// work; nothing is persisted until the final Save.
type Service struct {
	Repo   Repository
	Feed   QuoteSource
	Engine *Engine
}

// UploadResult reports what happened to each line of an uploaded file.
// Diagnostics only; skipped lines never fail the upload.
type UploadResult struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

type uploadReport struct {
	UploadResult
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload parses raw file text into holdings and merges them into the user's
// portfolio. Malformed lines are skipped and counted, never abort the batch.
// Storage failure fails the whole upload with nothing partially persisted.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, rawText string) (UploadResult, error) {
	p, err := s.Repo.FindByUser(ctx, userID)
	if err != nil {
		return UploadResult{}, err
	}

	var result UploadResult
	for _, line := range SplitLines(rawText) {
		parsed, err := ParseLine(line)
		if err != nil {
			result.Skipped++
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("upload: line skipped")
			continue
		}
		merged := s.Engine.Merge(p, domain.Holding{
			Coin:            parsed.Coin,
			Amount:          parsed.Amount,
			InitialBuyPrice: parsed.InitialBuyPrice,
		})
		if merged {
			result.Accepted++
		} else {
			result.Duplicates++
		}
	}

	s.Engine.Revalue(p)

	report, _ := json.Marshal(uploadReport{UploadResult: result, UploadedAt: time.Now().UTC()})
	p.LastUploadReport = datatypes.JSON(report)

	if err := s.Repo.Save(ctx, p); err != nil {
		return UploadResult{}, err
	}
	log.Info().
		Str("user_id", userID.String()).
		Int("accepted", result.Accepted).
		Int("duplicates", result.Duplicates).
		Int("skipped", result.Skipped).
		Msg("upload: file processed")
	return result, nil
}

// Refresh re-prices the user's portfolio against a fresh quote batch and
// recomputes all derived values. Feed failure leaves the stored portfolio
// unmodified. Safe to retry and safe to run on a timer.
func (s *Service) Refresh(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	quotes, err := s.Feed.Quotes(ctx)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("refresh: price feed failed")
		return nil, ErrFeedUnavailable
	}

	p, err := s.Repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.Engine.Reprice(p, quotes)

	if err := s.Repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads the user's portfolio aggregate.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	return s.Repo.FindByUser(ctx, userID)
}

// RefreshAll runs Refresh for every portfolio owner. Used by the scheduler;
// per-user failures are logged and do not stop the sweep.
func (s *Service) RefreshAll(ctx context.Context, users UserLister) error {
	ids, err := users.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.Refresh(ctx, id); err != nil {
			if errors.Is(err, ErrFeedUnavailable) {
				// The feed is down for everyone; stop the sweep early.
				return err
			}
			log.Error().Err(err).Str("user_id", id.String()).Msg("refresh sweep: portfolio skipped")
		}
	}
	return nil
}
