package portfolio

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cryptoapp-backend/internal/domain"
)

// Repository owns persistence of the Portfolio aggregate. A single Save
// persists the whole aggregate (holdings plus totals) atomically from the
// caller's point of view; earlier pipeline stages only mutate the in-memory
// copy.
type Repository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error)
	Save(ctx context.Context, p *domain.Portfolio) error
}

// UserLister enumerates portfolio owners, for the periodic refresh job.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// GormRepository implements Repository and UserLister on GORM.
type GormRepository struct {
	DB *gorm.DB
}

func (r *GormRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := r.DB.WithContext(ctx).
		Preload("Holdings").
		Where("user_id = ?", userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortfolioNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Save writes totals and holdings in one transaction, guarded by the
// portfolio's version token. A version mismatch means a concurrent save won;
// the caller gets ErrVersionConflict and may reload and retry.
func (r *GormRepository) Save(ctx context.Context, p *domain.Portfolio) error {
	loadedVersion := p.Version
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Portfolio{}).
			Where("portfolio_id = ? AND version = ?", p.PortfolioID, loadedVersion).
			Updates(map[string]interface{}{
				"initial_portfolio_value":   p.InitialPortfolioValue,
				"current_portfolio_value":   p.CurrentPortfolioValue,
				"overall_change_percentage": p.OverallChangePercentage,
				"last_upload_report":        p.LastUploadReport,
				"version":                   loadedVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		for i := range p.Holdings {
			h := &p.Holdings[i]
			h.PortfolioID = p.PortfolioID
			if h.HoldingID == uuid.Nil {
				if err := tx.Create(h).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&domain.Holding{}).
				Where("holding_id = ?", h.HoldingID).
				Updates(map[string]interface{}{
					"current_price":     h.CurrentPrice,
					"change_percentage": h.ChangePercentage,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.Version = loadedVersion + 1
	return nil
}

// ListUserIDs returns the owner of every portfolio, for the refresh job.
func (r *GormRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).
		Model(&domain.Portfolio{}).
		Pluck("user_id", &ids).Error
	return ids, err
}
