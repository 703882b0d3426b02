package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cryptoapp-backend/internal/domain"
)

type fakeFeed struct {
	quotes map[string]decimal.Decimal
	err    error
	calls  int
}

func (f *fakeFeed) Quotes(ctx context.Context) (map[string]decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

func setupService(t *testing.T, feed *fakeFeed) (*Service, *gorm.DB, uuid.UUID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Portfolio{}, &domain.Holding{}))

	user := &domain.User{Email: "holder@test.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&domain.Portfolio{UserID: user.UserID}).Error)

	svc := &Service{
		Repo:   &GormRepository{DB: db},
		Feed:   feed,
		Engine: NewEngine(DefaultPolicies()),
	}
	return svc, db, user.UserID
}

func quotesOf(t *testing.T, pairs map[string]string) map[string]decimal.Decimal {
	t.Helper()
	out := make(map[string]decimal.Decimal, len(pairs))
	for sym, price := range pairs {
		out[sym] = mustDecimal(t, price)
	}
	return out
}

func TestUpload_PersistsHoldingsAndInitialValue(t *testing.T) {
	svc, _, userID := setupService(t, &fakeFeed{})
	ctx := context.Background()

	result, err := svc.Upload(ctx, userID, "10|BTC|50000\n2|ETH|3000")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Skipped)

	p, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, p.Holdings, 2)
	assert.True(t, p.InitialPortfolioValue.Equal(mustDecimal(t, "506000")))
	assert.True(t, p.CurrentPortfolioValue.IsZero())
}

func TestUpload_SkipsMalformedLinesAndContinues(t *testing.T) {
	svc, _, userID := setupService(t, &fakeFeed{})
	ctx := context.Background()

	result, err := svc.Upload(ctx, userID, "not-a-line\n10|BTC|50000")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 1, result.Skipped)

	p, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, "BTC", p.Holdings[0].Coin)
}

func TestUpload_DuplicateSymbolFirstWinsAcrossUploads(t *testing.T) {
	svc, _, userID := setupService(t, &fakeFeed{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, userID, "10|BTC|50000\n3|BTC|1")
	require.NoError(t, err)
	result, err := svc.Upload(ctx, userID, "99|BTC|2")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Accepted)
	assert.Equal(t, 1, result.Duplicates)

	p, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, p.Holdings, 1)
	assert.True(t, p.Holdings[0].Amount.Equal(mustDecimal(t, "10")))
	assert.True(t, p.Holdings[0].InitialBuyPrice.Equal(mustDecimal(t, "50000")))
}

func TestUpload_CRLFFile(t *testing.T) {
	svc, _, userID := setupService(t, &fakeFeed{})
	ctx := context.Background()

	result, err := svc.Upload(ctx, userID, "10|BTC|50000\r\n2|ETH|3000\r\n")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Skipped)
}

func TestUpload_UnknownUser(t *testing.T) {
	svc, _, _ := setupService(t, &fakeFeed{})

	_, err := svc.Upload(context.Background(), uuid.New(), "10|BTC|50000")
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
}

func TestRefresh_RepricesAndPersists(t *testing.T) {
	feed := &fakeFeed{quotes: map[string]decimal.Decimal{}}
	svc, _, userID := setupService(t, feed)
	ctx := context.Background()

	_, err := svc.Upload(ctx, userID, "10|BTC|50000\n2|ETH|3000")
	require.NoError(t, err)

	feed.quotes = quotesOf(t, map[string]string{"BTC": "60000", "ETH": "4000"})
	p, err := svc.Refresh(ctx, userID)
	require.NoError(t, err)
	assert.True(t, p.CurrentPortfolioValue.Equal(mustDecimal(t, "608000")))
	assert.InDelta(t, 20.1581, p.OverallChangePercentage, 0.0001)

	// Reload from storage: the refreshed values were persisted.
	stored, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentPortfolioValue.Equal(mustDecimal(t, "608000")))
	for _, h := range stored.Holdings {
		switch h.Coin {
		case "BTC":
			assert.True(t, h.CurrentPrice.Equal(mustDecimal(t, "60000")))
			assert.InDelta(t, 20.0, h.ChangePercentage, 0.0001)
		case "ETH":
			assert.True(t, h.CurrentPrice.Equal(mustDecimal(t, "4000")))
			assert.InDelta(t, 33.3333, h.ChangePercentage, 0.0001)
		}
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	feed := &fakeFeed{quotes: map[string]decimal.Decimal{}}
	svc, _, userID := setupService(t, feed)
	ctx := context.Background()

	_, err := svc.Upload(ctx, userID, "10|BTC|50000")
	require.NoError(t, err)

	feed.quotes = quotesOf(t, map[string]string{"BTC": "60000"})
	first, err := svc.Refresh(ctx, userID)
	require.NoError(t, err)
	second, err := svc.Refresh(ctx, userID)
	require.NoError(t, err)

	assert.True(t, first.CurrentPortfolioValue.Equal(second.CurrentPortfolioValue))
	assert.Equal(t, first.OverallChangePercentage, second.OverallChangePercentage)
}

func TestRefresh_FeedFailureLeavesPortfolioUntouched(t *testing.T) {
	feed := &fakeFeed{quotes: map[string]decimal.Decimal{}}
	svc, _, userID := setupService(t, feed)
	ctx := context.Background()

	_, err := svc.Upload(ctx, userID, "10|BTC|50000")
	require.NoError(t, err)
	feed.quotes = quotesOf(t, map[string]string{"BTC": "60000"})
	_, err = svc.Refresh(ctx, userID)
	require.NoError(t, err)

	feed.err = errors.New("boom")
	_, err = svc.Refresh(ctx, userID)
	assert.ErrorIs(t, err, ErrFeedUnavailable)

	p, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, p.CurrentPortfolioValue.Equal(mustDecimal(t, "600000")))
	require.Len(t, p.Holdings, 1)
	assert.True(t, p.Holdings[0].CurrentPrice.Equal(mustDecimal(t, "60000")))
}

func TestRefresh_ZeroInitialValueDoesNotFault(t *testing.T) {
	feed := &fakeFeed{quotes: map[string]decimal.Decimal{}}
	svc, _, userID := setupService(t, feed)
	ctx := context.Background()

	_, err := svc.Upload(ctx, userID, "10|FREE|0")
	require.NoError(t, err)

	feed.quotes = quotesOf(t, map[string]string{"FREE": "5"})
	p, err := svc.Refresh(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), p.OverallChangePercentage)
}

func TestSave_VersionConflict(t *testing.T) {
	svc, _, userID := setupService(t, &fakeFeed{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, userID, "10|BTC|50000")
	require.NoError(t, err)

	// Two loads of the same version; the second save must lose.
	first, err := svc.Repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	second, err := svc.Repo.FindByUser(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.Repo.Save(ctx, first))
	err = svc.Repo.Save(ctx, second)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestRefreshAll_SweepsEveryPortfolio(t *testing.T) {
	feed := &fakeFeed{quotes: map[string]decimal.Decimal{}}
	svc, db, userID := setupService(t, feed)
	ctx := context.Background()

	other := &domain.User{Email: "other@test.com", PasswordHash: "x"}
	require.NoError(t, db.Create(other).Error)
	require.NoError(t, db.Create(&domain.Portfolio{UserID: other.UserID}).Error)

	_, err := svc.Upload(ctx, userID, "1|BTC|100")
	require.NoError(t, err)

	feed.quotes = quotesOf(t, map[string]string{"BTC": "200"})
	lister := svc.Repo.(*GormRepository)
	require.NoError(t, svc.RefreshAll(ctx, lister))
	assert.Equal(t, 2, feed.calls)

	p, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, p.CurrentPortfolioValue.Equal(mustDecimal(t, "200")))
}
