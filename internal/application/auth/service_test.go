package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cryptoapp-backend/internal/domain"
)

func setupAuthService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Portfolio{}, &domain.Holding{}))
	return &Service{DB: db}, db
}

func TestRegister_CreatesUserWithEmptyPortfolio(t *testing.T) {
	svc, db := setupAuthService(t)

	u, err := svc.Register(context.Background(), Credentials{Email: "New@Test.com", Password: "Pass1!word"})
	require.NoError(t, err)
	assert.Equal(t, "new@test.com", u.Email)
	assert.NotEqual(t, "Pass1!word", u.PasswordHash)

	var p domain.Portfolio
	require.NoError(t, db.Where("user_id = ?", u.UserID).First(&p).Error)
	assert.True(t, p.InitialPortfolioValue.IsZero())
	assert.True(t, p.CurrentPortfolioValue.IsZero())
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)

	_, err = svc.Register(ctx, Credentials{Email: "not-an-email", Password: "Pass1!word"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, Credentials{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@b.com", Password: "Pass1!word"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, Credentials{Email: "A@B.com", Password: "Pass1!word"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestFindByEmailAndPassword(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, Credentials{Email: "a@b.com", Password: "Pass1!word"})
	require.NoError(t, err)

	found, err := svc.FindByEmailAndPassword(ctx, "a@b.com", "Pass1!word")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, found.UserID)

	_, err = svc.FindByEmailAndPassword(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, err = svc.FindByEmailAndPassword(ctx, "missing@b.com", "Pass1!word")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestVerifyUser(t *testing.T) {
	_, err := VerifyUser(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	u, err := VerifyUser(map[string]interface{}{"user_id": "abc", "email": "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "abc", u.UserID)
	assert.Equal(t, "a@b.com", u.Email)
}
