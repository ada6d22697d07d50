package auth

import (
	"context"
	"errors"
	"testing"

	"premium-bot/internal/database/databasetest"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T) (*Checker, *databasetest.MockUserRepository, *databasetest.MockPremiumRepository, *databasetest.MockBanRepository) {
	users := new(databasetest.MockUserRepository)
	premium := new(databasetest.MockPremiumRepository)
	bans := new(databasetest.MockBanRepository)
	c, err := NewChecker(100, users, premium, bans)
	require.NoError(t, err)
	return c, users, premium, bans
}

func TestNewCheckerValidation(t *testing.T) {
	_, err := NewChecker(0, new(databasetest.MockUserRepository), new(databasetest.MockPremiumRepository), new(databasetest.MockBanRepository))
	assert.Error(t, err)

	_, err = NewChecker(1, nil, new(databasetest.MockPremiumRepository), new(databasetest.MockBanRepository))
	assert.Error(t, err)
}

func TestIsAdmin(t *testing.T) {
	c, _, _, _ := newTestChecker(t)
	assert.True(t, c.IsAdmin(100))
	assert.False(t, c.IsAdmin(101))
	assert.Equal(t, int64(100), c.AdminID())
}

func TestIsBanned(t *testing.T) {
	ctx := context.Background()

	t.Run("Banned", func(t *testing.T) {
		c, _, _, bans := newTestChecker(t)
		bans.On("IsBanned", ctx, int64(7)).Return(true, nil)
		assert.True(t, c.IsBanned(ctx, 7))
	})

	t.Run("LookupFailureFailsOpen", func(t *testing.T) {
		c, _, _, bans := newTestChecker(t)
		bans.On("IsBanned", ctx, int64(7)).Return(false, errors.New("connection reset"))
		assert.False(t, c.IsBanned(ctx, 7))
	})
}

func TestIsPremium(t *testing.T) {
	ctx := context.Background()

	t.Run("Premium", func(t *testing.T) {
		c, _, premium, _ := newTestChecker(t)
		premium.On("IsPremium", ctx, int64(7)).Return(true, nil)
		assert.True(t, c.IsPremium(ctx, 7))
	})

	t.Run("LookupFailureFailsOpen", func(t *testing.T) {
		c, _, premium, _ := newTestChecker(t)
		premium.On("IsPremium", ctx, int64(7)).Return(true, errors.New("timeout"))
		assert.False(t, c.IsPremium(ctx, 7))
	})
}

func TestSaveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("WithUsername", func(t *testing.T) {
		c, users, _, _ := newTestChecker(t)
		users.On("SaveUser", ctx, int64(5), "alice").Return(nil)
		c.SaveUser(ctx, &telego.User{ID: 5, Username: "alice"})
		users.AssertExpectations(t)
	})

	t.Run("WithoutUsername", func(t *testing.T) {
		c, users, _, _ := newTestChecker(t)
		users.On("SaveUser", ctx, int64(5), NoUsername).Return(errors.New("write failed"))
		c.SaveUser(ctx, &telego.User{ID: 5})
		users.AssertExpectations(t)
	})

	t.Run("NilUser", func(t *testing.T) {
		c, users, _, _ := newTestChecker(t)
		c.SaveUser(ctx, nil)
		users.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything, mock.Anything)
	})
}
