// Package databasetest provides testify mocks of the database repositories.
package databasetest

import (
	"context"
	"time"

	"premium-bot/internal/database/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks database.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, userID int64, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPremiumRepository mocks database.PremiumRepository.
type MockPremiumRepository struct {
	mock.Mock
}

func (m *MockPremiumRepository) IsPremium(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPremiumRepository) AddPremium(ctx context.Context, member models.PremiumMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockPremiumRepository) RemovePremium(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockPremiumRepository) ListPremium(ctx context.Context) ([]models.PremiumMember, error) {
	args := m.Called(ctx)
	members, _ := args.Get(0).([]models.PremiumMember)
	return members, args.Error(1)
}

func (m *MockPremiumRepository) CountPremium(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBanRepository mocks database.BanRepository.
type MockBanRepository struct {
	mock.Mock
}

func (m *MockBanRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBanRepository) Ban(ctx context.Context, ban models.Ban) error {
	args := m.Called(ctx, ban)
	return args.Error(0)
}

func (m *MockBanRepository) Unban(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBanRepository) ListBans(ctx context.Context) ([]models.Ban, error) {
	args := m.Called(ctx)
	bans, _ := args.Get(0).([]models.Ban)
	return bans, args.Error(1)
}

func (m *MockBanRepository) CountBans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockChannelRepository mocks database.ChannelRepository.
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) AddChannel(ctx context.Context, channel models.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelRepository) RemoveChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockChannelRepository) ListChannels(ctx context.Context) ([]models.Channel, error) {
	args := m.Called(ctx)
	channels, _ := args.Get(0).([]models.Channel)
	return channels, args.Error(1)
}

func (m *MockChannelRepository) CountChannels(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBroadcastLogRepository mocks database.BroadcastLogRepository.
type MockBroadcastLogRepository struct {
	mock.Mock
}

func (m *MockBroadcastLogRepository) LogBroadcast(ctx context.Context, entry models.BroadcastLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBroadcastLogRepository) CountBroadcastsSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}
