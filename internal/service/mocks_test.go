package service

import (
	"context"
	"encoding/json"

	"dubbing-backend/internal/models"
	"dubbing-backend/internal/upstream"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) SetTargetLang(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockDubClient struct {
	mock.Mock
}

func (m *MockDubClient) RequestDub(ctx context.Context, req upstream.DubRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockLibraryClient struct {
	mock.Mock
}

func (m *MockLibraryClient) GetEntries(ctx context.Context, targetLang string) ([]models.LibraryEntry, error) {
	args := m.Called(ctx, targetLang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LibraryEntry), args.Error(1)
}

func (m *MockLibraryClient) GetTranscript(ctx context.Context, dubbingID, targetLang string) ([]string, error) {
	args := m.Called(ctx, dubbingID, targetLang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
