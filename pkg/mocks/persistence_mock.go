package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
)

// MockPersistence is a mock implementation of the persistence.Persistence
// interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Sessions() persistence.SessionRepository {
	args := m.Called()

	return args.Get(0).(persistence.SessionRepository)
}

func (m *MockPersistence) Events() persistence.EventRepository {
	args := m.Called()

	return args.Get(0).(persistence.EventRepository)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockSessionRepository is a mock implementation of the
// persistence.SessionRepository interface.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)

	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) ConditionalUpdate(ctx context.Context, session *models.Session, expectedStep models.Step) error {
	args := m.Called(ctx, session, expectedStep)

	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockSessionRepository) ListByStatus(ctx context.Context, status models.SessionStatus, limit int) ([]*models.Session, error) {
	args := m.Called(ctx, status, limit)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockEventRepository is a mock implementation of the
// persistence.EventRepository interface.
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, event *models.WorkflowEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *MockEventRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.WorkflowEvent, error) {
	args := m.Called(ctx, sessionID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowEvent), args.Error(1)
}
