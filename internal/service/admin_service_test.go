package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
)

type mockAdminUsers struct {
	mock.Mock
}

func (m *mockAdminUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAdminUsers) List(ctx context.Context, params repository.UserListParams) (*repository.UserListResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*repository.UserListResult), args.Error(1)
}

func (m *mockAdminUsers) UpdateRole(ctx context.Context, id uuid.UUID, role valueobject.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockAdminUsers) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockAdminUsers) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockAnalytics struct {
	mock.Mock
}

func (m *mockAnalytics) Summary(ctx context.Context, from, to time.Time) (*models.Analytics, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Analytics), args.Error(1)
}

var testAdmin = Actor{ID: uuid.New(), Role: valueobject.RoleAdmin}

func TestAdminService_ListUsersParsesRole(t *testing.T) {
	users := new(mockAdminUsers)
	svc := NewAdminService(users, new(mockAnalytics), NewCacheService(), time.Minute)

	users.On("List", mock.Anything, repository.UserListParams{Search: "ann", Role: "contractor", Limit: 10}).
		Return(&repository.UserListResult{Users: []models.User{{Email: "ann@example.com"}}, Total: 1}, nil)

	res, err := svc.ListUsers(context.Background(), testAdmin, "  ann ", "Contractor", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	users.AssertExpectations(t)

	_, err = svc.ListUsers(context.Background(), testAdmin, "", "superuser", 10, 0)
	assert.True(t, apperror.IsValidation(err))
}

func TestAdminService_UpdateRole(t *testing.T) {
	users := new(mockAdminUsers)
	svc := NewAdminService(users, new(mockAnalytics), NewCacheService(), time.Minute)
	target := uuid.New()

	users.On("UpdateRole", mock.Anything, target, valueobject.RoleAdmin).Return(nil)
	users.On("GetByID", mock.Anything, target).Return(&models.User{ID: target, Role: valueobject.RoleAdmin}, nil)

	u, err := svc.UpdateRole(context.Background(), testAdmin, target, "admin")
	require.NoError(t, err)
	assert.Equal(t, valueobject.RoleAdmin, u.Role)

	_, err = svc.UpdateRole(context.Background(), testAdmin, testAdmin.ID, "landlord")
	assert.True(t, apperror.IsValidation(err))

	missing := uuid.New()
	users.On("UpdateRole", mock.Anything, missing, valueobject.RoleLandlord).Return(repository.ErrUserNotFound)
	_, err = svc.UpdateRole(context.Background(), testAdmin, missing, "landlord")
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)

	users.AssertExpectations(t)
}

func TestAdminService_DeactivateRevokesSessions(t *testing.T) {
	users := new(mockAdminUsers)
	svc := NewAdminService(users, new(mockAnalytics), NewCacheService(), time.Minute)
	target := uuid.New()

	users.On("SetActive", mock.Anything, target, false).Return(nil)
	users.On("DeleteUserSessions", mock.Anything, target).Return(nil)
	users.On("GetByID", mock.Anything, target).Return(&models.User{ID: target, IsActive: false}, nil)

	u, err := svc.SetActive(context.Background(), testAdmin, target, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	users.AssertExpectations(t)

	_, err = svc.SetActive(context.Background(), testAdmin, testAdmin.ID, false)
	assert.True(t, apperror.IsValidation(err))
}

func TestAdminService_AnalyticsIsCached(t *testing.T) {
	analytics := new(mockAnalytics)
	cache := NewCacheService()
	svc := NewAdminService(new(mockAdminUsers), analytics, cache, time.Minute)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	summary := &models.Analytics{TotalCases: 3, Revenue: 11125}
	analytics.On("Summary", mock.Anything, now.AddDate(0, 0, -30), now).Return(summary, nil).Once()

	first, err := svc.Analytics(context.Background(), testAdmin, nil, nil)
	require.NoError(t, err)
	second, err := svc.Analytics(context.Background(), testAdmin, nil, nil)
	require.NoError(t, err)
	assert.Same(t, first, second)
	analytics.AssertNumberOfCalls(t, "Summary", 1)

	cache.InvalidateAnalytics()
	analytics.On("Summary", mock.Anything, now.AddDate(0, 0, -30), now).Return(&models.Analytics{TotalCases: 4}, nil).Once()
	third, err := svc.Analytics(context.Background(), testAdmin, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, third.TotalCases)
}

func TestAdminService_AnalyticsRange(t *testing.T) {
	svc := NewAdminService(new(mockAdminUsers), new(mockAnalytics), NewCacheService(), time.Minute)
	from := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Analytics(context.Background(), testAdmin, &from, &to)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Analytics(context.Background(), Actor{ID: uuid.New(), Role: valueobject.RoleLandlord}, nil, nil)
	assert.True(t, apperror.IsForbidden(err))
}
