package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/validation"
)

// AdminUserRepository операции администратора над учётными записями.
type AdminUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params repository.UserListParams) (*repository.UserListResult, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role valueobject.Role) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}

// AnalyticsRepository агрегаты для панели администратора.
type AnalyticsRepository interface {
	Summary(ctx context.Context, from, to time.Time) (*models.Analytics, error)
}

// AdminService пользователи и аналитика для администратора.
type AdminService struct {
	users        AdminUserRepository
	analytics    AnalyticsRepository
	cache        *CacheService
	analyticsTTL time.Duration
	now          func() time.Time
}

// NewAdminService создаёт сервис администратора.
func NewAdminService(users AdminUserRepository, analytics AnalyticsRepository, cache *CacheService, analyticsTTL time.Duration) *AdminService {
	if analyticsTTL <= 0 {
		analyticsTTL = 5 * time.Minute
	}
	return &AdminService{
		users:        users,
		analytics:    analytics,
		cache:        cache,
		analyticsTTL: analyticsTTL,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListUsers возвращает пользователей с поиском по email и имени.
func (s *AdminService) ListUsers(ctx context.Context, actor Actor, search, role string, limit, offset int) (*repository.UserListResult, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	if role != "" {
		parsed, err := valueobject.ParseRole(role)
		if err != nil {
			return nil, err
		}
		role = string(parsed)
	}
	return s.users.List(ctx, repository.UserListParams{
		Search: validation.NormalizeSearch(search),
		Role:   role,
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateRole меняет роль пользователя. Свою роль администратор не меняет.
func (s *AdminService) UpdateRole(ctx context.Context, actor Actor, userID uuid.UUID, rawRole string) (*models.User, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	role, err := valueobject.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, apperror.New(apperror.ErrCodeValidation, "you cannot change your own role")
	}

	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"user_id": userID,
		"role":    role,
		"by":      actor.ID,
	}).Info("user role changed")

	return s.loadUser(ctx, userID)
}

// SetActive блокирует или разблокирует учётную запись. При блокировке сессии удаляются.
func (s *AdminService) SetActive(ctx context.Context, actor Actor, userID uuid.UUID, active bool) (*models.User, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	if userID == actor.ID && !active {
		return nil, apperror.New(apperror.ErrCodeValidation, "you cannot deactivate your own account")
	}

	if err := s.users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	if !active {
		if err := s.users.DeleteUserSessions(ctx, userID); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("user_id", userID).Warn("admin service: failed to revoke sessions")
		}
	}

	return s.loadUser(ctx, userID)
}

func (s *AdminService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Analytics возвращает сводку за период, по умолчанию за последние 30 дней.
func (s *AdminService) Analytics(ctx context.Context, actor Actor, from, to *time.Time) (*models.Analytics, error) {
	if err := actor.require(valueobject.RoleAdmin); err != nil {
		return nil, err
	}

	end := s.now()
	if to != nil {
		end = to.UTC()
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = from.UTC()
	}
	if start.After(end) {
		return nil, apperror.New(apperror.ErrCodeValidation, "from must not be after to")
	}
	if end.Sub(start) > 366*24*time.Hour {
		return nil, apperror.New(apperror.ErrCodeValidation, "date range cannot exceed one year")
	}

	value, err := s.cache.GetOrSet(ctx, AnalyticsCacheKey(start, end), s.analyticsTTL, func() (interface{}, error) {
		return s.analytics.Summary(ctx, start, end)
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.Analytics), nil
}
