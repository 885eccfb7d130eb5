package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

type dashboardStudentCounter interface {
	CountByPaymentStatus(ctx context.Context, institutionID string, status models.PaymentStatus) (int, error)
	CountByBranch(ctx context.Context, institutionID string) ([]dto.BranchCount, error)
}

type dashboardEmployeeCounter interface {
	Count(ctx context.Context, institutionID string) (int, error)
}

type dashboardChangeRequestCounter interface {
	CountPending(ctx context.Context, institutionID string) (int, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService composes the institute admin dashboard aggregates. Results
// are cached per institution and department with a short TTL; cache failures
// degrade to a direct database read.
type DashboardService struct {
	students       dashboardStudentCounter
	employees      dashboardEmployeeCounter
	changeRequests dashboardChangeRequestCounter
	scope          tenantResolver
	cache          dashboardCache
	logger         *zap.Logger
	cacheTTL       time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(students dashboardStudentCounter, employees dashboardEmployeeCounter, changeRequests dashboardChangeRequestCounter, scope tenantResolver, cache dashboardCache, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		students:       students,
		employees:      employees,
		changeRequests: changeRequests,
		scope:          scope,
		cache:          cache,
		logger:         logger,
		cacheTTL:       cacheTTL,
	}
}

// Stats returns the caller institution's dashboard numbers and whether they
// came from cache.
func (s *DashboardService) Stats(ctx context.Context, claims *models.SessionClaims) (*dto.DashboardStats, bool, error) {
	if claims == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleInstituteAdmin {
		return nil, false, appErrors.ErrForbidden
	}
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, false, err
	}

	key := fmt.Sprintf("dashboard:%s:%s", scope.InstitutionID, scope.Department)
	if s.cache != nil {
		var cached dto.DashboardStats
		switch err := s.cache.Get(ctx, key, &cached); {
		case err == nil:
			return &cached, true, nil
		case errors.Is(err, appErrors.ErrCacheMiss):
		default:
			s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	stats, err := s.compose(ctx, scope)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return stats, false, nil
}

func (s *DashboardService) compose(ctx context.Context, scope TenantScope) (*dto.DashboardStats, error) {
	paid, err := s.students.CountByPaymentStatus(ctx, scope.InstitutionID, models.PaymentStatusPaid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count paid students")
	}
	unpaid, err := s.students.CountByPaymentStatus(ctx, scope.InstitutionID, models.PaymentStatusUnpaid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unpaid students")
	}
	branches, err := s.students.CountByBranch(ctx, scope.InstitutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students by branch")
	}
	employees, err := s.employees.Count(ctx, scope.InstitutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count employees")
	}
	pending, err := s.changeRequests.CountPending(ctx, scope.InstitutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending change requests")
	}

	// A department-bound admin sees only their branch slice of the roster.
	if scope.Department != "" {
		scoped := make([]dto.BranchCount, 0, 1)
		for _, branch := range branches {
			if branch.Branch == scope.Department {
				scoped = append(scoped, branch)
			}
		}
		branches = scoped
	}

	return &dto.DashboardStats{
		TotalStudents:         paid + unpaid,
		PaidStudents:          paid,
		UnpaidStudents:        unpaid,
		TotalEmployees:        employees,
		PendingChangeRequests: pending,
		StudentsByBranch:      branches,
	}, nil
}
