package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	"github.com/cardnest/cardnest-api/internal/repository"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

type changeRequestStore interface {
	Create(ctx context.Context, request *models.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequestDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.ChangeRequestStatus, reviewerID string, reviewedAt time.Time) error
}

type changeRequestStudentStore interface {
	FindByNaturalKey(ctx context.Context, institutionID, rollNo, section, class string) (*models.Student, error)
	UpdateField(ctx context.Context, studentID, column, value string) error
}

type changeRequestAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ChangeRequestService orchestrates the change-request workflow: a student
// proposes field edits to their own record, and an admin of the owning
// institution approves or rejects each proposal exactly once.
type ChangeRequestService struct {
	repo     changeRequestStore
	students changeRequestStudentStore
	audit    changeRequestAuditLogger
	logger   *zap.Logger
}

// NewChangeRequestService constructs the service.
func NewChangeRequestService(repo changeRequestStore, students changeRequestStudentStore, audit changeRequestAuditLogger, logger *zap.Logger) *ChangeRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeRequestService{repo: repo, students: students, audit: audit, logger: logger}
}

// Submit files one pending change request per non-empty field change. The
// natural key tuple must resolve to the submitting student's own row.
// Duplicate pending submissions are accepted and create separate rows.
func (s *ChangeRequestService) Submit(ctx context.Context, req dto.SubmitChangeRequest, claims *models.SessionClaims) ([]models.ChangeRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleStudent {
		return nil, appErrors.ErrForbidden
	}
	if claims.InstitutionID == nil || *claims.InstitutionID != req.InstitutionID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request does not target your institution")
	}

	student, err := s.students.FindByNaturalKey(ctx, req.InstitutionID, req.RollNo, req.Section, req.Class)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "request does not target your record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.ID != claims.PrincipalID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request does not target your record")
	}

	changes := make([]dto.FieldChange, 0, len(req.Changes))
	for _, change := range req.Changes {
		if strings.TrimSpace(change.FieldName) == "" {
			// Lenient by contract: empty field names are dropped, not rejected.
			continue
		}
		column, ok := repository.EditableStudentField(change.FieldName)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "field is not editable: "+change.FieldName)
		}
		change.FieldName = column
		changes = append(changes, change)
	}
	if len(changes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "changes must contain at least one field")
	}

	requests := make([]models.ChangeRequest, 0, len(changes))
	for _, change := range changes {
		request := models.ChangeRequest{
			InstitutionID: req.InstitutionID,
			StudentID:     student.ID,
			RollNo:        req.RollNo,
			Section:       req.Section,
			Class:         req.Class,
			FieldName:     change.FieldName,
			OldValue:      change.OldValue,
			NewValue:      change.NewValue,
			Status:        models.ChangeRequestStatusPending,
		}
		if err := s.repo.Create(ctx, &request); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create change request")
		}
		requests = append(requests, request)
	}

	s.emitAudit(ctx, claims, models.AuditActionChangeRequestSubmit, student.ID, changes)
	return requests, nil
}

// Review applies a reviewer decision. Approval writes the new value through
// the typed column setter and transitions the request to admin_approved;
// rejection transitions to rejected without touching the student row. A
// request already in a terminal state yields Conflict.
func (s *ChangeRequestService) Review(ctx context.Context, req dto.ReviewChangeRequest, claims *models.SessionClaims) (*models.ChangeRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleInstituteAdmin {
		return nil, appErrors.ErrForbidden
	}

	request, err := s.repo.GetByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}

	if claims.InstitutionID == nil || request.InstitutionID != *claims.InstitutionID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "change request belongs to another institution")
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "change request already reviewed")
	}

	var status models.ChangeRequestStatus
	switch req.Decision {
	case "approve":
		status = models.ChangeRequestStatusApproved
	case "reject":
		status = models.ChangeRequestStatusRejected
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be approve or reject")
	}

	if status == models.ChangeRequestStatusApproved {
		column, ok := repository.EditableStudentField(request.FieldName)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "field is not editable: "+request.FieldName)
		}
		if err := s.students.UpdateField(ctx, request.StudentID, column, request.NewValue); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "student record no longer exists")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply change")
		}
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, request.ID, status, claims.PrincipalID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "change request already reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update change request")
	}

	request.Status = status
	request.ReviewedBy = &claims.PrincipalID
	request.ReviewedAt = &now

	s.emitAudit(ctx, claims, models.AuditActionChangeRequestReview, request.StudentID, map[string]string{
		"request_id": request.ID,
		"decision":   req.Decision,
		"field_name": request.FieldName,
	})
	return request, nil
}

// List returns the admin's institution requests with the given status joined
// with student name and branch, newest first.
func (s *ChangeRequestService) List(ctx context.Context, status models.ChangeRequestStatus, claims *models.SessionClaims) ([]models.ChangeRequestDetail, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleInstituteAdmin {
		return nil, appErrors.ErrForbidden
	}
	if claims.InstitutionID == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution bound to session")
	}
	if status == "" {
		status = models.ChangeRequestStatusPending
	}

	requests, err := s.repo.List(ctx, models.ChangeRequestFilter{
		InstitutionID: *claims.InstitutionID,
		Status:        status,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list change requests")
	}
	return requests, nil
}

// ListOwn returns the submitting student's own requests, newest first.
func (s *ChangeRequestService) ListOwn(ctx context.Context, claims *models.SessionClaims) ([]models.ChangeRequestDetail, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleStudent {
		return nil, appErrors.ErrForbidden
	}

	requests, err := s.repo.List(ctx, models.ChangeRequestFilter{StudentID: claims.PrincipalID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list change requests")
	}
	return requests, nil
}

func (s *ChangeRequestService) emitAudit(ctx context.Context, claims *models.SessionClaims, action, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	body, _ := json.Marshal(payload)
	role := claims.Role
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &claims.PrincipalID,
		Role:        &role,
		Action:      action,
		Resource:    "change_request",
		ResourceID:  &resourceID,
		NewValues:   body,
	}); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
