package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

type mockInstitutionRepo struct {
	institutions map[string]*models.Institution
}

func (m *mockInstitutionRepo) List(ctx context.Context) ([]models.Institution, error) {
	out := make([]models.Institution, 0, len(m.institutions))
	for _, institution := range m.institutions {
		out = append(out, *institution)
	}
	return out, nil
}

func (m *mockInstitutionRepo) FindByID(ctx context.Context, id string) (*models.Institution, error) {
	institution, ok := m.institutions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *institution
	return &copied, nil
}

func (m *mockInstitutionRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, institution := range m.institutions {
		if institution.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInstitutionRepo) Create(ctx context.Context, institution *models.Institution) error {
	if institution.ID == "" {
		institution.ID = fmt.Sprintf("inst-%d", len(m.institutions)+1)
	}
	copied := *institution
	m.institutions[institution.ID] = &copied
	return nil
}

type mockAdminRepo struct {
	admins    map[string]*models.InstituteAdmin
	deleted   []string
	passwords map[string]string
	designs   map[string]string
	audits    []models.AuditLog
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{
		admins:    map[string]*models.InstituteAdmin{},
		passwords: map[string]string{},
		designs:   map[string]string{},
	}
}

func (m *mockAdminRepo) FindInstituteAdminByID(ctx context.Context, id string) (*models.InstituteAdmin, error) {
	admin, ok := m.admins[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *admin
	return &copied, nil
}

func (m *mockAdminRepo) ListInstituteAdmins(ctx context.Context, institutionID string) ([]models.InstituteAdmin, error) {
	out := make([]models.InstituteAdmin, 0, len(m.admins))
	for _, admin := range m.admins {
		if institutionID != "" && admin.InstitutionID != institutionID {
			continue
		}
		out = append(out, *admin)
	}
	return out, nil
}

func (m *mockAdminRepo) CreateInstituteAdmin(ctx context.Context, admin *models.InstituteAdmin) error {
	if admin.ID == "" {
		admin.ID = fmt.Sprintf("admin-%d", len(m.admins)+1)
	}
	copied := *admin
	m.admins[admin.ID] = &copied
	return nil
}

func (m *mockAdminRepo) DeleteInstituteAdmin(ctx context.Context, id string) error {
	delete(m.admins, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAdminRepo) UpdateInstituteAdminPassword(ctx context.Context, id, passwordHash string) error {
	m.passwords[id] = passwordHash
	return nil
}

func (m *mockAdminRepo) AssignCardDesign(ctx context.Context, adminID, cardDesignID string) error {
	m.designs[adminID] = cardDesignID
	return nil
}

func (m *mockAdminRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

type stubDesignCatalog struct {
	designs map[string]*models.CardDesign
}

func (s stubDesignCatalog) FindGlobalByID(ctx context.Context, id string) (*models.CardDesign, error) {
	design, ok := s.designs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return design, nil
}

func superAdminClaims() *models.SessionClaims {
	return &models.SessionClaims{
		PrincipalID: "super-1",
		Role:        models.RoleSuperAdmin,
		LoginID:     "root@cardnest.io",
	}
}

func newInstitutionFixture() (*InstitutionService, *mockInstitutionRepo, *mockAdminRepo) {
	institutions := &mockInstitutionRepo{institutions: map[string]*models.Institution{
		"inst-1": {ID: "inst-1", Name: "Springdale College", Code: "SPR-01", Type: models.InstitutionTypeCollege},
	}}
	admins := newMockAdminRepo()
	catalog := stubDesignCatalog{designs: map[string]*models.CardDesign{
		"design-1": {ID: "design-1", Name: "Classic Blue"},
	}}
	return NewInstitutionService(institutions, admins, catalog, nil, nil), institutions, admins
}

func TestInstitutionCreate(t *testing.T) {
	svc, repo, _ := newInstitutionFixture()

	institution, err := svc.CreateInstitution(context.Background(), dto.CreateInstitutionRequest{
		Name: "Lakeside School",
		Code: "LKS-01",
		Type: "school",
		Logo: base64.StdEncoding.EncodeToString([]byte("png-bytes")),
	}, superAdminClaims())
	require.NoError(t, err)

	assert.Equal(t, models.InstitutionTypeSchool, institution.Type)
	assert.Equal(t, []byte("png-bytes"), institution.Logo)
	assert.Len(t, repo.institutions, 2)
}

func TestInstitutionCreateDuplicateCode(t *testing.T) {
	svc, _, _ := newInstitutionFixture()

	_, err := svc.CreateInstitution(context.Background(), dto.CreateInstitutionRequest{
		Name: "Another College",
		Code: "SPR-01",
		Type: "college",
	}, superAdminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestInstitutionOperationsRequireSuperAdmin(t *testing.T) {
	svc, _, _ := newInstitutionFixture()

	_, err := svc.ListInstitutions(context.Background(), adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.ListInstitutions(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestInstitutionCreateAdmin(t *testing.T) {
	svc, _, admins := newInstitutionFixture()

	admin, err := svc.CreateAdmin(context.Background(), dto.CreateInstituteAdminRequest{
		InstitutionID: "inst-1",
		Email:         "dean@springdale.edu",
		FullName:      "Dean Kapoor",
		Department:    "CSE",
		Password:      "secret123",
	}, superAdminClaims())
	require.NoError(t, err)

	require.NotNil(t, admin.Department)
	assert.Equal(t, "CSE", *admin.Department)
	require.NotNil(t, admin.ApprovedBy)
	assert.Equal(t, "super-1", *admin.ApprovedBy)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret123")))
	require.Len(t, admins.audits, 1)
	assert.Equal(t, models.AuditActionAdminCreate, admins.audits[0].Action)
}

func TestInstitutionCreateAdminUnknownInstitution(t *testing.T) {
	svc, _, _ := newInstitutionFixture()

	_, err := svc.CreateAdmin(context.Background(), dto.CreateInstituteAdminRequest{
		InstitutionID: "inst-404",
		Email:         "dean@springdale.edu",
		FullName:      "Dean Kapoor",
		Password:      "secret123",
	}, superAdminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInstitutionDeleteAdmin(t *testing.T) {
	svc, _, admins := newInstitutionFixture()
	admins.admins["admin-1"] = &models.InstituteAdmin{ID: "admin-1", InstitutionID: "inst-1", Email: "dean@springdale.edu"}

	require.NoError(t, svc.DeleteAdmin(context.Background(), "admin-1", superAdminClaims()))
	assert.Equal(t, []string{"admin-1"}, admins.deleted)

	err := svc.DeleteAdmin(context.Background(), "admin-1", superAdminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInstitutionChangeAdminPassword(t *testing.T) {
	svc, _, admins := newInstitutionFixture()
	admins.admins["admin-1"] = &models.InstituteAdmin{ID: "admin-1", InstitutionID: "inst-1"}

	err := svc.ChangeAdminPassword(context.Background(), "admin-1", "tiny", superAdminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ChangeAdminPassword(context.Background(), "admin-1", "secret123", superAdminClaims()))
	hash, ok := admins.passwords["admin-1"]
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")))
}

func TestInstitutionAssignCardDesign(t *testing.T) {
	svc, _, admins := newInstitutionFixture()
	admins.admins["admin-1"] = &models.InstituteAdmin{ID: "admin-1", InstitutionID: "inst-1"}

	require.NoError(t, svc.AssignCardDesign(context.Background(), "admin-1", "design-1", superAdminClaims()))
	assert.Equal(t, "design-1", admins.designs["admin-1"])

	err := svc.AssignCardDesign(context.Background(), "admin-1", "design-404", superAdminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
