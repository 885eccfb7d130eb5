package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/service"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
	"github.com/cardnest/cardnest-api/pkg/response"
)

// InstitutionHandler exposes the super-admin tenant endpoints.
type InstitutionHandler struct {
	institutions *service.InstitutionService
}

// NewInstitutionHandler constructs InstitutionHandler.
func NewInstitutionHandler(institutions *service.InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{institutions: institutions}
}

// Create godoc
// @Summary Register an institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body dto.CreateInstitutionRequest true "Institution payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/institutions [post]
func (h *InstitutionHandler) Create(c *gin.Context) {
	var req dto.CreateInstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	institution, err := h.institutions.CreateInstitution(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, institution)
}

// List godoc
// @Summary List institutions
// @Tags Institutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/institutions [get]
func (h *InstitutionHandler) List(c *gin.Context) {
	institutions, err := h.institutions.ListInstitutions(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institutions, nil)
}

// Get godoc
// @Summary Get institution detail
// @Tags Institutions
// @Produce json
// @Param id path string true "Institution ID"
// @Success 200 {object} response.Envelope
// @Router /admin/institutions/{id} [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	institution, err := h.institutions.GetInstitution(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// CreateAdmin godoc
// @Summary Register an institute admin
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body dto.CreateInstituteAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Router /admin/institute-admins [post]
func (h *InstitutionHandler) CreateAdmin(c *gin.Context) {
	var req dto.CreateInstituteAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	admin, err := h.institutions.CreateAdmin(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// ListAdmins godoc
// @Summary List institute admins
// @Tags Institutions
// @Produce json
// @Param institutionId query string false "Filter by institution"
// @Success 200 {object} response.Envelope
// @Router /admin/institute-admins [get]
func (h *InstitutionHandler) ListAdmins(c *gin.Context) {
	admins, err := h.institutions.ListAdmins(c.Request.Context(), c.Query("institutionId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// DeleteAdmin godoc
// @Summary Delete an institute admin
// @Tags Institutions
// @Produce json
// @Param id path string true "Admin ID"
// @Success 204
// @Router /admin/institute-admins/{id} [delete]
func (h *InstitutionHandler) DeleteAdmin(c *gin.Context) {
	if err := h.institutions.DeleteAdmin(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ChangeAdminPassword godoc
// @Summary Replace an institute admin's password
// @Tags Institutions
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Success 204
// @Router /admin/institute-admins/{id}/password [put]
func (h *InstitutionHandler) ChangeAdminPassword(c *gin.Context) {
	var payload struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "password required"))
		return
	}
	if err := h.institutions.ChangeAdminPassword(c.Request.Context(), c.Param("id"), payload.Password, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignCardDesign godoc
// @Summary Bind a curated card design to an institute admin
// @Tags Institutions
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body dto.AssignCardDesignRequest true "Design binding"
// @Success 200 {object} response.Envelope
// @Router /admin/institute-admins/{id}/card-design [put]
func (h *InstitutionHandler) AssignCardDesign(c *gin.Context) {
	var req dto.AssignCardDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.institutions.AssignCardDesign(c.Request.Context(), c.Param("id"), req.CardDesignID, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "card design assigned")
}
