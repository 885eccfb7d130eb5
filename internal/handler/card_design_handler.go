package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/service"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
	"github.com/cardnest/cardnest-api/pkg/response"
)

// CardDesignHandler exposes the curated catalog and the per-institution
// custom design endpoints.
type CardDesignHandler struct {
	designs *service.CardDesignService
}

// NewCardDesignHandler constructs CardDesignHandler.
func NewCardDesignHandler(designs *service.CardDesignService) *CardDesignHandler {
	return &CardDesignHandler{designs: designs}
}

// ListCatalog godoc
// @Summary List the curated design catalog
// @Tags CardDesigns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/card-designs [get]
func (h *CardDesignHandler) ListCatalog(c *gin.Context) {
	designs, err := h.designs.ListCatalog(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designs, nil)
}

// CreateCatalog godoc
// @Summary Add a design to the curated catalog
// @Tags CardDesigns
// @Accept json
// @Produce json
// @Param payload body dto.CreateCardDesignRequest true "Design payload"
// @Success 201 {object} response.Envelope
// @Router /admin/card-designs [post]
func (h *CardDesignHandler) CreateCatalog(c *gin.Context) {
	var req dto.CreateCardDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	design, err := h.designs.CreateCatalogDesign(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, design)
}

// DeleteCatalog godoc
// @Summary Remove a curated design
// @Tags CardDesigns
// @Produce json
// @Param id path string true "Design ID"
// @Success 204
// @Router /admin/card-designs/{id} [delete]
func (h *CardDesignHandler) DeleteCatalog(c *gin.Context) {
	if err := h.designs.DeleteCatalogDesign(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListInstitution godoc
// @Summary List custom designs of the caller's institution
// @Tags CardDesigns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institute/card-designs [get]
func (h *CardDesignHandler) ListInstitution(c *gin.Context) {
	designs, err := h.designs.ListInstitutionDesigns(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designs, nil)
}

// CreateInstitution godoc
// @Summary Submit a custom design for the caller's institution
// @Tags CardDesigns
// @Accept json
// @Produce json
// @Param payload body dto.CreateCardDesignRequest true "Design payload"
// @Success 201 {object} response.Envelope
// @Router /institute/card-designs [post]
func (h *CardDesignHandler) CreateInstitution(c *gin.Context) {
	var req dto.CreateCardDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	design, err := h.designs.CreateInstitutionDesign(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, design)
}

// DeleteInstitution godoc
// @Summary Delete a custom design of the caller's institution
// @Tags CardDesigns
// @Produce json
// @Param id path string true "Design ID"
// @Success 204
// @Router /institute/card-designs/{id} [delete]
func (h *CardDesignHandler) DeleteInstitution(c *gin.Context) {
	if err := h.designs.DeleteInstitutionDesign(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
