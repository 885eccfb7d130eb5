package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	"github.com/cardnest/cardnest-api/internal/service"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
	"github.com/cardnest/cardnest-api/pkg/response"
)

// ChangeRequestHandler exposes the change-request workflow endpoints.
type ChangeRequestHandler struct {
	requests *service.ChangeRequestService
}

// NewChangeRequestHandler constructs ChangeRequestHandler.
func NewChangeRequestHandler(requests *service.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{requests: requests}
}

// Submit godoc
// @Summary Submit change requests for own record
// @Description Files one pending request per proposed field change. The natural key tuple must match the submitting student's own row.
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param payload body dto.SubmitChangeRequest true "Change request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /student/change-requests [post]
func (h *ChangeRequestHandler) Submit(c *gin.Context) {
	var req dto.SubmitChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	requests, err := h.requests.Submit(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, requests)
}

// ListOwn godoc
// @Summary List own change requests
// @Tags ChangeRequests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/change-requests [get]
func (h *ChangeRequestHandler) ListOwn(c *gin.Context) {
	requests, err := h.requests.ListOwn(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// List godoc
// @Summary List institution change requests
// @Tags ChangeRequests
// @Produce json
// @Param status query string false "Status filter, defaults to pending"
// @Success 200 {object} response.Envelope
// @Router /institute/change-requests [get]
func (h *ChangeRequestHandler) List(c *gin.Context) {
	status := models.ChangeRequestStatus(c.Query("status"))
	requests, err := h.requests.List(c.Request.Context(), status, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Review godoc
// @Summary Approve or reject a change request
// @Description Approval writes the proposed value to the student record and marks the request admin_approved. A request already reviewed yields 409.
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param payload body dto.ReviewChangeRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /institute/change-requests/review [post]
func (h *ChangeRequestHandler) Review(c *gin.Context) {
	var req dto.ReviewChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Review(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
