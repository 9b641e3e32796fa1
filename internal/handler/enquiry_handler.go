package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ace-portal/enquiry-api/internal/dto"
	"github.com/ace-portal/enquiry-api/internal/models"
	"github.com/ace-portal/enquiry-api/internal/service"
	appErrors "github.com/ace-portal/enquiry-api/pkg/errors"
	"github.com/ace-portal/enquiry-api/pkg/response"
)

// EnquiryHandler exposes the enquiry intake and dashboard endpoints.
type EnquiryHandler struct {
	enquiries *service.EnquiryService
	stats     *service.StatsService
	metrics   *service.MetricsService
}

// NewEnquiryHandler constructs EnquiryHandler.
func NewEnquiryHandler(enquiries *service.EnquiryService, stats *service.StatsService, metrics *service.MetricsService) *EnquiryHandler {
	return &EnquiryHandler{enquiries: enquiries, stats: stats, metrics: metrics}
}

// Create godoc
// @Summary Submit an admission enquiry
// @Tags Enquiries
// @Accept json
// @Produce json
// @Param payload body dto.EnquiryRequest true "Enquiry payload"
// @Success 201 {object} dto.EnquiryCreatedResponse
// @Failure 400 {object} response.ErrorBody
// @Router /enquiries [post]
func (h *EnquiryHandler) Create(c *gin.Context) {
	var req dto.EnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	enquiry, err := h.enquiries.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.EnquirySubmitted()
	if h.stats != nil {
		h.stats.Invalidate(c.Request.Context())
	}

	response.Created(c, dto.EnquiryCreatedResponse{
		Message: "Enquiry submitted successfully",
		ID:      enquiry.ID,
	})
}

// List godoc
// @Summary List enquiries
// @Tags Enquiries
// @Security BearerAuth
// @Produce json
// @Param search query string false "Case-insensitive match over name, email, phone and queries"
// @Param branch query string false "Exact branch, or All"
// @Param year query int false "Submission year"
// @Param startDate query string false "Inclusive lower bound (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive upper bound (YYYY-MM-DD)"
// @Success 200 {array} models.Enquiry
// @Failure 401 {object} response.ErrorBody
// @Router /enquiries [get]
func (h *EnquiryHandler) List(c *gin.Context) {
	filter := models.ParseEnquiryFilter(
		c.Query("search"),
		c.Query("branch"),
		c.Query("year"),
		c.Query("startDate"),
		c.Query("endDate"),
	)

	enquiries, err := h.enquiries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enquiries)
}

// Get godoc
// @Summary Get enquiry detail
// @Tags Enquiries
// @Security BearerAuth
// @Produce json
// @Param id path string true "Enquiry ID"
// @Success 200 {object} models.Enquiry
// @Failure 404 {object} response.ErrorBody
// @Router /enquiries/{id} [get]
func (h *EnquiryHandler) Get(c *gin.Context) {
	enquiry, err := h.enquiries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enquiry)
}

// Stats godoc
// @Summary Enquiry dashboard counters
// @Tags Enquiries
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Failure 401 {object} response.ErrorBody
// @Router /enquiries/stats [get]
func (h *EnquiryHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
