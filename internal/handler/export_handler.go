package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ace-portal/enquiry-api/internal/models"
	"github.com/ace-portal/enquiry-api/internal/service"
	"github.com/ace-portal/enquiry-api/pkg/response"
)

// ExportHandler streams report downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Export the filtered enquiry list
// @Tags Enquiries
// @Security BearerAuth
// @Produce application/octet-stream
// @Param format query string true "Report format" Enums(xlsx, pdf, csv)
// @Param search query string false "Case-insensitive match over name, email, phone and queries"
// @Param branch query string false "Exact branch, or All"
// @Param year query int false "Submission year"
// @Param startDate query string false "Inclusive lower bound (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive upper bound (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Failure 400 {object} response.ErrorBody
// @Router /enquiries/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", service.FormatXLSX))
	filter := models.ParseEnquiryFilter(
		c.Query("search"),
		c.Query("branch"),
		c.Query("year"),
		c.Query("startDate"),
		c.Query("endDate"),
	)

	file, err := h.exports.Export(c.Request.Context(), format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(200, file.ContentType, file.Data)
}
