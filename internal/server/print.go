package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// PrintReport serves the outstanding report as a self-printing HTML
// page: the browser print dialog opens on load. Query parameters mirror
// the report endpoint.
func (s *Server) PrintReport(c *gin.Context) {
	reportType := strings.ToLower(strings.TrimSpace(c.Query("type")))
	if reportType != "" && reportType != "outstanding" {
		AbortWithError(c, newValidationError("type", "invalid_type", "invalid type"))
		return
	}

	rep, err := s.reportFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, err := s.htmlRenderer.RenderOutstanding(rep)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
