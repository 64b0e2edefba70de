package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/fieldops-service/internal/http/middleware"
	"github.com/nurpe/fieldops-service/internal/service"
)

func (h *Handler) listServiceLogs(c *gin.Context) {
	var filter service.ServiceLogFilter
	from, err := parseOptionalDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := parseOptionalDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	technicianID, err := parseOptionalID(c.Query("technician_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
		return
	}
	filter.From = from
	filter.To = to
	filter.TechnicianID = technicianID

	logs, err := h.logs.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

func (h *Handler) getServiceLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log, err := h.logs.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": log})
}

type updateServiceLogRequest struct {
	WorkDescription *string  `json:"work_description"`
	ServicePrice    *float64 `json:"service_price"`
	TechnicianFee   *float64 `json:"technician_fee"`
	Notes           *string  `json:"notes"`
}

func (h *Handler) updateServiceLog(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, idOK := parseID(c)
	if !idOK {
		return
	}
	var req updateServiceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log, err := h.logs.Update(c.Request.Context(), principal, id, service.ServiceLogPatch{
		WorkDescription: req.WorkDescription,
		ServicePrice:    req.ServicePrice,
		TechnicianFee:   req.TechnicianFee,
		Notes:           req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": log})
}

// serviceLogReport renders one completed service as a printable PDF
// work report.
func (h *Handler) serviceLogReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log, err := h.logs.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.reports.Generate(*log)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="service-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", content)
}
