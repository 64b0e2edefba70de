package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/fieldops-service/internal/service"
)

func (h *Handler) timelineQueryFromRequest(c *gin.Context) (service.TimelineQuery, bool) {
	query := service.TimelineQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Order:  service.SortOrder(c.Query("order")),
	}

	from, err := parseOptionalDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return query, false
	}
	to, err := parseOptionalDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return query, false
	}
	customerProductID, err := parseOptionalID(c.Query("customer_product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_product_id"})
		return query, false
	}
	query.From = from
	query.To = to
	query.CustomerProductID = customerProductID

	query.Page = 1
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return query, false
		}
		query.Page = page
	}
	query.PageSize = h.cfg.Timeline.DefaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
			return query, false
		}
		query.PageSize = pageSize
	}
	if query.PageSize > h.cfg.Timeline.MaxPageSize {
		query.PageSize = h.cfg.Timeline.MaxPageSize
	}
	return query, true
}

func (h *Handler) getTimeline(c *gin.Context) {
	query, ok := h.timelineQueryFromRequest(c)
	if !ok {
		return
	}

	result, err := h.timeline.Query(c.Request.Context(), query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": result.Items,
		"meta": gin.H{
			"total":     result.Total,
			"page":      query.Page,
			"page_size": query.PageSize,
		},
	})
}

// exportTimeline renders the full filtered timeline to a spreadsheet,
// ignoring the request's pagination up to the configured export limit.
func (h *Handler) exportTimeline(c *gin.Context) {
	query, ok := h.timelineQueryFromRequest(c)
	if !ok {
		return
	}
	query.Page = 1
	query.PageSize = h.cfg.Timeline.ExportLimit

	result, err := h.timeline.Query(c.Request.Context(), query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.exporter.Generate(result.Items)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="service-timeline.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
