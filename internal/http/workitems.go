package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/fieldops-service/internal/service"
)

type createOccurrenceRequest struct {
	CustomerProductID string  `json:"customer_product_id" binding:"required"`
	ExpectedDate      string  `json:"expected_date" binding:"required"`
	Notes             *string `json:"notes"`
}

func (h *Handler) createOccurrence(c *gin.Context) {
	var req createOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerProductID, err := uuid.Parse(req.CustomerProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_product_id"})
		return
	}
	expectedDate, err := parseDate(req.ExpectedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expected_date"})
		return
	}

	occurrence, err := h.occurrences.CreateManual(c.Request.Context(), service.CreateOccurrenceInput{
		CustomerProductID: customerProductID,
		ExpectedDate:      expectedDate,
		Notes:             req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": occurrence})
}

func (h *Handler) getOccurrence(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	occurrence, err := h.occurrences.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": occurrence})
}

func (h *Handler) deleteOccurrence(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.occurrences.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nil})
}

type createTaskRequest struct {
	CustomerID        string  `json:"customer_id"`
	CustomerProductID string  `json:"customer_product_id"`
	TechnicianID      *string `json:"technician_id"`
	TaskDate          string  `json:"task_date"`
	Title             string  `json:"title"`
	Description       *string `json:"description"`
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}
	customerProductID, err := uuid.Parse(req.CustomerProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_product_id"})
		return
	}
	taskDate, err := parseDate(req.TaskDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task_date"})
		return
	}
	technicianID, err := optionalIDFromBody(req.TechnicianID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), service.CreateTaskInput{
		CustomerID:        customerID,
		CustomerProductID: customerProductID,
		TechnicianID:      technicianID,
		TaskDate:          taskDate,
		Title:             req.Title,
		Description:       req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": task})
}

type taskFromOccurrenceRequest struct {
	CustomerID   string  `json:"customer_id" binding:"required"`
	TechnicianID *string `json:"technician_id"`
	TaskDate     *string `json:"task_date"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
}

// createTaskFromOccurrence dispatches a planned occurrence as a field
// task, advancing the occurrence to scheduled.
func (h *Handler) createTaskFromOccurrence(c *gin.Context) {
	occurrenceID, ok := parseID(c)
	if !ok {
		return
	}
	var req taskFromOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
		return
	}
	technicianID, err := optionalIDFromBody(req.TechnicianID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
		return
	}

	data := service.TaskData{
		CustomerID:   customerID,
		TechnicianID: technicianID,
		Title:        req.Title,
		Description:  req.Description,
	}
	if req.TaskDate != nil {
		taskDate, err := parseDate(*req.TaskDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task_date"})
			return
		}
		data.TaskDate = taskDate
	}

	task, err := h.reconciler.CreateTaskFromOccurrence(c.Request.Context(), occurrenceID, data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": task})
}

func (h *Handler) listTasks(c *gin.Context) {
	var filter service.TaskFilter
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

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nil})
}

type completeWorkItemRequest struct {
	TechnicianID    string   `json:"technician_id" binding:"required"`
	ServiceDate     *string  `json:"service_date"`
	WorkDescription string   `json:"work_description" binding:"required"`
	ServicePrice    float64  `json:"service_price"`
	TechnicianFee   *float64 `json:"technician_fee"`
	Evidence        []string `json:"evidence"`
	Notes           *string  `json:"notes"`
}

// completeWorkItem records a service log against a task or occurrence
// addressed by one id from the shared work-item space.
func (h *Handler) completeWorkItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req completeWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	technicianID, err := uuid.Parse(req.TechnicianID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
		return
	}

	data := service.ServiceLogData{
		TechnicianID:    technicianID,
		WorkDescription: req.WorkDescription,
		ServicePrice:    req.ServicePrice,
		TechnicianFee:   req.TechnicianFee,
		Evidence:        req.Evidence,
		Notes:           req.Notes,
	}
	if req.ServiceDate != nil {
		serviceDate, err := parseDate(*req.ServiceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service_date"})
			return
		}
		data.ServiceDate = serviceDate
	}

	log, err := h.reconciler.CompleteWithLog(c.Request.Context(), id, data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": log})
}

type updateWorkItemRequest struct {
	Date   *string `json:"date"`
	Status *string `json:"status"`
	Title  *string `json:"title"`
	Notes  *string `json:"notes"`
}

func (h *Handler) updateWorkItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.WorkItemPatch{
		Status: req.Status,
		Title:  req.Title,
		Notes:  req.Notes,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		patch.Date = &date
	}

	if err := h.reconciler.UpdateWorkItem(c.Request.Context(), id, patch); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nil})
}

func (h *Handler) cancelWorkItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.reconciler.CancelWorkItem(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nil})
}

func optionalIDFromBody(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
