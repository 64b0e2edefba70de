package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/fieldops-service/internal/model"
	"github.com/nurpe/fieldops-service/internal/service"
)

type createContractRequest struct {
	CustomerProductID string  `json:"customer_product_id" binding:"required"`
	StartDate         string  `json:"start_date" binding:"required"`
	EndDate           string  `json:"end_date" binding:"required"`
	IntervalMonths    int     `json:"interval_months"`
	TotalService      int     `json:"total_service"`
	ContractURL       *string `json:"contract_url"`
	Notes             *string `json:"notes"`
	Price             float64 `json:"price"`
}

func (h *Handler) createContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerProductID, err := uuid.Parse(req.CustomerProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_product_id"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	contract, err := h.contracts.CreateContract(c.Request.Context(), service.CreateContractInput{
		CustomerProductID: customerProductID,
		StartDate:         start,
		EndDate:           end,
		IntervalMonths:    req.IntervalMonths,
		TotalService:      req.TotalService,
		ContractURL:       req.ContractURL,
		Notes:             req.Notes,
		Price:             req.Price,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": contract})
}

func (h *Handler) listContracts(c *gin.Context) {
	var filter service.ContractFilter
	if raw := c.Query("status"); raw != "" {
		status := model.ContractStatus(raw)
		filter.Status = &status
	}
	customerProductID, err := parseOptionalID(c.Query("customer_product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_product_id"})
		return
	}
	filter.CustomerProductID = customerProductID

	contracts, err := h.contracts.ListContracts(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": contracts})
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contract, err := h.contracts.GetContract(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": contract})
}

type updateContractRequest struct {
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Status      *string  `json:"status"`
	ContractURL *string  `json:"contract_url"`
	Notes       *string  `json:"notes"`
	Price       *float64 `json:"price"`
}

func (h *Handler) updateContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patch service.ContractPatch
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		patch.EndDate = &end
	}
	if req.Status != nil {
		status := model.ContractStatus(*req.Status)
		patch.Status = &status
	}
	patch.ContractURL = req.ContractURL
	patch.Notes = req.Notes
	patch.Price = req.Price

	contract, err := h.contracts.UpdateContract(c.Request.Context(), id, patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": contract})
}

func (h *Handler) deleteContract(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.contracts.DeleteContract(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nil})
}
