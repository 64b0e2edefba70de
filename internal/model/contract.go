package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusActive  ContractStatus = "active"
	ContractStatusExpired ContractStatus = "expired"
)

// Contract is a maintenance agreement tied to one installed product.
// Its occurrence schedule is generated once at creation and never
// regenerated afterwards; only ServicesUsed and Status change.
type Contract struct {
	ID                uuid.UUID
	CustomerProductID uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	IntervalMonths    int
	TotalService      int
	ServicesUsed      int
	Status            ContractStatus
	ContractURL       *string
	Notes             *string
	Price             float64
	CreatedAt         time.Time

	// Joined for presentation
	CustomerName         string
	ProductName          string
	InstallationLocation string
}
