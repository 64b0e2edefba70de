package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fieldops-service/internal/model"
)

func sampleLog() model.ServiceLog {
	fee := 75.0
	notes := "Customer asked to reschedule next visit"
	return model.ServiceLog{
		ID:                   uuid.New(),
		TechnicianID:         uuid.New(),
		ServiceDate:          time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC),
		ServiceType:          model.ServiceTypeContract,
		WorkDescription:      "Replaced membrane and flushed tank",
		ServicePrice:         350,
		TechnicianFee:        &fee,
		Evidence:             []string{"https://files.example.com/a.jpg"},
		Notes:                &notes,
		CustomerName:         "Acme Corp",
		ProductName:          "RO-500",
		TechnicianName:       "Budi",
		InstallationLocation: "Jl. Melati 4",
	}
}

func TestGenerate(t *testing.T) {
	data, err := NewGenerator().Generate(sampleLog())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGenerateMinimalLog(t *testing.T) {
	log := model.ServiceLog{
		ID:              uuid.New(),
		ServiceDate:     time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC),
		ServiceType:     model.ServiceTypeOnCall,
		WorkDescription: "Quick inspection",
	}
	data, err := NewGenerator().Generate(log)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
