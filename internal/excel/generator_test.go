package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/fieldops-service/internal/model"
)

func TestGenerate(t *testing.T) {
	items := []model.TimelineItem{
		{
			ID:            uuid.New(),
			SourceKind:    model.SourceKindLog,
			Date:          time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
			DisplayStatus: "completed",
			Title:         "Replaced filter",
			CustomerName:  "Acme Corp",
			ProductName:   "RO-500",
		},
		{
			ID:            uuid.New(),
			SourceKind:    model.SourceKindOccurrence,
			Date:          time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
			DisplayStatus: "pending",
			Title:         "Planned Service",
			CustomerName:  "Acme Corp",
		},
	}

	data, err := NewGenerator().Generate(items)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	title, err := file.GetCellValue("Timeline", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Service Timeline", title)

	count, err := file.GetCellValue("Timeline", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	firstDate, err := file.GetCellValue("Timeline", "A6")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", firstDate)

	secondTitle, err := file.GetCellValue("Timeline", "D7")
	require.NoError(t, err)
	assert.Equal(t, "Planned Service", secondTitle)
}

func TestGenerateEmpty(t *testing.T) {
	data, err := NewGenerator().Generate(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
