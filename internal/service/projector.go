package service

import "github.com/nurpe/fieldops-service/internal/model"

// Projection of the three source records into the one timeline shape.
// Pure transforms: same input, same item, every time.

const plannedServiceTitle = "Planned Service"

func ProjectOccurrence(o model.Occurrence) model.TimelineItem {
	return model.TimelineItem{
		ID:            o.ID,
		SourceKind:    model.SourceKindOccurrence,
		Date:          o.ExpectedDate,
		DisplayStatus: string(o.Status),
		Title:         plannedServiceTitle,
		CustomerName:  o.CustomerName,
		ProductName:   o.ProductName,
		Address:       o.InstallationLocation,
		Notes:         derefString(o.Notes),
	}
}

func ProjectTask(t model.Task) model.TimelineItem {
	taskID := t.ID
	return model.TimelineItem{
		ID:                 t.ID,
		SourceKind:         model.SourceKindTask,
		Date:               t.TaskDate,
		DisplayStatus:      string(t.Status),
		Title:              t.Title,
		CustomerName:       t.CustomerName,
		ProductName:        t.ProductName,
		TechnicianName:     t.TechnicianName,
		Address:            t.InstallationLocation,
		Notes:              derefString(t.Description),
		LinkedTaskID:       &taskID,
		LinkedOccurrenceID: t.OccurrenceID,
	}
}

// ProjectServiceLog always reports "completed": the log existing is the
// definition of the work being done.
func ProjectServiceLog(l model.ServiceLog) model.TimelineItem {
	return model.TimelineItem{
		ID:                 l.ID,
		SourceKind:         model.SourceKindLog,
		Date:               l.ServiceDate,
		DisplayStatus:      "completed",
		Title:              l.WorkDescription,
		CustomerName:       l.CustomerName,
		ProductName:        l.ProductName,
		TechnicianName:     l.TechnicianName,
		Address:            l.InstallationLocation,
		Notes:              derefString(l.Notes),
		LinkedTaskID:       l.TaskID,
		LinkedOccurrenceID: l.OccurrenceID,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
