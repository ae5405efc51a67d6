package alert

import (
	"context"
	"errors"
	"time"

	"github.com/academicflow/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("alert not found")
)

type (
	Repository interface {
		CreateAlert(ctx context.Context, alert Alert) (Alert, error)
		GetAlertByID(ctx context.Context, id string) (Alert, error)
		// FilterAlerts applies AND operation on available QueryFilter fields.
		FilterAlerts(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Alert, error)
		MarkAlertRead(ctx context.Context, id string) (Alert, error)

		CreateSendHistory(ctx context.Context, hist SendHistory) (SendHistory, error)
		QuerySendHistory(ctx context.Context, alertID string) ([]SendHistory, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAlert) (Alert, error) {
	now := time.Now().UTC()
	alrt := Alert{
		Type:      na.Type,
		Priority:  na.Priority,
		Title:     na.Title,
		Message:   na.Message,
		StudentID: na.StudentID,
		CourseID:  na.CourseID,
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
	}
	return svc.repo.CreateAlert(ctx, alrt)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Alert, error) {
	return svc.repo.GetAlertByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Alert, error) {
	filter.Clean()
	return svc.repo.FilterAlerts(ctx, filter, core.DBOrdering{Field: "created_at"})
}

// MarkRead is the only mutation an alert supports.
func (svc *Service) MarkRead(ctx context.Context, id string) (Alert, error) {
	return svc.repo.MarkAlertRead(ctx, id)
}

// RecordDispatch persists the outcome of a notification batch sent for an
// alert. Delivery failures are data here, not errors.
func (svc *Service) RecordDispatch(ctx context.Context, alertID, subject, body string, res core.BatchResult) (SendHistory, error) {
	hist := SendHistory{
		AlertID:     alertID,
		Subject:     subject,
		Body:        body,
		SentCount:   res.SentCount(),
		FailedCount: res.FailedCount(),
		Uniform:     res.Uniform,
		Results:     res.Results,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateSendHistory(ctx, hist)
}

func (svc *Service) History(ctx context.Context, alertID string) ([]SendHistory, error) {
	return svc.repo.QuerySendHistory(ctx, alertID)
}
