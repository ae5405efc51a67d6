package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/alert"
)

type alertRepository struct {
	db *DB
}

var _ alert.Repository = (*alertRepository)(nil)

func NewAlertRepository(db *DB) *alertRepository {
	return &alertRepository{db: db}
}

func (repo *alertRepository) CreateAlert(_ context.Context, alrt alert.Alert) (alert.Alert, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	alrt.ID = uuid.New().String()
	repo.db.alerts[alrt.ID] = &alrt
	return alrt, nil
}

func (repo *alertRepository) GetAlertByID(_ context.Context, id string) (alert.Alert, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if alrt, ok := repo.db.alerts[id]; ok {
		return *alrt, nil
	}
	return alert.Alert{}, alert.ErrNotFound
}

func (repo *alertRepository) FilterAlerts(_ context.Context, filter alert.QueryFilter, ordering ...core.DBOrdering) ([]alert.Alert, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var alerts []alert.Alert
	for _, alrt := range repo.db.alerts {
		if !matches(*alrt, filter) {
			continue
		}
		alerts = append(alerts, *alrt)
	}

	// only created_at ordering is used in practice
	asc := true
	for _, ord := range ordering {
		if ord.Field == "created_at" {
			asc = ord.Ascending
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		if asc {
			return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
		}
		return alerts[j].CreatedAt.Before(alerts[i].CreatedAt)
	})
	return alerts, nil
}

func (repo *alertRepository) MarkAlertRead(_ context.Context, id string) (alert.Alert, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	alrt, ok := repo.db.alerts[id]
	if !ok {
		return alert.Alert{}, alert.ErrNotFound
	}
	alrt.Read = true
	return *alrt, nil
}

func (repo *alertRepository) CreateSendHistory(_ context.Context, hist alert.SendHistory) (alert.SendHistory, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.alerts[hist.AlertID]; !ok {
		return alert.SendHistory{}, alert.ErrNotFound
	}
	hist.ID = uuid.New().String()
	repo.db.histories[hist.AlertID] = append(repo.db.histories[hist.AlertID], &hist)
	return hist, nil
}

func (repo *alertRepository) QuerySendHistory(_ context.Context, alertID string) ([]alert.SendHistory, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	hists := make([]alert.SendHistory, 0, len(repo.db.histories[alertID]))
	for _, hist := range repo.db.histories[alertID] {
		hists = append(hists, *hist)
	}
	return hists, nil
}

func matches(alrt alert.Alert, filter alert.QueryFilter) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if alrt.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.StudentID != "" && alrt.StudentID != filter.StudentID {
		return false
	}
	if filter.CourseID != "" && alrt.CourseID != filter.CourseID {
		return false
	}
	if filter.Unread != nil && alrt.Read == *filter.Unread {
		return false
	}
	return true
}
