package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	sqlxtypes "github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/alert"
)

type alertRepository struct {
	db *sqlx.DB
}

var _ alert.Repository = (*alertRepository)(nil) // interface compliance check

func NewAlertRepository(db *sqlx.DB) *alertRepository {
	return &alertRepository{db: db}
}

type (
	alertRow struct {
		ID        string      `db:"id"`
		Type      string      `db:"type"`
		Priority  string      `db:"priority"`
		Title     string      `db:"title"`
		Message   string      `db:"message"`
		StudentID null.String `db:"student_id"`
		CourseID  null.String `db:"course_id"`
		Date      time.Time   `db:"date"`
		Read      bool        `db:"read"`
		CreatedAt time.Time   `db:"created_at"`
	}

	sendHistoryRow struct {
		ID          string             `db:"id"`
		AlertID     string             `db:"alert_id"`
		Subject     string             `db:"subject"`
		Body        string             `db:"body"`
		SentCount   int                `db:"sent_count"`
		FailedCount int                `db:"failed_count"`
		Uniform     bool               `db:"uniform"`
		Results     sqlxtypes.JSONText `db:"results"`
		CreatedAt   time.Time          `db:"created_at"`
	}
)

func (repo alertRepository) rowify(alrt alert.Alert) alertRow {
	return alertRow{
		ID:        alrt.ID,
		Type:      string(alrt.Type),
		Priority:  string(alrt.Priority),
		Title:     alrt.Title,
		Message:   alrt.Message,
		StudentID: null.NewString(alrt.StudentID, alrt.StudentID != ""),
		CourseID:  null.NewString(alrt.CourseID, alrt.CourseID != ""),
		Date:      alrt.Date.UTC(),
		Read:      alrt.Read,
		CreatedAt: alrt.CreatedAt.UTC(),
	}
}

func (repo alertRepository) unrowify(row alertRow) alert.Alert {
	return alert.Alert{
		ID:        row.ID,
		Type:      alert.Type(row.Type),
		Priority:  alert.Priority(row.Priority),
		Title:     row.Title,
		Message:   row.Message,
		StudentID: row.StudentID.String,
		CourseID:  row.CourseID.String,
		Date:      row.Date.UTC(),
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to alert.ErrNotFound
func (repo alertRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return alert.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo alertRepository) CreateAlert(ctx context.Context, alrt alert.Alert) (alert.Alert, error) {
	alrt.ID = uuid.New().String()
	row := repo.rowify(alrt)
	if _, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO alert (id, type, priority, title, message, student_id, course_id, date, read, created_at)
		VALUES (:id, :type, :priority, :title, :message, :student_id, :course_id, :date, :read, :created_at)`,
		row,
	); err != nil {
		return alert.Alert{}, errors.Wrap(err, "inserting alert")
	}
	return alrt, nil
}

func (repo alertRepository) GetAlertByID(ctx context.Context, id string) (alert.Alert, error) {
	if _, err := uuid.Parse(id); err != nil {
		return alert.Alert{}, alert.ErrNotFound
	}

	var row alertRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM alert WHERE id = $1`, id); err != nil {
		return alert.Alert{}, repo.trapNoRowsErr(err, "finding alert by ID")
	}
	return repo.unrowify(row), nil
}

func (repo alertRepository) FilterAlerts(ctx context.Context, filter alert.QueryFilter, ordering ...core.DBOrdering) ([]alert.Alert, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		conds = append(conds, fmt.Sprintf("type = ANY(%s)", arg(pq.Array(types))))
	}
	if filter.StudentID != "" {
		conds = append(conds, fmt.Sprintf("student_id = %s", arg(filter.StudentID)))
	}
	if filter.CourseID != "" {
		conds = append(conds, fmt.Sprintf("course_id = %s", arg(filter.CourseID)))
	}
	if filter.Unread != nil {
		conds = append(conds, fmt.Sprintf("read = %s", arg(!*filter.Unread)))
	}

	q := `SELECT * FROM alert`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		q += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []alertRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying alerts")
	}

	alerts := make([]alert.Alert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, repo.unrowify(row))
	}
	return alerts, nil
}

func (repo alertRepository) MarkAlertRead(ctx context.Context, id string) (alert.Alert, error) {
	if _, err := uuid.Parse(id); err != nil {
		return alert.Alert{}, alert.ErrNotFound
	}

	var row alertRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE alert SET read = TRUE WHERE id = $1 RETURNING *`, id)
	if err != nil {
		return alert.Alert{}, repo.trapNoRowsErr(err, "marking alert read")
	}
	return repo.unrowify(row), nil
}

func (repo alertRepository) CreateSendHistory(ctx context.Context, hist alert.SendHistory) (alert.SendHistory, error) {
	hist.ID = uuid.New().String()

	results, err := json.Marshal(hist.Results)
	if err != nil {
		return alert.SendHistory{}, errors.Wrap(err, "encoding send results")
	}
	row := sendHistoryRow{
		ID:          hist.ID,
		AlertID:     hist.AlertID,
		Subject:     hist.Subject,
		Body:        hist.Body,
		SentCount:   hist.SentCount,
		FailedCount: hist.FailedCount,
		Uniform:     hist.Uniform,
		Results:     results,
		CreatedAt:   hist.CreatedAt.UTC(),
	}

	if _, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO send_history (id, alert_id, subject, body, sent_count, failed_count, uniform, results, created_at)
		VALUES (:id, :alert_id, :subject, :body, :sent_count, :failed_count, :uniform, :results, :created_at)`,
		row,
	); err != nil {
		return alert.SendHistory{}, errors.Wrap(err, "inserting send history")
	}
	return hist, nil
}

func (repo alertRepository) QuerySendHistory(ctx context.Context, alertID string) ([]alert.SendHistory, error) {
	var rows []sendHistoryRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM send_history WHERE alert_id = $1 ORDER BY created_at`, alertID)
	if err != nil {
		return nil, errors.Wrap(err, "querying send history")
	}

	hists := make([]alert.SendHistory, 0, len(rows))
	for _, row := range rows {
		hist := alert.SendHistory{
			ID:          row.ID,
			AlertID:     row.AlertID,
			Subject:     row.Subject,
			Body:        row.Body,
			SentCount:   row.SentCount,
			FailedCount: row.FailedCount,
			Uniform:     row.Uniform,
			CreatedAt:   row.CreatedAt,
		}
		if err = json.Unmarshal(row.Results, &hist.Results); err != nil {
			return nil, errors.Wrap(err, "decoding send results")
		}
		hists = append(hists, hist)
	}
	return hists, nil
}
