package repository

import (
	"context"
	"database/sql"
	"strings"

	"checklist-api/internal/apperr"
	"checklist-api/internal/models"
	"checklist-api/pkg/logger"

	"github.com/google/uuid"
)

const taskColumns = `id, checklist_id, parent_id, title, description, order_number, start_time, end_time, allocated_time, is_completed, created_at`

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.ChecklistID, &t.ParentID, &t.Title, &t.Description, &t.OrderNumber,
		&t.StartTime, &t.EndTime, &t.AllocatedTime, &t.IsCompleted, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (id, checklist_id, parent_id, title, description, order_number, start_time, end_time, allocated_time, is_completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`,
		t.ID, t.ChecklistID, t.ParentID, t.Title, t.Description, t.OrderNumber,
		t.StartTime, t.EndTime, t.AllocatedTime, t.IsCompleted).Scan(&t.CreatedAt)
	if err != nil {
		logger.Error(ctx, "Repository CreateTask failed", "error", err, "checklist_id", t.ChecklistID)
		return classify(err, "task")
	}
	return nil
}

func (s *TaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	return t, classify(err, "task")
}

// ListByChecklist returns tasks in presentation order (order_number ascending).
func (s *TaskStore) ListByChecklist(ctx context.Context, checklistID string) ([]models.Task, error) {
	return s.list(ctx, checklistID, `order_number ASC, created_at ASC, seq ASC`)
}

// ListByCreation returns tasks in creation order, ties broken by insertion sequence.
func (s *TaskStore) ListByCreation(ctx context.Context, checklistID string) ([]models.Task, error) {
	return s.list(ctx, checklistID, `created_at ASC, seq ASC`)
}

func (s *TaskStore) list(ctx context.Context, checklistID, orderBy string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE checklist_id = $1 ORDER BY `+orderBy, checklistID)
	if err != nil {
		logger.Error(ctx, "Repository ListTasks failed", "error", err, "checklist_id", checklistID)
		return nil, err
	}
	defer rows.Close()
	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error(ctx, "Repository scan task failed", "error", err)
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update applies the fields present in p and returns the updated row.
func (s *TaskStore) Update(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}
	var set setList
	if p.Title != nil {
		set.add("title", *p.Title)
	}
	if p.Description.Set {
		set.add("description", p.Description.Value)
	}
	if p.ParentID.Set {
		set.add("parent_id", p.ParentID.Value)
	}
	if p.OrderNumber != nil {
		set.add("order_number", *p.OrderNumber)
	}
	if p.StartTime.Set {
		set.add("start_time", p.StartTime.Value)
	}
	if p.EndTime.Set {
		set.add("end_time", p.EndTime.Value)
	}
	if p.AllocatedTime.Set {
		set.add("allocated_time", p.AllocatedTime.Value)
	}
	if p.IsCompleted != nil {
		set.add("is_completed", *p.IsCompleted)
	}
	q := `UPDATE tasks SET ` + strings.Join(set.cols, ", ") +
		` WHERE id = ` + set.next(id) + ` RETURNING ` + taskColumns
	t, err := scanTask(s.db.QueryRowContext(ctx, q, set.args...))
	if err != nil {
		err = classify(err, "task")
		if !apperr.Is(err, apperr.KindNotFound) {
			logger.Error(ctx, "Repository UpdateTask failed", "error", err, "id", id)
		}
		return nil, err
	}
	return t, nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error(ctx, "Repository DeleteTask failed", "error", err, "id", id)
		return err
	}
	return expectOne(res, "task")
}
