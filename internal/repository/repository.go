package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"checklist-api/internal/apperr"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// Stores bundles one store per table over a shared pool.
type Stores struct {
	Profiles   *ProfileStore
	Checklists *ChecklistStore
	Tasks      *TaskStore
	Shares     *ShareStore
	TimerLogs  *TimerLogStore
}

func New(db *sql.DB) *Stores {
	return &Stores{
		Profiles:   NewProfileStore(db),
		Checklists: NewChecklistStore(db),
		Tasks:      NewTaskStore(db),
		Shares:     NewShareStore(db),
		TimerLogs:  NewTimerLogStore(db),
	}
}

// classify turns driver errors into apperr kinds. what names the entity ("task").
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(what + " not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperr.Conflict(what+" already exists", err)
	}
	return err
}

// expectOne converts a zero-row delete/update into a not-found error.
func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(what + " not found")
	}
	return nil
}

// setList accumulates "col = $n" fragments for partial updates.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

// next returns the placeholder for one more trailing argument.
func (s *setList) next(v any) string {
	s.args = append(s.args, v)
	return fmt.Sprintf("$%d", len(s.args))
}

type rowScanner interface {
	Scan(dest ...any) error
}
