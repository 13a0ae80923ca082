// Package clone copies a checklist and its task tree under a new owner.
package clone

import (
	"context"
	"fmt"

	"checklist-api/internal/models"
	"checklist-api/pkg/logger"
)

type ChecklistStore interface {
	Get(ctx context.Context, id string) (*models.Checklist, error)
	Create(ctx context.Context, c *models.Checklist) error
}

type TaskStore interface {
	ListByCreation(ctx context.Context, checklistID string) ([]models.Task, error)
	Create(ctx context.Context, t *models.Task) error
}

// Result describes a finished clone. Skipped counts tasks whose insert failed.
type Result struct {
	Checklist *models.Checklist
	Copied    int
	Skipped   int
}

type Cloner struct {
	checklists ChecklistStore
	tasks      TaskStore
}

func New(checklists ChecklistStore, tasks TaskStore) *Cloner {
	return &Cloner{checklists: checklists, tasks: tasks}
}

// Clone copies checklist sourceID to ownerID as a shared copy.
//
// Tasks are copied in creation order so a parent is always copied before its
// children; each child's parent_id is rewritten to the copy of its parent.
// A task whose insert fails is skipped, and its children fall back to a
// null parent. Failing to read the source, or to create the new checklist,
// aborts the clone. Nothing is rolled back: a failure part way through leaves
// a partial copy behind.
func (c *Cloner) Clone(ctx context.Context, sourceID, ownerID string) (*Result, error) {
	src, err := c.checklists.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load source checklist: %w", err)
	}
	tasks, err := c.tasks.ListByCreation(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load source tasks: %w", err)
	}

	dst := &models.Checklist{
		ProfileID:    ownerID,
		Title:        src.Title,
		IsSharedCopy: true,
	}
	if err := c.checklists.Create(ctx, dst); err != nil {
		return nil, fmt.Errorf("create checklist copy: %w", err)
	}

	res := &Result{Checklist: dst}
	newIDs := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		cp := copyTask(t, dst.ID, newIDs)
		if err := c.tasks.Create(ctx, cp); err != nil {
			res.Skipped++
			logger.Warn(ctx, "Task clone skipped", "error", err, "task_id", t.ID, "checklist_id", dst.ID)
			continue
		}
		newIDs[t.ID] = cp.ID
		res.Copied++
	}
	logger.Info(ctx, "Checklist cloned",
		"source_id", sourceID, "checklist_id", dst.ID, "owner_id", ownerID,
		"copied", res.Copied, "skipped", res.Skipped)
	return res, nil
}

// copyTask builds the copy of t inside checklistID. The parent is resolved
// through newIDs; an unresolved parent becomes null.
func copyTask(t models.Task, checklistID string, newIDs map[string]string) *models.Task {
	cp := &models.Task{
		ChecklistID:   checklistID,
		Title:         t.Title,
		Description:   t.Description,
		OrderNumber:   t.OrderNumber,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		AllocatedTime: t.AllocatedTime,
		IsCompleted:   t.IsCompleted,
	}
	if t.ParentID != nil {
		if id, ok := newIDs[*t.ParentID]; ok {
			cp.ParentID = &id
		}
	}
	return cp
}
