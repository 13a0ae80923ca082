package clone

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"checklist-api/internal/apperr"
	"checklist-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecklists struct {
	byID      map[string]*models.Checklist
	createErr error
	n         int
}

func (f *fakeChecklists) Get(_ context.Context, id string) (*models.Checklist, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("checklist not found")
	}
	return c, nil
}

func (f *fakeChecklists) Create(_ context.Context, c *models.Checklist) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.n++
	c.ID = fmt.Sprintf("copy-%d", f.n)
	f.byID[c.ID] = c
	return nil
}

type fakeTasks struct {
	byChecklist map[string][]models.Task
	listErr     error
	failTitles  map[string]bool
	n           int
}

func (f *fakeTasks) ListByCreation(_ context.Context, checklistID string) ([]models.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Task(nil), f.byChecklist[checklistID]...), nil
}

func (f *fakeTasks) Create(_ context.Context, t *models.Task) error {
	if f.failTitles[t.Title] {
		return errors.New("insert rejected")
	}
	f.n++
	t.ID = fmt.Sprintf("new-task-%d", f.n)
	f.byChecklist[t.ChecklistID] = append(f.byChecklist[t.ChecklistID], *t)
	return nil
}

func strPtr(s string) *string { return &s }

func newFixture(tasks ...models.Task) (*fakeChecklists, *fakeTasks) {
	checklists := &fakeChecklists{byID: map[string]*models.Checklist{
		"src": {ID: "src", ProfileID: "alice", Title: "Trip"},
	}}
	ts := &fakeTasks{byChecklist: map[string][]models.Task{"src": tasks}, failTitles: map[string]bool{}}
	return checklists, ts
}

// parentTitle maps each cloned task's parent back to a title so linkage can be
// compared structurally.
func parentTitles(tasks []models.Task) map[string]string {
	byID := map[string]string{}
	for _, t := range tasks {
		byID[t.ID] = t.Title
	}
	out := map[string]string{}
	for _, t := range tasks {
		if t.ParentID == nil {
			out[t.Title] = ""
			continue
		}
		out[t.Title] = byID[*t.ParentID]
	}
	return out
}

func TestCloneRemapsParents(t *testing.T) {
	desc := "running shoes"
	mins := 20
	checklists, tasks := newFixture(
		models.Task{ID: "t1", ChecklistID: "src", Title: "Pack", OrderNumber: 1},
		models.Task{ID: "t2", ChecklistID: "src", ParentID: strPtr("t1"), Title: "Shoes", Description: &desc, OrderNumber: 2, AllocatedTime: &mins, IsCompleted: true},
		models.Task{ID: "t3", ChecklistID: "src", ParentID: strPtr("t2"), Title: "Laces", OrderNumber: 0},
		models.Task{ID: "t4", ChecklistID: "src", Title: "Tickets", OrderNumber: 3},
	)

	res, err := New(checklists, tasks).Clone(context.Background(), "src", "bob")
	require.NoError(t, err)

	assert.Equal(t, "bob", res.Checklist.ProfileID)
	assert.Equal(t, "Trip", res.Checklist.Title)
	assert.True(t, res.Checklist.IsSharedCopy)
	assert.Equal(t, 4, res.Copied)
	assert.Zero(t, res.Skipped)

	copies := tasks.byChecklist[res.Checklist.ID]
	require.Len(t, copies, 4)
	assert.Equal(t, map[string]string{"Pack": "", "Shoes": "Pack", "Laces": "Shoes", "Tickets": ""}, parentTitles(copies))

	for _, c := range copies {
		assert.NotContains(t, []string{"t1", "t2", "t3", "t4"}, c.ID)
		if c.ParentID != nil {
			assert.NotContains(t, []string{"t1", "t2", "t3", "t4"}, *c.ParentID)
		}
	}
	shoes := copies[1]
	assert.Equal(t, "running shoes", *shoes.Description)
	assert.Equal(t, 20, *shoes.AllocatedTime)
	assert.Equal(t, 2, shoes.OrderNumber)
	assert.True(t, shoes.IsCompleted)
}

func TestCloneLeavesSourceUntouched(t *testing.T) {
	checklists, tasks := newFixture(
		models.Task{ID: "t1", ChecklistID: "src", Title: "Pack"},
		models.Task{ID: "t2", ChecklistID: "src", ParentID: strPtr("t1"), Title: "Shoes"},
	)

	_, err := New(checklists, tasks).Clone(context.Background(), "src", "bob")
	require.NoError(t, err)

	src := tasks.byChecklist["src"]
	require.Len(t, src, 2)
	assert.Equal(t, "t1", *src[1].ParentID)
	assert.False(t, checklists.byID["src"].IsSharedCopy)
}

func TestCloneEmptyChecklist(t *testing.T) {
	checklists, tasks := newFixture()

	res, err := New(checklists, tasks).Clone(context.Background(), "src", "bob")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Checklist.ID)
	assert.Zero(t, res.Copied)
	assert.Empty(t, tasks.byChecklist[res.Checklist.ID])
}

func TestCloneSkipsFailedTaskAndNullsChildParent(t *testing.T) {
	checklists, tasks := newFixture(
		models.Task{ID: "t1", ChecklistID: "src", Title: "Pack"},
		models.Task{ID: "t2", ChecklistID: "src", ParentID: strPtr("t1"), Title: "Shoes"},
		models.Task{ID: "t3", ChecklistID: "src", ParentID: strPtr("t2"), Title: "Laces"},
	)
	tasks.failTitles["Shoes"] = true

	res, err := New(checklists, tasks).Clone(context.Background(), "src", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Copied)
	assert.Equal(t, 1, res.Skipped)

	copies := tasks.byChecklist[res.Checklist.ID]
	require.Len(t, copies, 2)
	assert.Equal(t, map[string]string{"Pack": "", "Laces": ""}, parentTitles(copies))
}

func TestCloneChildBeforeParentFallsBackToNull(t *testing.T) {
	// A task re-parented onto a newer task is seen before its parent.
	checklists, tasks := newFixture(
		models.Task{ID: "t1", ChecklistID: "src", ParentID: strPtr("t2"), Title: "Shoes"},
		models.Task{ID: "t2", ChecklistID: "src", Title: "Pack"},
	)

	res, err := New(checklists, tasks).Clone(context.Background(), "src", "bob")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Shoes": "", "Pack": ""}, parentTitles(tasks.byChecklist[res.Checklist.ID]))
}

func TestCloneMissingSourceIsFatal(t *testing.T) {
	checklists, tasks := newFixture()

	_, err := New(checklists, tasks).Clone(context.Background(), "missing", "bob")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, checklists.n)
}

func TestCloneTaskListFailureIsFatal(t *testing.T) {
	checklists, tasks := newFixture()
	tasks.listErr = errors.New("connection reset")

	_, err := New(checklists, tasks).Clone(context.Background(), "src", "bob")
	require.Error(t, err)
	assert.Zero(t, checklists.n)
}

func TestCloneChecklistCreateFailureIsFatal(t *testing.T) {
	checklists, tasks := newFixture(models.Task{ID: "t1", ChecklistID: "src", Title: "Pack"})
	checklists.createErr = errors.New("insert failed")

	_, err := New(checklists, tasks).Clone(context.Background(), "src", "bob")
	require.Error(t, err)
	assert.Zero(t, tasks.n)
}

func TestCloneStopsWhenContextCancelled(t *testing.T) {
	checklists, tasks := newFixture(models.Task{ID: "t1", ChecklistID: "src", Title: "Pack"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(checklists, tasks).Clone(ctx, "src", "bob")
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, res.Copied)
}
