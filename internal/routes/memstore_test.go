package routes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"checklist-api/internal/apperr"
	"checklist-api/internal/models"
)

// memDB is an in-memory stand-in for the Postgres stores used by handler tests.
type memDB struct {
	mu         sync.Mutex
	seq        int
	profiles   map[string]models.Profile
	checklists map[string]models.Checklist
	tasks      map[string]models.Task
	taskSeq    map[string]int
	shares     map[string]models.ShareRequest
	logs       map[string]models.TimerLog
	failTasks  map[string]bool
}

func newMemDB() *memDB {
	return &memDB{
		profiles:   map[string]models.Profile{},
		checklists: map[string]models.Checklist{},
		tasks:      map[string]models.Task{},
		taskSeq:    map[string]int{},
		shares:     map[string]models.ShareRequest{},
		logs:       map[string]models.TimerLog{},
		failTasks:  map[string]bool{},
	}
}

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memDB) now() time.Time {
	return time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
}

type memProfiles struct{ *memDB }

func (s memProfiles) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.profiles {
		if other.Name == p.Name {
			return apperr.Conflict("profile name already taken", nil)
		}
	}
	p.ID = s.nextID("profile")
	p.CreatedAt = s.now()
	s.profiles[p.ID] = *p
	return nil
}

func (s memProfiles) List(context.Context) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Profile{}
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memProfiles) Get(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, apperr.NotFound("profile not found")
	}
	return &p, nil
}

func (s memProfiles) GetByName(_ context.Context, name string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("profile not found")
}

func (s memProfiles) Update(_ context.Context, id string, upd models.ProfileUpdate) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, apperr.NotFound("profile not found")
	}
	if upd.Name != nil {
		for _, other := range s.profiles {
			if other.ID != id && other.Name == *upd.Name {
				return nil, apperr.Conflict("profile name already taken", nil)
			}
		}
		p.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		p.PasswordHash = *upd.PasswordHash
	}
	if upd.AvatarURL.Set {
		p.AvatarURL = upd.AvatarURL.Value
	}
	s.profiles[id] = p
	return &p, nil
}

func (s memProfiles) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return apperr.NotFound("profile not found")
	}
	delete(s.profiles, id)
	return nil
}

type memChecklists struct{ *memDB }

func (s memChecklists) Create(_ context.Context, c *models.Checklist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID("checklist")
	c.CreatedAt = s.now()
	s.checklists[c.ID] = *c
	return nil
}

func (s memChecklists) ListByOwner(_ context.Context, profileID string) ([]models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Checklist{}
	for _, c := range s.checklists {
		if c.ProfileID == profileID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memChecklists) Get(_ context.Context, id string) (*models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checklists[id]
	if !ok {
		return nil, apperr.NotFound("checklist not found")
	}
	return &c, nil
}

func (s memChecklists) UpdateTitle(_ context.Context, id, title string) (*models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checklists[id]
	if !ok {
		return nil, apperr.NotFound("checklist not found")
	}
	c.Title = title
	s.checklists[id] = c
	return &c, nil
}

func (s memChecklists) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checklists[id]; !ok {
		return apperr.NotFound("checklist not found")
	}
	delete(s.checklists, id)
	return nil
}

type memTasks struct{ *memDB }

func (s memTasks) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTasks[t.Title] {
		return fmt.Errorf("insert task %q rejected", t.Title)
	}
	t.ID = s.nextID("task")
	t.CreatedAt = s.now()
	s.tasks[t.ID] = *t
	s.taskSeq[t.ID] = s.seq
	return nil
}

func (s memTasks) Get(_ context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	return &t, nil
}

func (s memTasks) ListByChecklist(ctx context.Context, checklistID string) ([]models.Task, error) {
	out, _ := s.ListByCreation(ctx, checklistID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (s memTasks) ListByCreation(_ context.Context, checklistID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Task{}
	for _, t := range s.tasks {
		if t.ChecklistID == checklistID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.taskSeq[out[i].ID] < s.taskSeq[out[j].ID] })
	return out, nil
}

func (s memTasks) Update(_ context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.ParentID.Set {
		t.ParentID = p.ParentID.Value
	}
	if p.OrderNumber != nil {
		t.OrderNumber = *p.OrderNumber
	}
	if p.StartTime.Set {
		t.StartTime = p.StartTime.Value
	}
	if p.EndTime.Set {
		t.EndTime = p.EndTime.Value
	}
	if p.AllocatedTime.Set {
		t.AllocatedTime = p.AllocatedTime.Value
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	s.tasks[id] = t
	return &t, nil
}

func (s memTasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return apperr.NotFound("task not found")
	}
	delete(s.tasks, id)
	return nil
}

type memShares struct{ *memDB }

func (s memShares) Create(_ context.Context, r *models.ShareRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID("share")
	r.Status = models.SharePending
	r.CreatedAt = s.now()
	s.shares[r.ID] = *r
	return nil
}

func (s memShares) Get(_ context.Context, id string) (*models.ShareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.shares[id]
	if !ok {
		return nil, apperr.NotFound("share request not found")
	}
	return &r, nil
}

func (s memShares) ListPending(_ context.Context, receiverID string) ([]models.PendingShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PendingShare{}
	for _, r := range s.shares {
		if r.ReceiverID != receiverID || r.Status != models.SharePending {
			continue
		}
		sender := s.profiles[r.SenderID]
		out = append(out, models.PendingShare{
			ShareRequest:   r,
			ChecklistTitle: s.checklists[r.ChecklistID].Title,
			SenderName:     sender.Name,
			SenderAvatar:   sender.AvatarURL,
		})
	}
	return out, nil
}

func (s memShares) Transition(_ context.Context, id string, from, to models.ShareStatus) (*models.ShareRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.shares[id]
	if !ok || r.Status != from {
		return nil, false, nil
	}
	r.Status = to
	s.shares[id] = r
	return &r, true, nil
}

type memLogs struct{ *memDB }

func (s memLogs) Append(_ context.Context, l *models.TimerLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = s.nextID("log")
	}
	l.CreatedAt = s.now()
	s.logs[l.ID] = *l
	return nil
}

func (s memLogs) ListByChecklist(_ context.Context, checklistID string) ([]models.TimerLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.TimerLog{}
	for _, l := range s.logs {
		if l.ChecklistID == checklistID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// memCache records invalidations so tests can check them.
type memCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.invalidated = append(c.invalidated, k)
	}
}
