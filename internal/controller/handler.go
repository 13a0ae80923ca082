package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"checklist-api/internal/apperr"
	"checklist-api/internal/models"
	"checklist-api/internal/share"
	"checklist-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type Profiles interface {
	Create(ctx context.Context, p *models.Profile) error
	List(ctx context.Context) ([]models.Profile, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetByName(ctx context.Context, name string) (*models.Profile, error)
	Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.Profile, error)
	Delete(ctx context.Context, id string) error
}

type Checklists interface {
	Create(ctx context.Context, c *models.Checklist) error
	ListByOwner(ctx context.Context, profileID string) ([]models.Checklist, error)
	Get(ctx context.Context, id string) (*models.Checklist, error)
	UpdateTitle(ctx context.Context, id, title string) (*models.Checklist, error)
	Delete(ctx context.Context, id string) error
}

type Tasks interface {
	Create(ctx context.Context, t *models.Task) error
	Get(ctx context.Context, id string) (*models.Task, error)
	ListByChecklist(ctx context.Context, checklistID string) ([]models.Task, error)
	ListByCreation(ctx context.Context, checklistID string) ([]models.Task, error)
	Update(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type TimerLogs interface {
	Append(ctx context.Context, l *models.TimerLog) error
	ListByChecklist(ctx context.Context, checklistID string) ([]models.TimerLog, error)
}

type Shares interface {
	Create(ctx context.Context, checklistID, senderID, receiverName string) (*models.ShareRequest, error)
	ListPending(ctx context.Context, receiverID string) ([]models.PendingShare, error)
	Respond(ctx context.Context, requestID, receiverID string, action share.Action) (*share.Outcome, error)
}

// Cache holds serialized list responses; implementations may be no-ops.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, b []byte)
	Invalidate(ctx context.Context, keys ...string)
}

type TimerLogPublisher interface {
	PublishTimerLog(ctx context.Context, cmd *models.TimerLogCommand) error
}

// Deps are the collaborators of Handler. Publisher is nil when timer logs are
// written synchronously. Probes are checked by the readiness endpoint.
type Deps struct {
	Profiles   Profiles
	Checklists Checklists
	Tasks      Tasks
	TimerLogs  TimerLogs
	Shares     Shares
	Cache      Cache
	Publisher  TimerLogPublisher
	BcryptCost int
	Probes     map[string]func(context.Context) error
}

type Handler struct {
	Deps
	lists singleflight.Group
}

func New(d Deps) *Handler {
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	return &Handler{Deps: d}
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (nopCache) Set(context.Context, string, []byte)        {}
func (nopCache) Invalidate(context.Context, ...string)      {}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready runs every probe concurrently; any failure answers 503.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for name, probe := range h.Probes {
		g.Go(func() error {
			if err := probe(gctx); err != nil {
				return errors.New(name + " unavailable")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": err.Error()})
		return
	}
	c.String(http.StatusOK, "OK")
}

// serveList answers from the cache when possible. Concurrent misses on the
// same key share one database load.
func (h *Handler) serveList(c *gin.Context, key string, load func(ctx context.Context) (any, error)) {
	ctx := c.Request.Context()
	if b, ok := h.Cache.Get(ctx, key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}
	v, err, _ := h.lists.Do(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		items, err := load(lctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		h.Cache.Set(lctx, key, b)
		return b, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", v.([]byte))
}

func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request error", "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

var registerTagNames sync.Once

// bindJSON decodes the body into dst and turns binding failures into
// validation errors naming the offending JSON field.
func bindJSON(c *gin.Context, dst any) error {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Tag() == "required" {
				return apperr.Validation(fe.Field() + " is required")
			}
			return apperr.Validation(fe.Field() + " is invalid")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
