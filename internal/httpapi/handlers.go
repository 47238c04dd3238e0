package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuqie6/IdleForge/internal/bootstrap"
	"github.com/yuqie6/IdleForge/internal/dto"
	"github.com/yuqie6/IdleForge/internal/service"
)

// maxSimulateSeconds 单次手动模拟上限
const maxSimulateSeconds = 24 * 3600

type Handler struct {
	rt        *bootstrap.Runtime
	startTime time.Time
}

func newHandler(rt *bootstrap.Runtime) *Handler {
	return &Handler{rt: rt, startTime: time.Now()}
}

// do 在 tick goroutine 上执行；循环已停止时返回 503
func (h *Handler) do(c *gin.Context, fn func(g *service.GameService)) bool {
	if err := h.rt.Runner.Do(c.Request.Context(), fn); err != nil {
		status := http.StatusServiceUnavailable
		if !errors.Is(err, service.ErrRunnerStopped) {
			status = http.StatusRequestTimeout
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"name":       h.rt.Cfg.App.Name,
		"version":    h.rt.Cfg.App.Version,
		"started_at": h.startTime.Format(time.RFC3339),
	})
}

func (h *Handler) Status(c *gin.Context) {
	out := dto.StatusDTO{
		App: dto.AppStatusDTO{
			Name:      h.rt.Cfg.App.Name,
			Version:   h.rt.Cfg.App.Version,
			StartedAt: h.startTime.Format(time.RFC3339),
			UptimeSec: int64(time.Since(h.startTime).Seconds()),
			SafeMode:  h.rt.DB.SafeMode,
		},
		Storage: dto.StorageStatusDTO{
			DBPath:         h.rt.Cfg.Storage.DBPath,
			SchemaVersion:  h.rt.DB.SchemaVersion,
			SafeModeReason: h.rt.DB.MigrationError,
		},
	}
	ok := h.do(c, func(g *service.GameService) {
		ch := g.Character()
		out.Sim = dto.SimStatusDTO{
			CharacterID:    ch.ID,
			TickIntervalMs: h.rt.Runner.Interval().Milliseconds(),
			LastTickAt:     ch.LastTickAt,
			ActiveAction:   ch.ActiveActionID,
			PendingResume:  ch.PendingResumeID,
			Subscribers:    h.rt.Hub.Subscribers(),
			DroppedEvents:  h.rt.Hub.Dropped(),
			OfflineSteps:   h.rt.Offline.Steps,
		}
	})
	if ok {
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) Character(c *gin.Context) {
	var out dto.CharacterDTO
	if h.do(c, func(g *service.GameService) { out = dto.NewCharacterDTO(g.Character()) }) {
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) Skills(c *gin.Context) {
	var out []dto.SkillDTO
	if h.do(c, func(g *service.GameService) { out = dto.NewCharacterDTO(g.Character()).Skills }) {
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) Actions(c *gin.Context) {
	var out []dto.ActionDTO
	if h.do(c, func(g *service.GameService) { out = dto.NewActionDTOs(g.Character(), false) }) {
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) Upgrades(c *gin.Context) {
	var out []dto.ActionDTO
	if h.do(c, func(g *service.GameService) { out = dto.NewActionDTOs(g.Character(), true) }) {
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) StartAction(c *gin.Context) {
	id := c.Param("id")
	var found, started bool
	var view dto.ActionDTO
	ok := h.do(c, func(g *service.GameService) {
		a := g.Character().Action(id)
		if a == nil || a.IsUpgrade {
			return
		}
		found = true
		started = g.StartAction(id)
		view = dto.NewActionDTO(a, g.Character().Snapshot())
	})
	switch {
	case !ok:
	case !found:
		c.JSON(http.StatusNotFound, gin.H{"error": "行动不存在: " + id})
	case !started:
		c.JSON(http.StatusConflict, gin.H{"error": "无法开始行动", "action": view})
	default:
		c.JSON(http.StatusOK, view)
	}
}

func (h *Handler) StopAction(c *gin.Context) {
	var stopped bool
	if h.do(c, func(g *service.GameService) { stopped = g.StopAction() }) {
		c.JSON(http.StatusOK, gin.H{"stopped": stopped})
	}
}

func (h *Handler) PurchaseUpgrade(c *gin.Context) {
	id := c.Param("id")
	var found, started bool
	var view dto.ActionDTO
	ok := h.do(c, func(g *service.GameService) {
		a := g.Character().Action(id)
		if a == nil || !a.IsUpgrade {
			return
		}
		found = true
		started = g.PurchaseUpgrade(id)
		view = dto.NewActionDTO(a, g.Character().Snapshot())
	})
	switch {
	case !ok:
	case !found:
		c.JSON(http.StatusNotFound, gin.H{"error": "升级不存在: " + id})
	case !started:
		c.JSON(http.StatusConflict, gin.H{"error": "无法购买升级", "upgrade": view})
	default:
		c.JSON(http.StatusOK, view)
	}
}

func (h *Handler) Save(c *gin.Context) {
	var saveErr error
	if !h.do(c, func(*service.GameService) { saveErr = h.rt.Save(c.Request.Context()) }) {
		return
	}
	if saveErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": saveErr.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (h *Handler) ListSaves(c *gin.Context) {
	slots, err := h.rt.Services.Saves.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.SaveSlotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, dto.NewSaveSlotDTO(s))
	}
	c.JSON(http.StatusOK, out)
}

// Simulate 手动快进，便于调试离线补算
func (h *Handler) Simulate(c *gin.Context) {
	var req struct {
		Seconds int64 `json:"seconds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误"})
		return
	}
	if req.Seconds > maxSimulateSeconds {
		req.Seconds = maxSimulateSeconds
	}

	var rep service.SimulationReport
	ok := h.do(c, func(g *service.GameService) {
		rep = g.Simulate(time.Duration(req.Seconds)*time.Second, h.rt.OfflineStep(), 0)
	})
	if ok {
		c.JSON(http.StatusOK, rep)
	}
}
