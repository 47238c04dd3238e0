package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuqie6/IdleForge/internal/bootstrap"
)

// Server 本地 HTTP 服务
type Server struct {
	ln      net.Listener
	srv     *http.Server
	baseURL string
}

type Options struct {
	ListenAddr string // e.g. "127.0.0.1:0"
}

// Start 监听并在后台提供服务，ctx 取消时关闭
func Start(ctx context.Context, rt *bootstrap.Runtime, opts Options) (*Server, error) {
	if rt == nil {
		return nil, fmt.Errorf("rt 不能为空")
	}
	if strings.TrimSpace(opts.ListenAddr) == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		ln: ln,
		srv: &http.Server{
			Handler:           NewRouter(rt),
			ReadHeaderTimeout: 5 * time.Second,
		},
		baseURL: "http://" + ln.Addr().String(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()

	slog.Info("本地 HTTP 已启动", "base_url", s.baseURL)
	return s, nil
}

func (s *Server) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// NewRouter 注册全部路由
func NewRouter(rt *bootstrap.Runtime) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	h := newHandler(rt)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/status", h.Status)
		api.GET("/character", h.Character)
		api.GET("/skills", h.Skills)
		api.GET("/events", h.Events)

		// 行动
		api.GET("/actions", h.Actions)
		api.POST("/actions/:id/start", h.StartAction)
		api.POST("/actions/stop", h.StopAction)

		// 升级
		api.GET("/upgrades", h.Upgrades)
		api.POST("/upgrades/:id/purchase", h.PurchaseUpgrade)

		// 存档与模拟
		api.POST("/save", h.Save)
		api.GET("/saves", h.ListSaves)
		api.POST("/simulate", h.Simulate)
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.FullPath() == "/api/events" {
			return
		}
		slog.Debug("http 请求",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"cost", time.Since(start),
		)
	}
}
