package httpapi

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// sseHeartbeat 空闲时的心跳间隔
const sseHeartbeat = 15 * time.Second

// Events 以 SSE 推送事件总线上的事件；?topics=action,skill 只订阅指定主题
func (h *Handler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	var topics []string
	if raw := c.Query("topics"); raw != "" {
		topics = strings.Split(raw, ",")
	}
	sub := h.rt.Hub.Subscribe(ctx, 32, topics...)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", gin.H{})
	c.Writer.Flush()

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", gin.H{})
			return true
		case evt, ok := <-sub:
			if !ok {
				return false
			}
			c.SSEvent(evt.Type, evt)
			return true
		}
	})
}
