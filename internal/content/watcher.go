package content

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监听内容文件，写入后重新加载并替换 Builder 的内容表
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	builder  *Builder
	debounce time.Duration
	onReload func(*Definitions)

	mu       sync.Mutex
	stopOnce sync.Once
	timer    *time.Timer
}

// NewWatcher 创建监听器；监听所在目录以兼容编辑器的原子替换写法
func NewWatcher(path string, builder *Builder, onReload func(*Definitions)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("获取绝对路径失败: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("添加监控目录失败: %w", err)
	}
	return &Watcher{
		watcher:  w,
		path:     abs,
		builder:  builder,
		debounce: 200 * time.Millisecond,
		onReload: onReload,
	}, nil
}

// Run 阻塞直到 ctx 取消或监控器关闭
func (w *Watcher) Run(ctx context.Context) {
	slog.Info("内容热加载已启用", "path", w.path)
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("内容文件监控错误", "error", err)
		}
	}
}

// Stop 关闭监控器
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		_ = w.watcher.Close()
	})
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	// 防抖：编辑器保存通常触发多次写入
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	defs, err := Load(w.path)
	if err != nil {
		slog.Warn("内容重新加载失败，保留旧内容", "path", w.path, "error", err)
		return
	}
	w.builder.Swap(defs)
	slog.Info("内容已重新加载", "path", w.path)
	if w.onReload != nil {
		w.onReload(defs)
	}
}
