package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"host-monitor/internal/alert"
	"host-monitor/internal/logger"
	"host-monitor/internal/metrics"
	"host-monitor/internal/models"
)

// StatusSource 提供只读的告警运行态，alert.Monitor 满足该接口
type StatusSource interface {
	History() []alert.Record
	Cooldown() *alert.Cooldown
	Thresholds() models.Thresholds
	Interval() time.Duration
	Services() []string
}

// Server 为告警守护进程的只读状态 API
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

type handler struct {
	source    StatusSource
	alertLog  *alert.AlertLog
	startedAt time.Time
}

// NewServer 构建状态 API，collector 为空时不暴露 /metrics
func NewServer(addr string, source StatusSource, alertLog *alert.AlertLog, collector *metrics.Collector) *Server {
	return &Server{httpServer: &http.Server{
		Addr:         addr,
		Handler:      NewHandler(source, alertLog, collector),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}}
}

// NewHandler 返回挂载全部路由的处理器
func NewHandler(source StatusSource, alertLog *alert.AlertLog, collector *metrics.Collector) http.Handler {
	h := &handler{source: source, alertLog: alertLog, startedAt: time.Now()}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", h.health)
	mux.HandleFunc("/api/alerts", h.alerts)
	mux.HandleFunc("/api/status", h.status)
	mux.HandleFunc("/api/alert-log", h.alertLogTail)
	if collector != nil {
		mux.Handle("/metrics", collector.Handler())
	}
	return withCORS(mux)
}

// Start 异步启动 API 服务
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	go func() {
		logger.Info("状态 API 监听 %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("状态 API 异常退出: %v", err)
		}
	}()
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Shutdown 优雅停止 API 服务
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"history": len(h.source.History()),
	})
}

// alerts 按从新到旧返回告警历史，limit 可截断条数
func (h *handler) alerts(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	records := h.source.History()
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":  len(records),
		"alerts": records,
	})
}

type lastFired struct {
	Kind      alert.Kind `json:"kind"`
	Time      time.Time  `json:"time"`
	NextAfter time.Time  `json:"nextAfter"`
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	cooldown := h.source.Cooldown()
	window := cooldown.Window()
	fired := make([]lastFired, 0)
	for kind, at := range cooldown.Snapshot() {
		fired = append(fired, lastFired{Kind: kind, Time: at, NextAfter: at.Add(window)})
	}
	sort.Slice(fired, func(i, j int) bool { return fired[i].Kind < fired[j].Kind })

	writeJSON(w, http.StatusOK, map[string]any{
		"thresholds":      h.source.Thresholds(),
		"intervalSeconds": int(h.source.Interval() / time.Second),
		"cooldownSeconds": int(window / time.Second),
		"services":        h.source.Services(),
		"lastFired":       fired,
	})
}

func (h *handler) alertLogTail(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if h.alertLog == nil || h.alertLog.Path() == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "alert log not configured"})
		return
	}
	lines, err := h.alertLog.Tail(alert.TailMaxLines)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"lines": lines,
	})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
