// Package httpapi serves the task ledger as a JSON API for browser front ends.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
	"chaintodo/internal/wallet"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// TaskJSON is the wire form of a task.
type TaskJSON struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	Order     uint64    `json:"order"`
}

type tasksResponse struct {
	Tasks  []TaskJSON `json:"tasks"`
	Status string     `json:"status,omitempty"`
}

type createRequest struct {
	Content string `json:"content"`
}

// reorderRequest uses 0-based indexes into the current list, like a
// drag-and-drop source and destination.
type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// Server exposes a service.Service over HTTP.
type Server struct {
	svc     service.Service
	backend string
	logger  *log.Logger
	metrics *Metrics

	// mu keeps one ledger write in flight at a time.
	mu sync.Mutex

	engine *gin.Engine
}

// New builds the router.
func New(svc service.Service, backend string, logger *log.Logger) *Server {
	s := &Server{
		svc:     svc,
		backend: backend,
		logger:  logger,
		metrics: NewMetrics(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.metrics.Middleware(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	api.GET("/wallet", s.getWallet)
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.POST("/tasks/reorder", s.reorderTasks)
	api.POST("/tasks/:id/toggle", s.toggleTask)
	api.DELETE("/tasks/:id", s.deleteTask)

	s.engine = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "backend", s.backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) getWallet(c *gin.Context) {
	account, err := s.svc.Account(c.Request.Context())
	if err != nil {
		s.writeError(c, "Please connect your wallet.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "backend": s.backend})
}

func (s *Server) listTasks(c *gin.Context) {
	list, err := tasks.Load(c.Request.Context(), s.svc)
	if err != nil {
		s.writeError(c, "Failed to load tasks.", err)
		return
	}
	c.JSON(http.StatusOK, tasksResponse{Tasks: toJSON(list)})
}

func (s *Server) createTask(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := tasks.Create(c.Request.Context(), s.svc, req.Content)
	if !errors.Is(err, tasks.ErrEmptyContent) {
		s.metrics.ObserveWrite("create", err)
	}
	if err != nil {
		s.writeError(c, tasks.StatusCreateErr, err)
		return
	}
	c.JSON(http.StatusCreated, tasksResponse{Tasks: toJSON(list), Status: tasks.StatusCreated})
}

func (s *Server) toggleTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.visible(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, tasks.StatusToggleErr, err)
		return
	}

	list, err := tasks.Toggle(c.Request.Context(), s.svc, id)
	s.metrics.ObserveWrite("toggle", err)
	if err != nil {
		s.writeError(c, tasks.StatusToggleErr, err)
		return
	}
	c.JSON(http.StatusOK, tasksResponse{Tasks: toJSON(list), Status: tasks.StatusToggled(task.Content)})
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.visible(c.Request.Context(), id); err != nil {
		s.writeError(c, tasks.StatusDeleteErr, err)
		return
	}

	list, err := tasks.Delete(c.Request.Context(), s.svc, id)
	s.metrics.ObserveWrite("delete", err)
	if err != nil {
		s.writeError(c, tasks.StatusDeleteErr, err)
		return
	}
	c.JSON(http.StatusOK, tasksResponse{Tasks: toJSON(list), Status: tasks.StatusDeleted})
}

func (s *Server) reorderTasks(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request.Context()
	list, err := tasks.Load(ctx, s.svc)
	if err != nil {
		s.writeError(c, tasks.StatusReorderErr, err)
		return
	}
	if *req.From == *req.To {
		if _, err := tasks.Move(list, *req.From, *req.To); err != nil {
			s.writeError(c, tasks.StatusReorderErr, err)
			return
		}
		c.JSON(http.StatusOK, tasksResponse{Tasks: toJSON(list), Status: tasks.StatusReordered})
		return
	}

	list, err = tasks.Reorder(ctx, s.svc, list, *req.From, *req.To)
	if !errors.Is(err, tasks.ErrOutOfRange) {
		s.metrics.ObserveWrite("reorder", err)
	}
	if err != nil {
		var rerr *tasks.ReorderError
		if errors.As(err, &rerr) {
			s.logger.Warn("reorder left partially applied", "applied", rerr.Applied, "total", rerr.Total, "err", rerr.Err)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   tasks.StatusReorderErr,
				"detail":  rerr.Err.Error(),
				"applied": rerr.Applied,
				"total":   rerr.Total,
			})
			return
		}
		s.writeError(c, tasks.StatusReorderErr, err)
		return
	}
	c.JSON(http.StatusOK, tasksResponse{Tasks: toJSON(list), Status: tasks.StatusReordered})
}

// visible returns the live task with id, or service.ErrNotFound.
func (s *Server) visible(ctx context.Context, id uint64) (service.Task, error) {
	list, err := tasks.Load(ctx, s.svc)
	if err != nil {
		return service.Task{}, err
	}
	task, ok := tasks.Find(list, id)
	if !ok {
		return service.Task{}, service.ErrNotFound
	}
	return task, nil
}

func (s *Server) writeError(c *gin.Context, msg string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(msg, "err", err)
	}
	c.JSON(code, gin.H{"error": msg, "detail": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, wallet.ErrNoWallet), errors.Is(err, wallet.ErrWalletLocked):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tasks.ErrEmptyContent), errors.Is(err, tasks.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}
	return id, true
}

func toJSON(list []service.Task) []TaskJSON {
	out := make([]TaskJSON, 0, len(list))
	for _, t := range list {
		out = append(out, TaskJSON{
			ID:        t.ID,
			Content:   t.Content,
			Completed: t.Completed,
			CreatedAt: t.CreatedAt.UTC(),
			Order:     t.Order,
		})
	}
	return out
}
