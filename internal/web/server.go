// Package web exposes stamping jobs over a JSON API with a WebSocket
// progress stream. It serves no static assets.
package web

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"voicestamp/internal/config"
	"voicestamp/internal/logger"
	"voicestamp/internal/pipeline"
	"voicestamp/internal/shutdown"
)

// DepsFactory builds the pipeline collaborators for one job configuration.
type DepsFactory func(cfg config.Config) (pipeline.Deps, error)

type Server struct {
	shutdown *shutdown.Handler
	jobMgr   *JobManager
	config   config.Config
	logger   *logger.Logger
	newDeps  DepsFactory
	validate *validator.Validate
}

// NewServer creates a server whose jobs start from cfg. Jobs are cancelled
// when sh shuts down, and sh.Wait returns once every running job has
// cleaned up after itself.
func NewServer(sh *shutdown.Handler, jobMgr *JobManager, cfg config.Config, log *logger.Logger, newDeps DepsFactory) *Server {
	return &Server{
		shutdown: sh,
		jobMgr:   jobMgr,
		config:   cfg,
		logger:   log,
		newDeps:  newDeps,
		validate: validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/jobs", s.handleJobs)
	mux.HandleFunc("/api/jobs/", s.handleJobAction)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
