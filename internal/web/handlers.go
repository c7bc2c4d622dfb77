package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"voicestamp/internal/config"
	"voicestamp/internal/pipeline"
	"voicestamp/internal/placeholder"
	"voicestamp/internal/speech"
)

const timeLayout = "2006-01-02 15:04:05"

// CreateJobRequest starts a job. Unset fields keep the server configuration.
type CreateJobRequest struct {
	Inputs               []string `json:"inputs" validate:"required,min=1,dive,required"`
	TitleFormat          *string  `json:"title_format"`
	TickFormat           *string  `json:"tick_format"`
	TickInterval         *int     `json:"tick_interval" validate:"omitempty,min=1"`
	TickOffset           *int     `json:"tick_offset" validate:"omitempty,min=1"`
	TickAdd              *int     `json:"tick_add"`
	SplitSegmentDuration *int     `json:"split_segment_duration" validate:"omitempty,min=0"`
	FileOut              *string  `json:"file_out"`
	ForceOverwrite       bool     `json:"force_overwrite"`
	DryRun               bool     `json:"dry_run"`
}

// PreviewRequest renders a template against sample values.
type PreviewRequest struct {
	Template any `json:"template"`
	Values   any `json:"values"`
}

type PreviewResponse struct {
	Text      string `json:"text"`
	Speakable string `json:"speakable"`
}

type JobResponse struct {
	ID          string    `json:"id"`
	Inputs      []string  `json:"inputs"`
	Status      JobStatus `json:"status"`
	Total       int       `json:"total"`
	FilesDone   int       `json:"files_done"`
	Segments    int       `json:"segments"`
	Outputs     []string  `json:"outputs,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   string    `json:"created_at"`
	StartedAt   *string   `json:"started_at,omitempty"`
	CompletedAt *string   `json:"completed_at,omitempty"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListJobs(w, r)
	case http.MethodPost:
		s.handleCreateJob(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		http.Error(w, requestError(err), http.StatusBadRequest)
		return
	}

	jobConfig := req.apply(s.config)
	if err := jobConfig.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobMgr.CreateJob(req.Inputs, jobConfig)
	s.logger.Info("Created job %s for %d input(s)", job.ID, len(req.Inputs))

	s.shutdown.Add(1)
	go func() {
		defer s.shutdown.Done()
		s.processJob(job)
	}()

	writeJSON(w, http.StatusAccepted, s.jobToResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = s.jobToResponse(job)
	}

	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// Extract job ID from path: /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	// Handle GET /api/jobs/{id}
	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, s.jobToResponse(job))
		return
	}

	// Handle POST /api/jobs/{id}/cancel
	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if job.Cancel != nil {
			job.Cancel()
		}

		s.jobMgr.UpdateJob(jobID, func(j *Job) {
			j.Status = StatusCancelled
		})

		writeJSON(w, http.StatusOK, map[string]string{"status": string(StatusCancelled)})
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	text, err := placeholder.RenderValue(req.Template, req.Values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, PreviewResponse{Text: text, Speakable: speech.Speakable(text)})
}

func (s *Server) processJob(job Job) {
	ctx, cancel := context.WithCancel(s.shutdown.Context())
	defer cancel()

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = cancel
		j.Status = StatusRunning
	})
	if cur, err := s.jobMgr.GetJob(job.ID); err != nil || cur.Status.Done() {
		return
	}

	s.logger.Info("Starting job %s", job.ID)

	deps, err := s.newDeps(job.Config)
	if err != nil {
		s.fail(job.ID, err)
		return
	}

	runner := &pipeline.Job{
		Config:   job.Config,
		Logger:   s.logger,
		Deps:     deps,
		Shutdown: s.shutdown,
		Hooks: pipeline.Hooks{
			OnFilesResolved: func(total int) {
				s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Total = total })
			},
			OnFileDone: func(string, error) {
				s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.FilesDone++ })
			},
			OnSegmentDone: func(string, int, int) {
				s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Segments++ })
			},
			OnWarning: func(msg string) {
				s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Warnings = append(j.Warnings, msg) })
			},
		},
	}

	results, err := pipeline.Run(ctx, runner, job.Inputs)

	var outputs []string
	for _, res := range results {
		for _, seg := range res.Segments {
			outputs = append(outputs, seg.Output)
		}
	}
	s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Outputs = outputs })

	switch {
	case errors.Is(err, context.Canceled):
		s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Status = StatusCancelled })
		s.logger.Info("Job %s cancelled", job.ID)
	case err != nil:
		s.fail(job.ID, err)
	default:
		s.jobMgr.UpdateJob(job.ID, func(j *Job) { j.Status = StatusCompleted })
		s.logger.Info("Job %s completed successfully", job.ID)
	}
}

func (s *Server) fail(jobID string, err error) {
	s.logger.Error("Job %s failed: %v", jobID, err)
	s.jobMgr.UpdateJob(jobID, func(j *Job) {
		j.Status = StatusFailed
		j.Error = err.Error()
	})
}

func (s *Server) jobToResponse(job Job) *JobResponse {
	resp := &JobResponse{
		ID:        job.ID,
		Inputs:    job.Inputs,
		Status:    job.Status,
		Total:     job.Total,
		FilesDone: job.FilesDone,
		Segments:  job.Segments,
		Outputs:   job.Outputs,
		Warnings:  job.Warnings,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.Format(timeLayout),
	}

	if job.StartedAt != nil {
		started := job.StartedAt.Format(timeLayout)
		resp.StartedAt = &started
	}

	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format(timeLayout)
		resp.CompletedAt = &completed
	}

	return resp
}

// apply overlays the request on the server configuration.
func (req CreateJobRequest) apply(cfg config.Config) config.Config {
	if req.TitleFormat != nil {
		cfg.TitleFormat = *req.TitleFormat
	}
	if req.TickFormat != nil {
		cfg.TickFormat = *req.TickFormat
	}
	if req.TickInterval != nil {
		cfg.TickInterval = *req.TickInterval
	}
	if req.TickOffset != nil {
		cfg.TickOffset = *req.TickOffset
	}
	if req.TickAdd != nil {
		cfg.TickAdd = *req.TickAdd
	}
	if req.SplitSegmentDuration != nil {
		cfg.SplitSegmentDuration = *req.SplitSegmentDuration
	}
	if req.FileOut != nil {
		cfg.FileOut = config.ExpandHome(*req.FileOut)
	}
	cfg.ForceOverwrite = cfg.ForceOverwrite || req.ForceOverwrite
	cfg.DryRun = cfg.DryRun || req.DryRun
	return cfg
}

func requestError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
