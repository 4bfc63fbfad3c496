package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quimicai/surfacelab/internal/config"
	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/inbox"
	"github.com/quimicai/surfacelab/internal/logger"
	"github.com/quimicai/surfacelab/internal/optim"
	"github.com/quimicai/surfacelab/internal/savings"
	"github.com/quimicai/surfacelab/internal/surface"
)

type parameterView struct {
	Name    string  `json:"name"`
	Display string  `json:"display"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
}

type metricView struct {
	Name string `json:"name"`
	Cost bool   `json:"cost"`
}

type domainSummary struct {
	Tag       string   `json:"tag"`
	Title     string   `json:"title"`
	Variables []string `json:"variables"`
	Metrics   []string `json:"metrics"`
	TimeSaved string   `json:"time_saved"`
}

type domainDetail struct {
	Tag         string                `json:"tag"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Parameters  []parameterView       `json:"parameters"`
	Metrics     []metricView          `json:"metrics"`
	Samples     empirical.SampleTable `json:"samples"`
}

// evaluateRequest is shared by evaluate and optimize. Variables may be
// parameter keys or display names.
type evaluateRequest struct {
	Variables []string                 `json:"variables"`
	Metric    string                   `json:"metric"`
	Ranges    map[string]surface.Range `json:"ranges"`
	Points    int                      `json:"points"`
	Weight    float64                  `json:"weight"`
}

type smoothRequest struct {
	Variables []string `json:"variables"`
	Metric    string   `json:"metric"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	out := make([]domainSummary, 0, len(s.registry.Tags()))
	for _, d := range s.registry.List() {
		out = append(out, domainSummary{
			Tag:       d.Tag,
			Title:     d.Title,
			Variables: d.Parameters.Names(),
			Metrics:   d.MetricNames(),
			TimeSaved: savings.TimeSaved(d.Tag),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"domains": out})
}

func (s *Server) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	d, err := s.registry.Get(r.PathValue("tag"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	detail := domainDetail{
		Tag:         d.Tag,
		Title:       d.Title,
		Description: d.Description,
		Samples:     d.Samples,
	}
	for _, p := range d.Parameters {
		detail.Parameters = append(detail.Parameters, parameterView{
			Name: p.Name, Display: d.DisplayName(p.Name), Low: p.Low, High: p.High,
		})
	}
	for _, m := range d.Metrics {
		detail.Metrics = append(detail.Metrics, metricView{Name: m.Name, Cost: m.Cost})
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	d, req, ok := s.domainRequest(w, r)
	if !ok {
		return
	}
	job, err := buildJob(d, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metric, err := d.Metric(job.Metric)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	res, err := surface.Evaluate(metric.Fn, d.Parameters, job.Selection, job.Ranges, job.Points)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	lo, hi := res.Bounds()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"domain": d.Tag,
		"metric": job.Metric,
		"result": res,
		"min":    lo,
		"max":    hi,
	})
}

func (s *Server) handleSmooth(w http.ResponseWriter, r *http.Request) {
	d, err := s.registry.Get(r.PathValue("tag"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var req smoothRequest
	if !s.decode(w, r, &req) {
		return
	}
	vars, err := resolveVariables(d, req.Variables)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metric := req.Metric
	if metric == "" {
		metric = d.Metrics[0].Name
	}
	sm, err := empirical.Smooth(d.Samples, vars, metric)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	est := savings.FromSamples(d)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"domain":      d.Tag,
		"metric":      metric,
		"smoothed":    sm,
		"savings":     est,
		"money_saved": est.Money(),
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	d, req, ok := s.domainRequest(w, r)
	if !ok {
		return
	}
	job, err := buildJob(d, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	rep, err := s.optimizer.Optimize(r.Context(), job)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if rep.Guidance != "" {
		s.writeGuidance(w, rep.Guidance)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"domain":      d.Tag,
		"metric":      job.Metric,
		"report":      rep,
		"money_saved": rep.Savings.Money(),
		"delta":       rep.Savings.Delta(),
	})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		s.writeError(w, http.StatusServiceUnavailable, "contact inbox not configured")
		return
	}
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		s.writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req contactRequest
	if !s.decode(w, r, &req) {
		return
	}
	msg, err := s.inbox.Save(r.Context(), inbox.Message{Name: req.Name, Email: req.Email, Message: req.Message})
	if err != nil {
		if errors.Is(err, inbox.ErrMissingField) || errors.Is(err, inbox.ErrInvalidEmail) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("failed to store contact message", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	logger.Info("contact message stored", "id", msg.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":      msg.ID,
		"message": inbox.ThanksMessage,
	})
}

func (s *Server) domainRequest(w http.ResponseWriter, r *http.Request) (*domain.Domain, evaluateRequest, bool) {
	var req evaluateRequest
	d, err := s.registry.Get(r.PathValue("tag"))
	if err != nil {
		s.writeDomainError(w, err)
		return nil, req, false
	}
	if !s.decode(w, r, &req) {
		return nil, req, false
	}
	return d, req, true
}

// buildJob applies request defaults: the first metric and the default
// point count.
func buildJob(d *domain.Domain, req evaluateRequest) (optim.Job, error) {
	if req.Weight < 0 || req.Weight > 1 {
		return optim.Job{}, fmt.Errorf("%w, got %g", optim.ErrInvalidWeight, req.Weight)
	}
	vars, err := resolveVariables(d, req.Variables)
	if err != nil {
		return optim.Job{}, err
	}
	if req.Metric == "" {
		req.Metric = d.Metrics[0].Name
	}
	if req.Points == 0 {
		req.Points = config.DefaultPoints
	}
	if req.Points > config.MaxPoints {
		return optim.Job{}, fmt.Errorf("%w: at most %d", surface.ErrInvalidSampleCount, config.MaxPoints)
	}
	ranges := make(map[string]surface.Range, len(req.Ranges))
	for name, rg := range req.Ranges {
		key, ok := d.KeyForDisplay(name)
		if !ok {
			return optim.Job{}, fmt.Errorf("%w: %s", surface.ErrUnknownParameter, name)
		}
		ranges[key] = rg
	}
	return optim.Job{
		Domain:    d,
		Metric:    req.Metric,
		Selection: vars,
		Ranges:    ranges,
		Points:    req.Points,
		Weight:    req.Weight,
	}, nil
}

func resolveVariables(d *domain.Domain, names []string) (surface.Selection, error) {
	sel := make(surface.Selection, 0, len(names))
	for _, name := range names {
		key, ok := d.KeyForDisplay(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", surface.ErrUnknownParameter, name)
		}
		sel = append(sel, key)
	}
	return sel, nil
}
