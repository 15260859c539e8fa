package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/safetymap/pkg/buildinfo"
	"github.com/matzehuels/safetymap/pkg/chart/layout"
	"github.com/matzehuels/safetymap/pkg/errors"
	"github.com/matzehuels/safetymap/pkg/observability"
	"github.com/matzehuels/safetymap/pkg/pipeline"
)

// =============================================================================
// Request and response types
// =============================================================================

// SettleRequest is the body of POST /api/layout/settle. Positions, when
// present, overlay the reconciled layout before settling (typically the
// positions the user just dragged nodes to).
type SettleRequest struct {
	Free         []string         `json:"free"`
	Positions    layout.Positions `json:"positions,omitempty"`
	LabelAnchors layout.Anchors   `json:"labelAnchors,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"requestId,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := buildinfo.Fields()
	body["status"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.chart(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.chart(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{pipeline.FormatSVG}
	artifacts, err := s.runner.Render(r.Context(), doc.Graph, doc.Layout, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[pipeline.FormatSVG])
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.runner.Store.Load(r.Context(), opts.StoreKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var rec layout.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	g, err := s.runner.Build(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rl, err := s.runner.SaveLayout(r.Context(), g, &rec, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Document{Graph: g, Layout: rl, Width: opts.Width, Height: opts.Height})
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.runner.ResetLayout(r.Context(), opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req SettleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var current *layout.Record
	if req.Positions != nil {
		current = &layout.Record{Positions: req.Positions, LabelAnchors: req.LabelAnchors}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	g, err := s.runner.Build(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rl, err := s.runner.Settle(r.Context(), g, current, req.Free, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Document{Graph: g, Layout: rl, Width: opts.Width, Height: opts.Height})
}

// =============================================================================
// Helpers
// =============================================================================

// options derives the pipeline options for r from the server's base
// options. Recognised query parameters:
//
//	layout     engine name (balanced, sequential, force)
//	providers  comma-separated provider filter; present but empty selects none
//	key        name the layout is saved under
//	renderer   direct or graphviz (chart.svg only)
//	width      canvas width in pixels
//	height     canvas height in pixels
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	q := r.URL.Query()

	if v := q.Get("layout"); v != "" {
		opts.Layout = v
	}
	if q.Has("providers") {
		opts.Providers = splitList(q.Get("providers"))
	}
	if v := q.Get("key"); v != "" {
		opts.StoreKey = v
	}
	if v := q.Get("renderer"); v != "" {
		opts.Renderer = v
	}
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive number, got %q", p.name, v)
		}
		*p.dst = f
	}

	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) chart(ctx context.Context, opts pipeline.Options) (pipeline.Document, error) {
	g, err := s.runner.Build(ctx, opts)
	if err != nil {
		return pipeline.Document{}, err
	}
	_, rl, err := s.runner.Layout(ctx, g, opts)
	if err != nil {
		return pipeline.Document{}, err
	}
	return pipeline.Document{Graph: g, Layout: rl, Width: opts.Width, Height: opts.Height}, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and an ErrorResponse. Messages of
// uncoded errors are not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}

	id := RequestIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", id, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "request_id", id, "error", err)
	}

	writeJSON(w, status, ErrorResponse{Error: APIError{Code: code, Message: msg}, RequestID: id})
}
