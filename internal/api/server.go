package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/seaplan/mplan/internal/cache"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/internal/worker"
	"github.com/seaplan/mplan/pkg/core"
)

const (
	maxBody = 4 << 20

	contentXML     = "application/xml"
	contentJSON    = "application/json"
	contentMsgpack = "application/msgpack"
	contentBatch   = "application/zstd"
)

// Server exposes translation, pattern generation and the template library over HTTP.
type Server struct {
	reg       *registry.Registry
	templates *cache.Templates
	worker    *worker.Manager
	uploader  Uploader
	logger    *slog.Logger
	router    *mux.Router
}

// Uploader sends a plan to a connected vehicle.
type Uploader func(ctx context.Context, vehicle, plan string, documents [][]byte) error

// NewServer builds the router. templates and w may be nil, which disables the template
// and plan routes.
func NewServer(reg *registry.Registry, templates *cache.Templates, w *worker.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{reg: reg, templates: templates, worker: w, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/healthcheck", s.handleHealthcheck).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/document/wire", s.handleDocumentToWire).Methods(http.MethodPost)
	v1.HandleFunc("/wire/document", s.handleWireToDocument).Methods(http.MethodPost)
	v1.HandleFunc("/patterns/{kind}", s.handlePattern).Methods(http.MethodPost)
	v1.HandleFunc("/kinds", s.handleKinds).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles/{id}/kinds", s.handleVehicleKinds).Methods(http.MethodGet)
	if w != nil {
		v1.HandleFunc("/vehicles/{id}/plan", s.handlePlan).Methods(http.MethodPost)
		v1.HandleFunc("/vehicles/{id}/upload", s.handleUpload).Methods(http.MethodPost)
	}
	if templates != nil {
		v1.HandleFunc("/templates", s.handleListTemplates).Methods(http.MethodGet)
		v1.HandleFunc("/templates/{name}", s.handleGetTemplate).Methods(http.MethodGet)
		v1.HandleFunc("/templates/{name}", s.handlePutTemplate).Methods(http.MethodPut)
		v1.HandleFunc("/templates/{name}", s.handleDeleteTemplate).Methods(http.MethodDelete)
	}
	s.router = r
	return s
}

// SetUploader enables plan uploads. Without one the upload route answers 503.
func (s *Server) SetUploader(u Uploader) {
	s.uploader = u
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// FrameResponse describes a translated maneuver.
type FrameResponse struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Abbrev string `json:"abbrev"`
	Frame  []byte `json:"frame"`
}

// PatternResponse carries the generated path of a pattern.
type PatternResponse struct {
	Kind              string             `json:"kind"`
	Points            []core.OffsetPoint `json:"points"`
	PathLength        float64            `json:"pathLength"`
	EstimatedDuration *float64           `json:"estimatedDuration,omitempty"`
	Reference         string             `json:"reference"` // WKT point the offsets are relative to
	WKT               string             `json:"wkt"`
}

// PlanRequest lists node documents to translate for a vehicle, in execution order.
// Templates are resolved from the library and appended after Documents.
type PlanRequest struct {
	Plan      string   `json:"plan"`
	Documents []string `json:"documents"`
	Templates []string `json:"templates"`
}

// TemplateResponse is a template without its document.
type TemplateResponse struct {
	Name      string    `json:"name"`
	Vehicle   string    `json:"vehicle,omitempty"`
	Kind      string    `json:"kind"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDocumentToWire translates one node document. The vehicle query parameter applies
// its capability profile.
func (s *Server) handleDocumentToWire(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	m, err := s.reg.DecodeDocument(body)
	if err != nil && !errors.Is(err, registry.ErrUnknownType) {
		s.fail(w, err)
		return
	}
	if vehicle := r.URL.Query().Get("vehicle"); vehicle != "" && s.reg.Has(m.Kind()) && !s.reg.ForVehicle(vehicle).Supports(m.Kind()) {
		s.fail(w, fmt.Errorf("%w: %s on %s", registry.ErrNotSupported, m.Kind(), vehicle))
		return
	}

	msg, err := m.ToWire()
	if err != nil {
		s.fail(w, err)
		return
	}
	f, err := wire.NewFrame(msg)
	if err != nil {
		s.fail(w, err)
		return
	}
	data, err := f.Marshal()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FrameResponse{ID: m.Common().ID, Kind: m.Kind(), Abbrev: f.Abbrev, Frame: data})
}

// handleWireToDocument turns a msgpack frame into a node document.
func (s *Server) handleWireToDocument(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	f, err := wire.UnmarshalFrame(body)
	if err != nil {
		s.fail(w, fmt.Errorf("%w: %w", maneuver.ErrParse, err))
		return
	}
	m, err := s.reg.DecodeFrame(f)
	if m == nil {
		s.fail(w, err)
		return
	}
	if err != nil {
		s.logger.Warn("frame decoded with placeholder", "abbrev", f.Abbrev, "error", err)
	}
	doc, err := maneuver.ExportDocument(m)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentXML)
	_, _ = w.Write(doc)
}

// handlePattern generates the path of a pattern kind. An optional node document body
// configures the pattern first.
func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	m, err := s.reg.New(kind)
	if err != nil {
		s.fail(w, err)
		return
	}
	path, ok := m.(maneuver.PathProvider)
	if !ok {
		s.fail(w, fmt.Errorf("%w: %s has no path", errBadRequest, m.Kind()))
		return
	}

	body, err := readBody(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if len(body) > 0 {
		if err := maneuver.ImportDocument(body, m); err != nil {
			s.fail(w, err)
			return
		}
	}

	resp, err := patternResponse(m, path)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.Kinds())
}

func (s *Server) handleVehicleKinds(w http.ResponseWriter, r *http.Request) {
	kinds := s.reg.ForVehicle(mux.Vars(r)["id"]).Kinds()
	if kinds == nil {
		kinds = []string{}
	}
	writeJSON(w, http.StatusOK, kinds)
}

// handlePlan translates a whole plan and answers with a compressed frame batch.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	vehicle := mux.Vars(r)["id"]
	req, docs, err := s.planDocuments(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	b, _, err := s.worker.Batch(r.Context(), vehicle, req.Plan, docs)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentBatch)
	if err := wire.WriteBatch(w, b); err != nil {
		s.logger.Error("failed to write batch", "vehicle", vehicle, "error", err)
	}
}

// handleUpload translates a plan and sends it over the vehicle link.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no vehicle link"})
		return
	}
	vehicle := mux.Vars(r)["id"]
	req, docs, err := s.planDocuments(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.uploader(r.Context(), vehicle, req.Plan, docs); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"maneuvers": len(docs)})
}

// planDocuments decodes a PlanRequest and resolves its templates to documents.
func (s *Server) planDocuments(r *http.Request) (PlanRequest, [][]byte, error) {
	var req PlanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		return req, nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	docs := make([][]byte, 0, len(req.Documents)+len(req.Templates))
	for _, d := range req.Documents {
		docs = append(docs, []byte(d))
	}
	if len(req.Templates) > 0 && s.templates == nil {
		return req, nil, fmt.Errorf("%w: template library disabled", errBadRequest)
	}
	for _, name := range req.Templates {
		m, err := s.templates.Get(r.Context(), name)
		if err != nil {
			return req, nil, err
		}
		doc, err := maneuver.ExportDocument(m)
		if err != nil {
			return req, nil, err
		}
		docs = append(docs, doc)
	}
	return req, docs, nil
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.templates.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]TemplateResponse, len(list))
	for i, t := range list {
		out[i] = TemplateResponse{
			Name:      t.Name,
			Vehicle:   t.Vehicle,
			Kind:      t.Kind,
			Tags:      t.Tags,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	m, err := s.templates.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.fail(w, err)
		return
	}
	doc, err := maneuver.ExportDocument(m)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentXML)
	_, _ = w.Write(doc)
}

// handlePutTemplate stores a node document. Query parameters vehicle and tag (repeatable)
// annotate it.
func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	m, err := s.reg.DecodeDocument(body)
	if err != nil && !errors.Is(err, registry.ErrUnknownType) {
		s.fail(w, err)
		return
	}
	q := r.URL.Query()
	if err := s.templates.Put(r.Context(), mux.Vars(r)["name"], q.Get("vehicle"), m, q["tag"]...); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
