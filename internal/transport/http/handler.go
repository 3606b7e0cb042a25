package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/assetboard-cli/internal/analysis"
	"github.com/KaramelBytes/assetboard-cli/internal/asset"
	"github.com/KaramelBytes/assetboard-cli/internal/export"
	"github.com/KaramelBytes/assetboard-cli/internal/filter"
	"github.com/KaramelBytes/assetboard-cli/internal/ingest"
	"github.com/KaramelBytes/assetboard-cli/internal/session"
)

const (
	defaultRowLimit = 100
	maxRowLimit     = 5000
)

// Options configures a DatasetHandler.
type Options struct {
	Ingest   ingest.Options
	Analysis analysis.Options
	Export   export.Options
	// MaxUploadBytes caps multipart uploads; 0 means 20 MiB.
	MaxUploadBytes int64
	// UploadRate is the sustained uploads per second; 0 disables throttling.
	UploadRate  float64
	UploadBurst int
}

// DatasetHandler serves upload, query and export of asset registers.
type DatasetHandler struct {
	store      *session.Store
	normalizer *ingest.Normalizer
	opt        Options
	metrics    *Metrics
	limiter    *uploadLimiter
	logger     *slog.Logger
}

// NewDatasetHandler wires a handler onto store.
func NewDatasetHandler(store *session.Store, opt Options, metrics *Metrics, logger *slog.Logger) *DatasetHandler {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = 20 << 20
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	logger = logger.With(slog.String("component", "dataset_handler"))
	return &DatasetHandler{
		store:      store,
		normalizer: ingest.NewNormalizer(opt.Ingest),
		opt:        opt,
		metrics:    metrics,
		limiter:    newUploadLimiter(opt.UploadRate, opt.UploadBurst, metrics, logger),
		logger:     logger,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(h.limiter.Handler).Post("/", h.Upload)
	r.Get("/", h.List)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/options", h.Options)
		r.Post("/query", h.Query)
		r.Post("/export", h.Export)
	})
	return r
}

// DatasetResponse describes a stored dataset.
type DatasetResponse struct {
	ID            string            `json:"id"`
	Source        string            `json:"source"`
	Sheet         string            `json:"sheet"`
	HeaderRow     int               `json:"header_row"`
	HeaderFound   bool              `json:"header_found"`
	Columns       []string          `json:"columns"`
	SourceColumns []string          `json:"source_columns"`
	Roles         map[string]string `json:"roles"`
	Unresolved    []string          `json:"unresolved"`
	YearColumn    string            `json:"year_column,omitempty"`
	Records       int               `json:"records"`
	Warnings      []asset.Warning   `json:"warnings"`
	Options       filter.Choices    `json:"options"`
	CreatedAt     time.Time         `json:"created_at"`
}

func newDatasetResponse(d *session.Dataset) *DatasetResponse {
	res := d.Result
	unresolved := []string{}
	for _, r := range res.Roles.Unresolved() {
		unresolved = append(unresolved, r.String())
	}
	warnings := res.Warnings
	if warnings == nil {
		warnings = []asset.Warning{}
	}
	return &DatasetResponse{
		ID:            d.ID,
		Source:        res.Source,
		Sheet:         res.Sheet,
		HeaderRow:     res.HeaderRow,
		HeaderFound:   res.HeaderFound,
		Columns:       res.Table.Columns,
		SourceColumns: res.SourceColumns,
		Roles:         res.Roles.Map(),
		Unresolved:    unresolved,
		YearColumn:    res.YearColumn,
		Records:       res.Table.Len(),
		Warnings:      warnings,
		Options:       d.Engine.Choices(),
		CreatedAt:     d.CreatedAt,
	}
}

// Upload handles POST /api/datasets with a multipart "file" field.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tooLarge := newAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
		fmt.Sprintf("upload exceeds %d bytes", h.opt.MaxUploadBytes))
	if r.ContentLength > h.opt.MaxUploadBytes {
		h.fail(w, r, tooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opt.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.fail(w, r, tooLarge)
			return
		}
		h.fail(w, r, errInvalidRequest("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !ingest.Supported(name) {
		h.metrics.uploads.WithLabelValues("rejected").Inc()
		h.fail(w, r, apiError(&asset.IngestionError{Source: name, Reason: fmt.Sprintf("unsupported file type %q (expected .xlsx)", filepath.Ext(name))}))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, r, errInvalidRequest("read upload: "+err.Error()))
		return
	}

	res, err := h.normalizer.Normalize(bytes.NewReader(data), name)
	if err != nil {
		h.metrics.uploads.WithLabelValues("failed").Inc()
		h.fail(w, r, err)
		return
	}
	d, err := h.store.Put(res)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.uploads.WithLabelValues("ok").Inc()
	h.metrics.datasets.Set(float64(h.store.Len()))
	for _, wn := range res.Warnings {
		h.metrics.warnings.WithLabelValues(string(wn.Kind)).Inc()
	}
	h.logger.InfoContext(r.Context(), "dataset stored",
		slog.String("id", d.ID),
		slog.String("source", name),
		slog.Int("records", res.Table.Len()),
		slog.Int("warnings", len(res.Warnings)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newDatasetResponse(d))
}

// List handles GET /api/datasets.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	out := []*DatasetResponse{}
	for _, d := range h.store.List() {
		out = append(out, newDatasetResponse(d))
	}
	render.JSON(w, r, out)
}

// Get handles GET /api/datasets/{id}.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, newDatasetResponse(d))
}

// Delete handles DELETE /api/datasets/{id}.
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.Delete(id) {
		h.fail(w, r, fmt.Errorf("%w: %s", session.ErrNotFound, id))
		return
	}
	h.metrics.datasets.Set(float64(h.store.Len()))
	w.WriteHeader(http.StatusNoContent)
}

// Options handles GET /api/datasets/{id}/options.
func (h *DatasetHandler) Options(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, d.Engine.Choices())
}

// QueryRequest selects records. A field missing from Selection (or null) is
// not filtered; an empty list excludes every record.
type QueryRequest struct {
	Selection map[string][]string `json:"selection"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

// Bind implements render.Binder.
func (q *QueryRequest) Bind(r *http.Request) error {
	if q.Limit < 0 || q.Offset < 0 {
		return errors.New("limit and offset must not be negative")
	}
	if q.Limit == 0 {
		q.Limit = defaultRowLimit
	}
	if q.Limit > maxRowLimit {
		q.Limit = maxRowLimit
	}
	return nil
}

func (q *QueryRequest) selection() (filter.Selection, error) {
	sel := make(filter.Selection, len(q.Selection))
	for name, vals := range q.Selection {
		f, err := filter.ParseField(name)
		if err != nil {
			return nil, err
		}
		if vals == nil {
			continue
		}
		sel[f] = filter.NewSet(vals...)
	}
	return sel, nil
}

// QueryResponse is the filtered view of a dataset.
type QueryResponse struct {
	ID      string           `json:"id"`
	Total   int              `json:"total"`
	Count   int              `json:"count"`
	Summary analysis.Summary `json:"summary"`
	Columns []string         `json:"columns"`
	Rows    []asset.Record   `json:"rows"`
	Offset  int              `json:"offset"`
	More    bool             `json:"more"`
}

// Query handles POST /api/datasets/{id}/query.
func (h *DatasetHandler) Query(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	req := &QueryRequest{}
	filtered, ok := h.filtered(w, r, d, req)
	if !ok {
		return
	}
	h.metrics.queries.Inc()

	rows := []asset.Record{}
	start := min(req.Offset, filtered.Len())
	end := start + min(req.Limit, filtered.Len()-start)
	if start < end {
		rows = filtered.Records[start:end]
	}
	render.JSON(w, r, &QueryResponse{
		ID:      d.ID,
		Total:   d.Result.Table.Len(),
		Count:   filtered.Len(),
		Summary: analysis.Summarize(filtered, d.Result.Roles, h.opt.Analysis),
		Columns: filtered.Columns,
		Rows:    rows,
		Offset:  req.Offset,
		More:    end < filtered.Len(),
	})
}

// Export handles POST /api/datasets/{id}/export and streams the workbook.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dataset(w, r)
	if !ok {
		return
	}
	filtered, ok := h.filtered(w, r, d, &QueryRequest{})
	if !ok {
		return
	}
	p, err := export.Workbook(filtered, h.opt.Export)
	if err != nil {
		h.metrics.exports.WithLabelValues("failed").Inc()
		h.fail(w, r, err)
		return
	}
	h.metrics.exports.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(p.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.Data)
}

// filtered decodes an optional selection body and applies it.
func (h *DatasetHandler) filtered(w http.ResponseWriter, r *http.Request, d *session.Dataset, req *QueryRequest) (*asset.Table, bool) {
	if r.ContentLength != 0 {
		if err := render.Bind(r, req); err != nil {
			if errors.Is(err, io.EOF) {
				err = req.Bind(r)
			}
			if err != nil {
				h.fail(w, r, errInvalidRequest(err.Error()))
				return nil, false
			}
		}
	} else if err := req.Bind(r); err != nil {
		h.fail(w, r, errInvalidRequest(err.Error()))
		return nil, false
	}
	sel, err := req.selection()
	if err != nil {
		h.fail(w, r, errInvalidRequest(err.Error()))
		return nil, false
	}
	return d.Engine.Apply(d.Result.Table, sel), true
}

func (h *DatasetHandler) dataset(w http.ResponseWriter, r *http.Request) (*session.Dataset, bool) {
	d, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return d, true
}

func (h *DatasetHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := apiError(err)
	level := slog.LevelWarn
	if ae.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", ae.StatusCode),
		slog.String("error", err.Error()))
	_ = render.Render(w, r, ae)
}
