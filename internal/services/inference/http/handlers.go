// Package http provides the upload, predict and download endpoints
package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	stdhttp "net/http"
	"strconv"
	"strings"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/table"
	"predictkit/internal/modkit/httpkit"
	"predictkit/internal/modkit/scope"
	perr "predictkit/internal/platform/errors"
	pnet "predictkit/internal/platform/net"
	"predictkit/internal/platform/net/middleware"
	artifacts "predictkit/internal/services/artifacts/domain"
	dom "predictkit/internal/services/inference/domain"
	svc "predictkit/internal/services/inference/service"
)

// Config holds transport limits. A non-nil Auth guards the scoring routes
type Config struct {
	MaxUploadBytes int64
	PreviewRows    int
	Auth           middleware.AuthPort
}

// Register mounts the task endpoints on the given router
func Register(r httpkit.Router, reg *svc.Registry, cfg Config) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	h := &handlers{reg: reg, cfg: cfg}

	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{task}", h.describe)

	scoring := func(r httpkit.Router) {
		r.Post("/{task}/predict", h.predict)
		httpkit.PostBound[ScoreRequest](r, "/{task}/score", h.score)
	}
	if cfg.Auth == nil {
		scoring(r)
		return
	}
	httpkit.Protected(r, cfg.Auth, scoring)
}

type handlers struct {
	reg *svc.Registry
	cfg Config
}

//
// Swagger DTOs and route docs
//

// TaskInfo describes one task and its trained models
type TaskInfo struct {
	Task             string          `json:"task"              example:"loan"`
	Title            string          `json:"title,omitempty"   example:"Loan Default Risk"`
	Mode             string          `json:"mode"              example:"structured"`
	RequiredColumns  []string        `json:"required_columns"`
	Label            string          `json:"label"             example:"loan_status"`
	Classes          []string        `json:"classes"`
	PredictionColumn string          `json:"prediction_column" example:"Prediction"`
	Models           []artifacts.Ref `json:"models"`
}

// PredictResponse is the JSON reply to an upload
type PredictResponse struct {
	dom.Result
	Header   []string            `json:"header"`
	Preview  []map[string]string `json:"preview"`
	Download string              `json:"download" example:"loan_predictions.csv"`
}

// ScoreRequest carries records to score as JSON
type ScoreRequest struct {
	Model   string              `json:"model,omitempty"   validate:"omitempty,max=64"`
	Columns []string            `json:"columns,omitempty" validate:"omitempty,dive,required"`
	Records []map[string]string `json:"records"           validate:"required,min=1,max=10000"`
}

// ScoreResponse returns every scored record
type ScoreResponse struct {
	dom.Result
	Header  []string            `json:"header"`
	Records []map[string]string `json:"records"`
}

func (h *handlers) info(r *stdhttp.Request, spec *featurespec.Spec) (TaskInfo, error) {
	refs, err := h.reg.Models(r.Context(), spec.Task)
	if err != nil {
		return TaskInfo{}, err
	}
	if refs == nil {
		refs = []artifacts.Ref{}
	}
	return TaskInfo{
		Task:             spec.Task,
		Title:            spec.Title,
		Mode:             string(spec.Mode()),
		RequiredColumns:  spec.RequiredColumns(featurespec.ForInference),
		Label:            spec.Label,
		Classes:          []string{spec.Display(0), spec.Display(1)},
		PredictionColumn: spec.PredictionColumn,
		Models:           refs,
	}, nil
}

// swagger:route GET /tasks Tasks tasksList
// @Summary List tasks with their required columns and trained models
// @Tags Tasks
// @Produce json
// @Success 200 {array} TaskInfo "ok"
// @Router /tasks [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	cat := h.reg.Catalog()
	out := make([]TaskInfo, 0, len(cat.Tasks()))
	for _, id := range cat.Tasks() {
		spec, err := cat.Lookup(id)
		if err != nil {
			return nil, err
		}
		ti, err := h.info(r, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, ti)
	}
	return out, nil
}

// swagger:route GET /tasks/{task} Tasks tasksDescribe
// @Summary Describe one task
// @Tags Tasks
// @Produce json
// @Param task path string true "Task id"
// @Success 200 {object} TaskInfo "ok"
// @Failure 404 {object} httpkit.Envelope "unknown task"
// @Router /tasks/{task} [get]
func (h *handlers) describe(r *stdhttp.Request) (any, error) {
	spec, err := h.reg.Catalog().Lookup(httpkit.Param(r, "task"))
	if err != nil {
		return nil, err
	}
	return h.info(r, spec)
}

// swagger:route POST /tasks/{task}/predict Tasks tasksPredict
// @Summary Score an uploaded CSV batch
// @Description Body is text/csv or multipart/form-data with a "file" field. Send Accept: text/csv
// @Description or format=csv to download the full scored file instead of a JSON preview
// @Tags Tasks
// @Accept text/csv
// @Accept multipart/form-data
// @Produce json
// @Produce text/csv
// @Param task path string true "Task id"
// @Param model query string false "Estimator; defaults to the best trained one"
// @Param preview query int false "Preview rows"
// @Param format query string false "csv to download"
// @Success 200 {object} PredictResponse "ok"
// @Failure 400 {object} httpkit.Envelope "missing columns or bad CSV"
// @Failure 404 {object} httpkit.Envelope "task not trained"
// @Failure 500 {object} httpkit.Envelope "artifact corrupt"
// @Router /tasks/{task}/predict [post]
func (h *handlers) predict(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()
	scorer, err := h.reg.Get(r.Context(), httpkit.Param(r, "task"), q.Get("model"))
	if err != nil {
		httpkit.WriteError(w, r, err)
		return
	}
	t, err := h.readTable(w, r)
	if err != nil {
		httpkit.WriteError(w, r, err)
		return
	}
	res, err := scorer.Score(scoped(r, "upload"), t)
	if err != nil {
		httpkit.WriteError(w, r, err)
		return
	}

	if wantsCSV(r) {
		var buf bytes.Buffer
		if err := res.Table.WriteCSV(&buf); err != nil {
			httpkit.WriteError(w, r, err)
			return
		}
		httpkit.WriteAttachment(w, r, res.Filename(), "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	n := h.cfg.PreviewRows
	if v, err := strconv.Atoi(q.Get("preview")); err == nil && v > 0 {
		n = v
	}
	preview := res.Preview(n)
	httpkit.WriteOK(w, r, PredictResponse{
		Result:   res,
		Header:   preview.Header,
		Preview:  preview.Records(),
		Download: res.Filename(),
	})
}

// swagger:route POST /tasks/{task}/score Tasks tasksScore
// @Summary Score JSON records
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task path string true "Task id"
// @Param payload body ScoreRequest true "Records"
// @Success 200 {object} ScoreResponse "ok"
// @Failure 400 {object} httpkit.Envelope "missing columns"
// @Router /tasks/{task}/score [post]
func (h *handlers) score(r *stdhttp.Request, in ScoreRequest) (any, error) {
	scorer, err := h.reg.Get(r.Context(), httpkit.Param(r, "task"), in.Model)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(in.Columns, in.Records)
	if err != nil {
		return nil, err
	}
	res, err := scorer.Score(scoped(r, "json"), t)
	if err != nil {
		return nil, err
	}
	return ScoreResponse{Result: res, Header: res.Table.Header, Records: res.Table.Records()}, nil
}

// scoped tags the scoring context so batch logs carry the request that produced them
func scoped(r *stdhttp.Request, source string) context.Context {
	ctx := r.Context()
	kv := map[string]string{"source": source}
	if id := pnet.RequestID(ctx); id != "" {
		kv["request_id"] = id
	}
	if uid := pnet.UserID(ctx); uid != "" {
		kv["caller"] = uid
	}
	return scope.With(ctx, kv)
}

// readTable accepts a raw CSV body or a multipart upload in field "file"
func (h *handlers) readTable(w stdhttp.ResponseWriter, r *stdhttp.Request) (*table.Table, error) {
	r.Body = stdhttp.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	defer func() { _ = r.Body.Close() }()

	var src io.Reader = r.Body
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
			return nil, uploadErr(err, h.cfg.MaxUploadBytes)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "multipart upload needs a %q field", "file"), "file")
		}
		defer func() { _ = f.Close() }()
		src = f
	}

	t, err := table.ReadCSV(src)
	if err != nil {
		return nil, uploadErr(err, h.cfg.MaxUploadBytes)
	}
	return t, nil
}

func uploadErr(err error, limit int64) error {
	var tooBig *stdhttp.MaxBytesError
	if errors.As(err, &tooBig) {
		return perr.Newf(perr.ErrorCodeValidation, "upload exceeds %d bytes", limit)
	}
	if _, ok := perr.As(err); ok {
		return err
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, "read upload")
}

func wantsCSV(r *stdhttp.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		return true
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := mime.ParseMediaType(strings.TrimSpace(part))
		if mt == "text/csv" {
			return true
		}
	}
	return false
}
