// Package ui serves the price predictor form.
package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/immoeliza/pricer/internal/adapters/http/api"
	"github.com/immoeliza/pricer/internal/domain/property"
	"github.com/immoeliza/pricer/pkg/logger"
)

// Error constants.
var (
	ErrForm = errors.New("invalid form input")
)

// Messages shown in the result region.
const (
	resultFormat = "Predicted Price = %s €"
	failureText  = "Error in prediction. Please check the input values."
	maxFormBytes = 64 << 10
)

// Predictor prices a record. Both the in-process service and the HTTP
// client satisfy it.
type Predictor interface {
	Predict(ctx context.Context, f *property.Features) (float64, error)
}

// Handler renders the form and forwards submissions to a Predictor.
type Handler struct {
	predictor Predictor
	page      *template.Template
	log       logger.Logger
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLogger sets the logger used for failed predictions.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler parses the embedded page template.
func NewHandler(p Predictor, opts ...Option) *Handler {
	h := &Handler{
		predictor: p,
		page:      template.Must(template.ParseFS(staticFS, "static/index.html")),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the form and its assets to mux.
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	assets := http.StripPrefix("/static/", http.FileServer(FS()))
	mux.HandleFunc("/{$}", api.MetricsMiddleware(h.HandleIndex, "form"))
	mux.HandleFunc("/static/", api.MetricsMiddleware(assets.ServeHTTP, "static"))
}

type field struct {
	Name     string
	Label    string
	Select   bool
	Options  []string
	Value    string
	Selected string
}

type page struct {
	Fields []field
	Result string
	Failed bool
}

// HandleIndex serves GET / (empty form) and POST / (prediction).
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, http.StatusOK, page{Fields: fields(property.Defaults())})
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.log.Warn(r.Context(), "cannot parse form", logger.Error(err))
		h.render(w, http.StatusOK, page{Fields: fields(property.Defaults()), Result: failureText, Failed: true})
		return
	}

	rec, f, err := fromForm(r)
	if err == nil {
		var price float64
		price, err = h.predictor.Predict(r.Context(), f)
		if err == nil {
			h.render(w, http.StatusOK, page{
				Fields: fields(rec),
				Result: fmt.Sprintf(resultFormat, strconv.FormatFloat(price, 'f', -1, 64)),
			})
			return
		}
	}
	h.log.Info(r.Context(), "prediction failed", logger.Error(err))
	h.render(w, http.StatusOK, page{Fields: fields(rec), Result: failureText, Failed: true})
}

// fromForm reads every column. Numeric inputs must parse; the record keeps
// whatever was typed so the form can be re-rendered.
func fromForm(r *http.Request) (property.Record, *property.Features, error) {
	rec := property.Defaults()
	f := &property.Features{}
	var errs []error
	for _, c := range property.Schema() {
		raw := strings.TrimSpace(r.PostForm.Get(c.Name))
		if raw == "" {
			errs = append(errs, fmt.Errorf("%w: %s is empty", ErrForm, c.Name))
			continue
		}
		v := property.Text(raw)
		if c.Kind == property.Numeric {
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				rec[c.Name] = v
				errs = append(errs, fmt.Errorf("%w: %s is not a number", ErrForm, c.Name))
				continue
			}
			v = property.Number(n)
		}
		rec[c.Name] = v
		if err := f.Set(c.Name, v); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return rec, nil, errors.Join(errs...)
	}
	return rec, f, nil
}

func fields(rec property.Record) []field {
	cols := property.FormColumns()
	out := make([]field, 0, len(cols))
	for _, c := range cols {
		fl := field{Name: c.Name, Label: c.Label, Select: len(c.Options) > 0, Options: c.Options}
		if v, ok := rec[c.Name]; ok {
			fl.Value = v.String()
			fl.Selected = v.String()
		}
		out = append(out, fl)
	}
	return out
}

func (h *Handler) render(w http.ResponseWriter, status int, p page) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, p); err != nil {
		h.log.Error(context.Background(), "render form", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
