package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/immoeliza/pricer/internal/domain/property"
	"github.com/immoeliza/pricer/pkg/logger"
)

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: defaultMaxBodyBytes}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req property.Features
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := decodeRecord(body, &req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	price, err := h.deps.Predict(r.Context(), &req)
	if err != nil {
		kind := kindOf(err)
		if kind == ErrInternal {
			logger.Get().Error(r.Context(), "prediction failed", logger.Error(err))
		}
		writeError(w, WrapKind(op, kind, err))
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{PredictedPrice: price})
}

// decodeRecord reads exactly one JSON object from r.
func decodeRecord(r io.Reader, f *property.Features) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(f); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return ErrTrailingData
	}
	return nil
}
