package api

import "net/http"

// SchemaHandler serves the record description.
type SchemaHandler struct {
	deps Dependencies
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(deps Dependencies) *SchemaHandler {
	return &SchemaHandler{deps: deps}
}

// HandleSchema handles GET /schema requests.
func (h *SchemaHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, NewKind("api.schema", ErrMethodNotAllowed))
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{Columns: h.deps.Schema()})
}
