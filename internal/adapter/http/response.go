package http

import (
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest     = "BAD_REQUEST"
	codeMissingField   = "MISSING_FIELD"
	codeInvalidValue   = "INVALID_VALUE"
	codeOutOfBounds    = "INPUT_OUT_OF_BOUNDS"
	codeInvalidFormat  = "INVALID_FORMAT"
	codeInvalidID      = "INVALID_ID"
	codeSessionMissing = "SESSION_NOT_FOUND"
	codeEntryMissing   = "ENTRY_NOT_FOUND"
	codeInternal       = "INTERNAL_ERROR"
)

type envelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func respondOK(w http.ResponseWriter, data any) {
	sharedobs.WriteJSON(w, http.StatusOK, envelope{Data: data})
}

func respondCreated(w http.ResponseWriter, data any) {
	sharedobs.WriteJSON(w, http.StatusCreated, envelope{Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	sharedobs.WriteJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// respondFile sends body as a download with the given content type.
func respondFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client disconnects are not actionable
}
