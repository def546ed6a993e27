package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hitoshi/quicknotes/internal/model"
)

// maxRequestBodyBytes はリクエストボディの上限（1MiB）。
const maxRequestBodyBytes = 1 << 20

// decodeJSONBody はリクエストボディを明示的な構造体にデコードする。
// 未知のフィールド・複数のJSON値・上限超過はいずれもValidationErrorになる。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) *model.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return model.NewValidationError("request body is required")
		case errors.As(err, &maxErr):
			return model.NewValidationError("request body is too large")
		default:
			return model.NewValidationError("request body is not valid JSON")
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return model.NewValidationError("request body must contain a single JSON object")
	}
	return nil
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
