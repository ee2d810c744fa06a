package engine

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/iwvelando/valuecalc/internal/assembler"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"go.uber.org/zap"
)

type calculateResponse struct {
	Result []interface{} `json:"result"`
}

// Handler serves POST requests in the calculation service's wire format.
func (e *Engine) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, constants.MaxResponseBytes))
		if err != nil {
			http.Error(w, "failed to read request", http.StatusBadRequest)
			return
		}

		var payload assembler.Payload
		if err := json.Unmarshal(body, &payload); err != nil {
			e.logger.Warn("invalid calculation request",
				zap.String("op", "engine.Handler"),
				zap.Error(err),
			)
			http.Error(w, "invalid payload: "+err.Error(), http.StatusBadRequest)
			return
		}

		result, err := e.Result(&payload)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(calculateResponse{Result: result}); err != nil {
			e.logger.Error("failed to encode calculation response",
				zap.String("op", "engine.Handler"),
				zap.Error(err),
			)
		}
	})
}
