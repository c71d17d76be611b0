package respond

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorEnvelope is the uniform error shape surfaced at the HTTP boundary.
type ErrorEnvelope struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, r *http.Request, status int, label, message string) {
	JSON(w, status, ErrorEnvelope{
		Timestamp: time.Now().Format(time.RFC3339),
		Status:    status,
		Error:     label,
		Message:   message,
		Path:      r.URL.Path,
	})
}
