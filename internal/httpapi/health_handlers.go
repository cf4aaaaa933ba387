package httpapi

import (
	"database/sql"
	"net/http"
)

type HealthHandler struct {
	DB *sql.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			WriteError(w, r, http.StatusServiceUnavailable, "db_unavailable", err.Error())
			return
		}
	}
	writeJSON(w, map[string]any{"status": "healthy"})
}
