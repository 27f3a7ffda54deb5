package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reviewloop/reviewloop/internal/grades"
	"github.com/reviewloop/reviewloop/internal/rbac"
)

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func actorFrom(r *http.Request) grades.ActorContext {
	return grades.ActorContext{
		UserID: rbac.SubjectFromContext(r.Context()),
		Role:   rbac.RoleFromContext(r.Context()),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// storeError maps NotFound to 404 and everything else to 500.
func storeError(w http.ResponseWriter, err error) {
	if grades.IsNotFound(err) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
