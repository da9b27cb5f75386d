// Package stories exposes the lifecycle mutation entry points over HTTP in
// front of the stories service. Handlers validate the actor's token first,
// check the method, read ids from query params and surface the service's
// typed failure as an HTTP status.
package stories

import (
	"encoding/json"
	"net/http"
	"strconv"

	svc "storyline-backend/services/stories"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeServiceError maps the typed failure taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusServiceUnavailable
	switch svc.ErrCode(err) {
	case svc.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case svc.CodeNotFound:
		status = http.StatusNotFound
	case svc.CodeUnauthorized:
		status = http.StatusForbidden
	case svc.CodeConflict:
		status = http.StatusConflict
	case svc.CodeInvalid:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// queryID parses a uint id from the named query parameter.
func queryID(r *http.Request, name string) (uint, bool) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
