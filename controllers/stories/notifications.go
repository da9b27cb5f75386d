package stories

import (
	"net/http"

	"storyline-backend/controllers/authentication"
	svc "storyline-backend/services/stories"
)

// GetNotifications lists the actor's notifications, newest first.
func GetNotifications(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	out, serr := s.ListNotifications(r.Context(), claims.UserID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
