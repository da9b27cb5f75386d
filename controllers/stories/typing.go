package stories

import (
	"net/http"

	"storyline-backend/controllers/authentication"
	"storyline-backend/services/realtime"
)

// Typing broadcasts a typing-indicator signal for a story's comment box.
// Fire-and-forget: always 202 for an authenticated caller.
func Typing(w http.ResponseWriter, r *http.Request, pub *realtime.Publisher) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	storyID, ok := queryID(r, "story_id")
	if !ok {
		http.Error(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	pub.PublishTyping(r.Context(), storyID, claims.UserID)
	w.WriteHeader(http.StatusAccepted)
}
