package stories

import (
	"net/http"

	"storyline-backend/controllers/authentication"
	svc "storyline-backend/services/stories"
)

// ToggleStoryReaction flips the actor's like on a story. The same call
// twice returns the pair to its original state.
func ToggleStoryReaction(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
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

	liked, serr := s.ToggleStoryReaction(r.Context(), claims.UserID, storyID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// ToggleCommentReaction flips the actor's like on a comment.
func ToggleCommentReaction(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	commentID, ok := queryID(r, "comment_id")
	if !ok {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	liked, serr := s.ToggleCommentReaction(r.Context(), claims.UserID, commentID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// GetReactionSummary returns what the actor may see of a story's reaction
// counts, honoring the owner's visibility flag.
func GetReactionSummary(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	storyID, ok := queryID(r, "story_id")
	if !ok {
		http.Error(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	sum, serr := s.StoryReactionSummary(r.Context(), claims.UserID, storyID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
