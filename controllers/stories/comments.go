package stories

import (
	"encoding/json"
	"net/http"

	"storyline-backend/controllers/authentication"
	svc "storyline-backend/services/stories"
)

// CreateComment adds a comment or threaded reply to a story.
func CreateComment(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		StoryID         uint   `json:"story_id"`
		Content         string `json:"content"`
		ParentCommentID *uint  `json:"parent_comment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	c, serr := s.AddComment(r.Context(), claims.UserID, svc.AddCommentInput{
		StoryID:         body.StoryID,
		Content:         body.Content,
		ParentCommentID: body.ParentCommentID,
	})
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteComment removes a comment with its replies. Allowed for the author
// and the story owner.
func DeleteComment(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	commentID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if serr := s.DeleteComment(r.Context(), claims.UserID, commentID); serr != nil {
		writeServiceError(w, serr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
