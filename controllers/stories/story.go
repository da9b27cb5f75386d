package stories

import (
	"encoding/json"
	"net/http"
	"time"

	"storyline-backend/controllers/authentication"
	svc "storyline-backend/services/stories"
)

// CreateStory inserts a new live story for the authenticated actor. The
// media reference must already exist on the CDN; it is opaque here.
func CreateStory(w http.ResponseWriter, r *http.Request, s *svc.Service) {
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
		MediaURL           string `json:"media_url"`
		TTLHours           int    `json:"ttl_hours"`
		ShowReactionCounts *bool  `json:"show_reaction_counts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	st, serr := s.CreateStory(r.Context(), claims.UserID, svc.CreateStoryInput{
		MediaURL:           body.MediaURL,
		TTL:                time.Duration(body.TTLHours) * time.Hour,
		ShowReactionCounts: body.ShowReactionCounts,
	})
	if serr != nil {
		writeServiceError(w, serr)
		return
	}

	writeJSON(w, http.StatusCreated, st)
}

// GetUserStories lists the actor's own live stories.
func GetUserStories(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	out, serr := s.GetUserStories(r.Context(), claims.UserID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// RecordView marks the story as seen by the actor. Owner self-views and
// repeat views are accepted no-ops.
func RecordView(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	storyID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	v, serr := s.RecordView(r.Context(), claims.UserID, storyID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteStory removes a live story and its relations.
func DeleteStory(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	storyID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	if serr := s.DeleteStory(r.Context(), claims.UserID, storyID); serr != nil {
		writeServiceError(w, serr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveStory migrates one story into its frozen snapshot on the owner's
// request.
func ArchiveStory(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	storyID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	arch, serr := s.ArchiveStory(r.Context(), claims.UserID, storyID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, arch)
}

// RepostStory creates a fresh live story from one of the actor's archives.
func RepostStory(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	archivedID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid archived story ID", http.StatusBadRequest)
		return
	}

	st, serr := s.RepostArchivedStory(r.Context(), claims.UserID, archivedID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// GetArchive lists the actor's archived stories.
func GetArchive(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	out, serr := s.GetUserArchive(r.Context(), claims.UserID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
