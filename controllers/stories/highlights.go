package stories

import (
	"encoding/json"
	"net/http"

	"storyline-backend/controllers/authentication"
	svc "storyline-backend/services/stories"
)

// CreateHighlight creates a curated collection with its initial links.
func CreateHighlight(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	var body svc.CreateHighlightInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	h, serr := s.CreateHighlight(r.Context(), claims.UserID, body)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

// AddHighlightItems appends links to an existing highlight.
func AddHighlightItems(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	highlightID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid highlight ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Items []svc.LinkRef `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	h, serr := s.AddHighlightItems(r.Context(), claims.UserID, highlightID, body.Items)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// RemoveHighlightLink deletes one link; deleting the last one removes the
// whole highlight.
func RemoveHighlightLink(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	linkID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid link ID", http.StatusBadRequest)
		return
	}

	if serr := s.RemoveHighlightLink(r.Context(), claims.UserID, linkID); serr != nil {
		writeServiceError(w, serr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderHighlightLinks replaces the whole link order from a permutation of
// link ids.
func ReorderHighlightLinks(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPut {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	highlightID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid highlight ID", http.StatusBadRequest)
		return
	}

	var body struct {
		LinkIDs []uint `json:"link_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	h, serr := s.ReorderHighlightLinks(r.Context(), claims.UserID, highlightID, body.LinkIDs)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// GetHighlight returns a highlight with links in display order.
func GetHighlight(w http.ResponseWriter, r *http.Request, s *svc.Service) {
	if _, err := authentication.ValidateToken(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	highlightID, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Invalid highlight ID", http.StatusBadRequest)
		return
	}

	h, serr := s.GetHighlight(r.Context(), highlightID)
	if serr != nil {
		writeServiceError(w, serr)
		return
	}
	writeJSON(w, http.StatusOK, h)
}
