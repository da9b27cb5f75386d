package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoriesRouteRejectsUnknownMethods(t *testing.T) {
	mux := newMux(nil, nil)

	// PUT matches no branch and must not fall through to the list handler.
	r := httptest.NewRequest(http.MethodPut, "/stories", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	r = httptest.NewRequest(http.MethodPatch, "/highlights", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	// GET still reaches the handler, which rejects the missing token.
	r = httptest.NewRequest(http.MethodGet, "/stories", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
