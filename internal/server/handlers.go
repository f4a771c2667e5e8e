package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/artpar/starplate/internal/restaurant"
	"github.com/artpar/starplate/internal/starred"
)

type createRestaurantRequest struct {
	Name *string `json:"name"`
}

type renameRestaurantRequest struct {
	NewName *string `json:"newName"`
}

type createStarredRequest struct {
	RestaurantID string  `json:"restaurantId"`
	Comment      *string `json:"comment"`
}

type updateCommentRequest struct {
	Comment *string `json:"comment"`
}

// Restaurants

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := s.restaurants.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getRestaurant(w http.ResponseWriter, r *http.Request) {
	found, err := s.restaurants.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var req createRestaurantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.restaurants.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	if err := s.restaurants.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, http.StatusText(http.StatusOK))
}

func (s *Server) renameRestaurant(w http.ResponseWriter, r *http.Request) {
	var req renameRestaurantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.restaurants.Rename(r.Context(), r.PathValue("id"), req.NewName); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, http.StatusText(http.StatusOK))
}

// Starred restaurants

func (s *Server) listStarred(w http.ResponseWriter, r *http.Request) {
	list, err := s.starred.ListJoined(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getStarred(w http.ResponseWriter, r *http.Request) {
	found, err := s.starred.GetJoined(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) createStarred(w http.ResponseWriter, r *http.Request) {
	var req createStarredRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := s.starred.Create(r.Context(), req.RestaurantID, req.Comment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) deleteStarred(w http.ResponseWriter, r *http.Request) {
	if err := s.starred.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateStarredComment(w http.ResponseWriter, r *http.Request) {
	var req updateCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.starred.UpdateComment(r.Context(), r.PathValue("id"), req.Comment); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, http.StatusText(http.StatusOK))
}

// Helpers

// writeError maps store errors to status codes. Not-found responses carry no
// body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, restaurant.ErrNotFound), errors.Is(err, starred.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, restaurant.ErrStoreClosed), errors.Is(err, starred.ErrStoreClosed):
		writeText(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// decodeBody decodes a JSON request body into dst. An empty body leaves dst
// zero. It writes 400 and returns false when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeText(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
