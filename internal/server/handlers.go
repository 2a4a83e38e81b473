// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/feastfit/internal/meallog"
	"github.com/pdiddy/feastfit/internal/recommend"
	"github.com/pdiddy/feastfit/pkg/types"
)

type searchResponse struct {
	Restaurants []types.RestaurantResult `json:"restaurants"`
	Snapshot    types.SearchSnapshot     `json:"snapshot"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req, err := recommend.ValidateSearch(req)
	if err != nil {
		s.writePipelineError(w, "search", err)
		return
	}

	results, err := s.pipeline.Search(r.Context(), ClientID(r), req)
	if err != nil {
		s.writePipelineError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Restaurants: results,
		Snapshot:    recommend.Snapshot(req, results, s.pipeline.Now()),
	})
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req types.RefineRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	message, err := s.pipeline.Refine(r.Context(), ClientID(r), req)
	if err != nil {
		s.writePipelineError(w, "refine", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// coachBody is the coach request. LastSearch and GuestLogs may instead
// arrive in the side-channel headers; body values take precedence.
// Guest logs stay raw until decodeGuestLogs so one bad entry skips only
// itself.
type coachBody struct {
	Message    string                `json:"message"`
	LastSearch *types.SearchSnapshot `json:"lastSearch,omitempty"`
	GuestLogs  []json.RawMessage     `json:"guestLogs,omitempty"`
	UserID     string                `json:"userId,omitempty"`
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	var body coachBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid message")
		return
	}

	if body.LastSearch == nil {
		var snap types.SearchSnapshot
		if headerJSON(r, HeaderLastSearch, &snap) {
			body.LastSearch = &snap
		}
	}
	if body.GuestLogs == nil {
		var raw []json.RawMessage
		if headerJSON(r, HeaderGuestLogs, &raw) {
			body.GuestLogs = raw
		}
	}

	logs := decodeGuestLogs(body.GuestLogs)
	if body.UserID != "" && s.store != nil {
		stored, err := s.store.ListByUserOn(r.Context(), body.UserID, s.pipeline.Now())
		if err != nil {
			s.log.Warn("loading logs for coach", zap.String("user", body.UserID), zap.Error(err))
		} else {
			logs = stored
		}
	}

	reply, err := s.pipeline.Coach(r.Context(), ClientID(r), types.CoachRequest{
		Message:    body.Message,
		LastSearch: body.LastSearch,
		Logs:       logs,
	})
	if err != nil {
		s.writePipelineError(w, "coach", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// logMealBody is the log-meal request: a restaurant and dish picked from
// search results.
type logMealBody struct {
	UserID     string `json:"userId"`
	Restaurant *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		URL      string `json:"url"`
		Address  string `json:"address"`
		FitScore int    `json:"fitScore"`
		FitLabel string `json:"fitLabel"`
	} `json:"restaurant"`
	Dish *struct {
		Name              string   `json:"name"`
		EstimatedCalories float64  `json:"estimatedCalories"`
		EstimatedProtein  float64  `json:"estimatedProtein"`
		EstimatedCarbs    *float64 `json:"estimatedCarbs"`
		EstimatedFat      *float64 `json:"estimatedFat"`
	} `json:"dish"`
	MealType     types.MealType `json:"mealType"`
	LocationText string         `json:"locationText"`
}

func (s *Server) handleLogMeal(w http.ResponseWriter, r *http.Request) {
	var body logMealBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(body.UserID) == "" || body.Restaurant == nil || body.Dish == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "Meal log store is not configured")
		return
	}

	_, err := s.store.Insert(r.Context(), types.MealLog{
		UserID:            body.UserID,
		RestaurantID:      body.Restaurant.ID,
		RestaurantName:    body.Restaurant.Name,
		RestaurantURL:     body.Restaurant.URL,
		RestaurantAddress: body.Restaurant.Address,
		FitScore:          body.Restaurant.FitScore,
		FitLabel:          body.Restaurant.FitLabel,
		DishName:          body.Dish.Name,
		Calories:          body.Dish.EstimatedCalories,
		Protein:           body.Dish.EstimatedProtein,
		Carbs:             body.Dish.EstimatedCarbs,
		Fat:               body.Dish.EstimatedFat,
		MealType:          body.MealType,
		LocationText:      body.LocationText,
		Source:            types.SourceAccount,
	})
	if err != nil {
		if errors.Is(err, meallog.ErrInvalidLog) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("log-meal failed", zap.String("user", body.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to log meal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusInternalServerError, "Meal log store is not configured")
		return
	}

	logs, err := s.store.ListByUser(r.Context(), userID, 0)
	if err != nil {
		s.log.Error("listing logs failed", zap.String("user", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}
	if logs == nil {
		logs = []types.MealLog{}
	}
	writeJSON(w, http.StatusOK, map[string][]types.MealLog{"logs": logs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writePipelineError maps a pipeline error class to its status code.
func (s *Server) writePipelineError(w http.ResponseWriter, flow string, err error) {
	switch {
	case errors.Is(err, recommend.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, recommend.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
	case errors.Is(err, recommend.ErrConfiguration):
		s.log.Error(flow+" misconfigured", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Missing upstream API key")
	case errors.Is(err, recommend.ErrUpstream):
		writeError(w, http.StatusBadGateway, "Yelp AI API error")
	default:
		s.log.Error(flow+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// headerJSON decodes a URL-encoded JSON header into v. Absent or malformed
// values are ignored.
func headerJSON(r *http.Request, name string, v any) bool {
	raw := r.Header.Get(name)
	if raw == "" {
		return false
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(decoded), v) == nil
}

// decodeGuestLogs decodes each entry on its own, skipping entries that are
// not meal log objects or carry an unparseable createdAt.
func decodeGuestLogs(raw []json.RawMessage) []types.MealLog {
	logs := make([]types.MealLog, 0, len(raw))
	for _, entry := range raw {
		var l types.MealLog
		if err := json.Unmarshal(entry, &l); err != nil {
			continue
		}
		logs = append(logs, l)
	}
	return logs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
