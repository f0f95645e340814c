// Package stubapi is an in-memory stand-in for the TravelShare backend API.
//
// It implements the external contract the web client depends on (post
// listing and creation, image and thumbnail serving, trip planning) so the
// frontend can be developed and tested without the real backend. It is a test
// double for development and tests only, not a production service.
package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"travelshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const defaultListLimit = 20

// Server is an in-memory TravelShare backend.
type Server struct {
	mu     sync.RWMutex
	posts  []storedPost
	images map[string]*storedImage
	mux    *http.ServeMux
	now    func() time.Time
}

type storedPost struct {
	post      models.Post
	createdAt time.Time
}

// New creates an empty stub backend.
func New() *Server {
	s := &Server{
		images: make(map[string]*storedImage),
		now:    time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts/{$}", s.handleListPosts)
	mux.HandleFunc("POST /posts/{$}", s.handleCreatePost)
	mux.HandleFunc("GET /images/{id}", s.handleGetImage)
	mux.HandleFunc("GET /images/{id}/thumbnail", s.handleGetThumbnail)
	mux.HandleFunc("POST /plan-trip/{$}", s.handlePlanTrip)
	mux.HandleFunc("GET /docs", s.handleDocs)
	s.mux = mux

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleListPosts mirrors the backend's combined keyword/sentiment search:
// keyword matches the body case-insensitively, sentiment matches the label
// exactly, results are newest first.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	keyword := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("keyword")))
	sentiment := strings.TrimSpace(r.URL.Query().Get("sentiment"))
	limit := queryInt(r, "limit", defaultListLimit)
	offset := queryInt(r, "offset", 0)
	if limit < 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	matched := make([]models.Post, 0, len(s.posts))
	for _, sp := range s.posts {
		if keyword != "" && !strings.Contains(strings.ToLower(sp.post.Body), keyword) {
			continue
		}
		if sentiment != "" && !strings.EqualFold(sp.post.SentimentLabel, sentiment) {
			continue
		}
		matched = append(matched, sp.post)
	}
	s.mu.RUnlock()

	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": matched})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	username := r.FormValue("username")
	body := r.FormValue("body")
	if username == "" || body == "" {
		writeError(w, http.StatusUnprocessableEntity, "username and body are required")
		return
	}

	var imageID string
	if file, header, err := r.FormFile("image"); err == nil {
		id, storeErr := s.storeImage(file, header)
		_ = file.Close()
		if storeErr != nil {
			writeError(w, http.StatusBadRequest, "unable to read uploaded image")
			return
		}
		imageID = id
	}

	label, score := analyzeSentiment(body)

	now := s.now().UTC()
	post := models.Post{
		ID:             uuid.NewString(),
		Username:       username,
		Body:           body,
		ImageID:        imageID,
		CreatedAt:      now.Format(time.RFC3339),
		SentimentLabel: label,
		SentimentScore: score,
	}

	s.mu.Lock()
	s.posts = append(s.posts, storedPost{post: post, createdAt: now})
	sort.SliceStable(s.posts, func(i, j int) bool {
		return s.posts[i].createdAt.After(s.posts[j].createdAt)
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"post_id":         post.ID,
		"image_id":        nullableID(imageID),
		"sentiment":       label,
		"sentiment_score": score,
	})
}

func (s *Server) handlePlanTrip(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid plan request")
		return
	}
	writeJSON(w, http.StatusOK, models.PlanResponse{Plan: buildPlan(req)})
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, "<!DOCTYPE html><title>TravelShare API docs</title><h1>TravelShare API</h1>")
}

// PostCount returns the number of stored posts.
func (s *Server) PostCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Seed populates the store with n fake travel posts for local development.
func (s *Server) Seed(n int) {
	for i := 0; i < n; i++ {
		body := fmt.Sprintf("%s in %s, %s", gofakeit.HipsterSentence(4), gofakeit.City(), gofakeit.AdjectiveDescriptive())
		label, score := analyzeSentiment(body)
		created := s.now().UTC().Add(-time.Duration(i) * time.Hour)

		s.mu.Lock()
		s.posts = append(s.posts, storedPost{
			post: models.Post{
				ID:             uuid.NewString(),
				Username:       gofakeit.Username(),
				Body:           body,
				CreatedAt:      created.Format(time.RFC3339),
				SentimentLabel: label,
				SentimentScore: score,
			},
			createdAt: created,
		})
		s.mu.Unlock()
	}
}

// buildPlan produces a deterministic-shaped, fake day-by-day itinerary.
func buildPlan(req models.PlanRequest) string {
	city := req.City
	if city == "" {
		city = gofakeit.City()
	}
	days := req.Days
	if days < 1 {
		days = 1
	}
	concept := req.Concept
	if concept == "" {
		concept = "sightseeing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Trip plan for %s (%s), %d day(s), %d traveler(s), budget %d:\n",
		city, concept, days, req.People, req.Budget)
	for d := 1; d <= days; d++ {
		fmt.Fprintf(&b, "Day %d: %s Then enjoy %s near %s.\n",
			d, gofakeit.HipsterSentence(6), gofakeit.NounConcrete(), gofakeit.StreetName())
	}
	return b.String()
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mirrors FastAPI's {"detail": ...} error body shape.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
