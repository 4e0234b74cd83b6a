package emulator

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

func (s *Server) registerBucketRoutes(router *mux.Router) {
	router.HandleFunc("/bucket", s.handleListBuckets).Methods("GET")
	router.HandleFunc("/bucket", s.handleCreateBucket).Methods("POST")
	router.HandleFunc("/bucket/{id}", s.handleGetBucket).Methods("GET")
	router.HandleFunc("/bucket/{id}", s.handleUpdateBucket).Methods("PUT")
	router.HandleFunc("/bucket/{id}/empty", s.handleEmptyBucket).Methods("POST")
	router.HandleFunc("/bucket/{id}", s.handleDeleteBucket).Methods("DELETE")
}

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := make([]*bucketRecord, 0, len(s.buckets))
	for _, b := range s.buckets {
		buckets = append(buckets, b)
	}
	respondJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Public bool   `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "bucket id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[req.ID]; ok {
		respondError(w, http.StatusConflict, "Duplicate", "The resource already exists")
		return
	}

	now := time.Now().UTC()
	name := req.Name
	if name == "" {
		name = req.ID
	}
	s.buckets[req.ID] = &bucketRecord{
		ID:        req.ID,
		Name:      name,
		Public:    req.Public,
		CreatedAt: now,
		UpdatedAt: now,
		objects:   map[string]*objectRecord{},
	}
	respondJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (s *Server) handleGetBucket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[mux.Vars(r)["id"]]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	respondJSON(w, http.StatusOK, bucket)
}

func (s *Server) handleUpdateBucket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Public bool `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[mux.Vars(r)["id"]]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	bucket.Public = req.Public
	bucket.UpdatedAt = time.Now().UTC()
	respondJSON(w, http.StatusOK, map[string]string{"message": "Successfully updated"})
}

func (s *Server) handleEmptyBucket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[mux.Vars(r)["id"]]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	bucket.objects = map[string]*objectRecord{}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Successfully emptied"})
}

func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := mux.Vars(r)["id"]
	bucket, ok := s.buckets[id]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	if len(bucket.objects) > 0 {
		respondError(w, http.StatusConflict, "invalid_request", "The bucket you tried to delete is not empty")
		return
	}
	delete(s.buckets, id)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted"})
}
