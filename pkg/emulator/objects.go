package emulator

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func (s *Server) registerObjectRoutes(router *mux.Router) {
	// Fixed prefixes have to be registered before the catch-all
	// /object/{bucket}/{path} routes; mux matches in order.
	router.HandleFunc("/object/list/{bucket}", s.handleListObjects).Methods("POST")
	router.HandleFunc("/object/move", s.handleMoveObject(true)).Methods("POST")
	router.HandleFunc("/object/copy", s.handleMoveObject(false)).Methods("POST")
	router.HandleFunc("/object/info/{bucket}/{path:.+}", s.handleObjectInfo).Methods("GET")
	router.HandleFunc("/object/public/{bucket}/{path:.+}", s.handlePublicDownload).Methods("GET")
	router.HandleFunc("/object/sign/{bucket}/{path:.+}", s.handleCreateSignedURL).Methods("POST")
	router.HandleFunc("/object/sign/{bucket}", s.handleCreateSignedURLs).Methods("POST")
	router.HandleFunc("/object/sign/{bucket}/{path:.+}", s.handleSignedDownload).Methods("GET")
	router.HandleFunc("/object/upload/sign/{bucket}/{path:.+}", s.handleCreateSignedUpload).Methods("POST")
	router.HandleFunc("/object/upload/sign/{bucket}/{path:.+}", s.handleSignedUpload).Methods("PUT")
	router.HandleFunc("/object/{bucket}/{path:.+}", s.handleUpload(false)).Methods("POST")
	router.HandleFunc("/object/{bucket}/{path:.+}", s.handleUpload(true)).Methods("PUT")
	router.HandleFunc("/object/{bucket}/{path:.+}", s.handleDownload).Methods("GET")
	router.HandleFunc("/object/{bucket}/{path:.+}", s.handleExists).Methods("HEAD")
	router.HandleFunc("/object/{bucket}", s.handleRemoveObjects).Methods("DELETE")
}

// pathVars pulls and unescapes the bucket and object path route variables.
func pathVars(r *http.Request) (bucket, path string) {
	vars := mux.Vars(r)
	bucket, _ = url.PathUnescape(vars["bucket"])
	path, _ = url.PathUnescape(vars["path"])
	return bucket, path
}

func (s *Server) bucket(name string) *bucketRecord {
	return s.buckets[name]
}

func (s *Server) storeObject(bucket *bucketRecord, path, contentType, cacheControl string, data []byte, upsert bool) bool {
	existing, ok := bucket.objects[path]
	if ok && !upsert {
		return false
	}

	now := time.Now().UTC()
	rec := &objectRecord{
		id:           uuid.NewString(),
		data:         data,
		contentType:  contentType,
		cacheControl: cacheControl,
		createdAt:    now,
		updatedAt:    now,
	}
	if ok {
		rec.id = existing.id
		rec.createdAt = existing.createdAt
	}
	bucket.objects[path] = rec
	return true
}

func (s *Server) handleUpload(update bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bucketID, path := pathVars(r)
		data, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "failed to read body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		bucket := s.bucket(bucketID)
		if bucket == nil {
			respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
			return
		}

		upsert := update || strings.EqualFold(r.Header.Get("x-upsert"), "true")
		if !s.storeObject(bucket, path, r.Header.Get("Content-Type"), r.Header.Get("Cache-Control"), data, upsert) {
			respondError(w, http.StatusConflict, "Duplicate", "The resource already exists")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"Key": bucketID + "/" + path})
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.serveObject(w, bucketID, path)
}

// serveObject writes object content; callers must hold s.mu.
func (s *Server) serveObject(w http.ResponseWriter, bucketID, path string) {
	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	obj, ok := bucket.objects[path]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Object not found")
		return
	}
	w.Header().Set("Content-Type", obj.contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.data)
}

func (s *Server) handlePublicDownload(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil || !bucket.Public {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	s.serveObject(w, bucketID, path)
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if _, ok := bucket.objects[path]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleObjectInfo(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	obj, ok := bucket.objects[path]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Object not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":            obj.id,
		"name":          path,
		"version":       "1",
		"size":          len(obj.data),
		"content_type":  obj.contentType,
		"cache_control": obj.cacheControl,
		"etag":          obj.id,
		"metadata":      map[string]interface{}{},
		"created_at":    obj.createdAt,
	})
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	bucketID, _ := url.PathUnescape(mux.Vars(r)["bucket"])

	var req struct {
		Prefix string `json:"prefix"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
		Search string `json:"search"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}

	prefix := req.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	type entry struct {
		Name           string                 `json:"name"`
		ID             *string                `json:"id"`
		UpdatedAt      *time.Time             `json:"updated_at"`
		CreatedAt      *time.Time             `json:"created_at"`
		LastAccessedAt *time.Time             `json:"last_accessed_at"`
		Metadata       map[string]interface{} `json:"metadata"`
	}

	seen := map[string]bool{}
	var entries []entry
	for key, obj := range bucket.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			// Nested key: surface the first segment as a folder entry once.
			folder := rest[:i]
			if req.Search != "" && !strings.Contains(folder, req.Search) {
				continue
			}
			if !seen[folder] {
				seen[folder] = true
				entries = append(entries, entry{Name: folder})
			}
			continue
		}
		if req.Search != "" && !strings.Contains(rest, req.Search) {
			continue
		}
		id := obj.id
		created, updated := obj.createdAt, obj.updatedAt
		entries = append(entries, entry{
			Name:           rest,
			ID:             &id,
			CreatedAt:      &created,
			UpdatedAt:      &updated,
			LastAccessedAt: &updated,
			Metadata: map[string]interface{}{
				"mimetype":     obj.contentType,
				"size":         len(obj.data),
				"cacheControl": obj.cacheControl,
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	if req.Offset > 0 {
		if req.Offset >= len(entries) {
			entries = nil
		} else {
			entries = entries[req.Offset:]
		}
	}
	if req.Limit > 0 && req.Limit < len(entries) {
		entries = entries[:req.Limit]
	}
	if entries == nil {
		entries = []entry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMoveObject(deleteSource bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BucketID       string `json:"bucketId"`
			SourceKey      string `json:"sourceKey"`
			DestinationKey string `json:"destinationKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		bucket := s.bucket(req.BucketID)
		if bucket == nil {
			respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
			return
		}
		obj, ok := bucket.objects[req.SourceKey]
		if !ok {
			respondError(w, http.StatusNotFound, "not_found", "Object not found")
			return
		}

		dst := *obj
		dst.id = uuid.NewString()
		bucket.objects[req.DestinationKey] = &dst
		if deleteSource {
			delete(bucket.objects, req.SourceKey)
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Successfully moved"})
	}
}

func (s *Server) handleRemoveObjects(w http.ResponseWriter, r *http.Request) {
	bucketID, _ := url.PathUnescape(mux.Vars(r)["bucket"])

	var req struct {
		Prefixes []string `json:"prefixes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}

	type removed struct {
		Name string `json:"name"`
	}
	var out []removed
	for _, p := range req.Prefixes {
		if _, ok := bucket.objects[p]; ok {
			delete(bucket.objects, p)
			out = append(out, removed{Name: p})
		}
	}
	if out == nil {
		out = []removed{}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSignedURL(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)

	var req struct {
		ExpiresIn int64 `json:"expiresIn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	if _, ok := bucket.objects[path]; !ok {
		respondError(w, http.StatusNotFound, "not_found", "Object not found")
		return
	}

	signed := s.issueGrant(bucketID, path, false, req.ExpiresIn)
	respondJSON(w, http.StatusOK, map[string]string{"signedURL": signed})
}

func (s *Server) handleCreateSignedURLs(w http.ResponseWriter, r *http.Request) {
	bucketID, _ := url.PathUnescape(mux.Vars(r)["bucket"])

	var req struct {
		ExpiresIn int64    `json:"expiresIn"`
		Paths     []string `json:"paths"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}

	type signedEntry struct {
		Path      string  `json:"path"`
		SignedURL string  `json:"signedURL,omitempty"`
		Error     *string `json:"error"`
	}
	out := make([]signedEntry, 0, len(req.Paths))
	for _, p := range req.Paths {
		if _, ok := bucket.objects[p]; !ok {
			msg := "Object not found"
			out = append(out, signedEntry{Path: p, Error: &msg})
			continue
		}
		out = append(out, signedEntry{Path: p, SignedURL: s.issueGrant(bucketID, p, false, req.ExpiresIn)})
	}
	respondJSON(w, http.StatusOK, out)
}

// issueGrant registers a token and returns the relative signed URL.
// Callers must hold s.mu.
func (s *Server) issueGrant(bucketID, path string, forUpload bool, expiresIn int64) string {
	if expiresIn <= 0 {
		expiresIn = 60
	}
	token := uuid.NewString()
	s.grants[token] = &signedGrant{
		bucket:    bucketID,
		path:      path,
		forUpload: forUpload,
		expiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}

	kind := "/object/sign/"
	if forUpload {
		kind = "/object/upload/sign/"
	}
	return kind + bucketID + "/" + path + "?token=" + token
}

// redeemGrant validates a token against the request target. Callers must
// hold s.mu.
func (s *Server) redeemGrant(token, bucketID, path string, forUpload bool) bool {
	grant, ok := s.grants[token]
	if !ok || grant.forUpload != forUpload {
		return false
	}
	if time.Now().After(grant.expiresAt) {
		delete(s.grants, token)
		return false
	}
	return grant.bucket == bucketID && grant.path == path
}

func (s *Server) handleSignedDownload(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.redeemGrant(r.URL.Query().Get("token"), bucketID, path, false) {
		respondError(w, http.StatusForbidden, "invalid_token", "Invalid or expired token")
		return
	}
	s.serveObject(w, bucketID, path)
}

func (s *Server) handleCreateSignedUpload(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"url": s.issueGrant(bucketID, path, true, 7200),
	})
}

func (s *Server) handleSignedUpload(w http.ResponseWriter, r *http.Request) {
	bucketID, path := pathVars(r)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.redeemGrant(r.URL.Query().Get("token"), bucketID, path, true) {
		respondError(w, http.StatusForbidden, "invalid_token", "Invalid or expired token")
		return
	}
	bucket := s.bucket(bucketID)
	if bucket == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}
	s.storeObject(bucket, path, r.Header.Get("Content-Type"), r.Header.Get("Cache-Control"), data, true)
	respondJSON(w, http.StatusOK, map[string]string{"Key": bucketID + "/" + path})
}
