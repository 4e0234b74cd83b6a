package emulator

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// tusUpload is one in-flight resumable upload.
type tusUpload struct {
	bucket     string
	objectName string
	length     int64
	deferred   bool
	data       []byte
	expiresAt  time.Time
}

func (s *Server) registerTUSRoutes(router *mux.Router) {
	router.HandleFunc("/upload/resumable", s.handleTUSCreate).Methods("POST")
	router.HandleFunc("/upload/resumable", s.handleTUSOptions).Methods("OPTIONS")
	router.HandleFunc("/upload/resumable/{id}", s.handleTUSHead).Methods("HEAD")
	router.HandleFunc("/upload/resumable/{id}", s.handleTUSPatch).Methods("PATCH")
}

// parseTUSMetadata decodes an Upload-Metadata header: comma-separated
// "key base64(value)" pairs.
func parseTUSMetadata(header string) map[string]string {
	md := map[string]string{}
	for _, pair := range strings.Split(header, ",") {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) != 2 {
			continue
		}
		value, err := base64.StdEncoding.DecodeString(fields[1])
		if err != nil {
			continue
		}
		md[fields[0]] = string(value)
	}
	return md
}

func (s *Server) handleTUSOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Tus-Resumable", tusVersion)
	w.Header().Set("Tus-Version", tusVersion)
	w.Header().Set("Tus-Extension", "creation,expiration")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTUSCreate(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Tus-Resumable") == "" {
		respondError(w, http.StatusPreconditionFailed, "tus_error", "Tus-Resumable header is required")
		return
	}

	md := parseTUSMetadata(r.Header.Get("Upload-Metadata"))
	bucketID := md["bucketName"]
	objectName := md["objectName"]
	if bucketID == "" || objectName == "" {
		respondError(w, http.StatusBadRequest, "tus_error", "Upload-Metadata must carry bucketName and objectName")
		return
	}

	upload := &tusUpload{
		bucket:     bucketID,
		objectName: objectName,
		expiresAt:  time.Now().Add(s.uploadExpiry).UTC(),
	}

	switch {
	case r.Header.Get("Upload-Length") != "":
		length, err := strconv.ParseInt(r.Header.Get("Upload-Length"), 10, 64)
		if err != nil || length < 0 {
			respondError(w, http.StatusBadRequest, "tus_error", "invalid Upload-Length")
			return
		}
		upload.length = length
	case r.Header.Get("Upload-Defer-Length") == "1":
		upload.deferred = true
	default:
		respondError(w, http.StatusBadRequest, "tus_error", "Upload-Length or Upload-Defer-Length is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bucket(bucketID) == nil {
		respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
		return
	}

	id := uuid.NewString()
	s.uploads[id] = upload

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	w.Header().Set("Tus-Resumable", tusVersion)
	w.Header().Set("Location", scheme+"://"+r.Host+"/upload/resumable/"+id)
	w.Header().Set("Upload-Expires", upload.expiresAt.Format(time.RFC1123))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleTUSHead(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload, ok := s.uploads[mux.Vars(r)["id"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Tus-Resumable", tusVersion)
	w.Header().Set("Upload-Offset", strconv.FormatInt(int64(len(upload.data)), 10))
	if upload.deferred && upload.length == 0 {
		w.Header().Set("Upload-Defer-Length", "1")
	} else {
		w.Header().Set("Upload-Length", strconv.FormatInt(upload.length, 10))
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTUSPatch(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "application/offset+octet-stream" {
		respondError(w, http.StatusUnsupportedMediaType, "tus_error", "Content-Type must be application/offset+octet-stream")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "tus_error", "failed to read chunk")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := mux.Vars(r)["id"]
	upload, ok := s.uploads[id]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Upload not found")
		return
	}

	offset, err := strconv.ParseInt(r.Header.Get("Upload-Offset"), 10, 64)
	if err != nil || offset != int64(len(upload.data)) {
		respondError(w, http.StatusConflict, "tus_error", "Upload-Offset does not match current offset")
		return
	}

	// Deferred uploads learn their final length on the first PATCH.
	if upload.deferred {
		if lengthHeader := r.Header.Get("Upload-Length"); lengthHeader != "" {
			length, err := strconv.ParseInt(lengthHeader, 10, 64)
			if err != nil || length < 0 {
				respondError(w, http.StatusBadRequest, "tus_error", "invalid Upload-Length")
				return
			}
			upload.length = length
			upload.deferred = false
		}
	}

	// Reject before appending so an oversized chunk leaves the stored
	// offset untouched and the upload can still finish.
	if !upload.deferred && int64(len(upload.data))+int64(len(body)) > upload.length {
		respondError(w, http.StatusRequestEntityTooLarge, "tus_error", "upload exceeds declared Upload-Length")
		return
	}

	upload.data = append(upload.data, body...)
	newOffset := int64(len(upload.data))

	w.Header().Set("Tus-Resumable", tusVersion)
	w.Header().Set("Upload-Offset", strconv.FormatInt(newOffset, 10))

	if newOffset == upload.length {
		bucket := s.bucket(upload.bucket)
		if bucket == nil {
			respondError(w, http.StatusNotFound, "not_found", "Bucket not found")
			return
		}
		s.storeObject(bucket, upload.objectName, "application/octet-stream", "", upload.data, true)
		delete(s.uploads, id)
		w.Header().Set("Tus-Complete", "true")
	}
	w.WriteHeader(http.StatusNoContent)
}

const tusVersion = "1.0.0"
