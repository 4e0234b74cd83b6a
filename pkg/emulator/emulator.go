package emulator

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server is an in-memory stand-in for the hosted storage service. It
// implements the subset of the Storage API and the TUS resumable upload
// endpoint that the client package uses, so tests and local development
// don't need a provisioned project.
type Server struct {
	mu      sync.Mutex
	buckets map[string]*bucketRecord
	grants  map[string]*signedGrant
	uploads map[string]*tusUpload

	log    *logrus.Logger
	router *mux.Router
	srv    *http.Server

	// uploadExpiry is how long unfinished resumable uploads are kept.
	uploadExpiry time.Duration
}

type bucketRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	objects map[string]*objectRecord
}

type objectRecord struct {
	id           string
	data         []byte
	contentType  string
	cacheControl string
	createdAt    time.Time
	updatedAt    time.Time
}

// signedGrant is an issued signed URL token, for download or upload.
type signedGrant struct {
	bucket    string
	path      string
	forUpload bool
	expiresAt time.Time
}

// New returns a ready-to-serve emulator. The returned server's Router can
// be mounted in an httptest.Server for hermetic tests.
func New(log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	s := &Server{
		buckets:      map[string]*bucketRecord{},
		grants:       map[string]*signedGrant{},
		uploads:      map[string]*tusUpload{},
		log:          log,
		uploadExpiry: 24 * time.Hour,
	}

	router := mux.NewRouter().UseEncodedPath()
	// The client joins /storage/v1 onto the project URL, so the API is
	// served both under that prefix and at the root.
	for _, r := range []*mux.Router{router.PathPrefix("/storage/v1").Subrouter(), router} {
		s.registerBucketRoutes(r)
		s.registerObjectRoutes(r)
		s.registerTUSRoutes(r)
	}
	s.router = router
	return s
}

// Router exposes the emulator's HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe runs the emulator on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Handler:      handlers.LoggingHandler(s.log.Writer(), s.router),
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	s.log.WithField("addr", addr).Info("storage emulator listening")
	return s.srv.ListenAndServe()
}

// respondError writes the service's error body shape.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"statusCode": strconv.Itoa(status),
		"error":      code,
		"message":    message,
	})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
