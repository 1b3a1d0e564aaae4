// Package httpapi is the HTTP boundary: routing, request parsing, cookie
// directives, and typed-error to status-code mapping. It holds no business
// rules; those live in the users and videos services.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dsmirnovs/clipvault/internal/logging"
	"github.com/dsmirnovs/clipvault/internal/server/auth"
	"github.com/dsmirnovs/clipvault/internal/server/config"
	"github.com/dsmirnovs/clipvault/internal/server/users"
	"github.com/dsmirnovs/clipvault/internal/server/videos"
)

// maxUploadBytes bounds multipart request memory buffering; larger bodies
// spill to disk.
const maxUploadBytes = 32 << 20

type Server struct {
	cfg       *config.Config
	logger    logging.Logger
	issuer    *auth.Issuer
	users     *users.Service
	videos    *videos.Service
	uploadDir string

	httpServer *http.Server
}

func NewServer(cfg *config.Config, logger logging.Logger, issuer *auth.Issuer,
	usersSvc *users.Service, videosSvc *videos.Service, uploadDir string) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		issuer:    issuer,
		users:     usersSvc,
		videos:    videosSvc,
		uploadDir: uploadDir,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.EndpointAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table. Exported so handler tests can drive it
// through httptest without opening a socket.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	u := api.PathPrefix("/users").Subrouter()
	u.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	u.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	u.HandleFunc("/logout", s.authenticate(s.handleLogout)).Methods(http.MethodPost)
	u.HandleFunc("/refresh-token", s.handleRefresh).Methods(http.MethodPost)
	u.HandleFunc("/change-password", s.authenticate(s.handleChangePassword)).Methods(http.MethodPatch)
	u.HandleFunc("/current-user", s.authenticate(s.handleCurrentUser)).Methods(http.MethodGet)
	u.HandleFunc("/update-info", s.authenticate(s.handleUpdateProfile)).Methods(http.MethodPatch)
	u.HandleFunc("/update-avatar", s.authenticate(s.handleUpdateAvatar)).Methods(http.MethodPatch)
	u.HandleFunc("/update-cover", s.authenticate(s.handleUpdateCover)).Methods(http.MethodPatch)

	v := api.PathPrefix("/videos").Subrouter()
	v.HandleFunc("/upload", s.authenticate(s.handleVideoUpload)).Methods(http.MethodPost)
	v.HandleFunc("/watch/{id}", s.authenticate(s.handleVideoWatch)).Methods(http.MethodGet)
	v.HandleFunc("/remove/{id}", s.authenticate(s.handleVideoRemove)).Methods(http.MethodDelete)

	return r
}

func (s *Server) ListenAndServe() error {
	s.logger.Info(context.Background(), "http server listening", "addr", s.cfg.EndpointAddr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
