package web

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/zombor/receipt-builder/internal/history"
	"github.com/zombor/receipt-builder/internal/i18n"
	"github.com/zombor/receipt-builder/internal/receipt"
	"github.com/zombor/receipt-builder/internal/settings"
)

// Stores are the state objects the server operates on
type Stores struct {
	Editor   *receipt.Editor
	History  *history.Store
	Settings *settings.Store
	Locale   *i18n.Locale
}

// Config holds server options
type Config struct {
	BasicAuth BasicAuth
	// MaxImageWidth is the width uploaded images are shrunk to; 0 keeps the original
	MaxImageWidth int
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Server exposes the stores over HTTP. Requests are handled one at a time so
// the stores never see concurrent calls.
type Server struct {
	stores Stores
	config Config
	mux    *http.ServeMux

	mu        sync.Mutex
	htmlClass string
}

// NewServer creates a new Server with default mux
func NewServer(stores Stores, config Config) *Server {
	return NewServerWithMux(stores, config, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(stores Stores, config Config, mux *http.ServeMux) *Server {
	s := &Server{
		stores: stores,
		config: config,
		mux:    mux,
	}
	s.registerRoutes()
	return s
}

// SetDarkMode switches the class of the index page's root element. It is meant
// to be registered with settings.Store.OnDarkModeChange, so it runs either
// before Start or inside a request that already holds the lock.
func (s *Server) SetDarkMode(enabled bool) {
	if enabled {
		s.htmlClass = "dark"
	} else {
		s.htmlClass = ""
	}
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	auth := s.config.BasicAuth
	if auth.Username == "" && auth.Password == "" {
		return true // No auth required if not configured
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == auth.Username && credentials[1] == auth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handle wraps a handler with authentication and the store lock
func (s *Server) handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Receipt Builder"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		next(w, r)
	}
}

// registerRoutes registers all routes on the server's mux
func (s *Server) registerRoutes() {
	// Live receipt
	s.mux.HandleFunc("GET /api/receipt", s.handle(s.handleGetReceipt))
	s.mux.HandleFunc("PUT /api/receipt", s.handle(s.handleReplaceReceipt))
	s.mux.HandleFunc("PATCH /api/receipt", s.handle(s.handlePatchReceipt))
	s.mux.HandleFunc("POST /api/receipt/reset", s.handle(s.handleReset))
	s.mux.HandleFunc("POST /api/receipt/save", s.handle(s.handleSave))
	s.mux.HandleFunc("POST /api/receipt/import", s.handle(s.handleImport))
	s.mux.HandleFunc("GET /api/receipt/export.xlsx", s.handle(s.handleExport))
	s.mux.HandleFunc("PUT /api/receipt/payment-method", s.handle(s.handleSetPaymentMethod))
	s.mux.HandleFunc("PUT /api/receipt/logo", s.handle(s.handleSetLogo))
	s.mux.HandleFunc("DELETE /api/receipt/logo", s.handle(s.handleClearLogo))

	// Line items
	s.mux.HandleFunc("POST /api/receipt/items", s.handle(s.handleAddItem))
	s.mux.HandleFunc("DELETE /api/receipt/items", s.handle(s.handleRemoveItemAt))
	s.mux.HandleFunc("DELETE /api/receipt/items/{id}", s.handle(s.handleRemoveItem))
	s.mux.HandleFunc("PUT /api/receipt/items/{id}/image", s.handle(s.handleUpdateImage))
	s.mux.HandleFunc("DELETE /api/receipt/items/{id}/image", s.handle(s.handleClearImage))

	// History
	s.mux.HandleFunc("GET /api/history", s.handle(s.handleListHistory))
	s.mux.HandleFunc("POST /api/history", s.handle(s.handleSaveToHistory))
	s.mux.HandleFunc("DELETE /api/history", s.handle(s.handleClearHistory))
	s.mux.HandleFunc("GET /api/history/{id}", s.handle(s.handleGetHistoryEntry))
	s.mux.HandleFunc("POST /api/history/{id}/load", s.handle(s.handleLoadFromHistory))
	s.mux.HandleFunc("DELETE /api/history/{id}", s.handle(s.handleDeleteFromHistory))

	// Settings
	s.mux.HandleFunc("GET /api/settings", s.handle(s.handleGetSettings))
	s.mux.HandleFunc("PUT /api/settings", s.handle(s.handleUpdateSettings))

	// Static HTML interface (register last as it's the catch-all)
	s.mux.HandleFunc("GET /{$}", s.handle(s.handleIndex))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.corsMiddleware(s.mux))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
