// Package gateway is the HTTP front door: the unary tool-call endpoint, the
// catalog listing, the single-frame SSE JSON-RPC endpoint and the operational
// endpoints. All auth and gating live here; the dispatcher sees only a
// RequestContext.
package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/aosgate/internal/auditlog"
	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/tools"
	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// Server is the HTTP gateway.
type Server struct {
	cfg     config.ServerConfig
	svc     *tools.Service
	audit   *auditlog.Store
	log     *slog.Logger
	limiter *ipLimiter
	cidrs   []*net.IPNet

	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer builds the gateway. The audit store may be nil.
func NewServer(cfg config.ServerConfig, svc *tools.Service, audit *auditlog.Store, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		audit:   audit,
		log:     log,
		limiter: newIPLimiter(cfg.RateLimitRPM),
	}
	for _, c := range cfg.AllowedCIDRs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !strings.Contains(c, "/") {
			c += "/32"
		}
		_, ipnet, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("allowed_cidrs entry %q: %w", c, err)
		}
		s.cidrs = append(s.cidrs, ipnet)
	}
	return s, nil
}

// BuildMux registers all routes and caches the mux.
func (s *Server) BuildMux() *http.ServeMux {
	if s.mux != nil {
		return s.mux
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("POST /v1/tools/call", s.gated(s.handleToolCall))
	mux.Handle("GET /v1/tools", s.gated(s.handleToolList))
	mux.Handle("GET /v1/audit/recent", s.gated(s.handleAuditRecent))
	mux.Handle("POST /mcp/sse", s.gated(s.handleSSE))
	mux.Handle("GET /mcp/metadata", s.gated(s.handleMetadata))

	s.mux = mux
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := s.BuildMux()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("gateway.starting", "addr", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("gateway server: %w", err)
	}
	return nil
}

// gated wraps a handler with the transport-layer checks: CIDR allow-list,
// bearer token, per-IP rate limit.
func (s *Server) gated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if len(s.cidrs) > 0 && !s.ipAllowed(ip) {
			s.log.Warn("gateway.ip_rejected", "ip", ip, "path", r.URL.Path)
			writeJSONError(w, http.StatusForbidden, "client address not allowed")
			return
		}
		if s.cfg.Token != "" && !s.tokenValid(r) {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		if !s.limiter.Allow(ip) {
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next(w, r)
	})
}

func (s *Server) ipAllowed(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, c := range s.cidrs {
		if c.Contains(parsed) {
			return true
		}
	}
	return false
}

func (s *Server) tokenValid(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth {
		// Shared-header fallback for clients that cannot set Authorization.
		token = r.Header.Get("X-API-Key")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Token)) == 1
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  s.svc.Registry.Len(),
	})
}

// handleToolCall is the unary ingress: decode, context-gate, dispatch.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var req protocol.ToolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Tool == "" {
		writeJSONError(w, http.StatusBadRequest, "field \"tool\" is required")
		return
	}
	if s.cfg.RequireContext && (req.Context == nil || req.Context.Subject == "") {
		writeJSONError(w, http.StatusBadRequest, "request context with subject is required")
		return
	}
	ensureCorrelationID(&req)

	result := s.svc.Dispatch(r.Context(), &req)
	writeJSON(w, http.StatusOK, result)
}

// handleToolList serves the catalog. ?format=compact trims to name+description
// and ?format=ultra_compact to names only; the default includes schemas.
func (s *Server) handleToolList(w http.ResponseWriter, r *http.Request) {
	catalog := s.svc.Registry.List()

	switch r.URL.Query().Get("format") {
	case "ultra_compact":
		names := make([]string, 0, len(catalog))
		for _, t := range catalog {
			names = append(names, t.Name)
		}
		writeJSON(w, http.StatusOK, map[string]any{"tools": names})
	case "compact":
		list := make([]map[string]any, 0, len(catalog))
		for _, t := range catalog {
			list = append(list, map[string]any{
				"name":        t.Name,
				"description": compactDescription(t.Description),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"tools": list})
	default:
		list := make([]map[string]any, 0, len(catalog))
		for _, t := range catalog {
			list = append(list, map[string]any{
				"name":          t.Name,
				"description":   t.Description,
				"input_schema":  t.InputSchema,
				"output_schema": t.OutputSchema,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"tools": list})
	}
}

// ensureCorrelationID assigns a fresh ID when the caller did not send one, so
// every audit entry and trace span is joinable.
func ensureCorrelationID(req *protocol.ToolCallRequest) {
	if req.Context == nil {
		req.Context = &protocol.RequestContext{}
	}
	if req.Context.CorrelationID == "" {
		req.Context.CorrelationID = uuid.NewString()
	}
}

// compactDescription keeps only the first sentence.
func compactDescription(desc string) string {
	if idx := strings.Index(desc, ". "); idx > 0 {
		return desc[:idx+1]
	}
	return desc
}

func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSONError(w, http.StatusNotFound, "audit log not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("gateway.audit_query_failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "audit query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calls": entries})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
