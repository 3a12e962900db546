package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// mcpProtocolVersion is the MCP revision this endpoint speaks.
const mcpProtocolVersion = "2024-11-05"

const serverVersion = "1.0.0"

// handleSSE serves one JSON-RPC frame over SSE: read the request, write a
// single data: event, close the stream.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	var req protocol.JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeSSEFrame(w, &protocol.JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &protocol.JSONRPCError{Code: protocol.ParseError, Message: "parse error: " + err.Error()},
		})
		return
	}

	resp := &protocol.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": mcpProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      mcp.Implementation{Name: "aosgate", Version: serverVersion},
		}
	case "tools/list":
		resp.Result = map[string]any{"tools": s.mcpTools()}
	case "tools/call":
		resp.Result, resp.Error = s.mcpToolCall(r, req.Params)
	default:
		resp.Error = &protocol.JSONRPCError{
			Code:    protocol.MethodNotFound,
			Message: "method not found: " + req.Method,
		}
	}

	s.writeSSEFrame(w, resp)
}

// mcpTools renders the catalog as MCP tool descriptors with full schemas.
func (s *Server) mcpTools() []mcp.Tool {
	catalog := s.svc.Registry.List()
	out := make([]mcp.Tool, 0, len(catalog))
	for _, t := range catalog {
		raw, err := json.Marshal(t.InputSchema)
		if err != nil {
			s.log.Error("gateway.schema_marshal_failed", "tool", t.Name, "error", err)
			continue
		}
		out = append(out, mcp.Tool{
			Name:           t.Name,
			Description:    t.Description,
			RawInputSchema: json.RawMessage(raw),
		})
	}
	return out
}

// mcpCallParams is the MCP tools/call parameter shape.
type mcpCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// mcpToolCall dispatches a tools/call frame identically to the unary path and
// returns the serialized tool result.
func (s *Server) mcpToolCall(r *http.Request, params json.RawMessage) (any, *protocol.JSONRPCError) {
	var p mcpCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &protocol.JSONRPCError{Code: protocol.InvalidRequest, Message: "invalid params: " + err.Error()}
	}
	if p.Name == "" {
		return nil, &protocol.JSONRPCError{Code: protocol.InvalidRequest, Message: "params.name is required"}
	}

	reqCtx := contextFromHeaders(r)
	if s.cfg.RequireContext && reqCtx.Subject == "" {
		return nil, &protocol.JSONRPCError{Code: protocol.InvalidRequest, Message: "request context with subject is required"}
	}

	call := &protocol.ToolCallRequest{
		Context: reqCtx,
		Tool:    p.Name,
		Args:    p.Arguments,
	}
	ensureCorrelationID(call)
	return s.svc.Dispatch(r.Context(), call), nil
}

// contextFromHeaders builds a RequestContext for SSE callers, which have no
// envelope to carry one.
func contextFromHeaders(r *http.Request) *protocol.RequestContext {
	return &protocol.RequestContext{
		Subject:       r.Header.Get("X-Subject"),
		CorrelationID: r.Header.Get("X-Correlation-Id"),
		Client:        r.Header.Get("User-Agent"),
	}
}

// writeSSEFrame emits the single data: event and ends the stream.
func (s *Server) writeSSEFrame(w http.ResponseWriter, resp *protocol.JSONRPCResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	payload, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("gateway.sse_marshal_failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Write([]byte("data: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// handleMetadata describes the MCP endpoint for discovery.
func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":             "aosgate",
		"version":          serverVersion,
		"protocol_version": mcpProtocolVersion,
		"endpoint":         "/mcp/sse",
		"transport":        "sse",
		"tools":            s.svc.Registry.Len(),
	})
}
