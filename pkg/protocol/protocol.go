// Package protocol defines the wire types shared by the HTTP gateway and its
// clients: the unary tool-call envelope, the tool result, and the JSON-RPC
// frames used by the SSE endpoint.
package protocol

import "encoding/json"

// RequestContext carries caller identity for logging. It grants nothing.
type RequestContext struct {
	Subject       string `json:"subject,omitempty"`
	Environment   string `json:"environment,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Client        string `json:"client,omitempty"`
}

// ToolCallRequest is the body of POST /v1/tools/call.
type ToolCallRequest struct {
	Context *RequestContext `json:"context,omitempty"`
	Tool    string          `json:"tool"`
	Args    map[string]any  `json:"args"`
}

// ContentBlock is one rendered-text block for LLM or human display.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolError is the structured error carried in a failed ToolResult.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToolResult is the serialized outcome of one tool call. Exactly one of Data
// and Error is set; Meta always carries the tool name.
type ToolResult struct {
	Status   string         `json:"status"`
	Data     map[string]any `json:"data"`
	Content  []ContentBlock `json:"content"`
	Warnings []string       `json:"warnings"`
	Error    *ToolError     `json:"error"`
	Meta     map[string]any `json:"meta"`
}

// JSONRPCRequest is an incoming JSON-RPC 2.0 frame on /mcp/sse.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCError is the error member of a JSON-RPC response.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONRPCResponse is the single response frame written as one SSE data line.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// Standard JSON-RPC 2.0 error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InternalError  = -32603
)
