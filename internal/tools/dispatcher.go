package tools

import (
	"context"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// AuditEntry is one completed tool call as recorded in the audit trail.
type AuditEntry struct {
	Time          time.Time
	Tool          string
	Subject       string
	CorrelationID string
	Host          string
	Status        string
	ErrorCode     string
	DurationMS    int64
	Commands      []string
}

// AuditRecorder persists completed calls. Recording must never fail a call;
// implementations log their own errors.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

var tracer = otel.Tracer("aosgate/tools")

// Dispatch resolves the tool, runs its handler with panic containment, and
// wraps the outcome into the wire result. Meta always carries the tool name,
// even for unknown tools.
func (svc *Service) Dispatch(ctx context.Context, req *protocol.ToolCallRequest) *protocol.ToolResult {
	start := time.Now()

	reqCtx := req.Context
	if reqCtx == nil {
		reqCtx = &protocol.RequestContext{}
	}

	ctx, span := tracer.Start(ctx, "tools.dispatch", trace.WithAttributes(
		attribute.String("tool.name", req.Tool),
		attribute.String("request.subject", reqCtx.Subject),
		attribute.String("request.correlation_id", reqCtx.CorrelationID),
	))
	defer span.End()

	tool, ok := svc.Registry.Get(req.Tool)
	if !ok {
		span.SetStatus(codes.Error, "unknown tool")
		return svc.finish(ctx, reqCtx, req, start, nil, &Error{
			Code:    CodeUnknownTool,
			Message: "unknown tool: " + req.Tool,
		})
	}

	args := req.Args
	if args == nil {
		args = map[string]any{}
	}

	out, toolErr := svc.invoke(ctx, tool, args)
	if toolErr != nil {
		span.SetStatus(codes.Error, toolErr.Code)
	}
	return svc.finish(ctx, reqCtx, req, start, out, toolErr)
}

// invoke runs the handler and contains panics. A panicking handler is a bug;
// the caller sees only the fixed internal-error message while the stack goes
// to the log.
func (svc *Service) invoke(ctx context.Context, tool *Tool, args map[string]any) (out *Output, toolErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			svc.logger().Error("tools.handler_panic",
				"tool", tool.Name, "panic", r, "stack", string(debug.Stack()))
			out = nil
			toolErr = &Error{Code: CodeInternalError, Message: "Internal server error"}
		}
	}()

	result, err := tool.Handler(ctx, svc, args)
	if err != nil {
		if te, ok := err.(*Error); ok {
			return nil, te
		}
		svc.logger().Error("tools.handler_error", "tool", tool.Name, "error", err)
		return nil, &Error{Code: CodeInternalError, Message: "Internal server error"}
	}
	return result, nil
}

func (svc *Service) finish(ctx context.Context, reqCtx *protocol.RequestContext, req *protocol.ToolCallRequest, start time.Time, out *Output, toolErr *Error) *protocol.ToolResult {
	durationMS := time.Since(start).Milliseconds()

	result := &protocol.ToolResult{
		Warnings: []string{},
		Meta:     map[string]any{"tool": req.Tool},
	}

	var commands []string
	if toolErr != nil {
		result.Status = "error"
		result.Error = &protocol.ToolError{
			Code:    toolErr.Code,
			Message: toolErr.Message,
			Details: toolErr.Details,
		}
	} else {
		result.Status = "ok"
		result.Data = out.Data
		result.Content = out.Content
		if out.Warnings != nil {
			result.Warnings = out.Warnings
		}
		commands = out.Commands
	}

	logArgs := []any{
		"tool", req.Tool,
		"status", result.Status,
		"duration_ms", durationMS,
		"subject", reqCtx.Subject,
		"correlation_id", reqCtx.CorrelationID,
	}
	if toolErr != nil {
		logArgs = append(logArgs, "error_code", toolErr.Code, "error", toolErr.Message)
		svc.logger().Warn("tools.call_failed", logArgs...)
	} else {
		logArgs = append(logArgs, "commands", len(commands))
		svc.logger().Info("tools.call_completed", logArgs...)
	}

	if svc.Audit != nil {
		entry := AuditEntry{
			Time:          start,
			Tool:          req.Tool,
			Subject:       reqCtx.Subject,
			CorrelationID: reqCtx.CorrelationID,
			Status:        result.Status,
			DurationMS:    durationMS,
			Commands:      commands,
		}
		if toolErr != nil {
			entry.ErrorCode = toolErr.Code
		}
		if host, ok := req.Args["host"].(string); ok {
			entry.Host = host
		}
		svc.Audit.Record(ctx, entry)
	}

	return result
}
