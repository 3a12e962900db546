package tools

import (
	"context"

	"github.com/nextlevelbuilder/aosgate/pkg/protocol"
)

// Schema is a JSON-schema fragment for tool input or output.
type Schema map[string]any

// Handler orchestrates one tool call: validate args, run commands, parse,
// aggregate. It returns the data mapping, the content blocks, the exact
// command strings sent to the device in order, and optional warnings.
type Handler func(ctx context.Context, svc *Service, args map[string]any) (*Output, error)

// Output is what a handler produces before the dispatcher wraps it into the
// wire result.
type Output struct {
	Data     map[string]any
	Content  []protocol.ContentBlock
	Commands []string
	Warnings []string
}

// Tool is one catalog entry. The catalog is compiled in; there is no plugin
// surface.
type Tool struct {
	Name         string
	Description  string
	InputSchema  Schema
	OutputSchema Schema
	Handler      Handler
}

// Registry is the static name -> tool map plus the stable listing order.
type Registry struct {
	byName map[string]*Tool
	order  []string
}

func NewRegistry(tools ...*Tool) *Registry {
	r := &Registry{byName: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		r.byName[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r
}

func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// List returns the catalog in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }
