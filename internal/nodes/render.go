package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"eino_chat_bridge/internal/markdown"
	"eino_chat_bridge/internal/placeholder"
	"eino_chat_bridge/pkg"
)

const (
	NodeResolve  = "resolve"
	NodeSanitize = "sanitize"
)

// Rendered is generated text made ready for a chat transport
type Rendered struct {
	Text   string
	Orders []pkg.Order
}

// Renderer turns raw model output into transport text: placeholders are
// expanded first, then markdown is reduced to the transport dialect
type Renderer struct {
	runnable compose.Runnable[string, Rendered]
}

// NewRenderer compiles the resolve -> sanitize graph
func NewRenderer(ctx context.Context, resolver *placeholder.Resolver) (*Renderer, error) {
	graph := compose.NewGraph[string, Rendered]()

	resolve := compose.InvokableLambda(func(ctx context.Context, raw string) (Rendered, error) {
		text, orders := resolver.ResolveOrders(raw)
		return Rendered{Text: text, Orders: orders}, nil
	})

	sanitize := compose.InvokableLambda(func(ctx context.Context, in Rendered) (Rendered, error) {
		in.Text = markdown.ToTransportText(in.Text)
		return in, nil
	})

	if err := graph.AddLambdaNode(NodeResolve, resolve); err != nil {
		return nil, fmt.Errorf("failed to add resolve node: %w", err)
	}
	if err := graph.AddLambdaNode(NodeSanitize, sanitize); err != nil {
		return nil, fmt.Errorf("failed to add sanitize node: %w", err)
	}

	if err := graph.AddEdge(compose.START, NodeResolve); err != nil {
		return nil, fmt.Errorf("failed to add start edge: %w", err)
	}
	if err := graph.AddEdge(NodeResolve, NodeSanitize); err != nil {
		return nil, fmt.Errorf("failed to add resolve to sanitize edge: %w", err)
	}
	if err := graph.AddEdge(NodeSanitize, compose.END); err != nil {
		return nil, fmt.Errorf("failed to add end edge: %w", err)
	}

	runnable, err := graph.Compile(ctx, compose.WithGraphName("render"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile render graph: %w", err)
	}
	return &Renderer{runnable: runnable}, nil
}

// Render resolves and sanitizes raw model output
func (r *Renderer) Render(ctx context.Context, raw string) (Rendered, error) {
	out, err := r.runnable.Invoke(ctx, raw)
	if err != nil {
		return Rendered{}, fmt.Errorf("render failed: %w", err)
	}
	return out, nil
}
