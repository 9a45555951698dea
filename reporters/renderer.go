package reporters

import "context"

// Renderer presents a report somewhere. Renderers must not write to the store.
type Renderer interface {
	Name() string
	Render(ctx context.Context, report Report) error
}

type RenderFunc struct {
	Label string
	Func  func(ctx context.Context, report Report) error
}

var _ Renderer = RenderFunc{}

func (r RenderFunc) Name() string {
	return r.Label
}

func (r RenderFunc) Render(ctx context.Context, report Report) error {
	return r.Func(ctx, report)
}
