package dataset

import (
	"context"
	"fmt"
)

// Transform is a pure operation over a Frame. Implementations must leave the
// input untouched and return a new frame (or the input itself when nothing
// changes).
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc struct {
	Label string
	Fn    func(ctx context.Context, f *Frame) (*Frame, error)
}

func (t TransformFunc) Name() string { return t.Label }
func (t TransformFunc) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	return t.Fn(ctx, f)
}

// Chain composes a sequence of Transforms outside of a pipeline run.
type Chain struct {
	steps []Transform
}

func NewChain() *Chain { return &Chain{} }

func (c *Chain) Add(t Transform) *Chain {
	c.steps = append(c.steps, t)
	return c
}

func (c *Chain) Steps() []Transform { return c.steps }

func (c *Chain) Run(ctx context.Context, f *Frame) (*Frame, error) {
	var err error
	cur := f
	for _, t := range c.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	return cur, nil
}
