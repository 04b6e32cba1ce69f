package standardize

import (
	"context"
	"strings"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

type Lower struct{ Column string }

func (t *Lower) Name() string { return "lower" }

func (t *Lower) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	return mapText(f, t.Column, strings.ToLower)
}

type Upper struct{ Column string }

func (t *Upper) Name() string { return "upper" }

func (t *Upper) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	return mapText(f, t.Column, strings.ToUpper)
}
