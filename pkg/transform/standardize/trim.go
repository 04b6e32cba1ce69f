package standardize

import (
	"context"
	"strings"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	return mapText(f, t.Column, strings.TrimSpace)
}
