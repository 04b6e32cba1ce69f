package standardize

import (
	"context"
	"regexp"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

type RegexReplace struct {
	Column  string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

func (t *RegexReplace) Name() string { return "regex_replace" }

func (t *RegexReplace) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	if t.re == nil {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return nil, &etlerr.ConfigurationError{Key: "pattern", Value: t.Pattern, Reason: "invalid regular expression", Err: err}
		}
		t.re = re
	}
	return mapText(f, t.Column, func(v string) string { return t.re.ReplaceAllString(v, t.Replace) })
}
