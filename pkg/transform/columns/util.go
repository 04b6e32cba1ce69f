package columns

import (
	"sort"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func absent(f *d.Frame, names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := f.ColumnByName(n); !ok {
			out = append(out, n)
		}
	}
	return out
}
