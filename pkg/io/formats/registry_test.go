package formats

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

type memAdapter struct {
	name    string
	exts    []string
	written map[string]*d.Frame
}

func (m *memAdapter) Name() string         { return m.name }
func (m *memAdapter) Extensions() []string { return m.exts }
func (m *memAdapter) Read(ctx context.Context, path string, o Options) (*d.Frame, error) {
	f, ok := m.written[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return f, nil
}
func (m *memAdapter) Write(ctx context.Context, f *d.Frame, path string, o Options) error {
	m.written[path] = f
	return os.WriteFile(path, nil, 0o644)
}

type fakeStager struct{ down, up []string }

func (s *fakeStager) Download(ctx context.Context, uri, local string) error {
	s.down = append(s.down, uri)
	return nil
}
func (s *fakeStager) Upload(ctx context.Context, local, uri string) error {
	s.up = append(s.up, uri)
	return nil
}

func TestExt(t *testing.T) {
	cases := map[string]string{
		"data/x.CSV":           ".csv",
		"x.csv.gz":             ".csv",
		"s3://b/k/out.parquet": ".parquet",
		`C:\data\x.json`:       ".json",
		"noext":                "",
	}
	for in, want := range cases {
		if got := Ext(in); got != want {
			t.Errorf("Ext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	csv := &memAdapter{name: "csv", exts: []string{".csv"}, written: map[string]*d.Frame{}}
	db := &memAdapter{name: "pg", written: map[string]*d.Frame{}}
	r := NewRegistry().Register(csv).Register(db).RegisterScheme("postgres", "pg")

	if a, err := r.Resolve("x.csv.gz", Options{}); err != nil || a.Name() != "csv" {
		t.Fatalf("suffix: %v %v", a, err)
	}
	if a, err := r.Resolve("x.dat", Options{Encoding: "CSV"}); err != nil || a.Name() != "csv" {
		t.Fatalf("encoding: %v %v", a, err)
	}
	if a, err := r.Resolve("postgres://h/db", Options{}); err != nil || a.Name() != "pg" {
		t.Fatalf("scheme: %v %v", a, err)
	}
	_, err := r.Resolve("x.xml", Options{})
	var fe *etlerr.FormatError
	if !errors.As(err, &fe) || !errors.Is(err, etlerr.ErrUnsupportedFormat) || fe.Encoding != "xml" {
		t.Fatalf("unknown suffix: %v", err)
	}
	if _, err := r.Resolve("x.csv", Options{Encoding: "avro"}); !errors.Is(err, etlerr.ErrUnsupportedFormat) {
		t.Fatalf("unknown encoding: %v", err)
	}
}

func TestWriteCreatesParentsAndWrapsErrors(t *testing.T) {
	m := &memAdapter{name: "csv", exts: []string{".csv"}, written: map[string]*d.Frame{}}
	r := NewRegistry().Register(m)
	f := d.NewFrame(d.NewSchema(d.Col("a", d.KindInt)))
	p := filepath.Join(t.TempDir(), "a", "b", "out.csv")
	if err := r.Write(context.Background(), f, p); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Dir(p)); err != nil {
		t.Fatalf("parent not created: %v", err)
	}
	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	var fe *etlerr.FormatError
	if !errors.As(err, &fe) || fe.Op != "read" || fe.Encoding != "csv" || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read error: %#v", err)
	}
}

func TestStagedWrite(t *testing.T) {
	m := &memAdapter{name: "csv", exts: []string{".csv"}, written: map[string]*d.Frame{}}
	st := &fakeStager{}
	r := NewRegistry().Register(m).RegisterStager("s3", st)
	f := d.NewFrame(d.NewSchema(d.Col("a", d.KindInt)))
	if err := r.Write(context.Background(), f, "s3://bucket/out/x.csv"); err != nil {
		t.Fatal(err)
	}
	if len(st.up) != 1 || st.up[0] != "s3://bucket/out/x.csv" {
		t.Fatalf("uploads: %v", st.up)
	}
	if len(m.written) != 1 {
		t.Fatalf("adapter writes: %d", len(m.written))
	}
}
