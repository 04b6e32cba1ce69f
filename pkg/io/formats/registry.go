package formats

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Stager moves objects between a remote scheme and local files.
type Stager interface {
	Download(ctx context.Context, uri, local string) error
	Upload(ctx context.Context, local, uri string) error
}

// Registry maps encodings, suffixes and URL schemes onto adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	exts     map[string]string
	schemes  map[string]string // scheme -> adapter that reads the URL itself
	stagers  map[string]Stager
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: map[string]Adapter{},
		exts:     map[string]string{},
		schemes:  map[string]string{},
		stagers:  map[string]Stager{},
	}
}

// Register adds a or replaces the adapter of the same name.
func (r *Registry) Register(a Adapter) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
	for _, e := range a.Extensions() {
		r.exts[strings.ToLower(e)] = a.Name()
	}
	return r
}

// RegisterScheme routes URLs with the given scheme to a named adapter that
// understands them (database DSNs).
func (r *Registry) RegisterScheme(scheme, adapter string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[scheme] = adapter
	return r
}

// RegisterStager routes URLs with the given scheme through a local temp file.
func (r *Registry) RegisterStager(scheme string, s Stager) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stagers[scheme] = s
	return r
}

// Names lists the registered adapters.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve picks the adapter for target: the explicit encoding first, then a
// URL scheme, then the file suffix with any .gz stripped.
func (r *Registry) Resolve(target string, o Options) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if o.Encoding != "" {
		name := strings.ToLower(o.Encoding)
		if a, ok := r.adapters[name]; ok {
			return a, nil
		}
		if n, ok := r.exts["."+name]; ok {
			return r.adapters[n], nil
		}
		return nil, &etlerr.FormatError{Op: "resolve", Path: target, Encoding: o.Encoding, Err: etlerr.ErrUnsupportedFormat}
	}
	if s := scheme(target); s != "" {
		if n, ok := r.schemes[s]; ok {
			return r.adapters[n], nil
		}
	}
	ext := Ext(target)
	if n, ok := r.exts[ext]; ok {
		return r.adapters[n], nil
	}
	return nil, &etlerr.FormatError{Op: "resolve", Path: target, Encoding: strings.TrimPrefix(ext, "."), Err: etlerr.ErrUnsupportedFormat}
}

// Read loads src through the resolved adapter.
func (r *Registry) Read(ctx context.Context, src string, opts ...Option) (*d.Frame, error) {
	o := Options{}.Apply(opts...)
	if st, key := r.stager(src); st != nil {
		dir, err := os.MkdirTemp("", "etl-stage-*")
		if err != nil {
			return nil, &etlerr.FormatError{Op: "read", Path: src, Err: err}
		}
		defer os.RemoveAll(dir)
		local := filepath.Join(dir, path.Base(key))
		if err := st.Download(ctx, src, local); err != nil {
			return nil, &etlerr.FormatError{Op: "read", Path: src, Err: err}
		}
		return r.read(ctx, local, src, o)
	}
	return r.read(ctx, src, src, o)
}

func (r *Registry) read(ctx context.Context, local, display string, o Options) (*d.Frame, error) {
	a, err := r.Resolve(local, o)
	if err != nil {
		return nil, err
	}
	f, err := a.Read(ctx, local, o)
	if err != nil {
		return nil, wrap("read", display, a.Name(), err)
	}
	if err := f.Check(); err != nil {
		return nil, wrap("read", display, a.Name(), err)
	}
	return f, nil
}

// Write stores f at dst, creating parent directories for local paths.
func (r *Registry) Write(ctx context.Context, f *d.Frame, dst string, opts ...Option) error {
	o := Options{}.Apply(opts...)
	if st, key := r.stager(dst); st != nil {
		dir, err := os.MkdirTemp("", "etl-stage-*")
		if err != nil {
			return &etlerr.FormatError{Op: "write", Path: dst, Err: err}
		}
		defer os.RemoveAll(dir)
		local := filepath.Join(dir, path.Base(key))
		if err := r.write(ctx, f, local, dst, o); err != nil {
			return err
		}
		if err := st.Upload(ctx, local, dst); err != nil {
			return &etlerr.FormatError{Op: "write", Path: dst, Err: err}
		}
		return nil
	}
	return r.write(ctx, f, dst, dst, o)
}

func (r *Registry) write(ctx context.Context, f *d.Frame, local, display string, o Options) error {
	a, err := r.Resolve(local, o)
	if err != nil {
		return err
	}
	if scheme(local) == "" && local != "-" {
		if dir := filepath.Dir(local); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &etlerr.FormatError{Op: "write", Path: display, Encoding: a.Name(), Err: err}
			}
		}
	}
	if err := a.Write(ctx, f, local, o); err != nil {
		return wrap("write", display, a.Name(), err)
	}
	return nil
}

func (r *Registry) stager(target string) (Stager, string) {
	s := scheme(target)
	if s == "" {
		return nil, ""
	}
	r.mu.RLock()
	st, ok := r.stagers[s]
	r.mu.RUnlock()
	if !ok {
		return nil, ""
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, ""
	}
	return st, u.Path
}

// wrap turns adapter failures into FormatErrors unless they already carry a
// more specific type.
func wrap(op, target, enc string, err error) error {
	var fe *etlerr.FormatError
	if errors.As(err, &fe) || etlerr.IsConversion(err) || etlerr.IsConfiguration(err) {
		return err
	}
	return &etlerr.FormatError{Op: op, Path: target, Encoding: enc, Err: err}
}

// Ext returns the lower-case suffix of p, looking past a trailing .gz.
func Ext(p string) string {
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		p = u.Path
	}
	p = strings.ToLower(p)
	p = strings.TrimSuffix(p, ".gz")
	return filepath.Ext(p)
}

// scheme returns the URL scheme of target, ignoring Windows drive letters.
func scheme(target string) string {
	i := strings.Index(target, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(target[:i])
}

// Describe renders a short label for logs.
func Describe(target string, o Options) string {
	if o.Encoding != "" {
		return fmt.Sprintf("%s (%s)", target, o.Encoding)
	}
	return target
}
