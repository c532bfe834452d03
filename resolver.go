package ttree

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/go-faster/ttree/formula"
	"github.com/go-faster/ttree/interp"
)

// Resolver decodes columns of Source on demand.
//
// Each branch is decoded at most once, so Resolver should be created
// per request. Safe for concurrent use.
type Resolver struct {
	src Source
	lg  *zap.Logger

	mux   sync.Mutex
	cells map[string]*cell

	columns atomic.Int64
	bytes   atomic.Int64
}

var _ formula.Resolver = (*Resolver)(nil)

type cell struct {
	once sync.Once
	arr  interp.Array
	err  error
}

// NewResolver initializes Resolver of src. Logger is optional.
func NewResolver(src Source, lg *zap.Logger) *Resolver {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Resolver{
		src:   src,
		lg:    lg,
		cells: map[string]*cell{},
	}
}

// Entries returns count of entries of source.
func (r *Resolver) Entries() int { return r.src.Entries() }

// Decoded returns count of decoded branches and their total size in bytes.
func (r *Resolver) Decoded() (columns, bytes int64) {
	return r.columns.Load(), r.bytes.Load()
}

func (r *Resolver) cell(name string) *cell {
	r.mux.Lock()
	defer r.mux.Unlock()

	c, ok := r.cells[name]
	if !ok {
		c = &cell{}
		r.cells[name] = c
	}
	return c
}

// Resolve returns decoded branch by name.
//
// Member and counter references of branch are checked before decoding,
// so cyclic references fail with MalformedError instead of waiting on
// each other.
func (r *Resolver) Resolve(ctx context.Context, name string) (interp.Array, error) {
	if _, ok := r.src.Branch(name); !ok {
		return nil, &interp.NotFoundError{Name: name}
	}
	c := r.cell(name)
	c.once.Do(func() {
		if err := checkRefs(r.src, map[string]int{}, name); err != nil {
			c.err = err
			return
		}
		c.arr, c.err = r.decode(ctx, name)
	})
	return c.arr, c.err
}

// ResolvePath returns decoded branch by full path, falling back to
// branch name and path suffix.
func (r *Resolver) ResolvePath(ctx context.Context, path string) (interp.Array, error) {
	name, ok := findPath(r.src, path)
	if !ok {
		return nil, &interp.NotFoundError{Name: path}
	}
	return r.Resolve(ctx, name)
}

// ResolveAll resolves every name, collecting per-name errors.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) (Columns, error) {
	var (
		out  Columns
		errs error
	)
	for _, name := range unique(names) {
		arr, err := r.Resolve(ctx, name)
		if err != nil {
			out.fail(name, err)
			errs = multierr.Append(errs, errors.Wrapf(err, "%q", name))
			continue
		}
		out.Values = append(out.Values, Value{Name: name, Data: arr})
	}
	return out, errs
}

func (r *Resolver) decode(ctx context.Context, name string) (interp.Array, error) {
	b, _ := r.src.Branch(name)
	in, err := r.src.Input(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "input")
	}
	if len(b.Members) > 0 {
		in.Members = append([]interp.Field(nil), in.Members...)
		for _, m := range b.Members {
			arr, err := r.Resolve(ctx, m)
			if err != nil {
				return nil, errors.Wrapf(err, "member %q", m)
			}
			in.Members = append(in.Members, interp.Field{
				Name:  memberName(name, m),
				Array: arr,
			})
		}
	}
	if b.Counter != "" && in.Offsets == nil && in.Counts == nil {
		counts, err := r.counts(ctx, b.Counter)
		if err != nil {
			return nil, errors.Wrapf(err, "counter %q", b.Counter)
		}
		in.Counts = counts
	}

	arr, err := interp.Decode(b.Interpretation, in)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", b.Interpretation)
	}
	r.columns.Inc()
	r.bytes.Add(int64(len(in.Data)))

	if ce := r.lg.Check(zap.DebugLevel, "Decoded"); ce != nil {
		ce.Write(
			zap.String("branch", name),
			zap.Stringer("interpretation", b.Interpretation),
			zap.Stringer("type", arr.Type()),
			zap.Int("entries", arr.Rows()),
			zap.Int("bytes", len(in.Data)),
		)
	}
	return arr, nil
}

func (r *Resolver) counts(ctx context.Context, counter string) ([]int64, error) {
	arr, err := r.Resolve(ctx, counter)
	if err != nil {
		return nil, err
	}
	n, ok := arr.(interp.Numeric)
	if !ok || !n.Kind().IsInteger() {
		return nil, &interp.MalformedError{Msg: "counter of type " + arr.Type().String()}
	}
	out := make([]int64, n.Rows())
	for i := range out {
		out[i] = n.Int64(i)
	}
	return out, nil
}

// memberName returns name of member branch relative to object branch:
// "Px" for "P3.Px" of "P3".
func memberName(object, member string) string {
	for _, sep := range []string{".", "/"} {
		if strings.HasPrefix(member, object+sep) {
			return member[len(object)+1:]
		}
	}
	return member
}

func unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
