// Package ttree implements reading of ROOT TTree columns and formulas
// over them.
//
// Tree combines Source of decompressed branch data with interpretations
// from package interp and formulas from package formula.
package ttree

import (
	"context"
	"runtime"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-faster/ttree/formula"
	"github.com/go-faster/ttree/internal/arrowconv"
	"github.com/go-faster/ttree/interp"
	"github.com/go-faster/ttree/otelttree"
)

// Options for Tree.
type Options struct {
	Logger *zap.Logger
	// Jobs is maximum count of columns decoded in parallel by Arrays,
	// defaults to GOMAXPROCS.
	Jobs int

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
}

// Tree reads columns of single TTree. Safe for concurrent use.
type Tree struct {
	src   Source
	names []string
	lg    *zap.Logger
	jobs  int

	tracer  trace.Tracer
	columns metric.Int64Counter
	bytes   metric.Int64Counter
	errors  metric.Int64Counter
}

// New initializes Tree of src.
func New(src Source, opt Options) (*Tree, error) {
	opt.setDefaults()
	if err := validate(src); err != nil {
		return nil, errors.Wrap(err, "validate")
	}

	meter := opt.MeterProvider.Meter(otelttree.Name,
		metric.WithInstrumentationVersion(otelttree.SemVersion()),
	)
	t := &Tree{
		src:   src,
		names: src.Names(),
		lg:    opt.Logger,
		jobs:  opt.Jobs,
		tracer: opt.TracerProvider.Tracer(otelttree.Name,
			trace.WithInstrumentationVersion(otelttree.SemVersion()),
		),
	}
	var err error
	if t.columns, err = meter.Int64Counter("ttree.columns.decoded",
		metric.WithDescription("Count of decoded branches"),
	); err != nil {
		return nil, errors.Wrap(err, "columns counter")
	}
	if t.bytes, err = meter.Int64Counter("ttree.bytes.decoded",
		metric.WithDescription("Size of decoded branch data"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, errors.Wrap(err, "bytes counter")
	}
	if t.errors, err = meter.Int64Counter("ttree.errors",
		metric.WithDescription("Count of failed columns"),
	); err != nil {
		return nil, errors.Wrap(err, "errors counter")
	}
	return t, nil
}

// validate checks that member and counter references of branches are
// resolvable and acyclic.
func validate(src Source) error {
	state := map[string]int{}
	for _, name := range src.Names() {
		if err := checkRefs(src, state, name); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns count of entries.
func (t *Tree) Entries() int { return t.src.Entries() }

// Names returns names of branches.
func (t *Tree) Names() []string { return append([]string(nil), t.names...) }

// Branch returns branch by name.
func (t *Tree) Branch(name string) (Branch, bool) { return t.src.Branch(name) }

// Array returns single column or formula result.
//
// Expression that is exact branch name is returned as is, otherwise it
// is parsed as formula.
func (t *Tree) Array(ctx context.Context, expr string, opt ReadOptions) (Value, error) {
	ctx, span := t.tracer.Start(ctx, "Array",
		trace.WithAttributes(
			otelttree.Expression(expr),
			otelttree.Library(opt.Library.String()),
		),
	)
	defer span.End()

	res := NewResolver(t.src, t.lg)
	v, err := t.value(ctx, res, expr, opt)
	t.report(ctx, res)
	if err != nil {
		t.fail(ctx, span, err)
		return Value{}, err
	}
	return v, nil
}

// Arrays returns columns or formula results of every distinct
// expression, decoding them in parallel.
//
// Failure of single expression does not affect others: Columns has every
// successful value and error of each failed one, returned error is
// combination of them.
func (t *Tree) Arrays(ctx context.Context, exprs []string, opt ReadOptions) (Columns, error) {
	exprs = unique(exprs)
	ctx, span := t.tracer.Start(ctx, "Arrays",
		trace.WithAttributes(
			otelttree.Columns(len(exprs)),
			otelttree.Entries(t.src.Entries()),
			otelttree.Library(opt.Library.String()),
		),
	)
	defer span.End()

	var (
		start   = time.Now()
		res     = NewResolver(t.src, t.lg)
		results = make([]Value, len(exprs))
		errs    = make([]error, len(exprs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.jobs)
	for i, expr := range exprs {
		g.Go(func() error {
			ctx, span := t.tracer.Start(gctx, "Column",
				trace.WithAttributes(otelttree.Expression(expr)),
			)
			defer span.End()

			v, err := t.value(ctx, res, expr, opt)
			if err != nil {
				t.fail(ctx, span, err)
				errs[i] = err
				return nil
			}
			results[i] = v
			return nil
		})
	}
	_ = g.Wait() // columns do not fail group
	t.report(ctx, res)

	var (
		out Columns
		err error
	)
	for i, expr := range exprs {
		if errs[i] != nil {
			out.fail(expr, errs[i])
			err = multierr.Append(err, errors.Wrapf(errs[i], "%q", expr))
			continue
		}
		out.Values = append(out.Values, results[i])
	}
	if err != nil {
		span.SetStatus(codes.Error, "columns failed")
	}
	if ce := t.lg.Check(zap.DebugLevel, "Arrays"); ce != nil {
		columns, bytes := res.Decoded()
		ce.Write(
			zap.Int("requested", len(exprs)),
			zap.Int("failed", len(out.Errors)),
			zap.Int64("decoded", columns),
			zap.Int64("bytes", bytes),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return out, err
}

func (t *Tree) value(ctx context.Context, res *Resolver, expr string, opt ReadOptions) (Value, error) {
	arr, err := t.eval(ctx, res, expr)
	if err != nil {
		return Value{}, err
	}
	v := Value{Name: expr, Data: arr}
	if opt.Library == LibraryArrow {
		a, err := arrowconv.Convert(opt.allocator(), arr)
		if err != nil {
			return Value{}, errors.Wrap(err, "arrow")
		}
		v.Arrow = a
	}
	return v, nil
}

func (t *Tree) eval(ctx context.Context, res *Resolver, expr string) (interp.Array, error) {
	if b, ok := t.src.Branch(expr); ok {
		trace.SpanFromContext(ctx).SetAttributes(
			otelttree.Branch(b.Path),
			otelttree.Interpretation(b.Interpretation.String()),
		)
		return res.Resolve(ctx, expr)
	}
	e, err := formula.Parse(expr, t.names)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	return e.Eval(ctx, res)
}

func (t *Tree) report(ctx context.Context, res *Resolver) {
	columns, bytes := res.Decoded()
	t.columns.Add(ctx, columns)
	t.bytes.Add(ctx, bytes)
}

func (t *Tree) fail(ctx context.Context, span trace.Span, err error) {
	kind := errorKind(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(otelttree.ErrorKind(kind))
	t.errors.Add(ctx, 1, metric.WithAttributes(otelttree.ErrorKind(kind)))

	if ce := t.lg.Check(zap.DebugLevel, "Column failed"); ce != nil {
		ce.Write(zap.String("kind", kind), zap.Error(err))
	}
}

func errorKind(err error) string {
	switch {
	case interp.IsMalformed(err):
		return "malformed"
	case interp.IsNotFound(err):
		return "not_found"
	case interp.IsUnsupported(err):
		return "unsupported"
	default:
		return "other"
	}
}
