package driver

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"tuff/internal/ast"
	"tuff/internal/astjson"
	"tuff/internal/borrow"
	"tuff/internal/diag"
	"tuff/internal/observ"
	"tuff/internal/project"
	"tuff/internal/sema"
	"tuff/internal/source"
	"tuff/internal/symbols"
	"tuff/internal/trace"
)

// Options configures CheckUnits.
type Options struct {
	StrictSafety bool
	// Jobs limits parallel units; <= 0 means GOMAXPROCS.
	Jobs int
	// Cache is consulted before and filled after each unit; nil disables it.
	Cache    *DiskCache
	Progress ProgressSink
	// Timer receives per-stage totals; nil skips timing.
	Timer   *observ.Timer
	BaseDir string
}

// UnitResult is the outcome of one unit. Bag holds at most one diagnostic:
// the first failure of the unit.
type UnitResult struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Cached  bool
	Elapsed time.Duration
}

// Failed reports whether the unit was rejected.
func (r *UnitResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// Diagnostic returns the unit's verdict, nil when accepted.
func (r *UnitResult) Diagnostic() *diag.Diagnostic {
	if r.Bag == nil || r.Bag.Len() == 0 {
		return nil
	}
	return r.Bag.Items()[0]
}

// CheckUnits checks every unit in paths. Units run in parallel, bounded by
// opts.Jobs; results come back in path order. The error is non-nil only when
// ctx is cancelled; unit failures are reported through the results.
func CheckUnits(ctx context.Context, paths []string, opts Options) (*source.FileSet, []UnitResult, error) {
	fileSet := source.NewFileSet()
	if opts.BaseDir != "" {
		fileSet.SetBaseDir(opts.BaseDir)
	}
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	// Загружаем последовательно: FileID идут в порядке путей, и Bag.Sort
	// выдаёт диагностики в том же порядке.
	loadStart := time.Now()
	ids := make([]source.FileID, len(sorted))
	loadErrs := make([]error, len(sorted))
	for i, path := range sorted {
		emit(opts.Progress, Event{Unit: path, Stage: StageLoad, Status: StatusQueued})
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrs[i] = err
			id = fileSet.AddVirtual(path, nil)
		}
		ids[i] = id
	}
	opts.Timer.Record(string(StageLoad), time.Since(loadStart))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Интернер общий: он потокобезопасен, а арены у каждого юнита свои.
	strs := source.NewInterner()
	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]UnitResult, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(sorted)))
	for i := range sorted {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = checkUnit(gctx, fileSet, strs, sorted[i], ids[i], loadErrs[i], opts)
			return nil
		})
	}
	err := g.Wait()

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	span.WithExtra("units", strconv.Itoa(len(sorted))).
		WithExtra("failed", strconv.Itoa(failed)).
		End("")
	return fileSet, results, err
}

func checkUnit(ctx context.Context, fileSet *source.FileSet, strs *source.Interner, path string, id source.FileID, loadErr error, opts Options) UnitResult {
	started := time.Now()
	file := fileSet.Get(id)
	res := UnitResult{Path: path, FileID: id, Bag: diag.NewBag(0)}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit "+res.Path, trace.CurrentSpan(ctx).SpanID)

	var d *diag.Diagnostic
	switch {
	case loadErr != nil:
		d = diag.Errorf(diag.IOError, source.Pos{File: id, Line: 1, Col: 1}, "failed to load unit: %v", loadErr)
	default:
		var cached bool
		d, cached = lookupVerdict(fileSet, file, opts, tracer, span.ID())
		if cached {
			res.Cached = true
			break
		}
		var origin string
		d, origin = runPasses(fileSet, strs, path, file, opts, tracer, span.ID())
		storeVerdict(file, d, origin, opts, tracer, span.ID())
	}

	res.Bag.Add(d)
	res.Elapsed = time.Since(started)

	evt := Event{Unit: res.Path, Stage: StageBorrow, Status: StatusDone, Elapsed: res.Elapsed}
	if res.Cached {
		evt.Stage = StageCache
	}
	verdict := "ok"
	if d != nil {
		evt.Status = StatusError
		evt.Err = d
		verdict = d.Code.ID()
	}
	emit(opts.Progress, evt)

	detail := ""
	if res.Cached {
		detail = "cached"
	}
	span.WithExtra("verdict", verdict).End(detail)
	return res
}

// runPasses decodes the unit and runs the checkers in pipeline order. It
// returns the first failure and the origin program recorded in the tree.
func runPasses(fileSet *source.FileSet, strs *source.Interner, path string, file *source.File, opts Options, tracer trace.Tracer, parent uint64) (*diag.Diagnostic, string) {
	stage := func(s Stage, fn func()) {
		emit(opts.Progress, Event{Unit: path, Stage: s, Status: StatusWorking})
		start := time.Now()
		fn()
		opts.Timer.Record(string(s), time.Since(start))
	}

	var (
		b       = ast.NewBuilder(ast.Hints{}, strs)
		astFile ast.FileID
		tables  *symbols.Table
		d       *diag.Diagnostic
		origin  string
	)
	stage(StageDecode, func() {
		astFile, d = astjson.Decode(b, file.ID, file.Content)
	})
	if d != nil {
		return d, ""
	}
	if f := b.Files.Get(astFile); f != nil && f.Origin != source.NoStringID {
		origin = b.Name(f.Origin)
		fileSet.SetOrigin(file.ID, origin)
	}

	stage(StageTables, func() {
		tables = symbols.Build(b, astFile)
	})
	stage(StageSema, func() {
		d = sema.Check(b, astFile, tables, sema.Options{
			StrictSafety: opts.StrictSafety,
			Tracer:       tracer,
			ParentSpan:   parent,
		})
	})
	if d != nil {
		return d, origin
	}
	stage(StageBorrow, func() {
		d = borrow.Check(b, astFile, tables, borrow.Options{Tracer: tracer, ParentSpan: parent})
	})
	return d, origin
}

func lookupVerdict(fileSet *source.FileSet, file *source.File, opts Options, tracer trace.Tracer, parent uint64) (*diag.Diagnostic, bool) {
	if opts.Cache == nil {
		return nil, false
	}
	start := time.Now()
	defer func() { opts.Timer.Record(string(StageCache), time.Since(start)) }()

	var v Verdict
	ok, err := opts.Cache.Get(CacheKey(project.Digest(file.Hash), opts.StrictSafety), &v)
	if err != nil {
		trace.Point(tracer, trace.ScopeUnit, "cache error", err.Error(), parent)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	d, ok := v.Diagnostic(file.ID)
	if !ok {
		trace.Point(tracer, trace.ScopeUnit, "cache stale", fmt.Sprintf("unknown code %s", v.Code), parent)
		return nil, false
	}
	if v.Origin != "" {
		fileSet.SetOrigin(file.ID, v.Origin)
	}
	trace.Point(tracer, trace.ScopeUnit, "cache hit", file.Path, parent)
	return d, true
}

func storeVerdict(file *source.File, d *diag.Diagnostic, origin string, opts Options, tracer trace.Tracer, parent uint64) {
	if opts.Cache == nil {
		return
	}
	key := CacheKey(project.Digest(file.Hash), opts.StrictSafety)
	if err := opts.Cache.Put(key, newVerdict(d, origin, opts.StrictSafety)); err != nil {
		trace.Point(tracer, trace.ScopeUnit, "cache error", err.Error(), parent)
	}
}

// Collect merges the unit verdicts into one sorted bag holding at most limit
// diagnostics (limit <= 0 means all).
func Collect(results []UnitResult, limit int) *diag.Bag {
	bag := diag.NewBag(limit)
	for i := range results {
		if results[i].Bag == nil {
			continue
		}
		for _, d := range results[i].Bag.Items() {
			bag.Add(d)
		}
	}
	bag.Sort()
	return bag
}
