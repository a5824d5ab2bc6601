// Package benchsuite runs the scenarios that compare scoped vectors with
// heap-backed slices.
package benchsuite

import (
	"context"
	"flag"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pavanmanishd/stackvec"
	"github.com/pavanmanishd/stackvec/internal/config"
)

// ErrUnknownScenario is returned when a requested scenario does not exist.
var ErrUnknownScenario = errors.New("unknown scenario")

// Result is the outcome of one scenario at one size.
type Result struct {
	Scenario    string  `json:"scenario" yaml:"scenario"`
	Size        int     `json:"size" yaml:"size"`
	N           int     `json:"n" yaml:"n"`
	NsPerOp     float64 `json:"ns_per_op" yaml:"ns_per_op"`
	BytesPerOp  int64   `json:"bytes_per_op" yaml:"bytes_per_op"`
	AllocsPerOp int64   `json:"allocs_per_op" yaml:"allocs_per_op"`
	// Relative is NsPerOp divided by the slice baseline's NsPerOp at the
	// same size; zero when there is no baseline in the run.
	Relative float64 `json:"relative,omitempty" yaml:"relative,omitempty"`
}

// env is what a scenario body gets besides the *testing.B.
type env struct {
	ctx   context.Context
	opts  *config.Options
	log   *zap.Logger
	size  int
	input Input
}

type scenario struct {
	name     string
	baseline string // slice scenario this one is compared with
	sized    bool
	run      func(b *testing.B, e *env) error
}

var scenarios = []scenario{
	{name: "create/slice-reserve", sized: true, run: createSliceReserve},
	{name: "create/slice-initial", sized: true, run: createSliceInitial},
	{name: "create/vector-reserve", baseline: "create/slice-reserve", sized: true, run: createVectorReserve},
	{name: "create/vector-initial", baseline: "create/slice-initial", sized: true, run: createVectorInitial},
	{name: "compute8/slice", run: compute8Slice},
	{name: "compute8/vector", baseline: "compute8/slice", run: compute8Vector},
	{name: "pooled/vector", sized: true, run: pooledVector},
}

// Scenarios returns the names of all scenarios in run order.
func Scenarios() []string {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.name
	}
	return names
}

// Run executes the selected scenarios and returns their results in run
// order. Cancelling ctx stops the run before the next scenario starts.
func Run(ctx context.Context, opts *config.Options, log *zap.Logger) ([]Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	selected, err := selectScenarios(opts.Scenarios)
	if err != nil {
		return nil, err
	}
	if err := setBenchTime(opts.BenchTime); err != nil {
		return nil, err
	}

	e := &env{ctx: ctx, opts: opts, log: log, input: NewInput(opts.Seed)}
	var results []Result
	for _, sc := range selected {
		sizes := []int{0}
		if sc.sized {
			sizes = opts.Sizes
		}
		for _, size := range sizes {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			e.size = size
			log.Debug("running scenario", zap.String("scenario", sc.name), zap.Int("size", size))

			var runErr error
			r := testing.Benchmark(func(b *testing.B) {
				defer func() {
					if p := recover(); p != nil {
						runErr = panicError(p, "scenario "+sc.name)
						b.FailNow()
					}
				}()
				b.ReportAllocs()
				if err := sc.run(b, e); err != nil {
					runErr = errors.Wrapf(err, "scenario %s at size %d", sc.name, size)
					b.FailNow()
				}
			})
			if runErr != nil {
				return results, runErr
			}
			if r.N == 0 {
				return results, errors.Errorf("scenario %s at size %d did not run", sc.name, size)
			}

			res := Result{
				Scenario:    sc.name,
				Size:        size,
				N:           r.N,
				NsPerOp:     float64(r.T.Nanoseconds()) / float64(r.N),
				BytesPerOp:  r.AllocedBytesPerOp(),
				AllocsPerOp: r.AllocsPerOp(),
			}
			results = append(results, res)
			log.Info("scenario finished",
				zap.String("scenario", res.Scenario),
				zap.Int("size", res.Size),
				zap.Float64("ns_per_op", res.NsPerOp),
				zap.Int64("allocs_per_op", res.AllocsPerOp))
		}
	}
	relate(results)
	return results, nil
}

// panicError turns a recovered panic into an error, keeping error values
// such as stackvec.ErrFrameExhausted matchable with errors.Is.
func panicError(p any, where string) error {
	if err, ok := p.(error); ok {
		return errors.Wrapf(err, "%s panicked", where)
	}
	return errors.Errorf("%s panicked: %v", where, p)
}

func selectScenarios(names []string) ([]scenario, error) {
	if len(names) == 0 {
		return scenarios, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if !known(n) {
			return nil, errors.Wrapf(ErrUnknownScenario, "%q (available: %s)", n, strings.Join(Scenarios(), ", "))
		}
		want[n] = true
	}
	var out []scenario
	for _, sc := range scenarios {
		if want[sc.name] {
			out = append(out, sc)
		}
	}
	return out, nil
}

func known(name string) bool {
	for _, sc := range scenarios {
		if sc.name == name {
			return true
		}
	}
	return false
}

// relate fills Relative for every result whose baseline ran at the same size.
func relate(results []Result) {
	type key struct {
		name string
		size int
	}
	base := make(map[key]float64, len(results))
	for _, r := range results {
		base[key{r.Scenario, r.Size}] = r.NsPerOp
	}
	for i := range results {
		sc := lookup(results[i].Scenario)
		if sc.baseline == "" {
			continue
		}
		if ns, ok := base[key{sc.baseline, results[i].Size}]; ok && ns > 0 {
			results[i].Relative = results[i].NsPerOp / ns
		}
	}
}

func lookup(name string) scenario {
	for _, sc := range scenarios {
		if sc.name == name {
			return sc
		}
	}
	return scenario{}
}

var benchTimeMu sync.Mutex

// setBenchTime points testing.Benchmark at the requested run time. The
// testing flags have to be registered first outside of `go test`.
func setBenchTime(v string) error {
	benchTimeMu.Lock()
	defer benchTimeMu.Unlock()
	testing.Init()
	if err := flag.Set("test.benchtime", v); err != nil {
		return errors.Wrapf(err, "set bench time %q", v)
	}
	return nil
}

func newFrame(e *env) *stackvec.Frame {
	return stackvec.NewFrame(e.opts.ChunkSize,
		stackvec.WithMaxBytes(e.opts.MaxBytes),
		stackvec.WithFrameLogger(e.log))
}

var sink int

func createSliceReserve(b *testing.B, e *env) error {
	n := e.size
	for i := 0; i < b.N; i++ {
		v := make([]int, 0, n)
		sink += cap(v)
	}
	return nil
}

func createSliceInitial(b *testing.B, e *env) error {
	n := e.size
	for i := 0; i < b.N; i++ {
		v := make([]int, n)
		sink += len(v)
	}
	return nil
}

func createVectorReserve(b *testing.B, e *env) error {
	f := newFrame(e)
	defer f.Release()
	n := e.size
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := f.Enter()
		var v stackvec.Vector[int]
		v.Init(s, n)
		sink += v.Cap()
		s.Exit()
	}
	return nil
}

func createVectorInitial(b *testing.B, e *env) error {
	f := newFrame(e)
	defer f.Release()
	n := e.size
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := f.Enter()
		var v stackvec.Vector[int]
		if err := v.InitSized(s, n, n); err != nil {
			s.Exit()
			return err
		}
		sink += v.Len()
		s.Exit()
	}
	return nil
}

func compute8Slice(b *testing.B, e *env) error {
	in := e.input
	for i := 0; i < b.N; i++ {
		v := Compute8Slice(make([]int, 0, 8), &in)
		sink += v[7]
	}
	return nil
}

func compute8Vector(b *testing.B, e *env) error {
	f := newFrame(e)
	defer f.Release()
	in := e.input
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := f.Enter()
		var v stackvec.Vector[int]
		v.Init(s, 8)
		Compute8Vector(&v, &in)
		sink += *v.Back()
		s.Exit()
	}
	return nil
}

// pooledVector splits b.N tasks across workers, each task borrowing a frame
// from a shared pool for one vector of e.size elements.
func pooledVector(b *testing.B, e *env) error {
	pool := stackvec.NewPool(stackvec.PoolConfig{
		ChunkSize: e.opts.ChunkSize,
		MaxBytes:  e.opts.MaxBytes,
		MaxIdle:   e.opts.Workers,
		Logger:    e.log,
	})
	n := e.size
	workers := e.opts.Workers
	b.ResetTimer()

	g, ctx := errgroup.WithContext(e.ctx)
	for w := 0; w < workers; w++ {
		tasks := b.N / workers
		if w < b.N%workers {
			tasks++
		}
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = panicError(p, "pooled worker")
				}
			}()
			for t := 0; t < tasks; t++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				err := pool.Do(func(f *stackvec.Frame) error {
					s := f.Enter()
					defer s.Exit()
					var v stackvec.Vector[int]
					v.Init(s, n)
					for i := 0; i < n; i++ {
						v.PushBack(i)
					}
					if *v.Back() != n-1 {
						return errors.Errorf("pooled vector: back is %d, want %d", *v.Back(), n-1)
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	m := pool.Metrics()
	e.log.Debug("pool drained", zap.Uint64("created", m.Created), zap.Uint64("discarded", m.Discarded))
	return nil
}
