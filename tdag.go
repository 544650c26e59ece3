package osformula

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mateothegreat/osformula/config"
	"github.com/mateothegreat/osformula/dag"
	"github.com/mateothegreat/osformula/scenario"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Check is a shared group of assertions run once per scenario and platform.
type Check func(ctx *TestContext) error

// Suite runs every scenario of a table through a graph of checks. An edge
// from one check to another makes the second wait for the first.
type Suite struct {
	graph         *dag.Graph[Check]
	defaults      func() config.Config
	logger        *zap.Logger
	concurrency   int
	SetupFns      []func(ctx *TestContext)
	TearDownFns   []func(ctx *TestContext)
	BeforeEachFns []func(ctx *TestContext)
	AfterEachFns  []func(ctx *TestContext)
}

type Option func(*Suite)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Suite) {
		s.logger = logger
	}
}

// WithDefaults replaces the baseline the scenario overrides are merged onto.
func WithDefaults(fn func() config.Config) Option {
	return func(s *Suite) {
		s.defaults = fn
	}
}

// WithConcurrency bounds how many scenario runs Run executes at once.
func WithConcurrency(n int) Option {
	return func(s *Suite) {
		s.concurrency = n
	}
}

func NewSuite(opts ...Option) *Suite {
	s := &Suite{
		graph:         dag.New[Check](),
		defaults:      config.Defaults,
		logger:        zap.NewNop(),
		concurrency:   4,
		SetupFns:      []func(ctx *TestContext){},
		TearDownFns:   []func(ctx *TestContext){},
		BeforeEachFns: []func(ctx *TestContext){},
		AfterEachFns:  []func(ctx *TestContext){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Suite) AddCheck(id string, fn Check) error {
	_, err := s.graph.AddNode(id, fn)
	return err
}

// AddEdge makes every check in "to" wait for the check "from".
func (s *Suite) AddEdge(from string, to ...string) error {
	_, err := s.graph.AddEdge(from, to...)
	return err
}

// Setup registers a function run before the checks of every scenario run.
func (s *Suite) Setup(fn func(ctx *TestContext)) {
	s.SetupFns = append(s.SetupFns, fn)
}

// TearDown registers a function run after the checks of every scenario run.
func (s *Suite) TearDown(fn func(ctx *TestContext)) {
	s.TearDownFns = append(s.TearDownFns, fn)
}

func (s *Suite) BeforeEach(fn func(ctx *TestContext)) {
	s.BeforeEachFns = append(s.BeforeEachFns, fn)
}

func (s *Suite) AfterEach(fn func(ctx *TestContext)) {
	s.AfterEachFns = append(s.AfterEachFns, fn)
}

// Checks returns the registered check IDs in registration order.
func (s *Suite) Checks() []string {
	ids := make([]string, len(s.graph.Nodes))
	for i, node := range s.graph.Nodes {
		ids[i] = node.ID
	}
	return ids
}

func (s *Suite) WriteD2(w io.Writer) error {
	return s.graph.WriteD2(w)
}

func (s *Suite) ToD2(path string) error {
	return s.graph.ToD2(path)
}

// Prepare merges the override of a scenario onto the suite defaults and
// returns the context its checks run with.
func (s *Suite) Prepare(ctx context.Context, name scenario.Name, override config.Override, platform Platform) (*TestContext, error) {
	merged, err := config.Merge(s.defaults(), override)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", name, err)
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", name, err)
	}
	return &TestContext{
		Ctx:      ctx,
		Scenario: name,
		Platform: platform,
		Config:   merged,
		Store:    NewStore(),
		Logger: s.logger.With(
			zap.String("scenario", string(name)),
			zap.String("platform", platform.Name),
		),
	}, nil
}

// RunTests runs every check for every scenario of table on every platform,
// as sub-tests of t named scenario/platform/check. No platforms means every
// supported platform.
//
// Arguments:
//   - t: The testing object.
//   - table: The scenarios to run.
//   - platforms: The platforms to run each scenario for.
func (s *Suite) RunTests(t *testing.T, table *scenario.Table, platforms ...Platform) {
	s.runTests(t, nil, table, platforms)
}

// RunTo runs the given check and the checks it depends on.
//
// Arguments:
//   - t: The testing object.
//   - id: The ID of the check to run up to.
//   - table: The scenarios to run.
//   - platforms: The platforms to run each scenario for.
func (s *Suite) RunTo(t *testing.T, id string, table *scenario.Table, platforms ...Platform) {
	required, err := s.graph.Ancestors(id)
	if err != nil {
		t.Fatalf("Check %s does not exist", id)
		return
	}
	s.runTests(t, required, table, platforms)
}

func (s *Suite) runTests(t *testing.T, include map[string]bool, table *scenario.Table, platforms []Platform) {
	levels, err := s.graph.Levels(include)
	if err != nil {
		t.Fatal(err)
	}
	if len(platforms) == 0 {
		platforms = SupportedPlatforms()
	}

	for _, entry := range table.All() {
		t.Run(string(entry.Name), func(t *testing.T) {
			for _, platform := range platforms {
				t.Run(platform.Name, func(t *testing.T) {
					tc, err := s.Prepare(context.Background(), entry.Name, entry.Override, platform)
					if err != nil {
						t.Fatal(err)
					}
					s.runScenario(tc, levels, func(id string, run func() Result) Result {
						var r Result
						t.Run(id, func(t *testing.T) {
							r = run()
							switch r.Status {
							case StatusFailed:
								t.Error(r.Err)
							case StatusSkipped:
								t.Skip(r.Err.Error())
							}
						})
						return r
					})
				})
			}
		})
	}
}

// Run runs every check for every scenario of table on every platform outside
// of go test. Scenario runs execute concurrently; the report lists results in
// table order. The error is only set when ctx ends before the runs finish.
func (s *Suite) Run(ctx context.Context, table *scenario.Table, platforms ...Platform) (*Report, error) {
	levels, err := s.graph.Levels(nil)
	if err != nil {
		return nil, err
	}
	if len(platforms) == 0 {
		platforms = SupportedPlatforms()
	}

	type job struct {
		entry    scenario.Entry
		platform Platform
	}
	var jobs []job
	for _, entry := range table.All() {
		for _, platform := range platforms {
			jobs = append(jobs, job{entry: entry, platform: platform})
		}
	}

	results := make([][]Result, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		eg.SetLimit(s.concurrency)
	}
	for i, j := range jobs {
		i, j := i, j
		eg.Go(func() error {
			tc, err := s.Prepare(egCtx, j.entry.Name, j.entry.Override, j.platform)
			if err != nil {
				s.logger.Warn("scenario rejected",
					zap.String("scenario", string(j.entry.Name)),
					zap.String("platform", j.platform.Name),
					zap.Error(err))
				results[i] = []Result{{
					Scenario: j.entry.Name,
					Platform: j.platform,
					Check:    PrepareCheck,
					Status:   StatusFailed,
					Err:      err,
				}}
				return nil
			}
			results[i] = s.runScenario(tc, levels, func(_ string, run func() Result) Result {
				return run()
			})
			return nil
		})
	}
	_ = eg.Wait()

	report := &Report{}
	for _, rs := range results {
		report.Results = append(report.Results, rs...)
	}
	return report, ctx.Err()
}

// runScenario runs the levels of checks in order, the checks of one level in
// parallel. wrap runs one check and may report it elsewhere, e.g. as a
// sub-test.
func (s *Suite) runScenario(tc *TestContext, levels [][]*dag.Node[Check], wrap func(id string, run func() Result) Result) []Result {
	var results []Result

	// A failed setup blocks every check of the run.
	blockAll := ""
	if setup := s.runHooks(tc, SetupCheck, s.SetupFns); setup.Status == StatusFailed {
		results = append(results, wrap(SetupCheck, func() Result { return setup }))
		blockAll = SetupCheck
	}

	// Checks that failed, or could not run because a dependency failed.
	blocked := make(map[string]bool)

	for _, level := range levels {
		out := make([]Result, len(level))
		var wg sync.WaitGroup
		for i, node := range level {
			blockedBy := blockAll
			if blockedBy == "" {
				for _, parent := range s.graph.Parents(node.ID) {
					if blocked[parent] {
						blockedBy = parent
						break
					}
				}
			}
			wg.Add(1)
			go func(i int, n *dag.Node[Check], blockedBy string) {
				defer wg.Done()
				out[i] = wrap(n.ID, func() Result {
					return s.runCheck(tc, n, blockedBy)
				})
			}(i, node, blockedBy)
		}
		wg.Wait()

		for _, r := range out {
			if r.Status == StatusFailed || errors.Is(r.Err, ErrDependencyFailed) {
				blocked[r.Check] = true
			}
		}
		results = append(results, out...)
	}

	if teardown := s.runHooks(tc, TearDownCheck, s.TearDownFns); teardown.Status == StatusFailed {
		results = append(results, wrap(TearDownCheck, func() Result { return teardown }))
	}

	tc.Logger.Info("scenario finished",
		zap.Int("passed", countStatus(results, StatusPassed)),
		zap.Int("failed", countStatus(results, StatusFailed)),
		zap.Int("skipped", countStatus(results, StatusSkipped)))
	return results
}

func (s *Suite) runCheck(tc *TestContext, n *dag.Node[Check], blockedBy string) (r Result) {
	start := time.Now()
	r = Result{
		Scenario: tc.Scenario,
		Platform: tc.Platform,
		Check:    n.ID,
	}
	defer func() {
		r.Duration = time.Since(start)
	}()

	if blockedBy != "" {
		r.Status = StatusSkipped
		r.Err = fmt.Errorf("%w: %s", ErrDependencyFailed, blockedBy)
		return r
	}
	if err := tc.Ctx.Err(); err != nil {
		r.Status = StatusFailed
		r.Err = err
		return r
	}

	cc := tc.forCheck(n.ID)
	err := cc.protect(func() error {
		for _, fn := range s.BeforeEachFns {
			fn(cc)
		}
		err := n.Value(cc)
		for _, fn := range s.AfterEachFns {
			fn(cc)
		}
		return err
	})

	switch failures := cc.takeErr(); {
	case failures != nil:
		r.Status = StatusFailed
		r.Err = failures
		if err != nil && !errors.Is(err, ErrSkip) {
			r.Err = fmt.Errorf("%w; %v", failures, err)
		}
	case err == nil:
		r.Status = StatusPassed
	case errors.Is(err, ErrSkip):
		r.Status = StatusSkipped
		r.Err = err
	default:
		r.Status = StatusFailed
		r.Err = err
	}

	cc.Logger.Debug("check finished", zap.String("status", string(r.Status)), zap.Error(r.Err))
	return r
}

// runHooks runs scenario-level hooks and reports the assertions that failed
// in them as the result named name.
func (s *Suite) runHooks(tc *TestContext, name string, fns []func(ctx *TestContext)) Result {
	start := time.Now()
	err := tc.protect(func() error {
		for _, fn := range fns {
			fn(tc)
		}
		return nil
	})
	r := Result{
		Scenario: tc.Scenario,
		Platform: tc.Platform,
		Check:    name,
		Status:   StatusPassed,
	}
	if failures := multierr.Append(tc.takeErr(), err); failures != nil {
		r.Status = StatusFailed
		r.Err = failures
		tc.Logger.Warn("hook failed", zap.String("hook", name), zap.Error(failures))
	}
	r.Duration = time.Since(start)
	return r
}
