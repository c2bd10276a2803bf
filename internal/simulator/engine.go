// Package simulator runs the coverage pipeline: radius filter, eligibility,
// nearest-provider assignment and aggregation, as one pure computation per
// parameter set.
package simulator

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"coverage-sim/internal/aggregate"
	"coverage-sim/internal/calculator"
	"coverage-sim/internal/eligibility"
	"coverage-sim/internal/models"
)

// Recorder receives one observation per finished run.
type Recorder interface {
	ObserveRun(d time.Duration, s aggregate.Summary, err error)
}

// Result is everything a presentation layer needs to render one run.
type Result struct {
	Params   Params             `json:"params"`
	Empty    bool               `json:"empty"`
	Centroid *models.Coordinate `json:"centroid,omitempty"`

	Principals []models.Provider `json:"principals"`
	// Candidates are the non-principal providers inside the radius.
	Candidates []models.Provider `json:"candidates"`
	Active     []models.Provider `json:"active_competitors"`

	// Customers are the in-radius customers; Assignments[i] belongs to Customers[i].
	Customers   []models.Customer   `json:"customers"`
	Assignments []models.Assignment `json:"assignments"`

	Summary      aggregate.Summary         `json:"summary"`
	BySegment    aggregate.Table           `json:"by_segment"`
	ByCategoryL1 aggregate.Table           `json:"by_category_l1"`
	ByCategoryL2 aggregate.Table           `json:"by_category_l2"`
	PerProvider  []aggregate.ProviderCount `json:"per_provider"`
}

// Roles maps every participating provider to its role.
func (r *Result) Roles() map[string]models.Role {
	roles := make(map[string]models.Role, len(r.Principals)+len(r.Active))
	for _, p := range r.Active {
		roles[p.Name] = models.RoleCompetitor
	}
	for _, p := range r.Principals {
		roles[p.Name] = models.RolePrincipal
	}
	return roles
}

// Tables returns the aggregation tables in report order.
func (r *Result) Tables() []aggregate.Table {
	return []aggregate.Table{r.BySegment, r.ByCategoryL1, r.ByCategoryL2}
}

func emptyResult(p Params) *Result {
	return &Result{
		Params:       p,
		Empty:        true,
		Principals:   []models.Provider{},
		Candidates:   []models.Provider{},
		Active:       []models.Provider{},
		Customers:    []models.Customer{},
		Assignments:  []models.Assignment{},
		BySegment:    aggregate.Table{Dimension: aggregate.BySegment, Rows: []aggregate.Row{}},
		ByCategoryL1: aggregate.Table{Dimension: aggregate.ByCategoryL1, Rows: []aggregate.Row{}},
		ByCategoryL2: aggregate.Table{Dimension: aggregate.ByCategoryL2, Rows: []aggregate.Row{}},
		PerProvider:  []aggregate.ProviderCount{},
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds assignment concurrency; zero means NumCPU.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithTimeout bounds each Compute call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithRecorder reports run metrics to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// Engine holds execution settings only; it keeps no state between runs and
// is safe for concurrent use.
type Engine struct {
	workers  int
	timeout  time.Duration
	recorder Recorder
	progress calculator.ProgressCallback
	tracer   trace.Tracer
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{tracer: otel.Tracer("coverage-sim/simulator")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithProgress returns a copy of e that reports assignment progress to cb.
func (e *Engine) WithProgress(cb calculator.ProgressCallback) *Engine {
	c := *e
	c.progress = cb
	return &c
}

// Compute runs the pipeline for one parameter set. Empty selections produce
// an empty Result, not an error; only invalid parameters and cancellation
// fail.
func (e *Engine) Compute(ctx context.Context, snap Snapshot, p Params) (res *Result, err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "simulator.Compute")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if e.recorder != nil {
			var s aggregate.Summary
			if res != nil {
				s = res.Summary
			}
			e.recorder.ObserveRun(time.Since(start), s, err)
		}
	}()

	p, err = p.normalize()
	if err != nil {
		return nil, err
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	span.SetAttributes(
		attribute.Int("customers.total", len(snap.Customers)),
		attribute.Int("providers.total", len(snap.Providers)),
		attribute.Float64("radius_km", p.RadiusKM),
		attribute.String("mode", string(p.Mode)),
	)

	principals := selectPrincipals(snap.Providers, p.Principals)
	if len(principals) == 0 {
		zap.L().Debug("simulator: no principal selected", zap.Strings("requested", p.Principals))
		return emptyResult(p), nil
	}

	res = emptyResult(p)
	res.Empty = false
	res.Principals = principals

	dist := p.Distance.Func()
	points := make([]models.Coordinate, len(principals))
	for i, pr := range principals {
		points[i] = pr.Loc
	}
	centroid, _ := calculator.Centroid(points)
	res.Centroid = &centroid

	isPrincipal := nameSet(p.Principals)
	for _, i := range calculator.WithinRadius(providerLocs(snap.Providers), centroid, p.RadiusKM, dist) {
		if pr := snap.Providers[i]; !isPrincipal[pr.Name] {
			res.Candidates = append(res.Candidates, pr)
		}
	}
	wanted := nameSet(p.ActiveCompetitors)
	for _, c := range res.Candidates {
		if p.AllCompetitorsActive || wanted[c.Name] {
			res.Active = append(res.Active, c)
		}
	}

	for _, i := range calculator.WithinRadius(customerLocs(snap.Customers), centroid, p.RadiusKM, dist) {
		res.Customers = append(res.Customers, snap.Customers[i])
	}

	_, assignSpan := e.tracer.Start(ctx, "simulator.Assign")
	candidates := make([]models.Provider, 0, len(principals)+len(res.Active))
	candidates = append(candidates, principals...)
	candidates = append(candidates, res.Active...)
	assignments, err := calculator.AssignAll(ctx, res.Customers, candidates,
		eligibility.Predicate(p.Mode), dist, calculator.AssignOptions{Workers: e.workers, OnProgress: e.progress})
	assignSpan.End()
	if err != nil {
		return nil, eris.Wrap(err, "simulator: compute")
	}
	res.Assignments = assignments

	roles := res.Roles()
	res.Summary = aggregate.Summarize(assignments, roles)
	res.BySegment = aggregate.Aggregate(assignments, res.Customers, roles, aggregate.BySegment)
	res.ByCategoryL1 = aggregate.Aggregate(assignments, res.Customers, roles, aggregate.ByCategoryL1)
	res.ByCategoryL2 = aggregate.Aggregate(assignments, res.Customers, roles, aggregate.ByCategoryL2)
	res.PerProvider = aggregate.PerProvider(assignments, roles)

	span.SetAttributes(
		attribute.Int("customers.in_radius", res.Summary.InRadius),
		attribute.Int("customers.unserved", res.Summary.Unserved),
	)
	zap.L().Debug("simulator: run complete",
		zap.Int("principals", len(principals)),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("active", len(res.Active)),
		zap.Int("in_radius", res.Summary.InRadius),
		zap.Int("principal_served", res.Summary.Principal),
		zap.Int("competitor_served", res.Summary.Competitor),
		zap.Int("unserved", res.Summary.Unserved),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// selectPrincipals returns the named providers in provider-table order.
func selectPrincipals(providers []models.Provider, names []string) []models.Provider {
	want := nameSet(names)
	found := make(map[string]bool, len(want))
	var out []models.Provider
	for _, p := range providers {
		if want[p.Name] {
			out = append(out, p)
			found[p.Name] = true
		}
	}
	for name := range want {
		if !found[name] {
			zap.L().Warn("simulator: unknown principal provider", zap.String("name", name))
		}
	}
	return out
}

func providerLocs(ps []models.Provider) []models.Coordinate {
	out := make([]models.Coordinate, len(ps))
	for i, p := range ps {
		out[i] = p.Loc
	}
	return out
}

func customerLocs(cs []models.Customer) []models.Coordinate {
	out := make([]models.Coordinate, len(cs))
	for i, c := range cs {
		out[i] = c.Loc
	}
	return out
}
