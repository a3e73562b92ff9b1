package explore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crossview-lab/project-crossview/internal/core/metric"
	"github.com/crossview-lab/project-crossview/internal/dataset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidRequest marks a view request that cannot be served.
var ErrInvalidRequest = fmt.Errorf("invalid view request")

// Options bound the per-request view sizes and the cache.
type Options struct {
	CacheSize         int
	MaxTopN           int
	MaxSampleRows     int
	DefaultTopN       int
	DefaultSampleRows int
}

// Service owns the filter-and-aggregate pipeline for one loaded dataset.
// The dataset is immutable, so the service is safe for concurrent use; a
// result cache plus singleflight keep identical interactions from being
// recomputed.
type Service struct {
	ds  *dataset.Dataset
	reg *dataset.StateRegistry

	cache        *resultCache
	computeGroup singleflight.Group // dedupe concurrent identical requests

	opts Options
}

// NewService creates the exploration service over a normalized dataset.
func NewService(ds *dataset.Dataset, reg *dataset.StateRegistry, opts Options) *Service {
	if ds == nil {
		panic("explore: dataset must not be nil")
	}
	if reg == nil {
		panic("explore: state registry must not be nil")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.MaxTopN <= 0 {
		opts.MaxTopN = 50
	}
	if opts.MaxSampleRows <= 0 {
		opts.MaxSampleRows = 500
	}
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = 10
	}
	if opts.DefaultSampleRows <= 0 {
		opts.DefaultSampleRows = 20
	}
	return &Service{
		ds:    ds,
		reg:   reg,
		cache: newResultCache(opts.CacheSize),
		opts:  opts,
	}
}

// ComputeViews recomputes all aggregate views plus the sample for one user
// interaction. Identical requests are answered from the cache; concurrent
// identical requests share a single computation.
func (s *Service) ComputeViews(ctx context.Context, req ViewRequest) (*ViewResult, error) {
	req, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	key := req.key()
	if res := s.cache.Get(key); res != nil {
		return res, nil
	}

	v, err, _ := s.computeGroup.Do(key, func() (interface{}, error) {
		// Re-check under singleflight: a concurrent flight may have filled
		// the cache between our lookup and here.
		if res := s.cache.Get(key); res != nil {
			return res, nil
		}
		res, err := s.compute(ctx, req)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ViewResult), nil
}

// prepare normalizes the request, applies defaults, and validates bounds.
func (s *Service) prepare(req ViewRequest) (ViewRequest, error) {
	req.Filter = req.Filter.normalize()

	if req.Metric == "" {
		req.Metric = metric.Incidents
	}
	if !metric.Valid(req.Metric) {
		return ViewRequest{}, fmt.Errorf("%w: %q", metric.ErrUnknownMetric, req.Metric)
	}

	if req.TopN == 0 {
		req.TopN = s.opts.DefaultTopN
	}
	if req.TopN < 0 || req.TopN > s.opts.MaxTopN {
		return ViewRequest{}, fmt.Errorf("%w: top_n %d out of range 1-%d", ErrInvalidRequest, req.TopN, s.opts.MaxTopN)
	}

	if req.SampleRows == 0 {
		req.SampleRows = s.opts.DefaultSampleRows
	}
	if req.SampleRows < 0 || req.SampleRows > s.opts.MaxSampleRows {
		return ViewRequest{}, fmt.Errorf("%w: sample_rows %d out of range 1-%d", ErrInvalidRequest, req.SampleRows, s.opts.MaxSampleRows)
	}

	// An unset year range means the full range of the data, mirroring the
	// year slider's initial position.
	if req.Filter.YearMin == 0 && req.Filter.YearMax == 0 {
		req.Filter.YearMin, req.Filter.YearMax = s.ds.YearRange()
	}
	if req.Filter.YearMin > req.Filter.YearMax {
		return ViewRequest{}, fmt.Errorf("%w: year_min %d > year_max %d", ErrInvalidRequest, req.Filter.YearMin, req.Filter.YearMax)
	}
	return req, nil
}

// compute runs the pipeline: filter once, then fan the four independent
// aggregations plus the sample out over an errgroup. Each goroutine writes
// a distinct result field; the ranked view derives from the region view
// inside the same goroutine.
func (s *Service) compute(ctx context.Context, req ViewRequest) (*ViewResult, error) {
	reducer, err := metric.Resolve(req.Metric)
	if err != nil {
		return nil, err
	}

	view, err := Filter(s.ds, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	res := &ViewResult{
		LoadID:      s.ds.LoadID(),
		Metric:      req.Metric,
		Filter:      req.Filter,
		MatchedRows: view.Len(),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.ByState = ByState(view, reducer, s.reg)
		res.Ranked = RankedStates(res.ByState, req.TopN)
		return nil
	})
	g.Go(func() error {
		res.TimeGrid = ByWeekdayHour(view, reducer)
		return nil
	})
	g.Go(func() error {
		res.ByWeekday = ByWeekday(view, reducer)
		return nil
	})
	g.Go(func() error {
		res.Sample = Sample(view, req.SampleRows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("Views computed",
		"metric", req.Metric,
		"year_min", req.Filter.YearMin,
		"year_max", req.Filter.YearMax,
		"states", len(req.Filter.States),
		"matched_rows", res.MatchedRows,
	)
	return res, nil
}

// key builds the canonical cache key for a prepared request.
func (req ViewRequest) key() string {
	return fmt.Sprintf("%d-%d|%s|%s|%d|%d",
		req.Filter.YearMin, req.Filter.YearMax,
		strings.Join(req.Filter.States, ","),
		req.Metric, req.TopN, req.SampleRows,
	)
}

// StateInfo is one selectable state, for populating UI controls.
type StateInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DatasetSummary describes the loaded dataset: the UI derives its year
// slider bounds and state multi-select choices from it rather than
// hard-coding them.
type DatasetSummary struct {
	LoadID  string      `json:"load_id"`
	Rows    int         `json:"rows"`
	YearMin int         `json:"year_min"`
	YearMax int         `json:"year_max"`
	States  []StateInfo `json:"states"`
	Metrics []string    `json:"metrics"`
}

// Summary returns the dataset summary for the UI layer.
func (s *Service) Summary() DatasetSummary {
	yearMin, yearMax := s.ds.YearRange()
	states := make([]StateInfo, 0, s.reg.Len())
	for _, code := range s.reg.Codes() {
		name, _ := s.reg.Name(code)
		states = append(states, StateInfo{Code: code, Name: name})
	}
	return DatasetSummary{
		LoadID:  s.ds.LoadID(),
		Rows:    s.ds.Len(),
		YearMin: yearMin,
		YearMax: yearMax,
		States:  states,
		Metrics: metric.Names(),
	}
}

// Dataset exposes the underlying dataset for the server health report.
func (s *Service) Dataset() *dataset.Dataset { return s.ds }
