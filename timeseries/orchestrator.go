package timeseries

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantmex/mxlib/bootstrap"
)

// Observation is one instrument snapshot row tagged with its valuation date.
// The embedded Row fields flatten into the same JSON object.
type Observation struct {
	TimeIndex time.Time `json:"time_index"`
	bootstrap.Row
}

// ErrorPolicy controls how a per-date bootstrap failure propagates.
type ErrorPolicy int

const (
	// FailBatch aborts the whole batch on the first failing date.
	FailBatch ErrorPolicy = iota
	// SkipDate records and skips failing dates; they contribute no output.
	// Silently dropping dates hides data-quality problems, so every skip is
	// logged at error level.
	SkipDate
)

// Orchestrator groups snapshot rows by valuation date and runs one bootstrap
// per date. Per-date runs are independent (each owns a private pillar store)
// and execute on a bounded worker pool.
type Orchestrator struct {
	UniqueIdentifier string
	Logger           logrus.FieldLogger
	Workers          int // <= 0 means runtime.NumCPU()
	OnError          ErrorPolicy
}

// BuildCurves bootstraps every valuation date present in obs and assembles
// the per-date zero curves into a CurveTimeSeries, dates ascending. Dates
// producing an empty curve contribute nothing.
func (o *Orchestrator) BuildCurves(obs []Observation) (*CurveTimeSeries, error) {
	logger := o.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	groups := make(map[time.Time][]bootstrap.Row)
	var dates []time.Time
	for _, ob := range obs {
		if _, ok := groups[ob.TimeIndex]; !ok {
			dates = append(dates, ob.TimeIndex)
		}
		groups[ob.TimeIndex] = append(groups[ob.TimeIndex], ob.Row)
	}
	sortDatesAscending(dates)

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type dateResult struct {
		res bootstrap.Result
		err error
	}
	results := make([]dateResult, len(dates))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, d := range dates {
		wg.Add(1)
		go func(i int, d time.Time) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			b := bootstrap.New(logger.WithField("time_index", d.Format("2006-01-02")))
			res, err := b.Run(groups[d])
			results[i] = dateResult{res: res, err: err}
		}(i, d)
	}
	wg.Wait()

	ts := newCurveTimeSeries(o.UniqueIdentifier)
	fallbacks := 0
	for i, d := range dates {
		r := results[i]
		if r.err != nil {
			if o.OnError == SkipDate {
				logger.WithError(r.err).
					WithField("time_index", d.Format("2006-01-02")).
					Error("skipping valuation date after bootstrap failure")
				continue
			}
			return nil, fmt.Errorf("BuildCurves: %s: %w", d.Format("2006-01-02"), r.err)
		}
		if len(r.res.Points) == 0 {
			continue
		}
		fallbacks += r.res.SolverFallbacks
		ts.add(d, r.res.Points)
	}

	if fallbacks > 0 {
		logger.WithField("count", fallbacks).Warn("solver fallbacks occurred in batch")
	}
	return ts, nil
}
