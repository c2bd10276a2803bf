package calculator

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"coverage-sim/internal/models"
)

// EligibleFunc reports whether a provider may serve a customer.
type EligibleFunc func(c models.Customer, p models.Provider) bool

type ProgressCallback func(current, total int)

// AssignOptions tunes AssignAll.
type AssignOptions struct {
	// Workers bounds the number of goroutines; zero means NumCPU.
	Workers    int
	OnProgress ProgressCallback
}

const progressEvery = 500

// Assign picks the eligible candidate nearest to the customer. On ties the
// candidate that comes first in the slice wins. With no eligible candidate
// the result has an empty Provider and DistanceKM = +Inf.
func Assign(c models.Customer, candidates []models.Provider, eligible EligibleFunc, fn DistanceFunc) models.Assignment {
	if fn == nil {
		fn = HaversineKM
	}
	res := models.Assignment{CustomerID: c.ID, DistanceKM: math.Inf(1)}
	for _, p := range candidates {
		if eligible != nil && !eligible(c, p) {
			continue
		}
		if d := fn(c.Loc, p.Loc); d < res.DistanceKM {
			res.DistanceKM = d
			res.Provider = p.Name
		}
	}
	return res
}

// AssignAll runs Assign for every customer. Customers are split into
// contiguous chunks processed concurrently; each result lands at its
// customer's index, so output order matches input order.
func AssignAll(ctx context.Context, customers []models.Customer, candidates []models.Provider, eligible EligibleFunc, fn DistanceFunc, opts AssignOptions) ([]models.Assignment, error) {
	total := len(customers)
	results := make([]models.Assignment, total)
	if total == 0 {
		return results, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}
	chunkSize := (total + workers - 1) / workers

	var processed int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < total; start += chunkSize {
		start := start
		end := min(start+chunkSize, total)
		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				a := Assign(customers[idx], candidates, eligible, fn)
				a.CustomerIndex = idx
				results[idx] = a

				count := atomic.AddInt64(&processed, 1)
				if opts.OnProgress != nil && count%progressEvery == 0 {
					opts.OnProgress(int(count), total)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "calculator: assign customers")
	}
	if opts.OnProgress != nil {
		opts.OnProgress(total, total)
	}
	return results, nil
}
