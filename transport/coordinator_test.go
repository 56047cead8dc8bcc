package transport_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaunharker/subsample/oracle"
	"github.com/shaunharker/subsample/pardriver"
	"github.com/shaunharker/subsample/point"
	"github.com/shaunharker/subsample/transport"
	"github.com/shaunharker/subsample/transport/local"
)

type idPoint int64

func (p idPoint) PointID() int64 { return int64(p) }

// lookupFunctor resolves f(i) = distance(0, i) through an Oracle, forcing
// a suspension the first time each i is requested.
type lookupFunctor struct {
	o *oracle.Oracle[idPoint]
}

type lookupCont struct {
	i       int64
	missing []point.Pair[idPoint]
}

func (c *lookupCont) Missing() []point.Pair[idPoint] {
	m := c.missing
	c.missing = nil
	return m
}

func (f *lookupFunctor) attempt(i int64) (float64, point.Suspended[idPoint], bool) {
	d, ok := f.o.Lookup(idPoint(0), idPoint(i))
	if ok {
		return d, nil, true
	}
	return 0, &lookupCont{i: i, missing: []point.Pair[idPoint]{{P: idPoint(0), Q: idPoint(i)}}}, false
}

func (f *lookupFunctor) Start(i int) (float64, point.Suspended[idPoint], bool) {
	return f.attempt(int64(i))
}

func (f *lookupFunctor) Resume(c point.Suspended[idPoint]) (float64, point.Suspended[idPoint], bool) {
	return f.attempt(c.(*lookupCont).i)
}

func TestCoordinatorDrivesParallelDriverToCompletion(t *testing.T) {
	o := oracle.New[idPoint]()
	driver := pardriver.New[idPoint]()
	done := make(chan struct{})

	coord := &transport.Coordinator[idPoint]{
		Oracle:    o,
		WorkItems: driver.WorkItems,
		Ready:     driver.Ready,
		Pending:   driver.Pending,
		Done:      done,
	}
	pool := local.NewPool(func(p, q idPoint) float64 { return float64(q - p) }, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = coord.Run(ctx, pool, 4)
	}()

	args := make([]int, 25)
	for i := range args {
		args[i] = i
	}
	results := pardriver.Run(driver, &lookupFunctor{o: o}, args)
	close(done)
	wg.Wait()

	require.NoError(t, runErr)
	for i, r := range results {
		require.Equal(t, float64(i), r)
	}
}
