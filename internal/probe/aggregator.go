package probe

import (
	"context"
	"log"
	"sync"
	"time"

	"topomon/internal/domain"
	"topomon/internal/inventory"
)

const (
	// DefaultWorkers bounds how many devices are probed concurrently
	DefaultWorkers = 10

	// DefaultTimeout bounds a single probe invocation against one device
	DefaultTimeout = 2 * time.Second
)

// Aggregator fans probes out over the device inventory with a bounded
// worker pool and collects the results into one canonical record set.
type Aggregator struct {
	probes  []Probe
	workers int
	timeout time.Duration
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithWorkers sets the worker pool size
func WithWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithTimeout sets the per-probe timeout
func WithTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAggregator creates an aggregator over the given probes
func NewAggregator(probes []Probe, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		probes:  probes,
		workers: DefaultWorkers,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// job is one (device, probe) pairing dispatched to the pool
type job struct {
	device inventory.Device
	probe  Probe
}

// Collect probes every device with every probe and returns the merged,
// canonically sorted record set. A failing probe is isolated: its error
// is reported as a Failure and the cycle continues with what the other
// probes observed.
func (a *Aggregator) Collect(ctx context.Context, devices []inventory.Device) ([]domain.NeighborRecord, []Failure) {
	jobs := make(chan job)
	resultCh := make(chan []domain.NeighborRecord)
	failCh := make(chan Failure)

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				a.runJob(ctx, j, resultCh, failCh)
			}
		}()
	}

	// Close result channels once all workers drain
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(resultCh)
		close(failCh)
		close(done)
	}()

	go func() {
		defer close(jobs)
		for _, dev := range devices {
			for _, p := range a.probes {
				select {
				case jobs <- job{device: dev, probe: p}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var records []domain.NeighborRecord
	var failures []Failure
	for resultCh != nil || failCh != nil {
		select {
		case recs, ok := <-resultCh:
			if !ok {
				resultCh = nil
				continue
			}
			records = append(records, recs...)
		case f, ok := <-failCh:
			if !ok {
				failCh = nil
				continue
			}
			failures = append(failures, f)
		}
	}
	<-done

	// Canonical order so merge results do not depend on worker scheduling
	domain.SortRecords(records)
	return records, failures
}

// runJob executes one probe against one device under the per-probe timeout
func (a *Aggregator) runJob(ctx context.Context, j job, resultCh chan<- []domain.NeighborRecord, failCh chan<- Failure) {
	probeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	recs, err := j.probe.Neighbors(probeCtx, j.device)
	if err != nil {
		log.Printf("Probe %s failed for %s: %v", j.probe.Name(), j.device.Key, err)
		failCh <- Failure{Device: j.device.Key, Probe: j.probe.Name(), Err: err.Error()}
		return
	}

	kept := recs[:0]
	for _, rec := range recs {
		// Tag provenance so diffs and exports can attribute observations
		if rec.Device == "" {
			rec.Device = j.device.Key
		}
		if rec.Protocol == "" {
			rec.Protocol = j.probe.Name()
		}
		if err := rec.Validate(); err != nil {
			log.Printf("Probe %s: dropping record from %s: %v", j.probe.Name(), j.device.Key, err)
			continue
		}
		kept = append(kept, rec)
	}
	resultCh <- kept
}
