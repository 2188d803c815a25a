package observer

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitseal-network/seald/pkg/explorer"
)

const (
	eventQueueMaxSize = 100
	errorQueueMaxSize = 10
)

type sealObserver struct {
	interval     int
	explorerSvc  explorer.Service
	errChan      chan error
	eventChan    chan Event
	observables  map[string]*observableHandler
	errorHandler func(err error)
	rateLimiter  *rate.Limiter
	mutex        *sync.RWMutex
	wg           *sync.WaitGroup
}

// Opts defines the parameters needed for creating an observer service with
// the NewService method.
type Opts struct {
	ExplorerSvc            explorer.Service
	IntervalInMilliseconds int
	ErrorHandler           func(err error)
	// RequestsPerSecond caps the poll frequency against the explorer
	// regardless of how many outpoints are being observed.
	RequestsPerSecond float64
}

// NewService returns an observer that is ready to watch for seal outpoint
// spends on the blockchain. Use the Start and Stop methods to manage it.
func NewService(opts Opts) Service {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	return &sealObserver{
		interval:     opts.IntervalInMilliseconds,
		explorerSvc:  opts.ExplorerSvc,
		errChan:      make(chan error, errorQueueMaxSize),
		eventChan:    make(chan Event, eventQueueMaxSize),
		observables:  map[string]*observableHandler{},
		errorHandler: opts.ErrorHandler,
		rateLimiter:  rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		mutex:        &sync.RWMutex{},
		wg:           &sync.WaitGroup{},
	}
}

// Start runs the error loop until Stop is called. Observation itself starts
// as soon as an observable is added.
func (o *sealObserver) Start() {
	for {
		err, more := <-o.errChan
		if !more {
			return
		}
		go o.errorHandler(err)
	}
}

// Stop stops observing every outpoint and closes the error loop.
func (o *sealObserver) Stop() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	for key, obsHandler := range o.observables {
		go obsHandler.stop()
		// Dropping the entry keeps a later RemoveObservable from stopping
		// the same handler twice.
		delete(o.observables, key)
	}
	o.wg.Wait()
	o.eventChan <- QuitEvent{}
	close(o.errChan)
}

// GetEventChannel returns the Event channel which can be used to listen to
// seal spend events.
func (o *sealObserver) GetEventChannel() chan Event {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.eventChan
}

// AddObservable adds a new Observable to the list of watched ones, only if
// the same Observable is not already in the list.
func (o *sealObserver) AddObservable(observable Observable) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, ok := o.observables[observable.key()]; !ok {
		obsHandler := newObservableHandler(
			observable,
			o.explorerSvc,
			o.wg,
			o.interval,
			o.eventChan,
			o.errChan,
			o.rateLimiter,
		)

		o.observables[observable.key()] = obsHandler
		// The Add must happen before the handler goroutine is spawned, or a
		// Stop racing it can reach Done first and underflow the counter.
		o.wg.Add(1)
		go obsHandler.start()
	}
}

// RemoveObservable stops watching the given Observable.
func (o *sealObserver) RemoveObservable(observable Observable) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if obsHandler, ok := o.observables[observable.key()]; ok {
		obsHandler.stop()
		delete(o.observables, observable.key())
	}
}

// IsObserving returns whether the given Observable is being watched.
func (o *sealObserver) IsObserving(observable Observable) bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	_, ok := o.observables[observable.key()]
	return ok
}

// tickers panic on a non-positive interval.
func intervalOrDefault(ms int) time.Duration {
	if ms <= 0 {
		ms = 1000
	}
	return time.Duration(ms) * time.Millisecond
}
