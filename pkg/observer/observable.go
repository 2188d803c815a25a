package observer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitseal-network/seald/pkg/explorer"
	"github.com/btcsuite/btcd/wire"
	log "github.com/sirupsen/logrus"
)

const (
	New       Status = "NEW"
	Waiting   Status = "WAITING"
	Processed Status = "PROCESSED"
)

type Status string

type observableStatus struct {
	sync.RWMutex
	status Status
}

func NewObservableStatus() *observableStatus {
	return &observableStatus{
		status: New,
	}
}

func (o *observableStatus) Get() Status {
	o.RLock()
	defer o.RUnlock()
	return o.status
}

func (o *observableStatus) Set(status Status) {
	o.Lock()
	defer o.Unlock()
	o.status = status
}

// OutpointObservable watches a seal outpoint until it gets spent.
type OutpointObservable struct {
	Outpoint wire.OutPoint
}

func (o *OutpointObservable) observe(
	explorerSvc explorer.Service,
	errChan chan error,
	eventChan chan Event,
	observableStatus *observableStatus,
	rateLimiter *rate.Limiter,
) {
	if o == nil {
		return
	}

	observableStatus.Set(Waiting)
	ctx := context.Background()
	if err := rateLimiter.Wait(ctx); err != nil {
		errChan <- err
		return
	}

	outspend, err := explorerSvc.GetOutspend(
		ctx, o.Outpoint.Hash.String(), o.Outpoint.Index,
	)
	if err != nil {
		observableStatus.Set(Processed)
		errChan <- err
		return
	}

	if !outspend.Spent {
		observableStatus.Set(Processed)
		return
	}

	witness, err := explorerSvc.GetTransaction(ctx, outspend.SpendingTxid)
	if err != nil {
		observableStatus.Set(Processed)
		errChan <- err
		return
	}

	observableStatus.Set(Processed)

	eventChan <- SealSpentEvent{
		Outpoint:     o.Outpoint,
		SpendingTxid: outspend.SpendingTxid,
		Witness:      witness,
		Confirmed:    outspend.Confirmed,
	}
}

func (o *OutpointObservable) key() string {
	return o.Outpoint.String()
}

type observableHandler struct {
	observable       Observable
	explorerSvc      explorer.Service
	wg               *sync.WaitGroup
	ticker           *time.Ticker
	eventChan        chan Event
	errChan          chan error
	stopChan         chan int
	observableStatus *observableStatus
	rateLimiter      *rate.Limiter
}

func newObservableHandler(
	observable Observable,
	explorerSvc explorer.Service,
	wg *sync.WaitGroup,
	interval int,
	eventChan chan Event,
	errChan chan error,
	rateLimiter *rate.Limiter,
) *observableHandler {
	ticker := time.NewTicker(intervalOrDefault(interval))
	stopChan := make(chan int, 1)

	return &observableHandler{
		observable,
		explorerSvc,
		wg,
		ticker,
		eventChan,
		errChan,
		stopChan,
		NewObservableStatus(),
		rateLimiter,
	}
}

func (oh *observableHandler) start() {
	oh.logAction("start")
	for {
		select {
		case <-oh.ticker.C:
			if oh.observableStatus.Get() != Waiting {
				oh.observable.observe(
					oh.explorerSvc,
					oh.errChan,
					oh.eventChan,
					oh.observableStatus,
					oh.rateLimiter,
				)
			}
		case <-oh.stopChan:
			oh.ticker.Stop()
			close(oh.stopChan)
			return
		}
	}
}

func (oh *observableHandler) stop() {
	oh.logAction("stop")
	oh.stopChan <- 1
	oh.wg.Done()
}

func (oh *observableHandler) logAction(action string) {
	log.Debugf("%s observing outpoint: %v", action, oh.observable.key())
}
