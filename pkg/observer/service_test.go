package observer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitseal-network/seald/pkg/explorer"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExplorer struct {
	mutex     sync.RWMutex
	outspends map[string]*explorer.Outspend
	txs       map[string]*wire.MsgTx
}

func newMockExplorer() *mockExplorer {
	return &mockExplorer{
		outspends: map[string]*explorer.Outspend{},
		txs:       map[string]*wire.MsgTx{},
	}
}

func (m *mockExplorer) markSpent(outpoint wire.OutPoint, witness *wire.MsgTx) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	txid := witness.TxHash().String()
	m.outspends[outpoint.Hash.String()] = &explorer.Outspend{
		Spent:        true,
		SpendingTxid: txid,
		Confirmed:    true,
	}
	m.txs[txid] = witness
}

func (m *mockExplorer) GetTransactionHex(
	context.Context, string,
) (string, error) {
	return "", explorer.ErrNotFound
}

func (m *mockExplorer) GetTransaction(
	_ context.Context, txid string,
) (*wire.MsgTx, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	tx, ok := m.txs[txid]
	if !ok {
		return nil, explorer.ErrNotFound
	}
	return tx, nil
}

func (m *mockExplorer) IsTransactionConfirmed(
	context.Context, string,
) (bool, error) {
	return false, explorer.ErrNotFound
}

func (m *mockExplorer) GetOutspend(
	_ context.Context, txid string, _ uint32,
) (*explorer.Outspend, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	outspend, ok := m.outspends[txid]
	if !ok {
		return &explorer.Outspend{Spent: false}, nil
	}
	return outspend, nil
}

func (m *mockExplorer) GetBlockHeight(context.Context) (int, error) {
	return 102, nil
}

func TestObserverEmitsSealSpent(t *testing.T) {
	sealOutpoint := wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0}
	witness := wire.NewMsgTx(2)
	witness.AddTxIn(wire.NewTxIn(&sealOutpoint, nil, nil))
	witness.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))

	explorerSvc := newMockExplorer()
	svc := NewService(Opts{
		ExplorerSvc:            explorerSvc,
		IntervalInMilliseconds: 10,
		ErrorHandler:           func(err error) { t.Logf("observe: %v", err) },
		RequestsPerSecond:      1000,
	})
	go svc.Start()
	defer svc.Stop()

	observable := &OutpointObservable{Outpoint: sealOutpoint}
	svc.AddObservable(observable)
	assert.True(t, svc.IsObserving(observable))

	// Nothing is emitted while the outpoint stays unspent.
	select {
	case event := <-svc.GetEventChannel():
		t.Fatalf("unexpected event %v", event.Type())
	case <-time.After(50 * time.Millisecond):
	}

	explorerSvc.markSpent(sealOutpoint, witness)

	select {
	case event := <-svc.GetEventChannel():
		require.Equal(t, SealSpent, event.Type())
		spent := event.(SealSpentEvent)
		assert.Equal(t, sealOutpoint, spent.Outpoint)
		assert.Equal(t, witness.TxHash().String(), spent.SpendingTxid)
		require.NotNil(t, spent.Witness)
		assert.True(t, spent.Confirmed)
	case <-time.After(2 * time.Second):
		t.Fatal("no seal spent event emitted")
	}

	svc.RemoveObservable(observable)
	assert.False(t, svc.IsObserving(observable))
}

func TestObserverStopRightAfterAdd(t *testing.T) {
	svc := NewService(Opts{
		ExplorerSvc:            newMockExplorer(),
		IntervalInMilliseconds: 10,
		ErrorHandler:           func(error) {},
	})
	go svc.Start()

	observable := &OutpointObservable{
		Outpoint: wire.OutPoint{Hash: chainhash.Hash{0x03}},
	}
	// Stopping before the handler goroutine gets scheduled must not
	// underflow the wait group.
	svc.AddObservable(observable)
	svc.Stop()

	select {
	case event := <-svc.GetEventChannel():
		require.Equal(t, QuitSignal, event.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("no quit event emitted")
	}

	// Stop already tore the handler down, removing it again is a no-op.
	assert.False(t, svc.IsObserving(observable))
	svc.RemoveObservable(observable)
}

func TestObserverAddObservableIsIdempotent(t *testing.T) {
	svc := NewService(Opts{
		ExplorerSvc:            newMockExplorer(),
		IntervalInMilliseconds: 10,
		ErrorHandler:           func(error) {},
	})
	go svc.Start()

	observable := &OutpointObservable{
		Outpoint: wire.OutPoint{Hash: chainhash.Hash{0x02}},
	}
	svc.AddObservable(observable)
	svc.AddObservable(observable)
	assert.True(t, svc.IsObserving(observable))

	svc.RemoveObservable(observable)
	assert.False(t, svc.IsObserving(observable))
	svc.Stop()
}
