package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitseal-network/seald/internal/core/application"
	"github.com/bitseal-network/seald/internal/core/domain"
	dbbadger "github.com/bitseal-network/seald/internal/infrastructure/storage/db/badger"
	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/observer"
	"github.com/bitseal-network/seald/pkg/seals"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

var testTag = taggedhash.NewProtocolTag("TEST_TAG")

type fakeObserver struct {
	mutex      sync.Mutex
	eventChan  chan observer.Event
	observed   int
	unobserved int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{eventChan: make(chan observer.Event, 10)}
}

func (f *fakeObserver) Start() {}
func (f *fakeObserver) Stop() {
	f.eventChan <- observer.QuitEvent{}
}
func (f *fakeObserver) AddObservable(observer.Observable) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.observed++
}
func (f *fakeObserver) RemoveObservable(observer.Observable) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.unobserved++
}
func (f *fakeObserver) IsObserving(observer.Observable) bool {
	return false
}
func (f *fakeObserver) GetEventChannel() chan observer.Event {
	return f.eventChan
}

func testPubkey(t *testing.T) *btcec.PublicKey {
	t.Helper()
	var seed [32]byte
	seed[0] = 0x01
	_, pubkey := btcec.PrivKeyFromBytes(seed[:])
	return pubkey
}

func newTestService(
	t *testing.T,
) (application.SealService, *fakeObserver, domain.SealRepository) {
	t.Helper()

	repo, err := dbbadger.NewSealRepositoryImpl("", nil)
	require.NoError(t, err)

	obs := newFakeObserver()
	svc := application.NewSealService(application.Opts{
		Repo:        repo,
		ObserverSvc: obs,
		ProtocolTag: testTag,
	})
	require.NoError(t, svc.Start())
	t.Cleanup(svc.Stop)

	return svc, obs, repo
}

func TestDefineSeal(t *testing.T) {
	svc, obs, _ := newTestService(t)
	ctx := context.Background()

	txid := chainhash.Hash{0x01}.String()
	seal, err := svc.DefineSeal(ctx, txid, 0, "wpubkeyhash")
	require.NoError(t, err)
	require.Equal(t, seals.StatusDefined, seal.SealStatus())
	require.Equal(t, 1, obs.observed)

	fetched, err := svc.GetSeal(ctx, seal.ID)
	require.NoError(t, err)
	require.Equal(t, seal.ID, fetched.ID)

	_, err = svc.DefineSeal(ctx, txid, 0, "wpubkeyhash")
	require.ErrorIs(t, err, domain.ErrSealAlreadyExists)

	_, err = svc.DefineSeal(ctx, txid, 1, "teleport")
	require.Error(t, err)

	all, err := svc.ListSeals(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSealClosedOnSpendWithIntent(t *testing.T) {
	svc, obs, _ := newTestService(t)
	ctx := context.Background()

	sealOutpoint := wire.OutPoint{Hash: chainhash.Hash{0x02}, Index: 1}
	seal, err := svc.DefineSeal(
		ctx, sealOutpoint.Hash.String(), sealOutpoint.Index, "wpubkeyhash",
	)
	require.NoError(t, err)

	message := []byte("hello")
	committedOut, commitment, err := dbc.CommitToTxout(dbc.CommitToTxoutOpts{
		Value: 1000,
		CommitToSpkOpts: dbc.CommitToSpkOpts{
			Method: dbc.MethodWPubkeyHash,
			Pubkey: testPubkey(t),
			Tag:    testTag,
		},
	}, message)
	require.NoError(t, err)

	require.NoError(
		t, svc.RegisterCloseIntent(ctx, seal.ID, message, commitment),
	)

	witness := wire.NewMsgTx(2)
	witness.AddTxIn(wire.NewTxIn(&sealOutpoint, nil, nil))
	witness.AddTxOut(committedOut)

	obs.eventChan <- observer.SealSpentEvent{
		Outpoint:     sealOutpoint,
		SpendingTxid: witness.TxHash().String(),
		Witness:      witness,
		Confirmed:    true,
	}

	require.Eventually(t, func() bool {
		fetched, err := svc.GetSeal(ctx, seal.ID)
		return err == nil && fetched.SealStatus() == seals.StatusClosed
	}, 2*time.Second, 20*time.Millisecond)

	fetched, err := svc.GetSeal(ctx, seal.ID)
	require.NoError(t, err)
	require.Equal(t, witness.TxHash().String(), fetched.WitnessTxid)
	require.NotEmpty(t, fetched.SealProof)
}

func TestSealInvalidatedOnSpendWithoutIntent(t *testing.T) {
	svc, obs, _ := newTestService(t)
	ctx := context.Background()

	sealOutpoint := wire.OutPoint{Hash: chainhash.Hash{0x03}, Index: 0}
	seal, err := svc.DefineSeal(
		ctx, sealOutpoint.Hash.String(), sealOutpoint.Index, "taproot",
	)
	require.NoError(t, err)

	witness := wire.NewMsgTx(2)
	witness.AddTxIn(wire.NewTxIn(&sealOutpoint, nil, nil))
	witness.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))

	obs.eventChan <- observer.SealSpentEvent{
		Outpoint:     sealOutpoint,
		SpendingTxid: witness.TxHash().String(),
		Witness:      witness,
	}

	require.Eventually(t, func() bool {
		fetched, err := svc.GetSeal(ctx, seal.ID)
		return err == nil && fetched.SealStatus() == seals.StatusInvalid
	}, 2*time.Second, 20*time.Millisecond)

	// The spent outpoint is no longer observed.
	require.Eventually(t, func() bool {
		obs.mutex.Lock()
		defer obs.mutex.Unlock()
		return obs.unobserved == 1
	}, 2*time.Second, 20*time.Millisecond)

	_, err = svc.VerifySeal(ctx, seal.ID)
	require.ErrorIs(t, err, domain.ErrMissingCloseIntent)
}
