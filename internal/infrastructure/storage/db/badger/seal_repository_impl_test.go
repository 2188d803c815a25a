package dbbadger_test

import (
	"context"
	"testing"

	"github.com/bitseal-network/seald/internal/core/domain"
	dbbadger "github.com/bitseal-network/seald/internal/infrastructure/storage/db/badger"
	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/seals"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func createTestSeal(t *testing.T, index byte) *domain.Seal {
	t.Helper()

	var txid chainhash.Hash
	txid[0] = index + 1
	definition := seals.NewSealDefinition(
		wire.OutPoint{Hash: txid, Index: uint32(index)},
		dbc.MethodWPubkeyHash,
		taggedhash.NewProtocolTag("TEST_TAG"),
	)

	seal, err := domain.NewSeal(definition)
	require.NoError(t, err)
	return seal
}

func TestSealRepository(t *testing.T) {
	t.Run("AddAndGetSeal", testAddAndGetSeal())
	t.Run("GetSealsByStatus", testGetSealsByStatus())
	t.Run("UpdateSeal", testUpdateSeal())
}

func testAddAndGetSeal() func(*testing.T) {
	return func(t *testing.T) {
		ctx := context.Background()

		repo, err := dbbadger.NewSealRepositoryImpl("", nil)
		require.NoError(t, err)

		seal := createTestSeal(t, 0)
		err = repo.AddSeal(ctx, seal)
		require.NoError(t, err)

		err = repo.AddSeal(ctx, seal)
		require.ErrorIs(t, err, domain.ErrSealAlreadyExists)

		fetched, err := repo.GetSeal(ctx, seal.ID)
		require.NoError(t, err)
		require.Equal(t, seal.ID, fetched.ID)
		require.Equal(t, seals.StatusDefined, fetched.SealStatus())

		definition, err := fetched.Definition()
		require.NoError(t, err)
		require.Equal(t, seal.Txid, definition.Outpoint.Hash.String())

		_, err = repo.GetSeal(ctx, "txo1unknown")
		require.ErrorIs(t, err, domain.ErrSealNotFound)
	}
}

func testGetSealsByStatus() func(*testing.T) {
	return func(t *testing.T) {
		ctx := context.Background()

		repo, err := dbbadger.NewSealRepositoryImpl("", nil)
		require.NoError(t, err)

		for i := byte(0); i < 3; i++ {
			require.NoError(t, repo.AddSeal(ctx, createTestSeal(t, i)))
		}

		all, err := repo.GetAllSeals(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		defined, err := repo.GetSealsByStatus(
			ctx, int(seals.StatusDefined),
		)
		require.NoError(t, err)
		require.Len(t, defined, 3)

		closed, err := repo.GetSealsByStatus(ctx, int(seals.StatusClosed))
		require.NoError(t, err)
		require.Empty(t, closed)
	}
}

func testUpdateSeal() func(*testing.T) {
	return func(t *testing.T) {
		ctx := context.Background()

		repo, err := dbbadger.NewSealRepositoryImpl("", nil)
		require.NoError(t, err)

		seal := createTestSeal(t, 0)
		require.NoError(t, repo.AddSeal(ctx, seal))

		err = repo.UpdateSeal(
			ctx, seal.ID, func(s *domain.Seal) (*domain.Seal, error) {
				if err := s.MarkClosed("deadbeef", []byte{0x01}); err != nil {
					return nil, err
				}
				return s, nil
			},
		)
		require.NoError(t, err)

		fetched, err := repo.GetSeal(ctx, seal.ID)
		require.NoError(t, err)
		require.Equal(t, seals.StatusClosed, fetched.SealStatus())
		require.Equal(t, "deadbeef", fetched.WitnessTxid)

		// Finalized seals cannot be updated again.
		err = repo.UpdateSeal(
			ctx, seal.ID, func(s *domain.Seal) (*domain.Seal, error) {
				if err := s.MarkInvalid("cafebabe"); err != nil {
					return nil, err
				}
				return s, nil
			},
		)
		require.ErrorIs(t, err, domain.ErrSealAlreadyFinalized)
	}
}
