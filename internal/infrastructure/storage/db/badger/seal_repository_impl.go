package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bitseal-network/seald/internal/core/domain"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

type sealRepositoryImpl struct {
	store *badgerhold.Store
}

// NewSealRepositoryImpl initializes a badger implementation of the
// domain.SealRepository. An empty base dir opens an in-memory store, used by
// tests and dry runs.
func NewSealRepositoryImpl(
	baseDbDir string, logger badger.Logger,
) (domain.SealRepository, error) {
	var sealsDir string
	if len(baseDbDir) > 0 {
		sealsDir = filepath.Join(baseDbDir, "seals")
	}

	store, err := createDb(sealsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening seals db: %w", err)
	}
	return &sealRepositoryImpl{store}, nil
}

func (r *sealRepositoryImpl) AddSeal(
	ctx context.Context, seal *domain.Seal,
) error {
	if err := r.store.Insert(seal.Key(), seal); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrSealAlreadyExists
		}
		return err
	}
	return nil
}

func (r *sealRepositoryImpl) GetSeal(
	ctx context.Context, id string,
) (*domain.Seal, error) {
	var seal domain.Seal
	if err := r.store.Get(id, &seal); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrSealNotFound
		}
		return nil, err
	}
	return &seal, nil
}

func (r *sealRepositoryImpl) GetAllSeals(
	ctx context.Context,
) ([]domain.Seal, error) {
	var seals []domain.Seal
	if err := r.store.Find(&seals, nil); err != nil {
		return nil, err
	}
	return seals, nil
}

func (r *sealRepositoryImpl) GetSealsByStatus(
	ctx context.Context, status int,
) ([]domain.Seal, error) {
	query := badgerhold.Where("Status").Eq(status)
	var seals []domain.Seal
	if err := r.store.Find(&seals, query); err != nil {
		return nil, err
	}
	return seals, nil
}

func (r *sealRepositoryImpl) UpdateSeal(
	ctx context.Context, id string,
	updateFn func(seal *domain.Seal) (*domain.Seal, error),
) error {
	seal, err := r.GetSeal(ctx, id)
	if err != nil {
		return err
	}

	updatedSeal, err := updateFn(seal)
	if err != nil {
		return err
	}

	return r.store.Update(id, updatedSeal)
}

// Close releases the underlying store.
func (r *sealRepositoryImpl) Close() {
	r.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
