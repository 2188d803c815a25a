package application

import (
	"context"
	"fmt"

	"github.com/bitseal-network/seald/internal/core/domain"
	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/encoding"
	"github.com/bitseal-network/seald/pkg/explorer"
	"github.com/bitseal-network/seald/pkg/observer"
	"github.com/bitseal-network/seald/pkg/sealid"
	"github.com/bitseal-network/seald/pkg/seals"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	log "github.com/sirupsen/logrus"
)

// SealService exposes the seal registry operations of the daemon: defining
// seals, registering the message they are meant to be closed over and keeping
// their lifecycle status in sync with the chain.
type SealService interface {
	Start() error
	Stop()
	DefineSeal(
		ctx context.Context, txid string, vout uint32, method string,
	) (*domain.Seal, error)
	RegisterCloseIntent(
		ctx context.Context, id string, message []byte,
		commitmentProof *dbc.Proof,
	) error
	VerifySeal(ctx context.Context, id string) (seals.SealStatus, error)
	GetSeal(ctx context.Context, id string) (*domain.Seal, error)
	ListSeals(ctx context.Context) ([]domain.Seal, error)
}

type sealService struct {
	repo        domain.SealRepository
	explorerSvc explorer.Service
	observerSvc observer.Service
	resolver    seals.Resolver
	tag         taggedhash.ProtocolTag
}

// Opts defines the parameters needed for creating a seal service.
type Opts struct {
	Repo        domain.SealRepository
	ExplorerSvc explorer.Service
	ObserverSvc observer.Service
	// ProtocolTag is the domain-separation tag new seals are defined under.
	ProtocolTag taggedhash.ProtocolTag
}

// NewSealService returns a SealService backed by the given repository,
// explorer and observer.
func NewSealService(opts Opts) SealService {
	return &sealService{
		repo:        opts.Repo,
		explorerSvc: opts.ExplorerSvc,
		observerSvc: opts.ObserverSvc,
		resolver:    explorer.NewResolver(opts.ExplorerSvc),
		tag:         opts.ProtocolTag,
	}
}

// Start resumes observation of every non-finalized seal and begins consuming
// spend events.
func (s *sealService) Start() error {
	ctx := context.Background()
	pending, err := s.repo.GetSealsByStatus(ctx, int(seals.StatusDefined))
	if err != nil {
		return err
	}

	for i := range pending {
		outpoint, err := pending[i].Outpoint()
		if err != nil {
			log.WithError(err).Warnf(
				"skipping malformed seal %s", pending[i].ID,
			)
			continue
		}
		s.observerSvc.AddObservable(
			&observer.OutpointObservable{Outpoint: outpoint},
		)
	}

	go s.observerSvc.Start()
	go s.eventLoop()
	return nil
}

// Stop stops observing and closes the event loop.
func (s *sealService) Stop() {
	s.observerSvc.Stop()
}

func (s *sealService) DefineSeal(
	ctx context.Context, txid string, vout uint32, method string,
) (*domain.Seal, error) {
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("invalid txid: %w", err)
	}
	encodeMethod, err := dbc.ScriptEncodeMethodFromString(method)
	if err != nil {
		return nil, fmt.Errorf("invalid method %q: %w", method, err)
	}

	definition := seals.NewSealDefinition(
		wire.OutPoint{Hash: *hash, Index: vout}, encodeMethod, s.tag,
	)
	seal, err := domain.NewSeal(definition)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddSeal(ctx, seal); err != nil {
		return nil, err
	}

	s.observerSvc.AddObservable(
		&observer.OutpointObservable{Outpoint: definition.Outpoint},
	)

	log.WithFields(log.Fields{
		"seal":   seal.ID,
		"method": method,
	}).Info("seal defined")
	return seal, nil
}

func (s *sealService) RegisterCloseIntent(
	ctx context.Context, id string, message []byte,
	commitmentProof *dbc.Proof,
) error {
	proofBytes, err := encoding.MarshalProof(commitmentProof)
	if err != nil {
		return err
	}

	return s.repo.UpdateSeal(
		ctx, id, func(seal *domain.Seal) (*domain.Seal, error) {
			if err := seal.RegisterCloseIntent(
				message, proofBytes,
			); err != nil {
				return nil, err
			}
			return seal, nil
		},
	)
}

// VerifySeal re-checks a seal against the chain view. It requires the seal
// proof recorded at closing time, auditing a seal the daemon never saw closed
// is done with the registered close intent instead.
func (s *sealService) VerifySeal(
	ctx context.Context, id string,
) (seals.SealStatus, error) {
	seal, err := s.repo.GetSeal(ctx, id)
	if err != nil {
		return seals.StatusDefined, err
	}
	if len(seal.SealProof) == 0 {
		return seal.SealStatus(), domain.ErrMissingCloseIntent
	}

	definition, err := seal.Definition()
	if err != nil {
		return seal.SealStatus(), err
	}
	proof, err := encoding.UnmarshalSealProof(seal.SealProof)
	if err != nil {
		return seal.SealStatus(), err
	}

	return seals.ResolveStatus(
		ctx, s.resolver, definition, seal.Message, proof,
	)
}

func (s *sealService) GetSeal(
	ctx context.Context, id string,
) (*domain.Seal, error) {
	return s.repo.GetSeal(ctx, id)
}

func (s *sealService) ListSeals(ctx context.Context) ([]domain.Seal, error) {
	return s.repo.GetAllSeals(ctx)
}

func (s *sealService) eventLoop() {
	for event := range s.observerSvc.GetEventChannel() {
		switch e := event.(type) {
		case observer.SealSpentEvent:
			s.handleSealSpent(e)
		case observer.QuitEvent:
			return
		}
	}
}

// handleSealSpent finalizes the seal the spent outpoint belongs to. With a
// registered close intent the witness is evaluated against it, otherwise the
// spend makes the seal invalid right away since no other witness can ever
// spend the same outpoint.
func (s *sealService) handleSealSpent(event observer.SealSpentEvent) {
	ctx := context.Background()

	id, err := sealid.Encode(event.Outpoint)
	if err != nil {
		log.WithError(err).Error("cannot encode spent outpoint")
		return
	}

	logger := log.WithFields(log.Fields{
		"seal":    id,
		"witness": event.SpendingTxid,
	})

	err = s.repo.UpdateSeal(
		ctx, id, func(seal *domain.Seal) (*domain.Seal, error) {
			if seal.IsFinalized() {
				return seal, nil
			}

			if !seal.HasCloseIntent() {
				logger.Warn("seal spent without a registered message")
				if err := seal.MarkInvalid(event.SpendingTxid); err != nil {
					return nil, err
				}
				return seal, nil
			}

			definition, err := seal.Definition()
			if err != nil {
				return nil, err
			}
			commitment, err := encoding.UnmarshalProof(seal.CommitmentProof)
			if err != nil {
				return nil, err
			}

			sealProof, status, err := seals.Close(
				definition, event.Witness, seal.Message, commitment,
			)
			if status != seals.StatusClosed {
				logger.WithError(err).Warn("seal invalidated")
				if err := seal.MarkInvalid(event.SpendingTxid); err != nil {
					return nil, err
				}
				return seal, nil
			}

			proofBytes, err := encoding.MarshalSealProof(sealProof)
			if err != nil {
				return nil, err
			}
			if err := seal.MarkClosed(
				event.SpendingTxid, proofBytes,
			); err != nil {
				return nil, err
			}
			logger.Info("seal closed")
			return seal, nil
		},
	)
	if err != nil {
		logger.WithError(err).Error("cannot finalize spent seal")
		return
	}

	s.observerSvc.RemoveObservable(
		&observer.OutpointObservable{Outpoint: event.Outpoint},
	)
}
