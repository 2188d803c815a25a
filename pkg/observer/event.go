package observer

import "github.com/btcsuite/btcd/wire"

const (
	QuitSignal EventType = iota
	SealSpent
)

type EventType int

func (et EventType) String() string {
	switch et {
	case QuitSignal:
		return "QuitSignal"
	case SealSpent:
		return "SealSpent"
	default:
		return "Unknown"
	}
}

type QuitEvent struct{}

func (q QuitEvent) Type() EventType {
	return QuitSignal
}

// SealSpentEvent is emitted once the observed seal outpoint gets spent. It
// carries the full witness transaction so that consumers can evaluate the
// seal without another chain round trip.
type SealSpentEvent struct {
	Outpoint     wire.OutPoint
	SpendingTxid string
	Witness      *wire.MsgTx
	Confirmed    bool
}

func (s SealSpentEvent) Type() EventType {
	return SealSpent
}
