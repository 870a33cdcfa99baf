package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Event is a record emitted by a contract during a call.
type Event interface {
	EventName() string
}

// Log is an emitted event together with its emitter and position.
type Log struct {
	ID        uuid.UUID
	Index     uint64
	Address   common.Address
	Timestamp uint64
	Event     Event
}

// Name returns the event name.
func (l Log) Name() string {
	return l.Event.EventName()
}

// Sink receives the events of committed calls, in commit order.
type Sink interface {
	Publish(ctx context.Context, logs []Log) error
}

// Tx is the state shared by every frame of one atomic call.
type Tx struct {
	chain   *Chain
	origin  common.Address
	time    uint64
	journal []func()
	logs    []Log
}

func (tx *Tx) revert() {
	for i := len(tx.journal) - 1; i >= 0; i-- {
		tx.journal[i]()
	}
	tx.journal = nil
	tx.logs = nil
}

// Call is one frame of an atomic call: the shared transaction plus the
// address that invoked the current contract.
type Call struct {
	tx     *Tx
	Sender common.Address
}

// As returns a frame in which sender invokes the next contract. Contracts use
// it to call other contracts as themselves.
func (c *Call) As(sender common.Address) *Call {
	return &Call{tx: c.tx, Sender: sender}
}

// Origin is the externally submitting account.
func (c *Call) Origin() common.Address {
	return c.tx.origin
}

// Now is the timestamp of the call, read once when the call started.
func (c *Call) Now() uint64 {
	return c.tx.time
}

// Chain returns the ledger the call runs on.
func (c *Call) Chain() *Chain {
	return c.tx.chain
}

// OnRevert registers an undo step that runs if the call fails.
func (c *Call) OnRevert(undo func()) {
	c.tx.journal = append(c.tx.journal, undo)
}

// Emit records an event from the contract at addr.
func (c *Call) Emit(addr common.Address, ev Event) {
	c.tx.logs = append(c.tx.logs, Log{
		ID:        uuid.New(),
		Address:   addr,
		Timestamp: c.tx.time,
		Event:     ev,
	})
}

// Decimal renders an event amount for JSON payloads. Amounts exceed the
// integer range of float64 consumers, so they travel as decimal strings.
func Decimal(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
