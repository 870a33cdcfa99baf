package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Chain is an in-process ledger. Every externally submitted call runs to
// completion under a single lock, sees one timestamp, and either commits all
// of its writes and events or none of them.
type Chain struct {
	mu sync.Mutex
	// pubMu is taken before mu is released so sinks see batches in commit
	// order without holding the ledger lock while they publish.
	pubMu     sync.Mutex
	id        *big.Int
	clock     Clock
	contracts *Store[common.Address, any]
	nonces    *Store[common.Address, uint64]
	logs      []Log
	sinks     []Sink
	logger    *zap.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithSink registers a sink that receives the events of every committed call.
func WithSink(sink Sink) Option {
	return func(c *Chain) {
		c.sinks = append(c.sinks, sink)
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// New creates an empty ledger identified by chainID.
func New(chainID *big.Int, clock Clock, opts ...Option) *Chain {
	c := &Chain{
		id:        new(big.Int).Set(chainID),
		clock:     clock,
		contracts: NewStore[common.Address, any](),
		nonces:    NewStore[common.Address, uint64](),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the chain id used for signature domains.
func (c *Chain) ID() *big.Int {
	return new(big.Int).Set(c.id)
}

// Receipt describes a committed call.
type Receipt struct {
	Time uint64
	Logs []Log
}

// Execute runs fn as one atomic call sent by sender. Any error returned by fn
// reverts every write fn made through the journal, in reverse order, and drops
// the events it emitted.
func (c *Chain) Execute(ctx context.Context, sender common.Address, fn func(call *Call) error) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("call not started: %w", err)
	}

	c.mu.Lock()
	tx := &Tx{chain: c, origin: sender, time: c.clock.Now()}
	err := run(&Call{tx: tx, Sender: sender}, fn)
	if err != nil {
		tx.revert()
		c.mu.Unlock()
		c.logger.Debug("call reverted",
			zap.String("sender", sender.Hex()),
			zap.Uint64("time", tx.time),
			zap.String("reason", NameOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	base := uint64(len(c.logs))
	for i := range tx.logs {
		tx.logs[i].Index = base + uint64(i)
	}
	c.logs = append(c.logs, tx.logs...)
	receipt := &Receipt{Time: tx.time, Logs: tx.logs}
	sinks := c.sinks
	publish := len(receipt.Logs) > 0 && len(sinks) > 0
	if publish {
		c.pubMu.Lock()
	}
	c.mu.Unlock()

	c.logger.Debug("call committed",
		zap.String("sender", sender.Hex()),
		zap.Uint64("time", tx.time),
		zap.Int("logs", len(tx.logs)),
	)

	if publish {
		defer c.pubMu.Unlock()
		for _, sink := range sinks {
			if err := sink.Publish(ctx, receipt.Logs); err != nil {
				c.logger.Error("failed to publish committed events", zap.Error(err))
			}
		}
	}

	return receipt, nil
}

// run converts a panic inside a contract into a reverting error so the
// journal is still unwound and the lock released.
func run(call *Call, fn func(call *Call) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallPanicked, r)
		}
	}()
	return fn(call)
}

// View runs fn with the ledger locked for reading. fn receives the current
// timestamp and must not write state.
func (c *Chain) View(fn func(now uint64) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.clock.Now())
}

// ContractAt returns the contract deployed at addr. It must only be called
// from inside Execute or View.
func (c *Chain) ContractAt(addr common.Address) (any, bool) {
	return c.contracts.Get(addr)
}

// Logs returns a copy of every committed event.
func (c *Chain) Logs() []Log {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Log, len(c.logs))
	copy(out, c.logs)
	return out
}

// deploy stores contract at addr. A non-empty address cannot be reused.
func (c *Chain) deploy(call *Call, addr common.Address, contract any) error {
	if _, ok := c.contracts.Get(addr); ok {
		return fmt.Errorf("%w: %s", ErrAddressInUse, addr.Hex())
	}
	c.contracts.Set(call, addr, contract)
	return nil
}

// Deploy creates a contract with the CREATE address scheme, deriving the
// address from the sender and its deployment nonce. construct receives the
// final address so the contract can know itself.
func Deploy[T any](call *Call, construct func(address common.Address) T) (T, common.Address, error) {
	c := call.tx.chain
	nonce, _ := c.nonces.Get(call.Sender)
	addr := crypto.CreateAddress(call.Sender, nonce)
	c.nonces.Set(call, call.Sender, nonce+1)

	contract := construct(addr)
	if err := c.deploy(call, addr, contract); err != nil {
		var zero T
		return zero, common.Address{}, err
	}
	return contract, addr, nil
}

// DeployAt places a contract at a precomputed address, as CREATE2 does.
func DeployAt(call *Call, addr common.Address, contract any) error {
	return call.tx.chain.deploy(call, addr, contract)
}

// Resolve looks up the contract at addr and asserts it implements T.
func Resolve[T any](call *Call, addr common.Address) (T, error) {
	return Lookup[T](call.tx.chain, addr)
}

// Lookup is Resolve for code running inside View.
func Lookup[T any](c *Chain, addr common.Address) (T, error) {
	var zero T
	contract, ok := c.ContractAt(addr)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNoContract, addr.Hex())
	}
	typed, ok := contract.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s has unexpected type %T", ErrNoContract, addr.Hex(), contract)
	}
	return typed, nil
}
