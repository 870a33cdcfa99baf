// Package clone deploys EIP-1167 minimal proxies at CREATE2 addresses.
//
// A clone shares its logic with an implementation contract and carries its
// own state. Addresses are derived exactly as OpenZeppelin's
// Clones.predictDeterministicAddress does, so they can be computed before the
// clone exists.
package clone

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

var (
	ErrNotCloneable = chain.NewError(chain.KindCollaborator, "ImplementationNotCloneable")
	ErrCreateFailed = chain.NewError(chain.KindCollaborator, "ERC1167CreateFailed")
)

var (
	proxyPrefix = common.FromHex("0x3d602d80600a3d3981f3363d3d373d3d3d363d73")
	proxySuffix = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

// CreationCode returns the EIP-1167 creation code delegating to implementation.
func CreationCode(implementation common.Address) []byte {
	code := make([]byte, 0, len(proxyPrefix)+common.AddressLength+len(proxySuffix))
	code = append(code, proxyPrefix...)
	code = append(code, implementation.Bytes()...)
	code = append(code, proxySuffix...)
	return code
}

// PredictDeterministicAddress returns the address deployer would create a
// clone of implementation at for salt.
func PredictDeterministicAddress(implementation common.Address, salt common.Hash, deployer common.Address) common.Address {
	return crypto.CreateAddress2(deployer, salt, crypto.Keccak256(CreationCode(implementation)))
}

// Template is an implementation contract able to produce fresh, uninitialized
// instances of itself.
type Template[T any] interface {
	NewClone(address common.Address) T
}

// Instance records how a clone was created.
type Instance struct {
	Implementation common.Address
	Salt           common.Hash
}

// Registry is the arena of clones created by one deployer, keyed by address.
type Registry[T any] struct {
	deployer  common.Address
	instances *chain.Store[common.Address, Instance]
}

func NewRegistry[T any](deployer common.Address) *Registry[T] {
	return &Registry[T]{
		deployer:  deployer,
		instances: chain.NewStore[common.Address, Instance](),
	}
}

// Predict returns the address Clone would use for implementation and salt.
func (r *Registry[T]) Predict(implementation common.Address, salt common.Hash) common.Address {
	return PredictDeterministicAddress(implementation, salt, r.deployer)
}

// Clone deploys a new instance of the template found at implementation.
func (r *Registry[T]) Clone(call *chain.Call, implementation common.Address, salt common.Hash) (T, common.Address, error) {
	var zero T

	template, err := chain.Resolve[Template[T]](call, implementation)
	if err != nil {
		return zero, common.Address{}, fmt.Errorf("%w: %w", ErrNotCloneable, err)
	}

	addr := r.Predict(implementation, salt)
	instance := template.NewClone(addr)
	if err := chain.DeployAt(call, addr, instance); err != nil {
		return zero, common.Address{}, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	r.instances.Set(call, addr, Instance{Implementation: implementation, Salt: salt})

	return instance, addr, nil
}

// Lookup returns how the clone at addr was created.
func (r *Registry[T]) Lookup(addr common.Address) (Instance, bool) {
	return r.instances.Get(addr)
}

// Deployed reports whether addr is a clone created through this registry.
func (r *Registry[T]) Deployed(addr common.Address) bool {
	return r.instances.Has(addr)
}

// Len returns the number of clones created.
func (r *Registry[T]) Len() int {
	return r.instances.Len()
}
