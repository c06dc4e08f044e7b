package crypto

import (
	"sync"

	"github.com/openspdm/responder-core/pkg/protocol"
)

// Registry is a process-wide, write-once collection of cryptographic
// collaborators keyed by the algorithm they implement. A responder process
// registers exactly one implementation per algorithm it supports during
// startup (see refimpl.Register for the reference set), and the dispatcher
// looks collaborators up by the algorithm NEGOTIATE_ALGORITHMS selected.
//
// Registration is write-once per slot, mirroring the Rust reference
// implementation's crypto::*::register() hooks: a given process commits to
// one backend per algorithm for its whole lifetime, so there is no need for
// (and no correctness story for) swapping an implementation out from under
// an in-flight session.
type Registry struct {
	mu      sync.Mutex
	hashers map[protocol.BaseHashAlgo]Hasher
	signers map[protocol.BaseAsymAlgo]Signer
	aeads   map[protocol.AEADAlgo]AEAD
	certOps CertOps
	certSet bool
}

// NewRegistry creates an empty registry. Most processes want the single
// shared instance returned by Default; NewRegistry exists for tests that
// want isolated registration state.
func NewRegistry() *Registry {
	return &Registry{
		hashers: make(map[protocol.BaseHashAlgo]Hasher),
		signers: make(map[protocol.BaseAsymAlgo]Signer),
		aeads:   make(map[protocol.AEADAlgo]AEAD),
	}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
	})
	return defaultReg
}

// RegisterHasher wires h in for the hash algorithm it reports via Algo().
// Returns ErrAlreadyRegistered if that slot is already filled.
func (r *Registry) RegisterHasher(h Hasher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hashers[h.Algo()]; ok {
		return ErrAlreadyRegistered
	}
	r.hashers[h.Algo()] = h
	return nil
}

// RegisterSigner wires s in for the asymmetric algorithm it reports via
// Algo(). Returns ErrAlreadyRegistered if that slot is already filled.
func (r *Registry) RegisterSigner(s Signer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.signers[s.Algo()]; ok {
		return ErrAlreadyRegistered
	}
	r.signers[s.Algo()] = s
	return nil
}

// RegisterAEAD wires a in for the AEAD algorithm it reports via Algo().
// Returns ErrAlreadyRegistered if that slot is already filled.
func (r *Registry) RegisterAEAD(a AEAD) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aeads[a.Algo()]; ok {
		return ErrAlreadyRegistered
	}
	r.aeads[a.Algo()] = a
	return nil
}

// RegisterCertOps wires c in as the process's certificate-chain validator.
// There is exactly one slot, unlike the per-algorithm maps, since
// certificate parsing is not negotiated.
func (r *Registry) RegisterCertOps(c CertOps) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.certSet {
		return ErrAlreadyRegistered
	}
	r.certOps = c
	r.certSet = true
	return nil
}

// Hasher returns the collaborator registered for algo, if any.
func (r *Registry) Hasher(algo protocol.BaseHashAlgo) (Hasher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hashers[algo]
	if !ok {
		return nil, ErrAlgoNotRegistered
	}
	return h, nil
}

// Signer returns the collaborator registered for algo, if any.
func (r *Registry) Signer(algo protocol.BaseAsymAlgo) (Signer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.signers[algo]
	if !ok {
		return nil, ErrAlgoNotRegistered
	}
	return s, nil
}

// AEAD returns the collaborator registered for algo, if any.
func (r *Registry) AEAD(algo protocol.AEADAlgo) (AEAD, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.aeads[algo]
	if !ok {
		return nil, ErrAlgoNotRegistered
	}
	return a, nil
}

// CertOps returns the registered certificate-chain validator, if any.
func (r *Registry) CertOps() (CertOps, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.certSet {
		return nil, ErrAlgoNotRegistered
	}
	return r.certOps, nil
}
