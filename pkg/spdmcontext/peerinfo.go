package spdmcontext

// PeerInfo caches facts learned over the course of a connection. When this
// responder answers CHALLENGE, Authenticated is set and CertChainHash holds
// the hash of the chain this responder presented in CHALLENGE_AUTH.
// LeafPublicKey is the requester's leaf public key, stored when the
// encapsulated GET_CERTIFICATE delivery validates the requester's chain.
type PeerInfo struct {
	CertChainHash []byte
	LeafPublicKey []byte
	Authenticated bool
}
