package wireclient

import (
	"fmt"

	"github.com/nbd-wtf/go-nostr"
)

// Identity is a Nostr keypair, equivalent to the original crate's Keys
// wrapper around nostr_sdk::Keys.
type Identity struct {
	SecretKey string
	PubKey    string
}

// GenerateIdentity creates a fresh keypair, used when the embedder doesn't
// supply one (spec §4.2: "an Arena not given a secret key generates one").
func GenerateIdentity() (Identity, error) {
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		return Identity{}, fmt.Errorf("wireclient: derive public key: %w", err)
	}
	return Identity{SecretKey: sk, PubKey: pk}, nil
}

// IdentityFromSecretKey derives an Identity from a caller-supplied secret key
// (hex-encoded, as accepted by go-nostr).
func IdentityFromSecretKey(sk string) (Identity, error) {
	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		return Identity{}, fmt.Errorf("wireclient: invalid secret key: %w", err)
	}
	return Identity{SecretKey: sk, PubKey: pk}, nil
}
