package auth

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

type keyRef struct {
	issuer string
	kid    string
}

// KeyStore holds verification keys by (issuer, kid). Safe for concurrent use
// so keys can be rotated while serving.
type KeyStore struct {
	mu   sync.RWMutex
	hmac map[keyRef][]byte
	rsa  map[keyRef]*rsa.PublicKey
}

// NewKeyStore creates a new KeyStore
func NewKeyStore() *KeyStore {
	return &KeyStore{
		hmac: make(map[keyRef][]byte),
		rsa:  make(map[keyRef]*rsa.PublicKey),
	}
}

// LoadHS256Key registers an HMAC secret.
func (ks *KeyStore) LoadHS256Key(issuer, kid string, secret []byte) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.hmac[keyRef{issuer, kid}] = secret
}

// LoadRS256Key parses and registers an RSA public key. Literal "\n"
// sequences (common when the PEM comes from an env var) are normalized.
func (ks *KeyStore) LoadRS256Key(issuer, kid string, publicKeyPEM string) error {
	pem := strings.TrimSpace(strings.ReplaceAll(publicKeyPEM, `\n`, "\n"))

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.rsa[keyRef{issuer, kid}] = publicKey
	return nil
}

func (ks *KeyStore) GetHS256Key(issuer, kid string) ([]byte, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	secret, ok := ks.hmac[keyRef{issuer, kid}]
	return secret, ok
}

func (ks *KeyStore) GetRS256Key(issuer, kid string) (*rsa.PublicKey, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, ok := ks.rsa[keyRef{issuer, kid}]
	return key, ok
}
