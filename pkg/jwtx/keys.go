package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// GenerateKeyPEM generates a new Ed25519 private key and returns it in PEM
// (PKCS8) format. Ed25519 keys are always 256 bits, no size parameter.
func GenerateKeyPEM() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ParseKeyPEM parses a PEM (PKCS8) encoded Ed25519 private key.
func ParseKeyPEM(pemKey []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}
	return key, nil
}

// LoadOrGenerateKey reads the signing key from file, generating and
// persisting a fresh one on first boot. The key is process-wide read-only
// state; any failure here is fatal at startup, never a per-request error.
func LoadOrGenerateKey(file string) (ed25519.PrivateKey, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, err
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		pemKey, err := GenerateKeyPEM()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(file, pemKey, 0600); err != nil {
			return nil, err
		}
		return ParseKeyPEM(pemKey)
	}

	pemKey, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParseKeyPEM(pemKey)
}
