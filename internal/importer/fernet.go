package importer

import (
	"bytes"
	"errors"
	"time"

	"github.com/fernet/fernet-go"
)

var (
	ErrInvalidKey   = errors.New("encryption key must be 32 url-safe base64 encoded bytes")
	ErrInvalidToken = errors.New("invalid fernet token")
	ErrTokenExpired = errors.New("fernet token expired")
)

// Fernet decrypts batch files produced by the upstream export job.
type Fernet struct {
	keys []*fernet.Key
}

func NewFernet(key string) (*Fernet, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return &Fernet{keys: []*fernet.Key{k}}, nil
}

// GenerateKey returns a fresh key in the encoded form NewFernet accepts.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", err
	}
	return k.Encode(), nil
}

// Encrypt seals plaintext into an encoded token stamped with the current time.
func (f *Fernet) Encrypt(plaintext []byte) ([]byte, error) {
	return fernet.EncryptAndSign(plaintext, f.keys[0])
}

// Decrypt verifies and opens an encoded token. A positive ttl rejects tokens
// issued longer ago than ttl; zero disables the age check.
func (f *Fernet) Decrypt(token []byte, ttl time.Duration) ([]byte, error) {
	token = bytes.TrimSpace(token)

	if ttl <= 0 {
		if msg := fernet.VerifyAndDecrypt(token, -1, f.keys); msg != nil {
			return msg, nil
		}
		return nil, ErrInvalidToken
	}

	if msg := fernet.VerifyAndDecrypt(token, ttl, f.keys); msg != nil {
		return msg, nil
	}
	// The library does not say why a token failed. One that opens without
	// the age check is authentic but too old.
	if fernet.VerifyAndDecrypt(token, -1, f.keys) != nil {
		return nil, ErrTokenExpired
	}
	return nil, ErrInvalidToken
}
