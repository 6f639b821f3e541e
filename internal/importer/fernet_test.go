package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKey is 32 bytes of 0x01..0x20, url-safe base64 encoded.
const testKey = "AQIDBAUGBwgJCgsMDQ4PEBESExQVFhcYGRobHB0eHyA="

// referenceKey and referenceToken are the published Fernet test vector. The
// token was issued in 1985 and holds "hello".
const (
	referenceKey   = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="
	referenceToken = "gAAAAAAdwJ6wAAECAwQFBgcICQoLDA0ODy021cpGVWKZ_eEwCGM4BLLF_5CV9dOPmrhuVUPgJobwOz7JcbmrR64jVmpU4IwqDA=="
)

func TestFernetRoundTrip(t *testing.T) {
	f, err := NewFernet(testKey)
	require.NoError(t, err)

	for _, plaintext := range []string{"a", "exactly sixteen!", "payee_first_name,payee_last_name\nAda,Lovelace\n"} {
		token, err := f.Encrypt([]byte(plaintext))
		require.NoError(t, err)

		got, err := f.Decrypt(token, 0)
		require.NoError(t, err)
		assert.Equal(t, plaintext, string(got))
	}
}

func TestFernetDecryptReferenceToken(t *testing.T) {
	f, err := NewFernet(referenceKey)
	require.NoError(t, err)

	got, err := f.Decrypt([]byte(referenceToken), 0)

	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestFernetDecryptRejects(t *testing.T) {
	f, err := NewFernet(testKey)
	require.NoError(t, err)

	token, err := f.Encrypt([]byte("secret batch"))
	require.NoError(t, err)

	t.Run("trailing newline is tolerated", func(t *testing.T) {
		_, err := f.Decrypt(append(append([]byte{}, token...), '\n'), 0)
		assert.NoError(t, err)
	})

	t.Run("tampered token", func(t *testing.T) {
		tampered := append([]byte{}, token...)
		i := len(tampered) / 2
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		_, err := f.Decrypt(tampered, 0)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := GenerateKey()
		require.NoError(t, err)
		g, err := NewFernet(other)
		require.NoError(t, err)

		_, err = g.Decrypt(token, 0)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		ref, err := NewFernet(referenceKey)
		require.NoError(t, err)

		_, err = ref.Decrypt([]byte(referenceToken), time.Hour)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("within ttl", func(t *testing.T) {
		_, err := f.Decrypt(token, time.Hour)
		assert.NoError(t, err)
	})

	t.Run("wrong key with ttl", func(t *testing.T) {
		other, err := GenerateKey()
		require.NoError(t, err)
		g, err := NewFernet(other)
		require.NoError(t, err)

		_, err = g.Decrypt(token, time.Hour)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := f.Decrypt([]byte("not a token!"), 0)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewFernetInvalidKey(t *testing.T) {
	for _, key := range []string{"", "short", "AQIDBAUGBwgJCgsMDQ4PEA=="} {
		_, err := NewFernet(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
