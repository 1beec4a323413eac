package encryption

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec("a passphrase that is not a raw key")
	require.NoError(t, err)
	return codec
}

func flipHexChar(s string, i int) string {
	b := []byte(s)
	if b[i] == '0' {
		b[i] = '1'
	} else {
		b[i] = '0'
	}
	return string(b)
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	inputs := []string{
		"",
		"hello",
		"with:colons:inside:it",
		"héllo wörld 👋",
		strings.Repeat("long message ", 500),
	}

	for _, in := range inputs {
		envelope, err := codec.Encrypt(in)
		require.NoError(t, err)

		out, err := codec.Decrypt(envelope)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestCodec_FreshNonceEveryCall(t *testing.T) {
	codec := newTestCodec(t)

	a, err := codec.Encrypt("same text")
	require.NoError(t, err)
	b, err := codec.Encrypt("same text")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, strings.Split(a, ":")[0], strings.Split(b, ":")[0])

	for _, envelope := range []string{a, b} {
		out, err := codec.Decrypt(envelope)
		require.NoError(t, err)
		assert.Equal(t, "same text", out)
	}
}

func TestCodec_TamperDetection(t *testing.T) {
	codec := newTestCodec(t)
	envelope, err := codec.Encrypt("attack at dawn")
	require.NoError(t, err)
	parts := strings.Split(envelope, ":")

	t.Run("tag", func(t *testing.T) {
		for i := 0; i < len(parts[1]); i++ {
			tampered := parts[0] + ":" + flipHexChar(parts[1], i) + ":" + parts[2]
			_, err := codec.Decrypt(tampered)
			assert.ErrorIs(t, err, ErrDecryption)
		}
	})

	t.Run("ciphertext", func(t *testing.T) {
		for i := 0; i < len(parts[2]); i++ {
			tampered := parts[0] + ":" + parts[1] + ":" + flipHexChar(parts[2], i)
			_, err := codec.Decrypt(tampered)
			assert.ErrorIs(t, err, ErrDecryption)
		}
	})

	t.Run("nonce", func(t *testing.T) {
		tampered := flipHexChar(parts[0], 0) + ":" + parts[1] + ":" + parts[2]
		_, err := codec.Decrypt(tampered)
		assert.ErrorIs(t, err, ErrDecryption)
	})
}

func TestCodec_DecryptMalformed(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name     string
		envelope string
	}{
		{name: "plain text", envelope: "plain text"},
		{name: "two fields", envelope: "a:b"},
		{name: "four fields", envelope: "a:b:c:d"},
		{name: "short nonce", envelope: "abcd:" + strings.Repeat("0", 32) + ":00"},
		{name: "short tag", envelope: strings.Repeat("0", 32) + ":abcd:00"},
		{name: "non hex ciphertext", envelope: strings.Repeat("0", 32) + ":" + strings.Repeat("0", 32) + ":zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decrypt(tt.envelope)
			assert.ErrorIs(t, err, ErrDecryption)
		})
	}
}

func TestCodec_WrongKey(t *testing.T) {
	a := newTestCodec(t)
	b, err := NewCodec("some other passphrase")
	require.NoError(t, err)

	envelope, err := a.Encrypt("secret")
	require.NoError(t, err)

	_, err = b.Decrypt(envelope)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestNewCodec_Keys(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewCodec("")
		assert.ErrorIs(t, err, ErrMissingKey)
	})

	t.Run("raw base64 key", func(t *testing.T) {
		key, err := GenerateKey()
		require.NoError(t, err)
		assert.Len(t, key, 44)

		raw, err := base64.StdEncoding.DecodeString(key)
		require.NoError(t, err)
		assert.Len(t, raw, KeyLength)

		derived, err := deriveKey(key)
		require.NoError(t, err)
		assert.Equal(t, raw, derived)
	})

	t.Run("passphrase is deterministic", func(t *testing.T) {
		k1, err := deriveKey("correct horse battery staple")
		require.NoError(t, err)
		k2, err := deriveKey("correct horse battery staple")
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
		assert.Len(t, k1, KeyLength)
	})

	t.Run("same passphrase decrypts across codecs", func(t *testing.T) {
		a := newTestCodec(t)
		b := newTestCodec(t)
		envelope, err := a.Encrypt("portable")
		require.NoError(t, err)
		out, err := b.Decrypt(envelope)
		require.NoError(t, err)
		assert.Equal(t, "portable", out)
	})

	t.Run("nil codec", func(t *testing.T) {
		var c *Codec
		_, err := c.Encrypt("x")
		assert.ErrorIs(t, err, ErrMissingKey)
		_, err = c.Decrypt("x")
		assert.ErrorIs(t, err, ErrMissingKey)
	})
}

func TestIsEncrypted(t *testing.T) {
	codec := newTestCodec(t)

	for _, in := range []string{"", "hello", "x:y:z"} {
		envelope, err := codec.Encrypt(in)
		require.NoError(t, err)
		assert.True(t, IsEncrypted(envelope), "envelope of %q", in)
	}

	assert.False(t, IsEncrypted("plain text"))
	assert.False(t, IsEncrypted("a:b"))
	assert.False(t, IsEncrypted("a:b:c"))
	assert.False(t, IsEncrypted(strings.Repeat("g", 32)+":"+strings.Repeat("0", 32)+":00"))
	assert.True(t, IsEncrypted(strings.Repeat("0", 32)+":"+strings.Repeat("f", 32)+":"))
}
