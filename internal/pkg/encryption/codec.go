package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	KeyLength   = 32 // AES-256
	NonceLength = 16
	TagLength   = 16

	// scrypt parameters and salt are fixed so a passphrase always derives the same key.
	scryptN    = 16384
	scryptR    = 8
	scryptP    = 1
	scryptSalt = "salt"

	envelopeSeparator = ":"
)

var (
	ErrMissingKey = errors.New("message encryption key is not configured")
	ErrDecryption = errors.New("message could not be decrypted")
)

var base64KeyPattern = regexp.MustCompile(`^[A-Za-z0-9+/]+=*$`)

// Codec seals message bodies with AES-256-GCM.
//
// Envelope format: "<nonceHex>:<tagHex>:<ciphertextHex>", nonce and tag are 16 bytes each.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a codec from the process secret. A 44 character base64 secret is used as the raw
// key, anything else is treated as a passphrase and stretched with scrypt.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}

	key, err := deriveKey(secret)
	if err != nil {
		return nil, fmt.Errorf("derive message key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, NonceLength)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Codec{aead: aead}, nil
}

func deriveKey(secret string) ([]byte, error) {
	if len(secret) == 44 && base64KeyPattern.MatchString(secret) {
		if key, err := base64.StdEncoding.DecodeString(secret); err == nil && len(key) == KeyLength {
			return key, nil
		}
	}
	return scrypt.Key([]byte(secret), []byte(scryptSalt), scryptN, scryptR, scryptP, KeyLength)
}

// GenerateKey returns a random key in the base64 form accepted by NewCodec.
func GenerateKey() (string, error) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if c == nil || c.aead == nil {
		return "", ErrMissingKey
	}

	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the tag after the ciphertext.
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-TagLength], sealed[len(sealed)-TagLength:]

	return strings.Join([]string{
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, envelopeSeparator), nil
}

// Decrypt opens an envelope produced by Encrypt. Any structural or integrity failure yields
// an error wrapping ErrDecryption and no plaintext.
func (c *Codec) Decrypt(envelope string) (string, error) {
	if c == nil || c.aead == nil {
		return "", ErrMissingKey
	}

	parts := strings.Split(envelope, envelopeSeparator)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 fields, got %d", ErrDecryption, len(parts))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != NonceLength {
		return "", fmt.Errorf("%w: bad nonce", ErrDecryption)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != TagLength {
		return "", fmt.Errorf("%w: bad tag", ErrDecryption)
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext", ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value has the envelope shape. It does not verify the tag.
func IsEncrypted(value string) bool {
	parts := strings.Split(value, envelopeSeparator)
	if len(parts) != 3 {
		return false
	}
	return isHexOfLength(parts[0], NonceLength*2) && isHexOfLength(parts[1], TagLength*2)
}

func isHexOfLength(s string, n int) bool {
	if len(s) != n {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
