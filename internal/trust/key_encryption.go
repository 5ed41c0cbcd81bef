// Package trust provides encrypted-at-rest storage for client private
// key material — one of SPEC_FULL.md's supplemented features, grounded
// on the original implementation's key_encryption module: a passphrase
// pulled from the environment, PBKDF2-HMAC-SHA256 key derivation, and
// AES-256-GCM authenticated encryption, with the serialized format
// salt(32) || nonce(12) || ciphertext+tag.
package trust

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 600_000
	saltSize         = 32
	nonceSize        = 12
	keySize          = 32 // AES-256

	passphraseEnvVar = "CRYYPT_KEY_ENCRYPTION_PASSPHRASE"
)

// validatePassphrase enforces the same strength rules the original
// implementation applies before ever touching key material: minimum
// length, character-class diversity, minimum uniqueness, and rejection
// of sequential or repeated-substring patterns.
func validatePassphrase(p string) error {
	if len(p) < 32 {
		return errors.New("trust: encryption passphrase must be at least 32 characters")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	unique := make(map[rune]struct{})
	for _, r := range p {
		unique[r] = struct{}{}
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSymbol = true
		}
	}
	classes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if ok {
			classes++
		}
	}
	if classes < 3 {
		return errors.New("trust: encryption passphrase must contain at least 3 character classes (lowercase, uppercase, digits, symbols)")
	}
	if len(unique) < 12 {
		return errors.New("trust: encryption passphrase must contain at least 12 unique characters")
	}
	if hasWeakPatterns(p) {
		return errors.New("trust: encryption passphrase contains weak patterns (sequential or repeated characters)")
	}
	return nil
}

// hasWeakPatterns detects 3-character ascending/descending runs (e.g.
// "abc", "123") and any repeated substring of length >= 3.
func hasWeakPatterns(passphrase string) bool {
	chars := []rune(passphrase)
	for i := 0; i+2 < len(chars); i++ {
		a, b, c := chars[i], chars[i+1], chars[i+2]
		if (b == a+1 && c == b+1) || (b == a-1 && c == b-1) {
			return true
		}
	}
	n := len(chars)
	for i := 0; i+5 <= n; i++ {
		for length := 3; i+length*2 <= n; length++ {
			first := string(chars[i : i+length])
			second := string(chars[i+length : i+length*2])
			if first == second {
				return true
			}
		}
	}
	return false
}

// passphraseFromEnv reads and validates CRYYPT_KEY_ENCRYPTION_PASSPHRASE.
func passphraseFromEnv() (string, error) {
	p, ok := os.LookupEnv(passphraseEnvVar)
	if !ok {
		return "", fmt.Errorf("trust: %s environment variable not set", passphraseEnvVar)
	}
	if err := validatePassphrase(p); err != nil {
		return "", err
	}
	return p, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
}

// EncryptPrivateKey encrypts PEM-encoded key material with AES-256-GCM
// under a key derived from the environment passphrase, returning
// salt || nonce || ciphertext+tag.
func EncryptPrivateKey(keyPEM []byte) ([]byte, error) {
	passphrase, err := passphraseFromEnv()
	if err != nil {
		return nil, err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("trust: generating random salt: %w", err)
	}

	key := deriveKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("trust: creating encryption key: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("trust: creating encryption key: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("trust: generating random nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, keyPEM, nil)

	out := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// SecureKeyMaterial wraps decrypted key bytes. It exists as a distinct
// type (rather than a bare []byte) so call sites that accept it can't
// be handed an arbitrary byte slice by accident.
type SecureKeyMaterial struct {
	PEM []byte
}

// DecryptPrivateKey reverses EncryptPrivateKey. Every authentication
// failure returns the same constant message, so the error gives no
// oracle on why decryption failed; input shorter than salt, nonce and
// tag is reported as an invalid format, and a missing or invalid
// passphrase returns its own error.
func DecryptPrivateKey(encrypted []byte) (*SecureKeyMaterial, error) {
	const minSize = saltSize + nonceSize + 16 // + GCM tag
	if len(encrypted) < minSize {
		return nil, errors.New("trust: invalid encrypted data format")
	}

	salt := encrypted[:saltSize]
	nonce := encrypted[saltSize : saltSize+nonceSize]
	ciphertext := encrypted[saltSize+nonceSize:]

	passphrase, err := passphraseFromEnv()
	if err != nil {
		return nil, err
	}

	key := deriveKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.New("trust: authentication failed")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.New("trust: authentication failed")
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("trust: authentication failed")
	}
	return &SecureKeyMaterial{PEM: plaintext}, nil
}
