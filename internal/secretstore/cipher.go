package secretstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	saltLength = 16
	keyLength  = 32

	// scrypt cost parameters
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// newAEAD derives an AES-256 key from the passphrase and salt via scrypt
// and returns a GCM cipher for sealing stored values.
func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, errors.Wrap(err, "derive key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "init cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "init gcm")
	}
	return aead, nil
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "generate salt")
	}
	return salt, nil
}

// seal encrypts plaintext with a random nonce prepended to the result.
func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// unseal decrypts data produced by seal.
func unseal(aead cipher.AEAD, data []byte) ([]byte, error) {
	if len(data) < aead.NonceSize() {
		return nil, errors.New("sealed value too short")
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "unseal value")
	}
	return plaintext, nil
}
