package kvstore

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceLen = 24

var errSealedValue = errors.New("could not open sealed value: wrong secret key or corrupt data")

// boxKey derives a fixed-size secretbox key from the app secret.
func boxKey(secret string) *[32]byte {
	key := sha256.Sum256([]byte(secret))
	return &key
}

// seal encrypts value with a random nonce prepended to the ciphertext.
func seal(key *[32]byte, value []byte) ([]byte, error) {
	var nonce [nonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generating nonce")
	}
	return secretbox.Seal(nonce[:], value, &nonce, key), nil
}

// unseal reverses seal. Fails if the key does not match or the data was tampered with.
func unseal(key *[32]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < nonceLen {
		return nil, errSealedValue
	}
	var nonce [nonceLen]byte
	copy(nonce[:], sealed[:nonceLen])
	value, ok := secretbox.Open(nil, sealed[nonceLen:], &nonce, key)
	if !ok {
		return nil, errSealedValue
	}
	return value, nil
}
