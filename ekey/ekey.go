package ekey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

type Key [32]byte

func KeyFromPassphrase(passphrase string) Key {
	return sha256.Sum256([]byte(passphrase))
}

func SealWithPassphrase(passphrase, secret string) string {
	key := KeyFromPassphrase(passphrase)
	return SealWithKey(&key, secret)
}

func SealWithKey(key *Key, secret string) string {
	nonce := [24]byte{}
	_, err := io.ReadFull(rand.Reader, nonce[:])
	if err != nil {
		panic("insufficient randomness for nonce generation!")
	}
	sealed := make([]byte, 0, len(nonce)+len(secret)+secretbox.Overhead)
	sealed = append(sealed, nonce[:]...)
	sealed = secretbox.Seal(sealed, []byte(secret), &nonce, (*[32]byte)(key))
	return base64.URLEncoding.EncodeToString(sealed)
}

func OpenWithPassphrase(passphrase, sealed string) ([]byte, bool) {
	key := KeyFromPassphrase(passphrase)
	return OpenWithKey(&key, sealed)
}

func OpenWithKey(key *Key, sealed string) ([]byte, bool) {
	nonce := [24]byte{}
	decoded := make([]byte, base64.URLEncoding.DecodedLen(len(sealed)))
	n, err := base64.URLEncoding.Decode(decoded, []byte(sealed))
	if err != nil {
		return nil, false
	}
	decoded = decoded[:n]
	if len(decoded) < len(nonce) {
		return nil, false
	}
	copy(nonce[:], decoded[:len(nonce)])
	box := decoded[len(nonce):]
	return secretbox.Open(nil, box, &nonce, (*[32]byte)(key))
}
