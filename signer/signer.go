package signer

import (
	"crypto"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/andrewchambers/urlsign/canonical"
)

// Params injected into every signed request.
const (
	ParamPublicKey = "public_key"
	ParamTimestamp = "timestamp"
	ParamSignature = "signature"
)

var (
	// ErrInvalidCredentials reports a missing or empty key in the
	// credentials handed to New.
	ErrInvalidCredentials = errors.New("invalid signing credentials")
	// ErrUnavailableMAC reports that the signing primitive cannot be
	// used in this binary.
	ErrUnavailableMAC = errors.New("mac primitive unavailable")
)

// MAC is the keyed digest primitive signatures are computed with.
type MAC interface {
	// Available reports whether the primitive is usable.
	Available() bool
	// Sum computes the digest of message keyed with key.
	Sum(key, message []byte) []byte
}

// HMACSHA256 is the MAC the wire protocol is defined over.
var HMACSHA256 MAC = hmacSHA256{}

type hmacSHA256 struct{}

func (hmacSHA256) Available() bool {
	return crypto.SHA256.Available()
}

func (hmacSHA256) Sum(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(message)
	return mac.Sum(nil)
}

// Signer produces signed request URLs for one credential pair. It is
// immutable after New and safe for concurrent use.
type Signer struct {
	publicKey  string
	privateKey string
	endpoint   string
	mac        MAC
	now        func() time.Time
}

// Option configures a Signer handed to New.
type Option func(*Signer)

// WithCredentials sets the key pair, both keys are required. The private
// key never appears in produced URLs.
func WithCredentials(publicKey, privateKey string) Option {
	return func(s *Signer) {
		s.publicKey = publicKey
		s.privateKey = privateKey
	}
}

// WithEndpoint sets the base URL prepended to signed paths, no trailing
// slash needed. Left empty, Sign produces host relative URLs.
func WithEndpoint(endpoint string) Option {
	return func(s *Signer) {
		s.endpoint = endpoint
	}
}

// WithMAC substitutes the signing primitive.
func WithMAC(m MAC) Option {
	return func(s *Signer) {
		s.mac = m
	}
}

// WithNowFunc substitutes the clock used for timestamp params.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// New validates the options and returns a ready Signer. Signing cannot
// fail after construction succeeds.
func New(opts ...Option) (*Signer, error) {
	s := &Signer{
		mac: HMACSHA256,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.publicKey == "" {
		return nil, fmt.Errorf("%w: empty public key", ErrInvalidCredentials)
	}
	if s.privateKey == "" {
		return nil, fmt.Errorf("%w: empty private key", ErrInvalidCredentials)
	}
	if s.mac == nil {
		return nil, fmt.Errorf("%w: no primitive configured", ErrUnavailableMAC)
	}
	if !s.mac.Available() {
		return nil, fmt.Errorf("%w: primitive not linked into binary", ErrUnavailableMAC)
	}
	return s, nil
}

// Sign builds the signed URL for a request. The public_key and timestamp
// params are injected over any caller supplied values and the signature
// param is computed from the canonical string, which never includes a
// signature. The caller's map is left untouched.
func (s *Signer) Sign(path, method string, params map[string]string) string {
	working := make(map[string]string, len(params)+3)
	for k, v := range params {
		working[k] = v
	}
	delete(working, ParamSignature)
	working[ParamPublicKey] = s.publicKey
	working[ParamTimestamp] = canonical.FormatTimestamp(s.now())

	sts := canonical.StringToSign(method, path, working)
	digest := s.mac.Sum([]byte(s.privateKey), []byte(sts))
	working[ParamSignature] = base64.StdEncoding.EncodeToString(digest)

	return s.endpoint + path + "?" + canonical.EncodeParams(working)
}
