// Package signer produces signed URLs for HMAC authenticated HTTP APIs.
//
// Every request carries three query params injected at signing time:
//
//	public_key   identifies the caller
//	timestamp    dates the request, UTC "YYYY-MM-DDTHH:MM:SSZ"
//	signature    proves possession of the private key
//
// The signature covers a canonical string assembled from the request:
//
//	METHOD\n
//	path\n
//	serialized params
//
// METHOD is uppercased and the path is included verbatim. The params,
// with public_key and timestamp injected but never signature, are
// serialized by percent encoding each key and value, joining them as
// k=v pairs, sorting the joined pairs as plain strings and joining with
// "&". The canonical string is signed with HMAC-SHA256 under the private
// key and the digest is placed base64 encoded (standard alphabet, with
// padding) in the signature param.
//
// Typical use:
//
//	s, err := signer.New(
//		signer.WithCredentials("demo", "opensesame"),
//		signer.WithEndpoint("https://api.example.com"),
//	)
//	if err != nil {
//		// missing credentials or unusable MAC primitive
//	}
//	url := s.Sign("/api/v1/report", "GET", map[string]string{"window": "7d"})
//
// The private key never leaves the Signer: it is not logged and does not
// appear in produced URLs.
package signer
