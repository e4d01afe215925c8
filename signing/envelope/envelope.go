// Package envelope implements the wire format of FNV signatures.
//
// An envelope records the digest of the signed content together with the identity of the
// signer. It is serialized as JSON, base64 encoded with the standard alphabet and stored as the
// ASCII bytes of the base64 text. That byte buffer is the signature artifact.
package envelope

import (
	"errors"
	"time"
)

// SignDateLayout is the ISO-8601 rendering used for Envelope.SignDate, always in UTC with
// millisecond precision, e.g. 2025-01-31T12:00:00.000Z.
const SignDateLayout = "2006-01-02T15:04:05.000Z"

var (
	// ErrDecode is returned for every artifact that cannot be turned back into an Envelope,
	// regardless of whether base64, UTF-8 or JSON decoding failed.
	ErrDecode = errors.New("cannot decode signature envelope")

	// ErrMissingFileHash marks an envelope that decoded fine but carries no file hash.
	ErrMissingFileHash = errors.New("signature envelope does not contain a file hash")
)

// Envelope is the record embedded in a signature artifact.
// The JSON field names are part of the wire format and must not change.
type Envelope struct {
	// FileHash is the lowercase hex FNV-1a digest of the signed content.
	FileHash string `json:"fileHash"`
	// SignDate is the signer local capture time, see SignDateLayout.
	SignDate string `json:"signDate"`
	// Subject is the subject name of the signing certificate.
	Subject string `json:"subject"`
	// Issuer is the issuer name of the signing certificate.
	Issuer string `json:"issuer"`
	// PublicKeyOID identifies the provider that produced the envelope.
	PublicKeyOID string `json:"publicKeyOid"`
}

// Validate reports whether the envelope is well-formed.
func (e Envelope) Validate() error {
	if e.FileHash == "" {
		return ErrMissingFileHash
	}
	return nil
}

// FormatSignDate renders t the way Envelope.SignDate expects it.
func FormatSignDate(t time.Time) string {
	return t.UTC().Format(SignDateLayout)
}
