package signing

import (
	"fmt"

	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
)

// VerificationStatus classifies the outcome of a verification.
type VerificationStatus int

const (
	// StatusValid means the signature matches the content.
	StatusValid VerificationStatus = iota
	// StatusInvalid means the signature was readable but does not match the content.
	StatusInvalid
	// StatusError means the signature could not be checked at all.
	StatusError
)

func (s VerificationStatus) String() string {
	switch s {
	case StatusValid:
		return "Valid"
	case StatusInvalid:
		return "Invalid"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("VerificationStatus(%d)", int(s))
	}
}

func (s VerificationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CustomState overrides how a host presents a signature.
type CustomState struct {
	Icon        string `json:"icon"`
	IconName    string `json:"iconName"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// VerificationResult is the outcome of verifying a signature on a signature request.
type VerificationResult struct {
	Status               VerificationStatus `json:"status"`
	SignDate             string             `json:"signDate,omitempty"`
	IssuerName           string             `json:"issuerName,omitempty"`
	SignerName           string             `json:"signerName,omitempty"`
	Error                string             `json:"error,omitempty"`
	CustomState          *CustomState       `json:"customState,omitempty"`
	SignerNameForeground string             `json:"signerNameForeground,omitempty"`
}

// ImportedVerificationResult is the outcome of verifying an imported signature.
type ImportedVerificationResult struct {
	Status               VerificationStatus   `json:"status"`
	SignerName           string               `json:"signerName,omitempty"`
	PublicKeyOID         string               `json:"publicKeyOid,omitempty"`
	SignatureType        attach.SignatureType `json:"signatureType,omitempty"`
	Error                string               `json:"error,omitempty"`
	SignerNameForeground string               `json:"signerNameForeground,omitempty"`
}
