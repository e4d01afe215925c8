package v1alpha1

import (
	"ocm.software/open-component-model/bindings/go/runtime"
)

const (
	// ConfigType is the runtime type of the FNV signing configuration.
	ConfigType = "FNVSigningConfiguration"
	Version    = "v1alpha1"

	// AlgorithmFNV1a is the provider identity token of FNV signatures.
	// It is recorded as publicKeyOid in every envelope and used to select the provider.
	AlgorithmFNV1a = "fnva-1"
)

// Config defines configuration for signing and verification based on AlgorithmFNV1a.
//
// +k8s:deepcopy-gen:interfaces=ocm.software/open-component-model/bindings/go/runtime.Typed
// +k8s:deepcopy-gen=true
// +ocm:typegen=true
// +ocm:jsonschema-gen=true
type Config struct {
	// Type identifies this configuration object’s runtime type.
	// +ocm:jsonschema-gen:enum=FNVSigningConfiguration/v1alpha1
	// +ocm:jsonschema-gen:enum:deprecated=FNVSigningConfiguration
	Type runtime.Type `json:"type"`

	// Certificates are the identities offered for signing.
	// If empty, the built-in test certificate is offered.
	Certificates []Certificate `json:"certificates,omitempty"`
}

// GetCertificates returns the configured certificates or the built-in test certificate.
func (cfg *Config) GetCertificates() []Certificate {
	if cfg == nil || len(cfg.Certificates) == 0 {
		return []Certificate{TestCertificate()}
	}
	return cfg.Certificates
}

// Certificate is a signing identity. Only Subject, Issuer and PublicKeyOID
// take part in signing, the remaining fields are informational.
//
// +k8s:deepcopy-gen=true
type Certificate struct {
	Issuer        string `json:"issuer"`
	Subject       string `json:"subject"`
	Thumbprint    string `json:"thumbprint,omitempty"`
	ValidFromDate string `json:"validFromDate,omitempty"`
	ValidToDate   string `json:"validToDate,omitempty"`
	PublicKeyOID  string `json:"publicKeyOid,omitempty"`
}

// TestCertificate is offered when no certificates are configured.
func TestCertificate() Certificate {
	return Certificate{
		Issuer:        "Test Certificate Issuer",
		Subject:       "Седов Вячеслав Иванович",
		Thumbprint:    "04",
		ValidFromDate: "01.01.2021",
		ValidToDate:   "01.01.2030",
		PublicKeyOID:  AlgorithmFNV1a,
	}
}
