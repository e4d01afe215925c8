package signing

import (
	"context"

	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
	"ocm.software/open-component-model/bindings/go/fnv/signing/v1alpha1"
)

// Provider signs document files and verifies signature artifacts.
type Provider interface {
	// CanProcessAlgorithm reports whether the provider handles signatures of the given
	// algorithm identifier (public key OID).
	CanProcessAlgorithm(algorithm string) bool
	// CanProcessSignature reports whether signature is an artifact produced by the provider.
	CanProcessSignature(signature []byte) bool

	// Sign creates a signature artifact for content, attaches it to every requested
	// signature request of file and returns the artifact.
	Sign(ctx context.Context, documentID string, file attach.File, content []byte, certificate v1alpha1.Certificate, requestIDs []string) ([]byte, error)

	// Verify checks signature against content in the context of a signature request.
	Verify(ctx context.Context, content, signature []byte, request attach.SignatureRequest) VerificationResult
	// VerifyImported checks a signature that was imported without a signature request.
	VerifyImported(ctx context.Context, content, signature []byte) ImportedVerificationResult

	// Certificates returns the identities the provider can sign with.
	Certificates(ctx context.Context) ([]v1alpha1.Certificate, error)
}
