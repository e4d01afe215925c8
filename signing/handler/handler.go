// Package handler implements FNV-1a signing and verification of document files.
//
// The signature artifact is an envelope (see package envelope) carrying the FNV-1a digest of
// the file content and the identity of the signer. The scheme detects modification of the
// content, it does not authenticate the signer.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ocm.software/open-component-model/bindings/go/fnv/signing"
	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
	"ocm.software/open-component-model/bindings/go/fnv/signing/digest"
	"ocm.software/open-component-model/bindings/go/fnv/signing/envelope"
	"ocm.software/open-component-model/bindings/go/fnv/signing/v1alpha1"
	"ocm.software/open-component-model/bindings/go/runtime"
)

// Stable identifiers.
const (
	Algorithm = v1alpha1.AlgorithmFNV1a

	IdentityAttributeAlgorithm = "algorithm"
	IdentityAttributeSubject   = "subject"
)

// IdentityTypeFNV is the consumer identity type of FNV signing identities.
var IdentityTypeFNV = runtime.NewVersionedType("FNV", v1alpha1.Version)

// ErrNoHost is returned by Sign when the handler has no host to attach signatures to.
var ErrNoHost = errors.New("no host document system configured")

var _ signing.Provider = (*Handler)(nil)

// Handler signs and verifies with AlgorithmFNV1a.
type Handler struct {
	config              v1alpha1.Config
	updater             *attach.Updater
	currentTimeFunction func() time.Time
}

type Option func(*Handler)

// WithCurrentTimeFunction overrides the clock used for sign dates and artifact timestamps.
func WithCurrentTimeFunction(now func() time.Time) Option {
	return func(h *Handler) {
		h.currentTimeFunction = now
	}
}

// New returns a handler attaching signatures through modifiers.
// rawCfg may be nil, in which case the built-in test certificate is offered.
// modifiers may be nil for handlers that only create and verify signatures.
func New(modifiers attach.ModifierProvider, rawCfg runtime.Typed, opts ...Option) (*Handler, error) {
	h := &Handler{currentTimeFunction: time.Now}
	if rawCfg != nil {
		cfg, err := decodeConfig(rawCfg)
		if err != nil {
			return nil, err
		}
		h.config = cfg
	}
	for _, opt := range opts {
		opt(h)
	}
	if modifiers != nil {
		h.updater = attach.NewUpdater(modifiers, attach.WithClock(h.currentTimeFunction))
	}
	return h, nil
}

// ---- capabilities ----

// CanProcessAlgorithm reports whether algorithm is AlgorithmFNV1a.
func (*Handler) CanProcessAlgorithm(algorithm string) bool {
	return algorithm == Algorithm
}

// CanProcessSignature reports whether signature decodes into an envelope with a file hash.
func (*Handler) CanProcessSignature(signature []byte) bool {
	return envelope.IsSignature(signature)
}

// ---- signing ----

// CreateSignature returns the signature artifact of content for certificate.
func (h *Handler) CreateSignature(content []byte, certificate v1alpha1.Certificate) ([]byte, error) {
	if oid := certificate.PublicKeyOID; oid != "" && oid != Algorithm {
		return nil, fmt.Errorf("certificate %q uses algorithm %q, expected %q", certificate.Subject, oid, Algorithm)
	}
	return envelope.Encode(envelope.Envelope{
		FileHash:     digest.FNV1a(content).String(),
		SignDate:     envelope.FormatSignDate(h.currentTimeFunction()),
		Subject:      certificate.Subject,
		Issuer:       certificate.Issuer,
		PublicKeyOID: Algorithm,
	})
}

// Sign creates the signature artifact of content and attaches it to every requested
// signature request of file on documentID. Request ids without a pending request on file
// are skipped. Errors of the host are returned wrapped, never reinterpreted.
func (h *Handler) Sign(
	ctx context.Context,
	documentID string,
	file attach.File,
	content []byte,
	certificate v1alpha1.Certificate,
	requestIDs []string,
) ([]byte, error) {
	if h.updater == nil {
		return nil, ErrNoHost
	}
	signature, err := h.CreateSignature(content, certificate)
	if err != nil {
		return nil, err
	}
	if _, err := h.updater.SetSignature(ctx, documentID, file, signature, Algorithm, requestIDs); err != nil {
		return nil, fmt.Errorf("attach signature to document %q: %w", documentID, err)
	}
	slog.DebugContext(ctx, "signed file", "document", documentID, "file", file.Name, "subject", certificate.Subject)
	return signature, nil
}

// ---- verification ----

// Verify checks signature against content. It never fails: faults are reported as
// results with signing.StatusError.
func (*Handler) Verify(ctx context.Context, content, signature []byte, request attach.SignatureRequest) (result signing.VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(fmt.Errorf("verification failed: %v", r))
		}
	}()

	actual := digest.FNV1a(content).String()
	env, err := decodeSignature(signature)
	if err != nil {
		slog.DebugContext(ctx, "cannot read signature", "request", request.ID, "error", err)
		return errorResult(err)
	}

	result = signing.VerificationResult{
		Status:     signing.StatusValid,
		SignDate:   env.SignDate,
		IssuerName: env.Issuer,
		SignerName: env.Subject,
	}
	if actual != env.FileHash {
		result.Status = signing.StatusInvalid
		result.Error = MessageHashMismatch
	}
	return result
}

// VerifyImported checks a signature that is not bound to a signature request.
// Like Verify it never fails, but its error results carry no custom state.
func (*Handler) VerifyImported(ctx context.Context, content, signature []byte) (result signing.ImportedVerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = importedErrorResult(fmt.Errorf("verification failed: %v", r))
		}
	}()

	actual := digest.FNV1a(content).String()
	env, err := decodeSignature(signature)
	if err != nil {
		slog.DebugContext(ctx, "cannot read imported signature", "error", err)
		return importedErrorResult(err)
	}

	if actual != env.FileHash {
		return signing.ImportedVerificationResult{
			Status:     signing.StatusInvalid,
			SignerName: env.Subject,
			Error:      MessageHashMismatch,
		}
	}
	return signing.ImportedVerificationResult{
		Status:        signing.StatusValid,
		SignerName:    env.Subject,
		PublicKeyOID:  Algorithm,
		SignatureType: attach.SignatureTypeNotCades,
	}
}

// ---- identities ----

// Certificates returns the configured signing identities.
func (h *Handler) Certificates(context.Context) ([]v1alpha1.Certificate, error) {
	return h.config.GetCertificates(), nil
}

// Certificate returns the configured certificate with the given thumbprint.
// An empty thumbprint selects the first certificate.
func (h *Handler) Certificate(thumbprint string) (v1alpha1.Certificate, error) {
	certs := h.config.GetCertificates()
	if thumbprint == "" {
		return certs[0], nil
	}
	for _, cert := range certs {
		if cert.Thumbprint == thumbprint {
			return cert, nil
		}
	}
	return v1alpha1.Certificate{}, fmt.Errorf("no certificate with thumbprint %q configured", thumbprint)
}

// GetSigningCredentialConsumerIdentity returns the identity under which credentials for
// signing as certificate are looked up.
func (*Handler) GetSigningCredentialConsumerIdentity(_ context.Context, certificate v1alpha1.Certificate) (runtime.Identity, error) {
	id := baseIdentity()
	id[IdentityAttributeSubject] = certificate.Subject
	return id, nil
}

func baseIdentity() runtime.Identity {
	return runtime.Identity{
		runtime.IdentityAttributeType: IdentityTypeFNV.String(),
		IdentityAttributeAlgorithm:    Algorithm,
	}
}

func decodeConfig(raw runtime.Typed) (v1alpha1.Config, error) {
	var cfg v1alpha1.Config
	if err := v1alpha1.Scheme.Convert(raw, &cfg); err != nil {
		return v1alpha1.Config{}, fmt.Errorf("convert config: %w", err)
	}
	return cfg, nil
}

func decodeSignature(signature []byte) (envelope.Envelope, error) {
	env, err := envelope.Decode(signature)
	if err != nil {
		return envelope.Envelope{}, err
	}
	if err := env.Validate(); err != nil {
		return envelope.Envelope{}, err
	}
	return env, nil
}

func errorResult(err error) signing.VerificationResult {
	return signing.VerificationResult{
		Status:               signing.StatusError,
		Error:                err.Error(),
		CustomState:          ErrorState(),
		SignerNameForeground: SignerNameForegroundError,
	}
}

func importedErrorResult(err error) signing.ImportedVerificationResult {
	return signing.ImportedVerificationResult{
		Status:               signing.StatusError,
		Error:                err.Error(),
		SignerNameForeground: SignerNameForegroundError,
		SignatureType:        attach.SignatureTypeNotCades,
	}
}
