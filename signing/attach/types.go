package attach

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignatureType records the format of a signature on a signature request.
type SignatureType string

// SignatureTypeNotCades marks signatures in a non-standard (non CAdES) format.
const SignatureTypeNotCades SignatureType = "NotCades"

// SignatureRequest is a host-managed placeholder on a document file indicating a
// pending signing obligation. A request is fulfilled once SignID is set.
type SignatureRequest struct {
	ID            string        `json:"id"`
	SignID        string        `json:"signId,omitempty"`
	PublicKeyOID  string        `json:"publicKeyOid,omitempty"`
	ObjectID      string        `json:"objectId,omitempty"`
	SignatureType SignatureType `json:"signatureType,omitempty"`
}

// File is a document file as seen by the signing provider.
type File struct {
	Name              string             `json:"name"`
	BodyID            string             `json:"bodyId"`
	SignatureRequests []SignatureRequest `json:"signatureRequests,omitempty"`
}

// SignatureRequest returns the signature request with the given id.
func (f File) SignatureRequest(id string) (SignatureRequest, bool) {
	for _, req := range f.SignatureRequests {
		if req.ID == id {
			return req, true
		}
	}
	return SignatureRequest{}, false
}

// Attachment is a binary file stored on a document, e.g. a signature artifact.
type Attachment struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest,omitempty"`
	Created    time.Time `json:"created"`
	Modified   time.Time `json:"modified"`
	AccessTime time.Time `json:"accessTime"`
}

// DataObject is a document record returned by the host after changes were applied.
type DataObject struct {
	ID          string       `json:"id"`
	Files       []File       `json:"files,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// SignatureEdit describes how a signature request is completed.
type SignatureEdit struct {
	SignID        uuid.UUID
	PublicKeyOID  string
	ObjectID      string
	SignatureType SignatureType
}

// ModifierProvider hands out modifiers of the host document-management system.
type ModifierProvider interface {
	NewModifier() Modifier
}

// Modifier buffers changes to documents and commits them with Apply.
type Modifier interface {
	// Edit returns the builder for changes to the given document.
	Edit(documentID string) ObjectBuilder
	// Apply commits all buffered changes and returns the affected documents.
	Apply(ctx context.Context) ([]DataObject, error)
}

// ObjectBuilder records changes to a single document.
type ObjectBuilder interface {
	AddFile(id uuid.UUID, name string, content []byte, created, modified, accessed time.Time) ObjectBuilder
	EditSignatureRequest(fileBodyID, requestID string, edit SignatureEdit) ObjectBuilder
}
