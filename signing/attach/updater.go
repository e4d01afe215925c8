// Package attach stores signature artifacts on host documents.
//
// The host document-management system is reached through ModifierProvider. The Updater never
// touches host state itself: it plans one Command per fulfilled signature request and replays
// the plan onto a host Modifier, which commits it with its own transaction discipline.
package attach

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Command attaches one signature artifact and completes one signature request.
type Command struct {
	DocumentID string
	FileBodyID string
	RequestID  string

	ArtifactID   uuid.UUID
	ArtifactName string
	Artifact     []byte
	// CreatedAt is used for the creation, modification and access time of the artifact.
	CreatedAt time.Time

	Edit SignatureEdit
}

// Updater attaches signature artifacts to documents.
type Updater struct {
	modifiers ModifierProvider
	now       func() time.Time
	newID     func() uuid.UUID
}

type Option func(*Updater)

// WithClock overrides the time source used for artifact timestamps.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) {
		u.now = now
	}
}

// WithIDGenerator overrides how artifact ids are generated.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(u *Updater) {
		u.newID = newID
	}
}

func NewUpdater(modifiers ModifierProvider, opts ...Option) *Updater {
	u := &Updater{
		modifiers: modifiers,
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Plan returns the commands needed to store signature for every requested signature request.
// Request ids without a matching pending request on file are skipped.
func (u *Updater) Plan(documentID string, file File, signature []byte, algorithmID string, requestIDs []string) []Command {
	cmds := make([]Command, 0, len(requestIDs))
	for _, requestID := range requestIDs {
		if _, ok := file.SignatureRequest(requestID); !ok {
			slog.Debug("no signature request found on file, skipping", "document", documentID, "file", file.Name, "request", requestID)
			continue
		}

		id := u.newID()
		created := u.now().UTC()
		cmds = append(cmds, Command{
			DocumentID:   documentID,
			FileBodyID:   file.BodyID,
			RequestID:    requestID,
			ArtifactID:   id,
			ArtifactName: ArtifactName(file.Name, requestID),
			Artifact:     signature,
			CreatedAt:    created,
			Edit: SignatureEdit{
				SignID:        id,
				PublicKeyOID:  algorithmID,
				ObjectID:      documentID,
				SignatureType: SignatureTypeNotCades,
			},
		})
	}
	return cmds
}

// SetSignature stores signature on documentID for every requested signature request of file
// and commits the change. Errors of the host are returned as they are.
func (u *Updater) SetSignature(ctx context.Context, documentID string, file File, signature []byte, algorithmID string, requestIDs []string) ([]DataObject, error) {
	return Apply(ctx, u.modifiers.NewModifier(), documentID, u.Plan(documentID, file, signature, algorithmID, requestIDs))
}

// Apply replays cmds onto modifier and commits them.
func Apply(ctx context.Context, modifier Modifier, documentID string, cmds []Command) ([]DataObject, error) {
	builder := modifier.Edit(documentID)
	for _, cmd := range cmds {
		if cmd.DocumentID != documentID {
			return nil, fmt.Errorf("command for document %q cannot be applied to document %q", cmd.DocumentID, documentID)
		}
		builder = builder.
			AddFile(cmd.ArtifactID, cmd.ArtifactName, cmd.Artifact, cmd.CreatedAt, cmd.CreatedAt, cmd.CreatedAt).
			EditSignatureRequest(cmd.FileBodyID, cmd.RequestID, cmd.Edit)
	}
	slog.DebugContext(ctx, "applying signature changes", "document", documentID, "signatures", len(cmds))
	return modifier.Apply(ctx)
}

// ArtifactName is the file name of the signature artifact for a request on a file.
func ArtifactName(fileName, requestID string) string {
	return fmt.Sprintf("%s.%s.sig", fileName, requestID)
}
