package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
)

func document() attach.DataObject {
	return attach.DataObject{
		ID: "doc-1",
		Files: []attach.File{{
			Name:              "a.txt",
			BodyID:            "body-a",
			SignatureRequests: []attach.SignatureRequest{{ID: "r1"}},
		}},
	}
}

func TestApply_Commits(t *testing.T) {
	r := require.New(t)
	store := New(document())
	now := time.Now().UTC()
	id := uuid.New()

	m := store.NewModifier()
	m.Edit("doc-1").
		AddFile(id, "a.txt.r1.sig", []byte("sig"), now, now, now).
		EditSignatureRequest("body-a", "r1", attach.SignatureEdit{SignID: id, PublicKeyOID: "fnva-1", ObjectID: "doc-1", SignatureType: attach.SignatureTypeNotCades})

	// nothing is visible before Apply
	doc, _ := store.Get("doc-1")
	r.Empty(doc.Attachments)

	objects, err := m.Apply(t.Context())
	r.NoError(err)
	r.Len(objects, 1)
	r.Len(objects[0].Attachments, 1)
	r.Equal(id.String(), objects[0].Files[0].SignatureRequests[0].SignID)

	_, err = m.Apply(t.Context())
	r.ErrorIs(err, ErrAlreadyApplied)
}

func TestApply_IsAtomic(t *testing.T) {
	r := require.New(t)
	store := New(document())
	now := time.Now()
	id := uuid.New()

	m := store.NewModifier()
	m.Edit("doc-1").
		AddFile(id, "a.txt.r1.sig", []byte("sig"), now, now, now).
		EditSignatureRequest("body-a", "does-not-exist", attach.SignatureEdit{SignID: id})

	_, err := m.Apply(t.Context())
	r.ErrorIs(err, ErrSignatureRequestNotFound)

	doc, _ := store.Get("doc-1")
	r.Empty(doc.Attachments)
	_, ok := store.Content(id)
	r.False(ok)
}

func TestApply_Errors(t *testing.T) {
	store := New(document())

	m := store.NewModifier()
	m.Edit("unknown")
	_, err := m.Apply(t.Context())
	require.ErrorIs(t, err, ErrDocumentNotFound)

	m = store.NewModifier()
	m.Edit("doc-1").EditSignatureRequest("unknown-body", "r1", attach.SignatureEdit{})
	_, err = m.Apply(t.Context())
	require.ErrorIs(t, err, ErrFileNotFound)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = store.NewModifier().Apply(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGet_ReturnsCopies(t *testing.T) {
	store := New(document())
	doc, ok := store.Get("doc-1")
	require.True(t, ok)
	doc.Files[0].SignatureRequests[0].SignID = "tampered"

	again, _ := store.Get("doc-1")
	require.Empty(t, again.Files[0].SignatureRequests[0].SignID)
}
