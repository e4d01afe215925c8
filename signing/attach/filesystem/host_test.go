package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"

	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
)

const manifest = `id: doc-1
files:
- name: contract.pdf
  bodyId: body-1
  signatureRequests:
  - id: r1
  - id: r2
- name: notes.txt
  bodyId: body-2
  path: data/notes.txt
`

func setup(t *testing.T) *Host {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "doc-1")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contract.pdf"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "notes.txt"), []byte("notes"), 0o644))
	return New(root)
}

func TestReadFile(t *testing.T) {
	r := require.New(t)
	h := setup(t)

	file, content, err := h.ReadFile("doc-1", "contract.pdf")
	r.NoError(err)
	r.Equal("body-1", file.BodyID)
	r.Len(file.SignatureRequests, 2)
	r.Equal([]byte("hello"), content)

	_, content, err = h.ReadFile("doc-1", "notes.txt")
	r.NoError(err)
	r.Equal([]byte("notes"), content)

	_, _, err = h.ReadFile("doc-1", "missing.txt")
	r.ErrorIs(err, ErrFileNotFound)

	_, _, err = h.ReadFile("../escape", "contract.pdf")
	r.Error(err)
}

func TestApply_WritesArtifactAndManifest(t *testing.T) {
	r := require.New(t)
	h := setup(t)
	id := uuid.New()
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	m := h.NewModifier()
	m.Edit("doc-1").
		AddFile(id, "contract.pdf.r1.sig", []byte("artifact"), now, now, now).
		EditSignatureRequest("body-1", "r1", attach.SignatureEdit{
			SignID:        id,
			PublicKeyOID:  "fnva-1",
			ObjectID:      "doc-1",
			SignatureType: attach.SignatureTypeNotCades,
		})
	objects, err := m.Apply(t.Context())
	r.NoError(err)
	r.Len(objects, 1)

	written, err := os.ReadFile(filepath.Join(h.root, "doc-1", AttachmentsDir, id.String()))
	r.NoError(err)
	r.Equal([]byte("artifact"), written)

	reloaded, err := h.Load("doc-1")
	r.NoError(err)
	r.Equal(objects[0], reloaded.DataObject())
	r.Len(reloaded.Attachments, 1)
	r.Equal(digest.FromBytes([]byte("artifact")).String(), reloaded.Attachments[0].Digest)
	r.Equal(int64(len("artifact")), reloaded.Attachments[0].Size)
	r.True(now.Equal(reloaded.Attachments[0].Created))

	req, ok := reloaded.Files[0].SignatureRequest("r1")
	r.True(ok)
	r.Equal(id.String(), req.SignID)
	r.Equal(attach.SignatureTypeNotCades, req.SignatureType)

	_, err = m.Apply(t.Context())
	r.ErrorIs(err, ErrAlreadyApplied)
}

func TestApply_FailsWithoutSideEffects(t *testing.T) {
	r := require.New(t)
	h := setup(t)
	id := uuid.New()
	now := time.Now()

	m := h.NewModifier()
	m.Edit("doc-1").
		AddFile(id, "contract.pdf.r9.sig", []byte("artifact"), now, now, now).
		EditSignatureRequest("body-1", "r9", attach.SignatureEdit{SignID: id})
	_, err := m.Apply(t.Context())
	r.Error(err)

	_, err = os.Stat(filepath.Join(h.root, "doc-1", AttachmentsDir, id.String()))
	r.ErrorIs(err, os.ErrNotExist)
	reloaded, err := h.Load("doc-1")
	r.NoError(err)
	r.Empty(reloaded.Attachments)
}

func TestApply_RejectsNestedArtifactNames(t *testing.T) {
	h := setup(t)
	now := time.Now()
	m := h.NewModifier()
	m.Edit("doc-1").AddFile(uuid.New(), "data/evil.sig", []byte("x"), now, now, now)
	_, err := m.Apply(t.Context())
	require.Error(t, err)
}

func TestLoad_IDMismatch(t *testing.T) {
	h := setup(t)
	require.NoError(t, os.Rename(filepath.Join(h.root, "doc-1"), filepath.Join(h.root, "doc-2")))
	_, err := h.Load("doc-2")
	require.Error(t, err)
}

func TestReadAttachment(t *testing.T) {
	r := require.New(t)
	h := setup(t)
	id := uuid.New()
	now := time.Now()

	m := h.NewModifier()
	m.Edit("doc-1").AddFile(id, "contract.pdf.r1.sig", []byte("artifact"), now, now, now)
	_, err := m.Apply(t.Context())
	r.NoError(err)

	att, content, err := h.ReadAttachment("doc-1", id)
	r.NoError(err)
	r.Equal("contract.pdf.r1.sig", att.Name)
	r.Equal([]byte("artifact"), content)

	_, _, err = h.ReadAttachment("doc-1", uuid.New())
	r.ErrorIs(err, ErrAttachmentNotFound)

	path, err := h.AttachmentPath("doc-1", id)
	r.NoError(err)
	r.NoError(os.WriteFile(path, []byte("tampered"), 0o644))
	_, _, err = h.ReadAttachment("doc-1", id)
	r.ErrorContains(err, "does not match digest")
}

func sign(t *testing.T, h *Host, requestID string, artifact []byte) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now()
	m := h.NewModifier()
	m.Edit("doc-1").
		AddFile(id, attach.ArtifactName("contract.pdf", requestID), artifact, now, now, now).
		EditSignatureRequest("body-1", requestID, attach.SignatureEdit{SignID: id})
	_, err := m.Apply(t.Context())
	require.NoError(t, err)
	return id
}

func TestApply_ResignKeepsPreviousAttachment(t *testing.T) {
	r := require.New(t)
	h := setup(t)

	first := sign(t, h, "r1", []byte("first"))
	second := sign(t, h, "r1", []byte("second"))

	reloaded, err := h.Load("doc-1")
	r.NoError(err)
	r.Len(reloaded.Attachments, 2)
	req, ok := reloaded.Files[0].SignatureRequest("r1")
	r.True(ok)
	r.Equal(second.String(), req.SignID)

	att, content, err := h.ReadAttachment("doc-1", first)
	r.NoError(err)
	r.Equal("contract.pdf.r1.sig", att.Name)
	r.Equal([]byte("first"), content)

	_, content, err = h.ReadAttachment("doc-1", second)
	r.NoError(err)
	r.Equal([]byte("second"), content)
}

func TestApply_RejectsExistingAttachmentID(t *testing.T) {
	r := require.New(t)
	h := setup(t)
	id := sign(t, h, "r1", []byte("first"))

	now := time.Now()
	m := h.NewModifier()
	m.Edit("doc-1").AddFile(id, "contract.pdf.r2.sig", []byte("other"), now, now, now)
	_, err := m.Apply(t.Context())
	r.Error(err)

	_, content, err := h.ReadAttachment("doc-1", id)
	r.NoError(err)
	r.Equal([]byte("first"), content)
}

func TestApply_RollsBackOnManifestSaveFailure(t *testing.T) {
	r := require.New(t)
	h := setup(t)
	previous := sign(t, h, "r2", []byte("kept"))

	// a second document whose manifest is saved after the one of doc-1
	doc2 := filepath.Join(h.root, "doc-2")
	r.NoError(os.MkdirAll(doc2, 0o755))
	r.NoError(os.WriteFile(filepath.Join(doc2, ManifestFileName), []byte("id: doc-2\n"), 0o644))

	before, err := os.ReadFile(filepath.Join(h.root, "doc-1", ManifestFileName))
	r.NoError(err)

	saveErr := errors.New("disk full")
	h.writeFile = func(path string, data []byte) error {
		if path == filepath.Join(doc2, ManifestFileName) {
			return saveErr
		}
		return writeFileAtomic(path, data)
	}

	id1, id2 := uuid.New(), uuid.New()
	now := time.Now()
	m := h.NewModifier()
	m.Edit("doc-1").
		AddFile(id1, "contract.pdf.r1.sig", []byte("artifact"), now, now, now).
		EditSignatureRequest("body-1", "r1", attach.SignatureEdit{SignID: id1})
	m.Edit("doc-2").AddFile(id2, "other.sig", []byte("artifact"), now, now, now)
	_, err = m.Apply(t.Context())
	r.ErrorIs(err, saveErr)

	after, err := os.ReadFile(filepath.Join(h.root, "doc-1", ManifestFileName))
	r.NoError(err)
	r.Equal(before, after)

	for _, p := range []string{
		filepath.Join(h.root, "doc-1", AttachmentsDir, id1.String()),
		filepath.Join(doc2, AttachmentsDir, id2.String()),
	} {
		_, err = os.Stat(p)
		r.ErrorIs(err, os.ErrNotExist)
	}

	_, content, err := h.ReadAttachment("doc-1", previous)
	r.NoError(err)
	r.Equal([]byte("kept"), content)
}
