package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"

	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
)

var ErrAlreadyApplied = errors.New("modifier was already applied")

type modifier struct {
	host     *Host
	mu       sync.Mutex
	order    []string
	builders map[string]*builder
	applied  bool
}

type pendingFile struct {
	id       uuid.UUID
	name     string
	content  []byte
	created  time.Time
	modified time.Time
	accessed time.Time
}

type pendingEdit struct {
	fileBodyID, requestID string
	edit                  attach.SignatureEdit
}

type builder struct {
	files []pendingFile
	edits []pendingEdit
}

func (m *modifier) Edit(documentID string) attach.ObjectBuilder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.builders[documentID]; ok {
		return b
	}
	b := &builder{}
	m.builders[documentID] = b
	m.order = append(m.order, documentID)
	return b
}

func (b *builder) AddFile(id uuid.UUID, name string, content []byte, created, modified, accessed time.Time) attach.ObjectBuilder {
	b.files = append(b.files, pendingFile{id: id, name: name, content: slices.Clone(content), created: created, modified: modified, accessed: accessed})
	return b
}

func (b *builder) EditSignatureRequest(fileBodyID, requestID string, edit attach.SignatureEdit) attach.ObjectBuilder {
	b.edits = append(b.edits, pendingEdit{fileBodyID: fileBodyID, requestID: requestID, edit: edit})
	return b
}

type staged struct {
	documentID string
	manifest   *Manifest
	// previous is the manifest as it was read, restored if a later manifest fails to save.
	previous []byte
	// artifacts maps the final path of an artifact to its content.
	artifacts map[string][]byte
}

// Apply validates all buffered changes against the current manifests before anything is
// written. Artifacts are written first, manifests last, each through a rename.
// On failure all artifacts written by this Apply are removed and manifests already
// saved are restored.
func (m *modifier) Apply(ctx context.Context) ([]attach.DataObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applied {
		return nil, ErrAlreadyApplied
	}

	m.host.mu.Lock()
	defer m.host.mu.Unlock()

	var plan []staged
	for _, id := range m.order {
		s, err := m.stage(id, m.builders[id])
		if err != nil {
			return nil, err
		}
		plan = append(plan, s)
	}

	var written []string
	rollback := func(saved []staged) error {
		var errs error
		for _, p := range written {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = errors.Join(errs, err)
			}
		}
		for _, s := range saved {
			path, err := m.host.localPath(s.documentID, ManifestFileName)
			if err == nil {
				err = m.host.writeFile(path, s.previous)
			}
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("restore manifest of document %q: %w", s.documentID, err))
			}
		}
		return errs
	}

	for _, s := range plan {
		for path, content := range s.artifacts {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, errors.Join(fmt.Errorf("create attachment directory of document %q: %w", s.documentID, err), rollback(nil))
			}
			if err := m.host.writeFile(path, content); err != nil {
				return nil, errors.Join(fmt.Errorf("store signature artifact of document %q: %w", s.documentID, err), rollback(nil))
			}
			written = append(written, path)
		}
	}

	objects := make([]attach.DataObject, 0, len(plan))
	for i, s := range plan {
		if err := m.host.save(s.documentID, s.manifest); err != nil {
			return nil, errors.Join(err, rollback(plan[:i]))
		}
		objects = append(objects, s.manifest.DataObject())
	}
	m.applied = true
	return objects, nil
}

func (m *modifier) stage(documentID string, b *builder) (staged, error) {
	manifest, err := m.host.Load(documentID)
	if err != nil {
		return staged{}, err
	}
	manifestPath, err := m.host.localPath(documentID, ManifestFileName)
	if err != nil {
		return staged{}, err
	}
	previous, err := os.ReadFile(manifestPath)
	if err != nil {
		return staged{}, fmt.Errorf("read manifest of document %q: %w", documentID, err)
	}
	s := staged{documentID: documentID, manifest: manifest, previous: previous, artifacts: make(map[string][]byte)}

	for _, f := range b.files {
		if filepath.Base(f.name) != f.name {
			return staged{}, fmt.Errorf("invalid artifact name %q", f.name)
		}
		if slices.ContainsFunc(manifest.Attachments, func(a attach.Attachment) bool { return a.ID == f.id }) {
			return staged{}, fmt.Errorf("attachment %s already exists in document %q", f.id, documentID)
		}
		path, err := m.host.AttachmentPath(documentID, f.id)
		if err != nil {
			return staged{}, err
		}
		if _, err := os.Lstat(path); err == nil {
			return staged{}, fmt.Errorf("attachment %s already stored in document %q", f.id, documentID)
		} else if !errors.Is(err, os.ErrNotExist) {
			return staged{}, err
		}
		s.artifacts[path] = f.content
		manifest.Attachments = append(manifest.Attachments, attach.Attachment{
			ID:         f.id,
			Name:       f.name,
			Size:       int64(len(f.content)),
			Digest:     digest.FromBytes(f.content).String(),
			Created:    f.created,
			Modified:   f.modified,
			AccessTime: f.accessed,
		})
	}

	for _, e := range b.edits {
		fi := slices.IndexFunc(manifest.Files, func(f FileEntry) bool { return f.BodyID == e.fileBodyID })
		if fi < 0 {
			return staged{}, fmt.Errorf("%w: body %q in %q", ErrFileNotFound, e.fileBodyID, documentID)
		}
		reqs := manifest.Files[fi].SignatureRequests
		ri := slices.IndexFunc(reqs, func(r attach.SignatureRequest) bool { return r.ID == e.requestID })
		if ri < 0 {
			return staged{}, fmt.Errorf("signature request %q not found on file %q of document %q", e.requestID, manifest.Files[fi].Name, documentID)
		}
		reqs[ri].SignID = e.edit.SignID.String()
		reqs[ri].PublicKeyOID = e.edit.PublicKeyOID
		reqs[ri].ObjectID = e.edit.ObjectID
		reqs[ri].SignatureType = e.edit.SignatureType
	}
	return s, nil
}
