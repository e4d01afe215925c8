// Package filesystem implements attach.ModifierProvider on top of a directory tree.
//
// Every document is a directory below the host root. The directory contains a
// ManifestFileName manifest describing the document files and their signature requests,
// the files themselves and all attached signature artifacts. Artifacts are stored under
// their attachment id, the attachment name is only recorded in the manifest:
//
//	<root>/<document id>/document.yaml
//	<root>/<document id>/contract.pdf
//	<root>/<document id>/attachments/<attachment id>
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"sigs.k8s.io/yaml"

	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
)

const (
	// ManifestFileName is the name of the document manifest inside a document directory.
	ManifestFileName = "document.yaml"
	// AttachmentsDir is the directory inside a document directory holding attached artifacts.
	AttachmentsDir = "attachments"
)

var (
	ErrFileNotFound       = errors.New("file not found in document")
	ErrAttachmentNotFound = errors.New("attachment not found in document")
)

// Manifest is the on-disk description of a document.
type Manifest struct {
	ID          string              `json:"id,omitempty"`
	Files       []FileEntry         `json:"files,omitempty"`
	Attachments []attach.Attachment `json:"attachments,omitempty"`
}

// FileEntry is a document file. Path is relative to the document directory and defaults to Name.
type FileEntry struct {
	attach.File
	Path string `json:"path,omitempty"`
}

// DataObject converts the manifest into the record handed back to callers.
func (m *Manifest) DataObject() attach.DataObject {
	obj := attach.DataObject{ID: m.ID, Attachments: append([]attach.Attachment(nil), m.Attachments...)}
	for _, f := range m.Files {
		file := f.File
		file.SignatureRequests = append([]attach.SignatureRequest(nil), f.SignatureRequests...)
		obj.Files = append(obj.Files, file)
	}
	return obj
}

// Host stores documents below a root directory.
type Host struct {
	root string
	// mu serializes Apply calls of all modifiers of this host.
	mu        sync.Mutex
	writeFile func(path string, data []byte) error
}

var _ attach.ModifierProvider = (*Host)(nil)

func New(root string) *Host {
	return &Host{root: root, writeFile: writeFileAtomic}
}

// DocumentDir returns the directory of a document.
func (h *Host) DocumentDir(documentID string) (string, error) {
	if !filepath.IsLocal(documentID) || filepath.Base(documentID) != documentID {
		return "", fmt.Errorf("invalid document id %q", documentID)
	}
	return filepath.Join(h.root, documentID), nil
}

// Load reads the manifest of a document.
func (h *Host) Load(documentID string) (*Manifest, error) {
	dir, err := h.DocumentDir(documentID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("read manifest of document %q: %w", documentID, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest of document %q: %w", documentID, err)
	}
	if m.ID == "" {
		m.ID = documentID
	} else if m.ID != documentID {
		return nil, fmt.Errorf("manifest of document %q declares id %q", documentID, m.ID)
	}
	return &m, nil
}

// ReadFile returns the file called name of a document together with its content.
func (h *Host) ReadFile(documentID, name string) (attach.File, []byte, error) {
	m, err := h.Load(documentID)
	if err != nil {
		return attach.File{}, nil, err
	}
	for _, f := range m.Files {
		if f.Name != name {
			continue
		}
		path, err := h.localPath(documentID, f.contentPath())
		if err != nil {
			return attach.File{}, nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return attach.File{}, nil, fmt.Errorf("read file %q of document %q: %w", name, documentID, err)
		}
		return f.File, content, nil
	}
	return attach.File{}, nil, fmt.Errorf("%w: %q in %q", ErrFileNotFound, name, documentID)
}

// ReadAttachment returns the attachment with the given id and its content.
// Content that no longer matches the recorded digest is rejected.
func (h *Host) ReadAttachment(documentID string, id uuid.UUID) (attach.Attachment, []byte, error) {
	m, err := h.Load(documentID)
	if err != nil {
		return attach.Attachment{}, nil, err
	}
	for _, a := range m.Attachments {
		if a.ID != id {
			continue
		}
		path, err := h.AttachmentPath(documentID, a.ID)
		if err != nil {
			return attach.Attachment{}, nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return attach.Attachment{}, nil, fmt.Errorf("read attachment %q of document %q: %w", a.Name, documentID, err)
		}
		if a.Digest != "" {
			dig, err := digest.Parse(a.Digest)
			if err != nil {
				return attach.Attachment{}, nil, fmt.Errorf("attachment %q of document %q: %w", a.Name, documentID, err)
			}
			verifier := dig.Verifier()
			_, _ = verifier.Write(content)
			if !verifier.Verified() {
				return attach.Attachment{}, nil, fmt.Errorf("attachment %q of document %q does not match digest %s", a.Name, documentID, dig)
			}
		}
		return a, content, nil
	}
	return attach.Attachment{}, nil, fmt.Errorf("%w: %s in %q", ErrAttachmentNotFound, id, documentID)
}

func (h *Host) NewModifier() attach.Modifier {
	return &modifier{host: h, builders: make(map[string]*builder)}
}

// AttachmentPath returns the file an attachment of a document is stored in.
func (h *Host) AttachmentPath(documentID string, id uuid.UUID) (string, error) {
	return h.localPath(documentID, filepath.Join(AttachmentsDir, id.String()))
}

func (h *Host) localPath(documentID, rel string) (string, error) {
	dir, err := h.DocumentDir(documentID)
	if err != nil {
		return "", err
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("path %q escapes document %q", rel, documentID)
	}
	return filepath.Join(dir, rel), nil
}

func (h *Host) save(documentID string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest of document %q: %w", documentID, err)
	}
	path, err := h.localPath(documentID, ManifestFileName)
	if err != nil {
		return err
	}
	return h.writeFile(path, data)
}

func (f FileEntry) contentPath() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Name
}

// writeFileAtomic writes data to a temporary file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file for %q: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %q: %w", path, err)
	}
	return nil
}
