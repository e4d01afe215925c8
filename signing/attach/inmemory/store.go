// Package inmemory provides a thread-safe in-memory document store implementing
// attach.ModifierProvider. Changes are buffered per modifier and committed atomically.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
)

var (
	ErrDocumentNotFound         = errors.New("document not found")
	ErrFileNotFound             = errors.New("file not found")
	ErrSignatureRequestNotFound = errors.New("signature request not found")
	ErrAlreadyApplied           = errors.New("modifier was already applied")
)

// Store keeps documents and the content of their attachments in memory.
type Store struct {
	mu        sync.RWMutex
	documents map[string]attach.DataObject
	contents  map[uuid.UUID][]byte
}

var _ attach.ModifierProvider = (*Store)(nil)

func New(documents ...attach.DataObject) *Store {
	s := &Store{
		documents: make(map[string]attach.DataObject, len(documents)),
		contents:  make(map[uuid.UUID][]byte),
	}
	for _, doc := range documents {
		s.documents[doc.ID] = clone(doc)
	}
	return s
}

// Get returns a copy of the document with the given id.
func (s *Store) Get(id string) (attach.DataObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return attach.DataObject{}, false
	}
	return clone(doc), true
}

// Content returns the content of an attachment.
func (s *Store) Content(id uuid.UUID) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.contents[id]
	return slices.Clone(data), ok
}

func (s *Store) NewModifier() attach.Modifier {
	return &modifier{store: s, builders: make(map[string]*builder)}
}

type change func(doc *attach.DataObject, contents map[uuid.UUID][]byte) error

type modifier struct {
	store    *Store
	mu       sync.Mutex
	order    []string
	builders map[string]*builder
	applied  bool
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

func (m *modifier) Apply(ctx context.Context) ([]attach.DataObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applied {
		return nil, ErrAlreadyApplied
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	staged := make([]attach.DataObject, 0, len(m.order))
	contents := make(map[uuid.UUID][]byte)
	for _, id := range m.order {
		doc, ok := m.store.documents[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, id)
		}
		doc = clone(doc)
		for _, c := range m.builders[id].changes {
			if err := c(&doc, contents); err != nil {
				return nil, fmt.Errorf("document %q: %w", id, err)
			}
		}
		staged = append(staged, doc)
	}

	result := make([]attach.DataObject, 0, len(staged))
	for _, doc := range staged {
		m.store.documents[doc.ID] = doc
		result = append(result, clone(doc))
	}
	for id, data := range contents {
		m.store.contents[id] = data
	}
	m.applied = true
	return result, nil
}

type builder struct {
	changes []change
}

func (b *builder) AddFile(id uuid.UUID, name string, content []byte, created, modified, accessed time.Time) attach.ObjectBuilder {
	data := slices.Clone(content)
	b.changes = append(b.changes, func(doc *attach.DataObject, contents map[uuid.UUID][]byte) error {
		doc.Attachments = append(doc.Attachments, attach.Attachment{
			ID:         id,
			Name:       name,
			Size:       int64(len(data)),
			Created:    created,
			Modified:   modified,
			AccessTime: accessed,
		})
		contents[id] = data
		return nil
	})
	return b
}

func (b *builder) EditSignatureRequest(fileBodyID, requestID string, edit attach.SignatureEdit) attach.ObjectBuilder {
	b.changes = append(b.changes, func(doc *attach.DataObject, _ map[uuid.UUID][]byte) error {
		fi := slices.IndexFunc(doc.Files, func(f attach.File) bool { return f.BodyID == fileBodyID })
		if fi < 0 {
			return fmt.Errorf("%w: body %q", ErrFileNotFound, fileBodyID)
		}
		file := &doc.Files[fi]
		ri := slices.IndexFunc(file.SignatureRequests, func(r attach.SignatureRequest) bool { return r.ID == requestID })
		if ri < 0 {
			return fmt.Errorf("%w: %q", ErrSignatureRequestNotFound, requestID)
		}
		req := &file.SignatureRequests[ri]
		req.SignID = edit.SignID.String()
		req.PublicKeyOID = edit.PublicKeyOID
		req.ObjectID = edit.ObjectID
		req.SignatureType = edit.SignatureType
		return nil
	})
	return b
}

func clone(doc attach.DataObject) attach.DataObject {
	out := attach.DataObject{
		ID:          doc.ID,
		Attachments: slices.Clone(doc.Attachments),
	}
	if doc.Files != nil {
		out.Files = make([]attach.File, len(doc.Files))
		for i, f := range doc.Files {
			f.SignatureRequests = slices.Clone(f.SignatureRequests)
			out.Files[i] = f
		}
	}
	return out
}
