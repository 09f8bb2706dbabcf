package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/openfoia/foiagraph/internal/core/model"
)

type MockGraphStore struct {
	mu       sync.Mutex
	Saved    []model.GraphExport
	Mentions []model.DocumentRecord
	Stored   model.GraphExport
	Err      error
}

func (m *MockGraphStore) LoadGraph(ctx context.Context) (model.GraphExport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return model.GraphExport{}, m.Err
	}
	return m.Stored, nil
}

func (m *MockGraphStore) SaveGraph(ctx context.Context, export model.GraphExport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Saved = append(m.Saved, export)
	return nil
}

func (m *MockGraphStore) SaveDocumentMentions(ctx context.Context, rec model.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Mentions = append(m.Mentions, rec)
	return nil
}

type MockDocumentStore struct {
	mu      sync.Mutex
	Records map[string]model.DocumentRecord
	Order   []string
	Err     error
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{Records: make(map[string]model.DocumentRecord)}
}

func (m *MockDocumentStore) SaveDocument(ctx context.Context, rec model.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Records[rec.ID] = rec
	m.Order = append(m.Order, rec.ID)
	return nil
}

func (m *MockDocumentStore) GetDocument(ctx context.Context, id string) (*model.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[id]
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}
	return &rec, nil
}

func (m *MockDocumentStore) DocumentsMentioning(ctx context.Context, canonicalID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := []string{}
	for _, id := range m.Order {
		for _, e := range m.Records[id].Mentions {
			if e.MetaString(model.MetaCanonicalID) == canonicalID {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}
