package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"valueconverting/internal/valueconverting/models"
	"valueconverting/pkg/platform/sentinel"
)

// InMemoryStore keeps records in a map for local development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[int64]models.ValueConverting
	nextID  int64
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[int64]models.ValueConverting)}
}

func (s *InMemoryStore) Save(_ context.Context, vc *models.ValueConverting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	vc.ID = s.nextID
	stored := *vc
	stored.ConvertingMap = maps.Clone(vc.ConvertingMap)
	if stored.ConvertingMap == nil {
		stored.ConvertingMap = map[string]string{}
	}
	s.records[stored.ID] = stored
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.ValueConverting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vc, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	vc.ConvertingMap = maps.Clone(vc.ConvertingMap)
	return &vc, nil
}

func (s *InMemoryStore) List(_ context.Context, q models.ListQuery) (models.Page[models.ValueConverting], error) {
	s.mu.RLock()
	matched := make([]models.ValueConverting, 0, len(s.records))
	for _, vc := range s.records {
		if q.Filtered() && !slices.Contains(q.Owners, vc.FromApplicationID) {
			continue
		}
		matched = append(matched, vc)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, compareBy(q.Page.Property, q.Page.Direction))

	total := int64(len(matched))
	start := int(min(q.Page.Offset(), total))
	end := start + int(min(int64(q.Page.Size), total-int64(start)))

	content := make([]models.ValueConverting, 0, end-start)
	for _, vc := range matched[start:end] {
		if q.SkipConvertingMaps {
			vc.ConvertingMap = nil
		} else {
			vc.ConvertingMap = maps.Clone(vc.ConvertingMap)
		}
		content = append(content, vc)
	}
	return models.NewPage(content, total, q.Page), nil
}

// compareBy orders by the requested property, then by id ascending so pages
// are stable across calls.
func compareBy(prop models.SortProperty, dir models.Direction) func(a, b models.ValueConverting) int {
	return func(a, b models.ValueConverting) int {
		var c int
		switch prop {
		case models.SortByDisplayName:
			c = cmp.Compare(a.DisplayName, b.DisplayName)
		case models.SortByFromApplicationID:
			c = cmp.Compare(a.FromApplicationID, b.FromApplicationID)
		case models.SortByFromTypeID:
			c = cmp.Compare(a.FromTypeID, b.FromTypeID)
		case models.SortByToApplicationID:
			c = cmp.Compare(a.ToApplicationID, b.ToApplicationID)
		case models.SortByToTypeID:
			c = cmp.Compare(a.ToTypeID, b.ToTypeID)
		default:
			c = cmp.Compare(a.ID, b.ID)
		}
		if dir == models.Desc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return c
	}
}
