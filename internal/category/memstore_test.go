package category

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"polycms/internal/models"
)

// memStore is an in-memory Store used by the engine tests. It enforces
// slug/key uniqueness the way the PostgreSQL unique indexes do, including
// returning ErrDuplicate from Insert/Update.
type memStore struct {
	cats     map[uuid.UUID]*models.Category
	postRefs map[uuid.UUID]int

	// duplicateOnce simulates losing a race: the next Insert first commits
	// a competing record with the same slug/key, then fails.
	duplicateOnce bool
}

func newMemStore() *memStore {
	return &memStore{
		cats:     make(map[uuid.UUID]*models.Category),
		postRefs: make(map[uuid.UUID]int),
	}
}

func (m *memStore) List(includeInactive bool) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.cats {
		if !includeInactive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memStore) FindByID(id uuid.UUID) (*models.Category, error) {
	c, ok := m.cats[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) FindBySlug(slug string) (*models.Category, error) {
	for _, c := range m.cats {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) SlugExists(slug string, exclude *uuid.UUID) (bool, error) {
	for id, c := range m.cats {
		if exclude != nil && id == *exclude {
			continue
		}
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) KeyExists(key string, exclude *uuid.UUID) (bool, error) {
	for id, c := range m.cats {
		if exclude != nil && id == *exclude {
			continue
		}
		if c.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Insert(c *models.Category) (*models.Category, error) {
	if m.duplicateOnce {
		m.duplicateOnce = false
		competitor := *c
		competitor.ID = uuid.New()
		competitor.CreatedAt = time.Now()
		competitor.UpdatedAt = competitor.CreatedAt
		m.cats[competitor.ID] = &competitor
		return nil, ErrDuplicate
	}
	if taken, _ := m.SlugExists(c.Slug, nil); taken {
		return nil, ErrDuplicate
	}
	if taken, _ := m.KeyExists(c.Key, nil); taken {
		return nil, ErrDuplicate
	}

	cp := *c
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.cats[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (m *memStore) Update(c *models.Category) (*models.Category, error) {
	if _, ok := m.cats[c.ID]; !ok {
		return nil, nil
	}
	if taken, _ := m.SlugExists(c.Slug, &c.ID); taken {
		return nil, ErrDuplicate
	}
	if taken, _ := m.KeyExists(c.Key, &c.ID); taken {
		return nil, ErrDuplicate
	}

	cp := *c
	cp.UpdatedAt = time.Now()
	m.cats[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (m *memStore) Delete(id uuid.UUID) error {
	delete(m.cats, id)
	return nil
}

func (m *memStore) ChildIDs(id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, c := range m.cats {
		if c.ParentID != nil && *c.ParentID == id {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (m *memStore) HasChildren(id uuid.UUID) (bool, error) {
	ids, _ := m.ChildIDs(id)
	return len(ids) > 0, nil
}

func (m *memStore) PostCount(id uuid.UUID) (int, error) {
	return m.postRefs[id], nil
}
