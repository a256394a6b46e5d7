package storage

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"github.com/Veraticus/spice-ledger/internal/model"
)

const categoryFieldCount = 3

// CategoryStore owns the ledger's categories, keyed by name.
type CategoryStore struct {
	byName map[string]*model.Category
}

// NewCategoryStore creates an empty category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{byName: make(map[string]*model.Category)}
}

// FindByName returns the stored category with exactly this name, or nil.
func (s *CategoryStore) FindByName(name string) *model.Category {
	return s.byName[name]
}

// Save inserts c or overwrites the category stored under c.Name and returns
// the stored instance. An overwrite updates the existing instance in place so
// transactions already referencing that name observe the new values.
func (s *CategoryStore) Save(c model.Category) *model.Category {
	if existing, ok := s.byName[c.Name]; ok {
		*existing = c
		return existing
	}

	stored := c
	s.byName[c.Name] = &stored
	return &stored
}

// All returns the stored categories ordered by name.
func (s *CategoryStore) All() []*model.Category {
	out := make([]*model.Category, 0, len(s.byName))
	for _, c := range s.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Remove deletes the category with this name. It reports whether one existed.
// Clearing transaction references is the caller's job.
func (s *CategoryStore) Remove(name string) bool {
	if _, ok := s.byName[name]; !ok {
		return false
	}
	delete(s.byName, name)
	return true
}

// Len returns the number of stored categories.
func (s *CategoryStore) Len() int {
	return len(s.byName)
}

// Serialize writes every category as an `"id","name",kind` record.
func (s *CategoryStore) Serialize(w io.Writer) error {
	rw := newRecordWriter(w)
	for _, c := range s.All() {
		if err := rw.write(encodeCategory(*c)...); err != nil {
			return fmt.Errorf("failed to write category %q: %w", c.Name, err)
		}
	}
	if err := rw.flush(); err != nil {
		return fmt.Errorf("failed to flush categories: %w", err)
	}
	return nil
}

// Deserialize loads category records from r into the store. Short records are
// skipped and unknown kind codes load as expense categories.
func (s *CategoryStore) Deserialize(r io.Reader) (LoadResult, error) {
	var result LoadResult

	skipped, err := readRecords(r, func(fields []string) {
		c, ok := decodeCategory(fields)
		if !ok {
			result.Skipped++
			return
		}
		s.Save(c)
		result.Loaded++
	})
	result.Skipped += skipped
	if err != nil {
		return result, fmt.Errorf("failed to read categories: %w", err)
	}

	slog.Debug("loaded categories", "loaded", result.Loaded, "skipped", result.Skipped)
	return result, nil
}

// SaveFile rewrites path with the full category set.
func (s *CategoryStore) SaveFile(path string) error {
	return writeFileAtomic(path, s.Serialize)
}

// LoadFile loads categories from path. A missing file loads nothing.
func (s *CategoryStore) LoadFile(path string) (LoadResult, error) {
	return readFile(path, s.Deserialize)
}

func encodeCategory(c model.Category) []string {
	return []string{
		quoteField(c.ID),
		quoteField(c.Name),
		strconv.Itoa(int(c.Type)),
	}
}

func decodeCategory(fields []string) (model.Category, bool) {
	if len(fields) < categoryFieldCount {
		return model.Category{}, false
	}
	return model.Category{
		ID:   fields[0],
		Name: fields[1],
		Type: model.CategoryTypeFromCode(fields[2]),
	}, true
}
