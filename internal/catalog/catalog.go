// Package catalog loads and builds the list of votable images.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/okian/faceoff/internal/domain/model"
)

const idPrefix = "img"

// Catalog is the immutable, ordered set of votable items.
type Catalog struct {
	items []model.Item
	index map[string]int
}

// New validates items and builds a catalog. Ids must be non-empty, unique and
// free of the pair key separator so persisted matchup keys stay unambiguous.
func New(items []model.Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]model.Item, len(items)),
		index: make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i, it := range c.items {
		if strings.TrimSpace(it.ID) == "" {
			return nil, fmt.Errorf("%w: item %d has an empty id", ErrInvalidCatalog, i)
		}
		if strings.Contains(it.ID, model.PairKeySeparator) {
			return nil, fmt.Errorf("%w: id %q contains %q", ErrInvalidCatalog, it.ID, model.PairKeySeparator)
		}
		if _, dup := c.index[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, it.ID)
		}
		c.index[it.ID] = i
	}
	return c, nil
}

// Items returns the catalog in load order. The slice must not be modified.
func (c *Catalog) Items() []model.Item { return c.items }

// Get looks up an item by id.
func (c *Catalog) Get(id string) (model.Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Item{}, false
	}
	return c.items[i], true
}

// Contains reports whether id is in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Load reads a JSON array of {id, link} objects from path. When limit is
// positive only the first limit items are kept.
func Load(path string, limit int) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	var items []model.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrLoadCatalog, path, err)
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return New(items)
}

// Parse turns raw text with one URL per line into items img1..imgN.
// Literal "\n" sequences count as line breaks; blank lines are dropped.
func Parse(raw string) []model.Item {
	raw = strings.ReplaceAll(raw, `\n`, "\n")
	items := make([]model.Item, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, model.Item{
			ID:   idPrefix + strconv.Itoa(len(items)+1),
			Link: line,
		})
	}
	return items
}

// Save writes items to path as indented JSON.
func Save(path string, items []model.Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}
