// Package catalog loads the static exercise catalog and answers lookups on it.
package catalog

import (
	"sort"
	"strings"
)

// Exercise is one catalog entry. Entries are immutable once loaded.
type Exercise struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaRef    string `json:"media_ref"`
	MediaURL    string `json:"media_url"`
}

// Catalog is an ordered, read-only set of exercises. It is safe for
// concurrent use because nothing mutates it after construction.
type Catalog struct {
	exercises  []Exercise
	byTitle    map[string]int
	categories []string
}

func newCatalog(exercises []Exercise) *Catalog {
	c := &Catalog{
		exercises: exercises,
		byTitle:   make(map[string]int, len(exercises)),
	}
	seen := map[string]bool{}
	for i, ex := range exercises {
		key := titleKey(ex.Title)
		if _, dup := c.byTitle[key]; !dup {
			c.byTitle[key] = i
		}
		if !seen[ex.Category] {
			seen[ex.Category] = true
			c.categories = append(c.categories, ex.Category)
		}
	}
	return c
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// All returns every exercise in document order.
func (c *Catalog) All() []Exercise {
	out := make([]Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// Titles returns every exercise title in document order.
func (c *Catalog) Titles() []string {
	out := make([]string, 0, len(c.exercises))
	for _, ex := range c.exercises {
		out = append(out, ex.Title)
	}
	return out
}

// Len is the number of exercises.
func (c *Catalog) Len() int {
	return len(c.exercises)
}

// Lookup finds an exercise by title, ignoring case. The first entry wins
// when a title appears in more than one category.
func (c *Catalog) Lookup(title string) (Exercise, bool) {
	i, ok := c.byTitle[titleKey(title)]
	if !ok {
		return Exercise{}, false
	}
	return c.exercises[i], true
}

func (c *Catalog) Contains(title string) bool {
	_, ok := c.byTitle[titleKey(title)]
	return ok
}

// Categories returns category names in document order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) ByCategory(category string) []Exercise {
	var out []Exercise
	for _, ex := range c.exercises {
		if strings.EqualFold(ex.Category, category) {
			out = append(out, ex)
		}
	}
	return out
}

// Unknown returns the titles in names that are not in the catalog, sorted
// and without duplicates.
func (c *Catalog) Unknown(names []string) []string {
	set := map[string]struct{}{}
	for _, n := range names {
		if !c.Contains(n) {
			set[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
