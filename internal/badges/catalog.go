// Package badges holds the immutable catalog of badge definitions and the
// eligibility predicates used to award them automatically.
package badges

import (
	"errors"
	"fmt"
)

type Category string

const (
	CategoryMilestone   Category = "milestone"
	CategoryStreak      Category = "streak"
	CategoryPerformance Category = "performance"
	CategorySocial      Category = "social"
	CategoryFeature     Category = "feature"
	CategoryExploration Category = "exploration"
	CategoryHabit       Category = "habit"
	CategoryIntensity   Category = "intensity"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMilestone, CategoryStreak, CategoryPerformance, CategorySocial,
		CategoryFeature, CategoryExploration, CategoryHabit, CategoryIntensity:
		return true
	}
	return false
}

var ErrBadgeNotFound = errors.New("badge not found")

// Badge is a single catalog entry. Eligible is nil for badges that can only be
// granted manually.
type Badge struct {
	Key         string
	Name        string
	Description string
	Icon        string
	Points      int
	Category    Category
	Requirement string
	Eligible    func(Snapshot) bool
}

// Automatic reports whether the badge is awarded by evaluation.
func (b Badge) Automatic() bool {
	return b.Eligible != nil
}

// Catalog is safe for concurrent use; it is never mutated after NewCatalog.
type Catalog struct {
	badges []Badge
	index  map[string]int
}

func NewCatalog(defs ...Badge) (*Catalog, error) {
	c := &Catalog{
		badges: make([]Badge, 0, len(defs)),
		index:  make(map[string]int, len(defs)),
	}
	for _, b := range defs {
		if b.Key == "" {
			return nil, errors.New("badge key must not be empty")
		}
		if _, dup := c.index[b.Key]; dup {
			return nil, fmt.Errorf("duplicate badge key %q", b.Key)
		}
		if b.Points < 0 {
			return nil, fmt.Errorf("badge %q: points must not be negative", b.Key)
		}
		if !b.Category.Valid() {
			return nil, fmt.Errorf("badge %q: unknown category %q", b.Key, b.Category)
		}
		c.index[b.Key] = len(c.badges)
		c.badges = append(c.badges, b)
	}
	return c, nil
}

// All returns the badges in declaration order.
func (c *Catalog) All() []Badge {
	out := make([]Badge, len(c.badges))
	copy(out, c.badges)
	return out
}

func (c *Catalog) Lookup(key string) (Badge, error) {
	i, ok := c.index[key]
	if !ok {
		return Badge{}, fmt.Errorf("%w: %s", ErrBadgeNotFound, key)
	}
	return c.badges[i], nil
}

func (c *Catalog) Len() int {
	return len(c.badges)
}
