package services

import "sort"

// ChangeSet accumulates the prison numbers whose alert sets changed during
// one operation. The caller flushes it to the event publisher exactly once
// after the unit of work commits, so N alert mutations for one prisoner
// collapse into a single alerts-changed signal.
type ChangeSet struct {
	prisoners map[string]struct{}
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{prisoners: make(map[string]struct{})}
}

func (c *ChangeSet) Register(prisonNumber string) {
	c.prisoners[prisonNumber] = struct{}{}
}

// PrisonNumbers returns the affected prisoners, deduplicated and sorted.
func (c *ChangeSet) PrisonNumbers() []string {
	out := make([]string, 0, len(c.prisoners))
	for pn := range c.prisoners {
		out = append(out, pn)
	}
	sort.Strings(out)
	return out
}

func (c *ChangeSet) Len() int {
	return len(c.prisoners)
}
