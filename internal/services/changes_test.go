package services

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeSetCollapsesRepeatedRegistrations(t *testing.T) {
	changes := NewChangeSet()
	for i := 0; i < 50; i++ {
		pn := fmt.Sprintf("A%04dAA", i)
		changes.Register(pn)
		changes.Register(pn)
		changes.Register(pn)
	}

	assert.Equal(t, 50, changes.Len())
	assert.Len(t, changes.PrisonNumbers(), 50)
}

func TestChangeSetPrisonNumbersSorted(t *testing.T) {
	changes := NewChangeSet()
	changes.Register("C3333CC")
	changes.Register("A1111AA")
	changes.Register("B2222BB")

	numbers := changes.PrisonNumbers()
	assert.True(t, sort.StringsAreSorted(numbers))
	assert.Equal(t, []string{"A1111AA", "B2222BB", "C3333CC"}, numbers)
}
