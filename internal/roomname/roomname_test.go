package roomname

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	for range 50 {
		parts := strings.Split(Generate(), "-")
		require.Len(t, parts, len(lists))
		for i, word := range parts {
			assert.Contains(t, lists[i], word)
		}
	}
}

func TestUnique_SkipsTaken(t *testing.T) {
	seen := map[string]bool{}
	calls := 0
	id := Unique(func(candidate string) bool {
		calls++
		if calls <= 3 {
			seen[candidate] = true
			return true
		}
		return seen[candidate]
	})
	assert.False(t, seen[id])
	assert.GreaterOrEqual(t, calls, 4)
}

func TestUnique_WidensWhenSpaceIsExhausted(t *testing.T) {
	id := Unique(func(candidate string) bool {
		return len(strings.Split(candidate, "-")) == len(lists)
	})
	assert.Len(t, strings.Split(id, "-"), len(lists)+1)
}

func TestWordListsHaveNoDuplicates(t *testing.T) {
	all := lo.Flatten(lists)
	assert.Len(t, lo.Uniq(all), len(all))
}
