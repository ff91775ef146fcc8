// Package roomname generates memorable room IDs such as
// "calm-harbor-maple-otter".
package roomname

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var qualities = []string{
	"calm", "steady", "gentle", "bright", "quiet", "warm", "clear", "brave", "kind", "swift",
	"golden", "silver", "amber", "azure", "coral", "ivory", "jade", "olive", "rosy", "sunny",
}

var places = []string{
	"harbor", "meadow", "valley", "river", "summit", "grove", "canyon", "island", "orchard", "prairie",
	"lagoon", "garden", "forest", "shore", "ridge", "glade", "delta", "marsh", "hollow", "cove",
}

var trees = []string{
	"maple", "willow", "cedar", "birch", "aspen", "pine", "spruce", "alder", "hazel", "linden",
	"rowan", "juniper", "cypress", "laurel", "magnolia", "sequoia", "poplar", "elm", "oak", "yew",
}

var animals = []string{
	"otter", "heron", "fox", "panda", "koala", "robin", "dolphin", "badger", "beaver", "falcon",
	"lynx", "owl", "puffin", "seal", "swan", "tortoise", "wren", "hare", "finch", "marten",
}

// lists is the order words are drawn in.
var lists = [][]string{qualities, places, trees, animals}

// maxAttempts bounds Unique before it widens the ID with a suffix word.
const maxAttempts = 32

// Generate returns a random four-word ID.
func Generate() string {
	words := make([]string, len(lists))
	for i, list := range lists {
		words[i] = list[randomIndex(len(list))]
	}
	return strings.Join(words, "-")
}

// Unique returns a generated ID for which taken reports false. After
// maxAttempts collisions it appends a further random word until it finds
// a free ID.
func Unique(taken func(string) bool) string {
	id := Generate()
	for attempt := 1; taken(id); attempt++ {
		if attempt < maxAttempts {
			id = Generate()
			continue
		}
		id += "-" + animals[randomIndex(len(animals))]
	}
	return id
}

// randomIndex returns a cryptographically secure random index for a slice
// of the given length.
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("roomname: crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}
