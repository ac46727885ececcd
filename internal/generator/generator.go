// Package generator provides randomized word ordering.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/qwerty/internal/model"
)

// Generator produces uniform random permutations.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a shuffled copy of words; the input is left untouched.
func (g *Generator) Shuffle(words []model.Word) []model.Word {
	out := make([]model.Word, len(words))
	copy(out, words)
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
