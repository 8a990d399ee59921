// Package idgen builds short, memorable identifiers out of a fixed word list.
//
// Identifiers are mnemonic handles, not secrets. Collisions are possible and
// are not detected here; with a vocabulary of V words and L positions there
// are V^L distinct identifiers.
package idgen

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/jmgilman/go/errors"
)

const (
	DefaultLength    = 5
	DefaultSeparator = "-"
)

// Ingredients is the default vocabulary.
var Ingredients = []string{
	"basil", "beans", "broccoli", "broth", "cabbage", "carrots", "cauliflower",
	"celery", "chili", "chives", "cilantro", "corn", "cumin", "garlic", "ginger",
	"kale", "leek", "lentils", "mushrooms", "onions", "oregano", "parsley",
	"pasta", "peas", "pepper", "potatoes", "salt", "spinach", "squash", "thyme",
	"tofu", "tomatoes", "turnips",
}

// Source yields uniform integers in [0, n). It must be safe for concurrent use.
type Source interface {
	IntN(n int) int
}

// globalSource uses the math/rand/v2 top-level generator, which is
// safe for concurrent use and seeded once per process.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// lockedSource serializes access to a *rand.Rand, which is not safe for concurrent use.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// NewSeededSource returns a deterministic Source, mostly useful in tests.
func NewSeededSource(seed1, seed2 uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// Generate joins length words drawn independently and uniformly, with
// replacement, from vocabulary. It returns "" if length < 1 or the vocabulary is empty.
func Generate(length int, separator string, vocabulary []string) string {
	return generate(globalSource{}, length, separator, vocabulary)
}

func generate(src Source, length int, separator string, vocabulary []string) string {
	if length < 1 || len(vocabulary) == 0 {
		return ""
	}
	words := make([]string, length)
	for i := range words {
		words[i] = vocabulary[src.IntN(len(vocabulary))]
	}
	return strings.Join(words, separator)
}

// Options configures a Generator. Zero values select the defaults.
type Options struct {
	Length     int
	Separator  string
	Vocabulary []string
	Source     Source
}

// Generator produces identifiers with a fixed shape. It is safe for concurrent use.
type Generator struct {
	length     int
	separator  string
	vocabulary []string
	src        Source
}

// New validates opts and returns a Generator.
//
// An empty Separator selects DefaultSeparator; words may not be empty and
// may not contain the separator, otherwise identifiers would be ambiguous.
func New(opts Options) (*Generator, error) {
	if opts.Length == 0 {
		opts.Length = DefaultLength
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = Ingredients
	}
	if opts.Source == nil {
		opts.Source = globalSource{}
	}

	if opts.Length < 0 {
		return nil, errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "identifier length must be positive"),
			"length", opts.Length)
	}
	if len(opts.Vocabulary) == 0 {
		return nil, errors.New(errors.CodeInvalidConfig, "identifier vocabulary is empty")
	}
	for i, w := range opts.Vocabulary {
		if w == "" || strings.Contains(w, opts.Separator) {
			return nil, errors.WithContextMap(
				errors.New(errors.CodeInvalidConfig, "invalid vocabulary word"),
				map[string]interface{}{"index": i, "word": w, "separator": opts.Separator})
		}
	}

	vocab := make([]string, len(opts.Vocabulary))
	copy(vocab, opts.Vocabulary)

	return &Generator{
		length:     opts.Length,
		separator:  opts.Separator,
		vocabulary: vocab,
		src:        opts.Source,
	}, nil
}

// Next returns a new identifier.
func (g *Generator) Next() string {
	return generate(g.src, g.length, g.separator, g.vocabulary)
}

// Space returns the number of distinct identifiers, V^L, as a float
// because it overflows integers quickly.
func (g *Generator) Space() float64 {
	return math.Pow(float64(len(g.vocabulary)), float64(g.length))
}

// Words splits an identifier produced by g back into its words.
func (g *Generator) Words(id string) []string {
	return strings.Split(id, g.separator)
}
