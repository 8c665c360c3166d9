package request

import (
	"strconv"
	"strings"

	"lbsim/pkg/protocol"

	"github.com/google/uuid"
)

// Rand is the random source a Generator draws from. *math/rand.Rand
// satisfies it; pass a seeded one for reproducible runs.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Read(p []byte) (int, error)
}

// Generator synthesizes random requests.
type Generator struct {
	rng         Rand
	minDuration int
	maxDuration int
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithDurationRange sets the inclusive duration bounds. Invalid ranges are
// ignored and the defaults kept.
func WithDurationRange(lo, hi int) GeneratorOption {
	return func(g *Generator) {
		if lo >= 1 && hi >= lo {
			g.minDuration = lo
			g.maxDuration = hi
		}
	}
}

// NewGenerator returns a Generator drawing from rng with durations in
// [protocol.MinDuration, protocol.MaxDuration] unless overridden.
func NewGenerator(rng Rand, opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng:         rng,
		minDuration: protocol.MinDuration,
		maxDuration: protocol.MaxDuration,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a fresh request with random addresses and duration.
func (g *Generator) Next() Request {
	src := g.RandomIP()
	dst := g.RandomIP()
	dur := g.rng.Intn(g.maxDuration-g.minDuration+1) + g.minDuration

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}

	return Request{
		ID:          id,
		Source:      src,
		Destination: dst,
		Duration:    dur,
	}
}

// RandomIP returns a dotted-quad address with each octet uniform in [0,255].
func (g *Generator) RandomIP() string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(g.rng.Intn(256)))
	}
	return b.String()
}
