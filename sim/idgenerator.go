package sim

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	idGeneratorOnce sync.Once
	idGenerator     IDGenerator
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// UseSequentialIDGenerator configures the ID generator to generate IDs in
// sequential. It must be called before any ID is generated.
func UseSequentialIDGenerator() {
	configureIDGenerator(&sequentialIDGenerator{})
}

// UseGlobalIDGenerator configures the ID generator to generate globally
// unique IDs. The IDs generated will not be deterministic anymore.
func UseGlobalIDGenerator() {
	configureIDGenerator(globalIDGenerator{})
}

func configureIDGenerator(g IDGenerator) {
	configured := false

	idGeneratorOnce.Do(func() {
		idGenerator = g
		configured = true
	})

	if !configured {
		panic("cannot change id generator type after using it")
	}
}

// GetIDGenerator returns the ID generator used in the current process.
func GetIDGenerator() IDGenerator {
	idGeneratorOnce.Do(func() {
		idGenerator = &sequentialIDGenerator{}
	})

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type globalIDGenerator struct{}

func (globalIDGenerator) Generate() string {
	return xid.New().String()
}
