package client

import (
	"math/rand"
	"sync"
)

// IdentitySource draws the id a client presents for one connection.
type IdentitySource interface {
	NextClientId() ClientId
}

// Ambiguous glyphs (0, O, l, I) are left out so ids can be read aloud.
const clientIdAlphabet = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

const DefaultClientIdLength = 12

// RandomIdentitySource draws fixed-length ids from its own seeded generator.
// Safe for concurrent use.
type RandomIdentitySource struct {
	length int

	mut_gen sync.Mutex
	gen     *rand.Rand
}

func CreateRandomIdentitySource(seed int64, length int) *RandomIdentitySource {
	if length <= 0 {
		length = DefaultClientIdLength
	}
	return &RandomIdentitySource{
		length:  length,
		mut_gen: sync.Mutex{},
		gen:     rand.New(rand.NewSource(seed)),
	}
}

func (s *RandomIdentitySource) NextClientId() ClientId {
	s.mut_gen.Lock()
	defer s.mut_gen.Unlock()

	id := make([]byte, s.length)
	for i := range id {
		id[i] = clientIdAlphabet[s.gen.Intn(len(clientIdAlphabet))]
	}
	return ClientId(id)
}
