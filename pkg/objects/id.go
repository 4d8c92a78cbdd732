package objects

import (
	"fmt"
	"sync/atomic"
)

// Id identifies a game object across processes. Owner is the allocating
// player (0 for objects synchronized from the host tracker), Serial is unique
// per owner.
type Id struct {
	Owner  uint32
	Serial int64
}

func (id Id) IsZero() bool {
	return id.Owner == 0 && id.Serial == 0
}

func (id Id) String() string {
	return fmt.Sprintf("%d:%d", id.Owner, id.Serial)
}

const (
	// TrackerOwner owns the objects synchronized from the host tracker.
	TrackerOwner uint32 = 0
	// LocalOwner is used when a registry is created without a provider.
	LocalOwner uint32 = 1
)

type IdentityProvider interface {
	NextId() Id
}

type SequentialIdentityProvider struct {
	Owner uint32

	nextSerial atomic.Int64
}

func CreateSequentialIdentityProvider(owner uint32) *SequentialIdentityProvider {
	return &SequentialIdentityProvider{
		Owner:      owner,
		nextSerial: atomic.Int64{},
	}
}

func (p *SequentialIdentityProvider) NextId() Id {
	return Id{
		Owner:  p.Owner,
		Serial: p.nextSerial.Add(1),
	}
}
