package objects

import (
	"sync"
)

// Instance is a live local object that may or may not have been assigned a
// multiplayer id yet.
type Instance struct {
	Id     *Id
	Object any
}

// TrackedObject is one entry of the host's own object tracker.
type TrackedObject struct {
	InstanceId int64
	Object     any
}

type Registry struct {
	provider IdentityProvider

	mut_objects sync.RWMutex
	objects     map[Id]any
}

// CreateRegistry allocates ids from provider, or from a sequential provider
// for LocalOwner when provider is nil.
func CreateRegistry(provider IdentityProvider) *Registry {
	if provider == nil {
		provider = CreateSequentialIdentityProvider(LocalOwner)
	}
	return &Registry{
		provider:    provider,
		mut_objects: sync.RWMutex{},
		objects:     make(map[Id]any),
	}
}

// Register stores the instance's object under its id, allocating one first
// when the instance has none. Concurrent calls for the same instance agree on
// one id.
func (r *Registry) Register(instance *Instance) Id {
	r.mut_objects.Lock()
	defer r.mut_objects.Unlock()

	if instance.Id == nil {
		id := r.provider.NextId()
		instance.Id = &id
	}
	r.objects[*instance.Id] = instance.Object
	return *instance.Id
}

func (r *Registry) Remove(id Id) {
	r.mut_objects.Lock()
	defer r.mut_objects.Unlock()
	delete(r.objects, id)
}

func (r *Registry) Get(id Id) (any, bool) {
	r.mut_objects.RLock()
	defer r.mut_objects.RUnlock()

	obj, has := r.objects[id]
	return obj, has
}

// Set replaces the object stored under id. A nil object removes the entry.
func (r *Registry) Set(id Id, obj any) {
	r.mut_objects.Lock()
	defer r.mut_objects.Unlock()

	if obj == nil {
		delete(r.objects, id)
		return
	}
	r.objects[id] = obj
}

func (r *Registry) Len() int {
	r.mut_objects.RLock()
	defer r.mut_objects.RUnlock()
	return len(r.objects)
}

// Synchronize discards every registration and rebuilds the registry from the
// host tracker. Tracker objects are keyed by TrackerOwner and their instance id so
// every peer loading the same save agrees on them. Synchronization stops at
// the first nil tracker entry.
func (r *Registry) Synchronize(tracked []TrackedObject) {
	objects := make(map[Id]any, len(tracked))
	for _, t := range tracked {
		if t.Object == nil {
			break
		}
		objects[Id{Owner: TrackerOwner, Serial: t.InstanceId}] = t.Object
	}

	r.mut_objects.Lock()
	defer r.mut_objects.Unlock()
	r.objects = objects
}
