package style

// Cow is a copy-on-write holder of a property group. Elements that do not
// override anything in a group share one instance with their parent (for
// inherited groups) or with the initial values (for the others); Mut clones
// the shared instance the first time it is written.
type Cow[T any] struct {
	p     *T
	owned bool
}

// Share wraps an instance that must not be modified through the holder.
func Share[T any](p *T) Cow[T] {
	return Cow[T]{p: p}
}

// Get returns the current instance for reading.
func (c Cow[T]) Get() *T {
	return c.p
}

// Mut returns an instance owned by the holder, cloning the shared one on
// first use.
func (c *Cow[T]) Mut() *T {
	if !c.owned {
		cp := *c.p
		c.p = &cp
		c.owned = true
	}
	return c.p
}

// Release gives up ownership, the next write through the holder clones.
func (c *Cow[T]) Release() {
	c.owned = false
}

// SameInstance reports reference identity of the held instances.
func (c Cow[T]) SameInstance(o Cow[T]) bool {
	return c.p == o.p
}
