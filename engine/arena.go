package engine

// Handle names a value in an Arena. Bits 28-29 hold the arena's space tag,
// bits 20-27 the slot generation and bits 0-19 the slot index plus one,
// so 0 is never a valid handle and a handle only resolves in the arena
// and slot generation that issued it.
type Handle uint32

const (
	slotBits   = 20
	genBits    = 8
	slotMask   = 1<<slotBits - 1
	genMask    = 1<<genBits - 1
	spaceShift = slotBits + genBits
	spaceMask  = 3

	// MaxSlots is the most values an arena holds at once.
	MaxSlots = slotMask
)

// Space tags.
const (
	SpaceDocument uint32 = 1
	SpaceRange    uint32 = 2
)

func makeHandle(space uint32, gen uint8, slot int) Handle {
	return Handle(space<<spaceShift | uint32(gen)<<slotBits | uint32(slot+1))
}

func (h Handle) space() uint32 { return uint32(h) >> spaceShift & spaceMask }
func (h Handle) gen() uint8    { return uint8(uint32(h) >> slotBits & genMask) }
func (h Handle) slot() int     { return int(uint32(h)&slotMask) - 1 }

type slot[T any] struct {
	val  T
	gen  uint8
	live bool
}

// Arena stores values under handles. Freed slots are reused with the next
// generation, so a stale handle fails to resolve until its generation
// wraps around.
type Arena[T any] struct {
	space uint32
	slots []slot[T]
	free  []int
	live  int
}

func NewArena[T any](space uint32) *Arena[T] {
	return &Arena[T]{space: space}
}

// Alloc stores v and returns its handle, or 0 when the arena is full.
func (a *Arena[T]) Alloc(v T) Handle {
	var i int
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if len(a.slots) >= MaxSlots {
			return 0
		}
		a.slots = append(a.slots, slot[T]{gen: 1})
		i = len(a.slots) - 1
	}
	s := &a.slots[i]
	s.val, s.live = v, true
	a.live++
	return makeHandle(a.space, s.gen, i)
}

func (a *Arena[T]) lookup(h Handle) *slot[T] {
	if h.space() != a.space {
		return nil
	}
	i := h.slot()
	if i < 0 || i >= len(a.slots) {
		return nil
	}
	s := &a.slots[i]
	if !s.live || s.gen != h.gen() {
		return nil
	}
	return s
}

// Get returns the value behind h.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if s := a.lookup(h); s != nil {
		return s.val, true
	}
	var zero T
	return zero, false
}

// Set replaces the value behind a live handle.
func (a *Arena[T]) Set(h Handle, v T) bool {
	s := a.lookup(h)
	if s == nil {
		return false
	}
	s.val = v
	return true
}

// Free invalidates h and returns the value it named.
func (a *Arena[T]) Free(h Handle) (T, bool) {
	var zero T
	s := a.lookup(h)
	if s == nil {
		return zero, false
	}
	v := s.val
	s.val, s.live = zero, false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, h.slot())
	a.live--
	return v, true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int { return a.live }

// Handles returns the live handles in slot order.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, 0, a.live)
	for i, s := range a.slots {
		if s.live {
			out = append(out, makeHandle(a.space, s.gen, i))
		}
	}
	return out
}

// Reset frees every value.
func (a *Arena[T]) Reset() {
	for _, h := range a.Handles() {
		a.Free(h)
	}
}
