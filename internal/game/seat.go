package game

import "github.com/cardroom/cardroom/internal/deck"

// Seat holds one position at the table: the occupant's persistent identity
// and stack, plus transient per-hand state. Seats live in a fixed-size
// ordered array; the index is the seat number.
type Seat struct {
	Occupied bool
	Token    string // identity token, unique across seats while occupied
	Name     string
	Chips    int

	// Per-hand state, reset at hand start and hand end.
	InHand              bool
	Folded              bool
	AllIn               bool
	HoleCards           []deck.Card
	TotalCommitted      int // chips placed into the pot this hand
	CommittedThisStreet int
	ActedThisStreet     bool
}

// CanAct reports whether the seat can still take an action this hand.
func (s *Seat) CanAct() bool {
	return s.InHand && !s.Folded && !s.AllIn
}

// Alive reports whether the seat is still contesting the pot (may be all-in).
func (s *Seat) Alive() bool {
	return s.InHand && !s.Folded
}

// resetHandState clears the transient per-hand fields.
func (s *Seat) resetHandState() {
	s.InHand = false
	s.Folded = false
	s.AllIn = false
	s.HoleCards = nil
	s.TotalCommitted = 0
	s.CommittedThisStreet = 0
	s.ActedThisStreet = false
}

// commit moves up to amount chips from the seat's stack into the pot,
// clamped to what the seat actually has. The seat is marked all-in when its
// stack is exhausted. Returns the amount actually paid.
func (s *Seat) commit(amount int) int {
	if amount > s.Chips {
		amount = s.Chips
	}
	s.Chips -= amount
	s.CommittedThisStreet += amount
	s.TotalCommitted += amount
	if s.Chips == 0 {
		s.AllIn = true
	}
	return amount
}

// Registry is the fixed-capacity set of seats.
type Registry struct {
	seats []Seat
}

// NewRegistry creates a registry with the given number of seats.
func NewRegistry(capacity int) *Registry {
	return &Registry{seats: make([]Seat, capacity)}
}

// Len returns the seat capacity.
func (r *Registry) Len() int {
	return len(r.seats)
}

// Seat returns the seat at the given index.
func (r *Registry) Seat(idx int) *Seat {
	return &r.seats[idx]
}

// SeatPlayer fills the first empty seat with the given identity and initial
// stack. Fails with ErrTableFull when no seat is empty and with
// ErrDuplicateIdentity when the identity already occupies a seat.
func (r *Registry) SeatPlayer(token, name string, chips int) (int, error) {
	if r.IndexOf(token) != -1 {
		return -1, ErrDuplicateIdentity
	}
	for i := range r.seats {
		if !r.seats[i].Occupied {
			r.seats[i] = Seat{Occupied: true, Token: token, Name: name, Chips: chips}
			return i, nil
		}
	}
	return -1, ErrTableFull
}

// Remove clears the seat back to empty. Mid-hand removal is the caller's
// concern: the orchestrator folds the seat first so committed chips stay in
// the pot.
func (r *Registry) Remove(idx int) {
	r.seats[idx] = Seat{}
}

// IndexOf returns the seat index occupied by the identity, or -1.
func (r *Registry) IndexOf(token string) int {
	for i := range r.seats {
		if r.seats[i].Occupied && r.seats[i].Token == token {
			return i
		}
	}
	return -1
}

// Occupied returns the indices of all occupied seats in order.
func (r *Registry) Occupied() []int {
	var out []int
	for i := range r.seats {
		if r.seats[i].Occupied {
			out = append(out, i)
		}
	}
	return out
}

// InHandAlive returns seats still contesting the pot (may be all-in).
func (r *Registry) InHandAlive() []int {
	var out []int
	for i := range r.seats {
		if r.seats[i].Occupied && r.seats[i].Alive() {
			out = append(out, i)
		}
	}
	return out
}

// InHandActive returns seats that can still act (not folded, not all-in).
func (r *Registry) InHandActive() []int {
	var out []int
	for i := range r.seats {
		if r.seats[i].Occupied && r.seats[i].CanAct() {
			out = append(out, i)
		}
	}
	return out
}

// NextOccupied walks the seat ring starting just after from, wrapping, and
// returns the first occupied seat, or -1. Bounded by one full traversal so a
// ring with a single candidate cannot loop forever.
func (r *Registry) NextOccupied(from int) int {
	return r.next(from, func(s *Seat) bool { return s.Occupied })
}

// NextActive walks the seat ring starting just after from and returns the
// first seat that can still act, or -1.
func (r *Registry) NextActive(from int) int {
	return r.next(from, func(s *Seat) bool { return s.Occupied && s.CanAct() })
}

func (r *Registry) next(from int, pred func(*Seat) bool) int {
	n := len(r.seats)
	for i := 1; i <= n; i++ {
		idx := ((from + i) % n + n) % n
		if pred(&r.seats[idx]) {
			return idx
		}
	}
	return -1
}

// ResetHandState clears per-hand fields on every seat.
func (r *Registry) ResetHandState() {
	for i := range r.seats {
		if r.seats[i].Occupied {
			r.seats[i].resetHandState()
		}
	}
}
