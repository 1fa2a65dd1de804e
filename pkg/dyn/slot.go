package dyn

import "strconv"

type slotKind uint8

const (
	slotNone slotKind = iota
	slotPositional
	slotDynamic
)

// Slot is the storage position of a property or method: a fixed index, a
// marker that the position is resolved by name on the receiver, or nothing.
// The zero value is NotApplicable.
type Slot struct {
	kind  slotKind
	index int
}

var (
	// NotApplicable marks a slot that does not exist, such as the
	// instance slot of a static property.
	NotApplicable = Slot{}
	// DynamicLookup marks a property whose position is only known by name
	// in the receiver's flattened property list.
	DynamicLookup = Slot{kind: slotDynamic}
)

// Positional returns the slot at index n. n must not be negative.
func Positional(n int) Slot {
	if n < 0 {
		panic("dyn: negative slot index " + strconv.Itoa(n))
	}
	return Slot{kind: slotPositional, index: n}
}

// Index returns the positional index and true, or -1 and false.
func (s Slot) Index() (int, bool) {
	if s.kind != slotPositional {
		return -1, false
	}
	return s.index, true
}

func (s Slot) IsPositional() bool { return s.kind == slotPositional }
func (s Slot) IsDynamic() bool    { return s.kind == slotDynamic }
func (s Slot) IsNone() bool       { return s.kind == slotNone }

func (s Slot) String() string {
	switch s.kind {
	case slotPositional:
		return strconv.Itoa(s.index)
	case slotDynamic:
		return "dynamic"
	}
	return "-"
}
