package state

import "strings"

// Slot names collected by the dining suggestion intent, in validation precedence.
const (
	SlotCuisine   = "Cuisine"
	SlotLocation  = "Location"
	SlotPartySize = "PartySize"
	SlotDate      = "Date"
	SlotTime      = "Time"
	SlotEmail     = "Email"
)

// SlotOrder is the fixed precedence used when looking for the next slot to elicit.
var SlotOrder = []string{SlotCuisine, SlotLocation, SlotPartySize, SlotDate, SlotTime, SlotEmail}

// SlotSet is the flat view of a request in progress: slot name -> plain value.
// An absent key and an empty value both mean the slot has not been filled.
type SlotSet map[string]string

func NewSlotSet() SlotSet {
	return make(SlotSet, len(SlotOrder))
}

// Get returns the slot value and whether it is filled.
func (s SlotSet) Get(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Value returns the slot value or "".
func (s SlotSet) Value(name string) string {
	v, _ := s.Get(name)
	return v
}

// Set stores a value. Empty values clear the slot.
func (s SlotSet) Set(name, value string) {
	if value == "" {
		delete(s, name)
		return
	}
	s[name] = value
}

// Clone returns an independent copy.
func (s SlotSet) Clone() SlotSet {
	out := make(SlotSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Missing lists unfilled slots in precedence order.
func (s SlotSet) Missing() []string {
	var missing []string
	for _, name := range SlotOrder {
		if _, ok := s.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsKnownSlot reports whether name is one of the collected slots (case-sensitive).
func IsKnownSlot(name string) bool {
	for _, n := range SlotOrder {
		if n == name {
			return true
		}
	}
	return false
}

// NormalizeCuisine lower-cases a cuisine for set membership checks.
func NormalizeCuisine(v string) string {
	return strings.ToLower(v)
}
