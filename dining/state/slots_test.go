package state

import (
	"reflect"
	"testing"
)

func TestSlotSetGetTreatsEmptyAsMissing(t *testing.T) {
	t.Parallel()

	s := SlotSet{SlotCuisine: "", SlotLocation: "Boston"}
	if _, ok := s.Get(SlotCuisine); ok {
		t.Fatal("empty cuisine must be reported as missing")
	}
	if v, ok := s.Get(SlotLocation); !ok || v != "Boston" {
		t.Fatalf("Get(Location) = %q,%v", v, ok)
	}

	var nilSet SlotSet
	if _, ok := nilSet.Get(SlotEmail); ok {
		t.Fatal("nil slot set must report missing")
	}
}

func TestSlotSetMissingFollowsPrecedence(t *testing.T) {
	t.Parallel()

	s := NewSlotSet()
	s.Set(SlotLocation, "Paris")
	s.Set(SlotTime, "19:00")

	want := []string{SlotCuisine, SlotPartySize, SlotDate, SlotEmail}
	if got := s.Missing(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing() = %v, want %v", got, want)
	}
}

func TestSlotSetSetEmptyClears(t *testing.T) {
	t.Parallel()

	s := NewSlotSet()
	s.Set(SlotDate, "2024-05-01")
	s.Set(SlotDate, "")
	if _, exists := s[SlotDate]; exists {
		t.Fatal("setting empty value must delete the key")
	}
}

func TestSlotSetCloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := SlotSet{SlotCuisine: "Italian"}
	c := s.Clone()
	c.Set(SlotCuisine, "French")
	if s.Value(SlotCuisine) != "Italian" {
		t.Fatalf("clone mutated source: %v", s)
	}
}
