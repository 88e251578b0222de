package validate

import (
	"testing"

	statex "github.com/tanpawarit/dining-concierge/dining/state"
)

func completeSlots() statex.SlotSet {
	return statex.SlotSet{
		statex.SlotCuisine:   "Italian",
		statex.SlotLocation:  "New York",
		statex.SlotPartySize: "4",
		statex.SlotDate:      "2024-05-01",
		statex.SlotTime:      "19:00",
		statex.SlotEmail:     "x@y.com",
	}
}

func TestValidateCompleteSlots(t *testing.T) {
	t.Parallel()

	got := New(nil).Validate(completeSlots())
	if !got.Complete {
		t.Fatalf("Validate() = %+v, want Complete", got)
	}
}

func TestValidateMissingCuisineWinsOverEverything(t *testing.T) {
	t.Parallel()

	cases := []statex.SlotSet{
		{},
		{statex.SlotPartySize: "abc", statex.SlotEmail: "bad"},
		func() statex.SlotSet { s := completeSlots(); delete(s, statex.SlotCuisine); return s }(),
		func() statex.SlotSet { s := completeSlots(); s[statex.SlotCuisine] = "thai"; return s }(),
	}

	v := New(nil)
	for i, slots := range cases {
		got := v.Validate(slots)
		if got.Complete || got.Slot != statex.SlotCuisine {
			t.Fatalf("case %d: Validate() = %+v, want Invalid(Cuisine)", i, got)
		}
	}
}

func TestValidateCuisinePromptIsSorted(t *testing.T) {
	t.Parallel()

	got := New(nil).Validate(statex.SlotSet{})
	want := "What cuisine? Choose one of: american, chinese, french, italian, japanese, korean, mexican."
	if got.Prompt != want {
		t.Fatalf("prompt = %q, want %q", got.Prompt, want)
	}
}

func TestValidateCuisineCaseInsensitive(t *testing.T) {
	t.Parallel()

	s := completeSlots()
	s[statex.SlotCuisine] = "mExIcAn"
	if got := New(nil).Validate(s); !got.Complete {
		t.Fatalf("Validate() = %+v, want Complete", got)
	}
}

func TestValidatePrecedence(t *testing.T) {
	t.Parallel()

	v := New(nil)
	for i, name := range statex.SlotOrder {
		s := completeSlots()
		// Break this slot and every later one; this slot must be reported.
		for _, later := range statex.SlotOrder[i:] {
			delete(s, later)
		}
		got := v.Validate(s)
		if got.Complete || got.Slot != name {
			t.Fatalf("missing from %s: Validate() = %+v", name, got)
		}
		if got.Prompt == "" {
			t.Fatalf("missing from %s: empty prompt", name)
		}
	}
}

func TestValidatePartySize(t *testing.T) {
	t.Parallel()

	v := New(nil)
	for _, tc := range []struct {
		value string
		ok    bool
	}{
		{"0", false},
		{"-3", false},
		{"abc", false},
		{"", false},
		{"4.5", false},
		{" 4", false},
		{"1", true},
		{"25", true},
		{"007", true},
		{"000", false},
		{"99999999999999999999", true},
	} {
		s := completeSlots()
		s[statex.SlotPartySize] = tc.value
		got := v.Validate(s)
		if got.Complete != tc.ok {
			t.Fatalf("PartySize %q: Validate() = %+v, want complete=%v", tc.value, got, tc.ok)
		}
		if !tc.ok && got.Slot != statex.SlotPartySize {
			t.Fatalf("PartySize %q: reported slot %q", tc.value, got.Slot)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	v := New(nil)
	for _, tc := range []struct {
		value string
		ok    bool
	}{
		{"a@b.com", true},
		{"first.last@sub.example.org", true},
		{"a@b", false},
		{"a.com", false},
		{"a @b.com", false},
		{"a@@b.com", false},
		{"a\u00a0b@c.com", false},
		{"a\v@b.com", false},
		{"a@b\u2028.com", false},
		{"a@b.c\u3000m", false},
		{"", false},
	} {
		s := completeSlots()
		s[statex.SlotEmail] = tc.value
		got := v.Validate(s)
		if got.Complete != tc.ok {
			t.Fatalf("Email %q: Validate() = %+v, want complete=%v", tc.value, got, tc.ok)
		}
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	t.Parallel()

	v := New(nil)
	s := statex.SlotSet{statex.SlotCuisine: "korean", statex.SlotLocation: "Seoul"}
	first := v.Validate(s)
	for range 5 {
		if got := v.Validate(s); got != first {
			t.Fatalf("Validate() changed: %+v vs %+v", got, first)
		}
	}
}

func TestNewCustomCuisines(t *testing.T) {
	t.Parallel()

	v := New([]string{" Thai ", "VIETNAMESE", ""})
	if !v.IsCuisine("thai") || !v.IsCuisine("Vietnamese") {
		t.Fatal("custom cuisines not accepted")
	}
	if v.IsCuisine("italian") {
		t.Fatal("default cuisine must not leak into a custom set")
	}
	got := v.Validate(statex.SlotSet{})
	if got.Prompt != "What cuisine? Choose one of: thai, vietnamese." {
		t.Fatalf("prompt = %q", got.Prompt)
	}
}
