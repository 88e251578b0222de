package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	statex "github.com/tanpawarit/dining-concierge/dining/state"
)

// DefaultCuisines is the cuisine set indexed by the restaurant loader.
var DefaultCuisines = []string{"chinese", "korean", "japanese", "american", "french", "italian", "mexican"}

// EmailPattern accepts <non-space-non-@>+@<non-space-non-@>+.<non-space-non-@>+
// where space is any Unicode whitespace, not only the ASCII set \s matches.
var EmailPattern = regexp.MustCompile(`^` + emailPart + `+@` + emailPart + `+\.` + emailPart + `+$`)

const emailPart = `[^@\s\v\p{Z}\x{1c}-\x{1f}\x{85}]`

const (
	promptLocation  = "Which city?"
	promptPartySize = "How many people?"
	promptDate      = "What date?"
	promptTime      = "What time?"
	promptEmail     = "What email should I send the suggestions to?"
)

// Outcome is either Complete or Invalid(Slot, Prompt).
type Outcome struct {
	Complete bool
	Slot     string
	Prompt   string
}

func Complete() Outcome {
	return Outcome{Complete: true}
}

func Invalid(slot, prompt string) Outcome {
	return Outcome{Slot: slot, Prompt: prompt}
}

type Validator struct {
	cuisines      map[string]struct{}
	cuisinePrompt string
}

// New builds a validator over the given cuisine set. Nil or empty falls back to DefaultCuisines.
func New(cuisines []string) *Validator {
	if len(cuisines) == 0 {
		cuisines = DefaultCuisines
	}

	set := make(map[string]struct{}, len(cuisines))
	for _, c := range cuisines {
		c = statex.NormalizeCuisine(strings.TrimSpace(c))
		if c != "" {
			set[c] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(set))
	for c := range set {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)

	return &Validator{
		cuisines:      set,
		cuisinePrompt: fmt.Sprintf("What cuisine? Choose one of: %s.", strings.Join(sorted, ", ")),
	}
}

// Validate reports the first invalid slot in precedence order, or Complete.
func (v *Validator) Validate(slots statex.SlotSet) Outcome {
	cuisine, ok := slots.Get(statex.SlotCuisine)
	if !ok || !v.IsCuisine(cuisine) {
		return Invalid(statex.SlotCuisine, v.cuisinePrompt)
	}
	if _, ok := slots.Get(statex.SlotLocation); !ok {
		return Invalid(statex.SlotLocation, promptLocation)
	}
	if !ValidPartySize(slots.Value(statex.SlotPartySize)) {
		return Invalid(statex.SlotPartySize, promptPartySize)
	}
	if _, ok := slots.Get(statex.SlotDate); !ok {
		return Invalid(statex.SlotDate, promptDate)
	}
	if _, ok := slots.Get(statex.SlotTime); !ok {
		return Invalid(statex.SlotTime, promptTime)
	}
	if !ValidEmail(slots.Value(statex.SlotEmail)) {
		return Invalid(statex.SlotEmail, promptEmail)
	}
	return Complete()
}

func (v *Validator) IsCuisine(value string) bool {
	_, ok := v.cuisines[statex.NormalizeCuisine(value)]
	return ok
}

// ValidPartySize accepts ASCII digits only, with a value > 0. There is no upper
// bound; sizes beyond int range are still valid.
func ValidPartySize(value string) bool {
	if value == "" {
		return false
	}
	nonZero := false
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
		if r != '0' {
			nonZero = true
		}
	}
	return nonZero
}

func ValidEmail(value string) bool {
	return value != "" && EmailPattern.MatchString(value)
}
