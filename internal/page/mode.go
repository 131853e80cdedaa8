package page

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects the edit set applied to the shell page.
type Mode string

const (
	// ModeFullHead replaces the head and hides the default emscripten widgets.
	ModeFullHead Mode = "full"
	// ModeMinimal sets the title text and body background color only.
	ModeMinimal Mode = "minimal"
)

// modeAliases holds every accepted spelling, lower case.
var modeAliases = map[string]Mode{
	"full":      ModeFullHead,
	"full-head": ModeFullHead,
	"head":      ModeFullHead,
	"minimal":   ModeMinimal,
	"min":       ModeMinimal,
}

// ParseMode converts a flag or config value to a Mode, ignoring case and
// surrounding space. Empty input selects ModeFullHead.
func ParseMode(raw string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ModeFullHead, nil
	}
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	return "", fmt.Errorf("invalid page mode %q, valid options: %s", raw, strings.Join(Modes(), ", "))
}

// Modes lists the accepted spellings for help output.
func Modes() []string {
	keys := make([]string, 0, len(modeAliases))
	for k := range modeAliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MissingPolicy decides what happens when an expected element is absent.
type MissingPolicy int

const (
	// SkipMissing records the edit as skipped and carries on.
	SkipMissing MissingPolicy = iota
	// FailOnMissing aborts the transformation with an artifact error.
	FailOnMissing
)

func (p MissingPolicy) String() string {
	if p == FailOnMissing {
		return "fail"
	}
	return "skip"
}
