package domain

import (
	"fmt"
	"strings"
)

// NameSplitMode controls how the login payload's fullName is divided
// into first and last name.
type NameSplitMode string

const (
	// NameSplitSecond keeps only the second space-separated token as the
	// last name; further tokens are dropped.
	NameSplitSecond NameSplitMode = "second"
	// NameSplitRest joins every token after the first into the last name.
	NameSplitRest NameSplitMode = "rest"
)

func ParseNameSplitMode(s string) (NameSplitMode, error) {
	switch NameSplitMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NameSplitSecond:
		return NameSplitSecond, nil
	case NameSplitRest:
		return NameSplitRest, nil
	default:
		return "", fmt.Errorf("invalid name split mode %q (want %q or %q)", s, NameSplitSecond, NameSplitRest)
	}
}

// SplitFullName splits on single spaces, so "Ann  Lee" yields an empty
// second token.
func SplitFullName(fullName string, mode NameSplitMode) (first, last string) {
	parts := strings.Split(fullName, " ")
	first = parts[0]
	if len(parts) < 2 {
		return first, ""
	}
	if mode == NameSplitRest {
		return first, strings.Join(parts[1:], " ")
	}
	return first, parts[1]
}
