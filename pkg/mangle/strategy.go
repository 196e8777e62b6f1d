// Package mangle renames the modules of an AMD bundle to shorter keys while
// keeping every import reference consistent.
package mangle

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
)

// Strategy names.
const (
	StrategyShorten   = "shorten"
	StrategyObfuscate = "obfuscate"
)

const (
	pathSeparator  = "/"
	emptySegment   = "-"
	alphabetLength = 26
)

// ErrUnknownStrategy is returned when a strategy name is not recognized.
var ErrUnknownStrategy = errors.New("unknown mangle strategy")

// Strategy proposes a new name for the module currently named current. The
// mangler calls it again while the proposal is taken by another module, so a
// strategy must eventually return a free name or current itself.
type Strategy func(reg *amd.Registry, current string) string

// StrategyNames lists the built-in strategies.
func StrategyNames() []string {
	return []string{StrategyShorten, StrategyObfuscate}
}

// StrategyByName returns a fresh instance of the named built-in strategy.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case StrategyShorten:
		return Shorten, nil
	case StrategyObfuscate:
		return NewObfuscator(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStrategy, name, strings.Join(StrategyNames(), ", "))
	}
}

// Shorten keeps the last path segment of current, extending it one segment
// at a time to the left until no other module holds it. Names without a
// separator, and names that cannot be made unique, are returned unchanged.
func Shorten(reg *amd.Registry, current string) string {
	parts := strings.Split(current, pathSeparator)
	if len(parts) == 1 {
		return current
	}

	for offset := 1; offset < len(parts); offset++ {
		candidate := joinSegments(parts[len(parts)-offset:])
		if !reg.Taken(candidate) {
			return candidate
		}
	}

	return current
}

func joinSegments(segments []string) string {
	out := slices.Clone(segments)

	for i, segment := range out {
		if segment == "" {
			out[i] = emptySegment
		}
	}

	return strings.Join(out, pathSeparator)
}

// NewObfuscator returns a strategy handing out "a", "b", ... "z", "ba", "bb"
// and so on, skipping names already taken. Each obfuscator has its own
// counter.
func NewObfuscator() Strategy {
	count := 0

	return func(reg *amd.Registry, _ string) string {
		key := UID(count)

		for reg.Taken(key) {
			count++
			key = UID(count)
		}

		return key
	}
}

// UID encodes n in base 26 over the lowercase letters, "a" being zero.
func UID(n int) string {
	if n <= 0 {
		return "a"
	}

	var digits []byte

	for n > 0 {
		digits = append(digits, byte('a'+n%alphabetLength))
		n /= alphabetLength
	}

	slices.Reverse(digits)

	return string(digits)
}
