// Package dice parses and resolves simple NdS+M dice expressions.
package dice

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
)

var exprPattern = regexp.MustCompile(`^([0-9]*)[dD]([0-9]+)([+-][0-9]+)?$`)

// Spec is a parsed dice expression: Count dice of Sides sides plus a
// signed Modifier.
type Spec struct {
	Count    int
	Sides    int
	Modifier int
}

// Result describes one resolved roll. Expr preserves the caller's original
// expression text for breakdown rendering.
type Result struct {
	Expr     string
	Rolls    []int
	Modifier int
	Total    int
}

// Parse parses a dice expression. Whitespace is stripped and the d is
// case-insensitive; a missing count means one die. Counts below 1 and
// sides below 2 are rejected.
func Parse(expr string) (Spec, error) {
	compact := strings.ReplaceAll(strings.TrimSpace(expr), " ", "")

	match := exprPattern.FindStringSubmatch(compact)
	if match == nil {
		return Spec{}, invalidSpec(fmt.Sprintf("Invalid dice expression: %s", compact), compact)
	}

	count := 1
	if match[1] != "" {
		parsed, err := strconv.Atoi(match[1])
		if err != nil {
			return Spec{}, invalidSpec(fmt.Sprintf("Invalid dice expression: %s", compact), compact)
		}
		count = parsed
	}

	sides, err := strconv.Atoi(match[2])
	if err != nil {
		return Spec{}, invalidSpec(fmt.Sprintf("Invalid dice expression: %s", compact), compact)
	}

	modifier := 0
	if match[3] != "" {
		parsed, err := strconv.Atoi(match[3])
		if err != nil {
			return Spec{}, invalidSpec(fmt.Sprintf("Invalid dice expression: %s", compact), compact)
		}
		modifier = parsed
	}

	if count < 1 {
		return Spec{}, invalidSpec(fmt.Sprintf("Die count must be at least 1: %s", compact), compact)
	}
	if sides < 2 {
		return Spec{}, invalidSpec(fmt.Sprintf("Die sides must be at least 2: %s", compact), compact)
	}

	return Spec{Count: count, Sides: sides, Modifier: modifier}, nil
}

// Roll resolves expr with a generator seeded by seed.
//
// # Determinism
//
// Roll is deterministic with respect to seed: the same seed and expression
// always produce the same Result. Callers wanting entropy supply a fresh
// seed per roll.
func Roll(expr string, seed int64) (Result, error) {
	spec, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}

	rng := rand.New(rand.NewSource(seed))
	rolls := make([]int, spec.Count)
	total := spec.Modifier
	for i := range rolls {
		value := rng.Intn(spec.Sides) + 1
		rolls[i] = value
		total += value
	}

	return Result{
		Expr:     expr,
		Rolls:    rolls,
		Modifier: spec.Modifier,
		Total:    total,
	}, nil
}

// Breakdown renders "<expr>: <rolls><modifier>=<total>". A single die
// prints bare; multiple dice print list style with comma separators.
func (r Result) Breakdown() string {
	var rolls string
	if len(r.Rolls) == 1 {
		rolls = strconv.Itoa(r.Rolls[0])
	} else {
		parts := make([]string, len(r.Rolls))
		for i, value := range r.Rolls {
			parts[i] = strconv.Itoa(value)
		}
		rolls = "[" + strings.Join(parts, ", ") + "]"
	}

	switch {
	case r.Modifier > 0:
		return fmt.Sprintf("%s: %s+%d=%d", r.Expr, rolls, r.Modifier, r.Total)
	case r.Modifier < 0:
		return fmt.Sprintf("%s: %s%d=%d", r.Expr, rolls, r.Modifier, r.Total)
	default:
		return fmt.Sprintf("%s: %s=%d", r.Expr, rolls, r.Total)
	}
}

func invalidSpec(message, expr string) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeDiceInvalidSpec, message, map[string]string{"Expr": expr})
}
