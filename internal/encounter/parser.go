package encounter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition indicates a definition that parsed as YAML but
// violates the encounter schema.
var ErrInvalidDefinition = errors.New("invalid encounter definition")

// Parse parses an encounter YAML file.
//
// Precondition: data must be valid YAML.
// Postcondition: returns a non-nil Definition or a non-nil error.
func Parse(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing encounter: %w", err)
	}
	if len(d.Participants) == 0 {
		return nil, fmt.Errorf("no participants: %w", ErrInvalidDefinition)
	}
	for i, p := range d.Participants {
		if p.Name == "" {
			return nil, fmt.Errorf("participant %d has no name: %w", i, ErrInvalidDefinition)
		}
		if p.MaxHP < 1 {
			return nil, fmt.Errorf("participant %q: max_hp must be positive: %w", p.Name, ErrInvalidDefinition)
		}
	}
	return &d, nil
}

// diceExprPattern matches "NdS", optionally with "rR" (reroll faces at
// or below R once) and "+K" or "-K" (flat modifier): "2d6", "2d6r2",
// "1d10+1", "1d4-3".
var diceExprPattern = regexp.MustCompile(`^(\d+)d(\d+)(?:r(\d+))?(?:([+-])(\d+))?$`)

// diceExpr is a parsed dice expression.
type diceExpr struct {
	count  int
	sides  int
	reroll int
	flat   int
}

// parseDiceExpr parses a dice expression string.
func parseDiceExpr(s string) (diceExpr, error) {
	m := diceExprPattern.FindStringSubmatch(s)
	if m == nil {
		return diceExpr{}, fmt.Errorf("dice expression %q: %w", s, ErrInvalidDefinition)
	}
	count, _ := strconv.Atoi(m[1])
	sides, _ := strconv.Atoi(m[2])
	out := diceExpr{count: count, sides: sides}
	if m[3] != "" {
		out.reroll, _ = strconv.Atoi(m[3])
	}
	if m[5] != "" {
		out.flat, _ = strconv.Atoi(m[5])
		if m[4] == "-" {
			out.flat = -out.flat
		}
	}
	if out.count < 1 || out.sides < 1 {
		return diceExpr{}, fmt.Errorf("dice expression %q: %w", s, ErrInvalidDefinition)
	}
	return out, nil
}
