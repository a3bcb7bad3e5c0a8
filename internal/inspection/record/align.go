package record

import (
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
)

// Policy decides how part groups are paired with damage groups.
type Policy int

const (
	// PolicyZip pairs group i with group i.
	PolicyZip Policy = iota
	// PolicyRoundRobin pairs part group i with damage group i mod n.
	PolicyRoundRobin
	// PolicyFullCross pairs every part group with every damage group.
	PolicyFullCross
)

func (p Policy) String() string {
	switch p {
	case PolicyZip:
		return "zip"
	case PolicyRoundRobin:
		return "round_robin"
	case PolicyFullCross:
		return "full_cross"
	default:
		return "unknown"
	}
}

// Pair is an index into the part groups and the damage groups.
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// SelectPolicy picks the policy for the given group counts.
func SelectPolicy(na, nb int) Policy {
	switch {
	case na == nb, na == 0, nb == 0:
		return PolicyZip
	case na == 1 || nb == 1:
		return PolicyFullCross
	default:
		return PolicyRoundRobin
	}
}

// Align pairs groups of a with groups of b. Round robin alignment also
// returns an AmbiguousGroupAlignment error alongside the pairs; the pairs
// are still usable.
func Align[A, B any](a [][]A, b [][]B) ([]Pair, Policy, error) {
	policy := SelectPolicy(len(a), len(b))
	pairs := AlignWith(len(a), len(b), policy)
	if policy == PolicyRoundRobin {
		return pairs, policy, inserrors.NewAmbiguousGroupAlignment(len(a), len(b))
	}
	return pairs, policy, nil
}

// AlignWith pairs na groups with nb groups under policy. Damage groups left
// over by round robin are attached to the last part group.
func AlignWith(na, nb int, policy Policy) []Pair {
	if na == 0 || nb == 0 {
		return nil
	}

	var out []Pair
	switch policy {
	case PolicyZip:
		n := min(na, nb)
		for i := 0; i < n; i++ {
			out = append(out, Pair{A: i, B: i})
		}
	case PolicyFullCross:
		for i := 0; i < na; i++ {
			for j := 0; j < nb; j++ {
				out = append(out, Pair{A: i, B: j})
			}
		}
	case PolicyRoundRobin:
		for i := 0; i < na; i++ {
			out = append(out, Pair{A: i, B: i % nb})
		}
		for j := na; j < nb; j++ {
			out = append(out, Pair{A: na - 1, B: j})
		}
	}
	return out
}
