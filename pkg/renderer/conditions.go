package renderer

// Comparison operators accepted by conditional elements.
const (
	OpEq  = "=="
	OpNeq = "!="
	OpGt  = ">"
	OpLt  = "<"
	OpGte = ">="
	OpLte = "<="
)

// looseCompare evaluates a conditional's operator with loose comparison
// semantics: equality coerces across types, so a
// numeric string compares equal to its number and booleans compare as 0/1.
// Unknown operators evaluate to false.
func looseCompare(left any, op string, right any) bool {
	switch op {
	case OpEq:
		return looseEquals(left, right)
	case OpNeq:
		return !looseEquals(left, right)
	case OpGt, OpLt, OpGte, OpLte:
		return looseRelational(left, op, right)
	default:
		return false
	}
}

func looseEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
	}

	na, aok := toNumber(a)
	nb, bok := toNumber(b)
	if aok && bok {
		return na == nb
	}
	return false
}

// looseRelational compares two strings lexicographically; any other pairing
// is compared numerically, failing closed when either side is not numeric.
func looseRelational(a any, op string, b any) bool {
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			switch op {
			case OpGt:
				return as > bs
			case OpLt:
				return as < bs
			case OpGte:
				return as >= bs
			case OpLte:
				return as <= bs
			}
			return false
		}
	}

	na, aok := toNumber(a)
	nb, bok := toNumber(b)
	if !aok || !bok {
		return false
	}
	switch op {
	case OpGt:
		return na > nb
	case OpLt:
		return na < nb
	case OpGte:
		return na >= nb
	case OpLte:
		return na <= nb
	}
	return false
}
