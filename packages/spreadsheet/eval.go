package spreadsheet

import "fmt"

// ReferenceLookup returns the numeric value of the referenced cell
type ReferenceLookup func(ref int) (float64, error)

// Evaluate executes a validated postfix family over a value stack sized to
// the operand area plus one. division by zero yields the IEEE result
// (±Inf or NaN) instead of an error.
func Evaluate(postfix Family, capacity int, lookup ReferenceLookup) (float64, error) {
	if capacity <= 0 {
		capacity = DefaultStackCapacity
	}
	nums := make([]float64, 0, capacity+1)

	for _, t := range postfix.tokens {
		switch {
		case t.Kind == TokenNumber:
			nums = append(nums, t.Number)

		case t.Kind == TokenReference:
			if lookup == nil {
				return 0, NewCellError(ErrorCodeMalformed, "no reference lookup available")
			}
			n, err := lookup(t.Ref)
			if err != nil {
				return 0, err
			}
			nums = append(nums, n)

		case t.IsOperator():
			// validated families never get here with fewer than two values
			if len(nums) < 2 {
				return 0, NewCellError(ErrorCodeMalformed, fmt.Sprintf("operator %s lacks an operand", t))
			}
			top := len(nums) - 1
			nums[top-1] = apply(nums[top-1], nums[top], t.Kind)
			nums = nums[:top]

		default:
			return 0, NewCellError(ErrorCodeMalformed, fmt.Sprintf("unexpected token %s in postfix form", t))
		}

		if len(nums) > capacity+1 {
			return 0, NewCellError(ErrorCodeOverflow, "value stack exhausted")
		}
	}

	if len(nums) != 1 {
		return 0, NewCellError(ErrorCodeMalformed, fmt.Sprintf("%d values left after evaluation", len(nums)))
	}
	return nums[0], nil
}

func apply(a, b float64, op TokenKind) float64 {
	switch op {
	case TokenAdd:
		return a + b
	case TokenSubtract:
		return a - b
	case TokenMultiply:
		return a * b
	default:
		return a / b
	}
}
