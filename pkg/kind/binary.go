package kind

var conditionalOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "instanceof": true,
}

// IsConditional reports whether op produces a boolean through
// EvalConditional rather than EvalArithmetic.
func IsConditional(op string) bool { return conditionalOps[op] }

// Select picks the kind that evaluates lhs op rhs: String for a
// concatenation with a string on either side, Number for two numeric
// operands of different kinds, otherwise the kind of the left operand.
func Select(op string, lhs, rhs any) Kind {
	lk, rk := Of(lhs), Of(rhs)
	if op == "+" && (lk == String || rk == String) {
		return String
	}
	if lk != rk && lk.IsNumeric() && rk.IsNumeric() {
		return Number
	}
	return lk
}

// Binary evaluates lhs op rhs through the kind chosen by Select. It is the
// entry point for expression evaluators that do not track static types.
func Binary(op string, lhs, rhs any) (any, error) {
	k := Select(op, lhs, rhs)
	if IsConditional(op) {
		return k.EvalConditional(op, lhs, rhs)
	}
	return k.EvalArithmetic(op, lhs, rhs)
}
