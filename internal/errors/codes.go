package errors

// Error codes for the analyzer's front end.
//
// Error code ranges:
// E0001-E0099: Semantic analysis errors
// E0100-E0199: Parser errors
// W0001-W0099: Warning codes

const (
	// E0001: Variable resolution errors
	ErrorUndefinedVariable = "E0001"

	// E0002: Duplicate declaration errors
	ErrorDuplicateDeclaration = "E0002"

	// E0003: Type compatibility errors (int used where bool expected, or
	// vice versa)
	ErrorTypeMismatch = "E0003"

	// E0004: Unary/binary operation type errors
	ErrorInvalidOperation = "E0004"

	// E0005: rand(lo, hi) with a literal lo > hi
	ErrorInvalidRandBounds = "E0005"

	// E0006: a literal, statically-zero divisor or modulus
	ErrorDivisionByZero = "E0006"

	// Parser errors (reserved range: E0100-E0199)
	ErrorSyntax = "E0100"

	// W0001: declared but never read or assigned
	WarningUnusedVariable = "W0001"
)

// GetErrorDescription returns a human-readable description of the error code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUndefinedVariable:
		return "Variable is used but not declared in scope"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorTypeMismatch:
		return "Expression type does not match expected type"
	case ErrorInvalidOperation:
		return "Operation not supported for these types"
	case ErrorInvalidRandBounds:
		return "rand(lo, hi) requires lo <= hi"
	case ErrorDivisionByZero:
		return "Division or modulo by a literal zero"
	case ErrorSyntax:
		return "Syntax error"
	case WarningUnusedVariable:
		return "Variable is declared but never used"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than
// an error.
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// GetErrorCategory returns the category of the error based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Semantic Analysis"
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case len(code) > 0 && code[0] == 'W':
		return "Warning"
	default:
		return "Unknown"
	}
}
