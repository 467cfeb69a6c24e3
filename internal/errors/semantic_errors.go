package errors

import (
	"fmt"
	"strings"

	"absint/internal/ast"
)

// SemanticErrorBuilder provides a fluent interface for creating semantic
// errors with suggestions.
type SemanticErrorBuilder struct {
	err CompilerError
}

// NewSemanticError creates a new semantic error builder.
func NewSemanticError(code, message string, pos ast.Position) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// NewSemanticWarning creates a new semantic warning builder.
func NewSemanticWarning(code, message string, pos ast.Position) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:    Warning,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

func (b *SemanticErrorBuilder) WithLength(length int) *SemanticErrorBuilder {
	b.err.Length = length
	return b
}

func (b *SemanticErrorBuilder) WithSuggestion(message string) *SemanticErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *SemanticErrorBuilder) WithNote(note string) *SemanticErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *SemanticErrorBuilder) WithHelp(help string) *SemanticErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *SemanticErrorBuilder) Build() CompilerError {
	return b.err
}

// UndefinedVariable creates an error for a reference to a name with no
// declaration in scope, with did-you-mean suggestions for names that are
// close by edit distance.
func UndefinedVariable(name string, pos ast.Position, similarNames []string) CompilerError {
	builder := NewSemanticError(ErrorUndefinedVariable, fmt.Sprintf("undefined variable '%s'", name), pos).
		WithLength(len(name))

	if len(similarNames) > 0 {
		if len(similarNames) == 1 {
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similarNames[0]))
		} else {
			suggestions := strings.Join(similarNames, "', '")
			builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", suggestions))
		}
	} else {
		builder = builder.WithSuggestion("make sure the variable is declared before use").
			WithNote("variables must be declared with 'int' or 'bool' before first use")
	}

	return builder.Build()
}

// TypeMismatch creates an error for an expression whose static type (int or
// bool) does not match where it is used.
func TypeMismatch(expected, actual string, pos ast.Position) CompilerError {
	builder := NewSemanticError(ErrorTypeMismatch, fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), pos)

	if expected == "bool" && actual == "int" {
		builder = builder.WithSuggestion("use a comparison operator to produce a bool value").
			WithNote("int expressions are never implicitly treated as bool")
	} else if expected == "int" && actual == "bool" {
		builder = builder.WithSuggestion("bool values cannot be used where an int is expected")
	}

	return builder.Build()
}

// InvalidOperation creates an error for an arithmetic, logical, or
// comparison operator applied to operands of the wrong static type.
func InvalidOperation(op, leftType, rightType string, pos ast.Position) CompilerError {
	builder := NewSemanticError(ErrorInvalidOperation, fmt.Sprintf("invalid operation: %s %s %s", leftType, op, rightType), pos)

	switch op {
	case "+", "-", "*", "/", "%":
		builder = builder.WithSuggestion("arithmetic operators require int operands").
			WithNote("the language has exactly two static types: int and bool")
	case "&&", "||", "!":
		builder = builder.WithSuggestion("logical operators require bool operands").
			WithSuggestion("use a comparison operator (==, !=, <, <=, >, >=) to produce a bool")
	case "==", "!=", "<", "<=", ">", ">=":
		builder = builder.WithSuggestion("comparisons apply to two int expressions")
	}

	return builder.Build()
}

// InvalidRandBounds creates an error for rand(lo, hi) whose literal bounds
// are inverted, which can never produce a value.
func InvalidRandBounds(lo, hi int64, pos ast.Position) CompilerError {
	return NewSemanticError(ErrorInvalidRandBounds, fmt.Sprintf("rand(%d, %d) has lo > hi", lo, hi), pos).
		WithSuggestion("swap the bounds, or widen the range so lo <= hi").
		Build()
}

// DivisionByZero creates an error for a division or modulo whose divisor is
// a literal zero, catchable before the analysis ever runs.
func DivisionByZero(op string, pos ast.Position) CompilerError {
	return NewSemanticError(ErrorDivisionByZero, fmt.Sprintf("%s by a literal zero", op), pos).
		WithHelp("this expression is always undefined regardless of any variable's value").
		Build()
}

// DuplicateDeclaration creates an error for a name declared twice in the
// program.
func DuplicateDeclaration(name string, pos ast.Position) CompilerError {
	return NewSemanticError(ErrorDuplicateDeclaration, fmt.Sprintf("duplicate declaration: %s", name), pos).
		WithSuggestion(fmt.Sprintf("rename the duplicate '%s' to a unique name", name)).
		WithNote("identifiers must be unique across the whole program, nested blocks included").
		Build()
}

// UnusedVariable creates a warning for a variable that is declared but
// never read or assigned.
func UnusedVariable(name string, pos ast.Position) CompilerError {
	return NewSemanticWarning(WarningUnusedVariable, fmt.Sprintf("variable '%s' is declared but never used", name), pos).
		WithLength(len(name)).
		WithSuggestion("remove the declaration if it is not needed").
		Build()
}

// FindSimilarNames returns the candidates longer than two characters that
// are within edit distance 2 of target, for building did-you-mean
// suggestions from a symbol table.
func FindSimilarNames(target string, candidates []string) []string {
	return findSimilarNames(target, candidates)
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

// levenshteinDistance is a plain edit-distance implementation used to power
// did-you-mean suggestions for undefined variable names.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
