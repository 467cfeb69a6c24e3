package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"absint/internal/ast"
)

func TestErrorReporter(t *testing.T) {
	source := `int x;
x = unknownVar;
print(x);`

	reporter := NewErrorReporter("test.c", source)

	err := UndefinedVariable("unknownVar", ast.Position{Line: 2, Column: 5}, []string{"x"})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUndefinedVariable+"]")
	assert.Contains(t, formatted, "undefined variable")
	assert.Contains(t, formatted, "unknownVar")
	assert.Contains(t, formatted, "test.c:2:5")
	assert.Contains(t, formatted, "did you mean")
	assert.Contains(t, formatted, "'x'")
}

func TestUndefinedVariableError(t *testing.T) {
	pos := ast.Position{Line: 1, Column: 5}

	err := UndefinedVariable("balace", pos, []string{"balance"})
	assert.Equal(t, ErrorUndefinedVariable, err.Code)
	assert.Contains(t, err.Message, "balace")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'balance'")

	err = UndefinedVariable("xyz", pos, []string{})
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "make sure the variable is declared")
}

func TestTypeMismatchError(t *testing.T) {
	pos := ast.Position{Line: 1, Column: 5}

	err := TypeMismatch("bool", "int", pos)
	assert.Equal(t, ErrorTypeMismatch, err.Code)
	assert.Contains(t, err.Message, "expected bool, found int")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "comparison")

	err = TypeMismatch("int", "bool", pos)
	assert.Contains(t, err.Suggestions[0].Message, "cannot be used")
}

func TestInvalidOperationError(t *testing.T) {
	pos := ast.Position{Line: 1, Column: 5}

	err := InvalidOperation("+", "bool", "int", pos)
	assert.Equal(t, ErrorInvalidOperation, err.Code)
	assert.Contains(t, err.Suggestions[0].Message, "require int operands")

	err = InvalidOperation("&&", "int", "int", pos)
	assert.Contains(t, err.Suggestions[0].Message, "require bool operands")
}

func TestInvalidRandBoundsError(t *testing.T) {
	err := InvalidRandBounds(10, 0, ast.Position{Line: 1, Column: 1})
	assert.Equal(t, ErrorInvalidRandBounds, err.Code)
	assert.Contains(t, err.Message, "rand(10, 0)")
}

func TestDivisionByZeroError(t *testing.T) {
	err := DivisionByZero("division", ast.Position{Line: 1, Column: 1})
	assert.Equal(t, ErrorDivisionByZero, err.Code)
	assert.Contains(t, err.Message, "literal zero")
}

func TestDuplicateDeclarationError(t *testing.T) {
	err := DuplicateDeclaration("x", ast.Position{Line: 1, Column: 1})
	assert.Equal(t, ErrorDuplicateDeclaration, err.Code)
	assert.Contains(t, err.Message, "x")
}

func TestWarningFormatting(t *testing.T) {
	source := `int unused;`
	reporter := NewErrorReporter("test.c", source)

	err := UnusedVariable("unused", ast.Position{Line: 1, Column: 5})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "warning["+WarningUnusedVariable+"]")
	assert.Contains(t, formatted, "never used")
}

func TestErrorMarkerCreation(t *testing.T) {
	source := `int variable;`
	reporter := NewErrorReporter("test.c", source)

	marker := reporter.createMarker(5, 8, Error)

	spaces := strings.Count(marker, " ")
	assert.Equal(t, 4, spaces)
	carets := strings.Count(marker, "^")
	assert.Equal(t, 8, carets)
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("hello", "hello"))
	assert.Equal(t, 1, levenshteinDistance("hello", "hallo"))
	assert.Equal(t, 1, levenshteinDistance("hello", "helo"))
	assert.Equal(t, 5, levenshteinDistance("hello", ""))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestSimilarNameFinding(t *testing.T) {
	candidates := []string{"balance", "amount", "total", "balanceOf", "xyz"}

	similar := findSimilarNames("balace", candidates)
	assert.Contains(t, similar, "balance")
	assert.NotContains(t, similar, "xyz")

	similar = findSimilarNames("verydifferent", candidates)
	assert.Empty(t, similar)
}

func TestErrorLevels(t *testing.T) {
	source := `x`
	reporter := NewErrorReporter("test.c", source)
	pos := ast.Position{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	errorFormatted := reporter.FormatError(errorErr)
	warningFormatted := reporter.FormatError(warningErr)

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
}
