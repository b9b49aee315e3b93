package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporterFormatsSyntaxError(t *testing.T) {
	source := `function f() -> i64 {
entry:
  %x = const 1
  %y = badd %x, %x
  ret %y
}`

	reporter := NewErrorReporter("sample.ir", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorSyntax,
		Message:  `unexpected token "badd"`,
		Position: Position{Line: 4, Column: 8},
		Length:   4,
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorSyntax+"]")
	assert.Contains(t, formatted, `unexpected token "badd"`)
	assert.Contains(t, formatted, "sample.ir:4:8")
	assert.Contains(t, formatted, "badd")
}

func TestErrorReporterUndefinedBlock(t *testing.T) {
	source := `function f() -> i64 {
entry:
  jmp nowhere
}`
	reporter := NewErrorReporter("sample.ir", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedBlock,
		Message:  "undefined block 'nowhere'",
		Position: Position{Line: 3, Column: 7},
		Length:   7,
		Suggestions: []Suggestion{
			{Message: "declare a block labeled 'nowhere:' in this function"},
		},
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUndefinedBlock+"]")
	assert.Contains(t, formatted, "undefined block 'nowhere'")
	assert.Contains(t, formatted, "help")
	assert.Contains(t, formatted, "declare a block labeled")
}

func TestErrorReporterNotesAndHelp(t *testing.T) {
	source := `function f(%p: i64) -> i64 {
entry:
  ret %p
}`
	reporter := NewErrorReporter("sample.ir", source)

	err := CompilerError{
		Level:    Error,
		Code:     ErrorUndefinedRegister,
		Message:  "undefined register '%q'",
		Position: Position{Line: 3, Column: 7},
		Length:   2,
		Notes:    []string{"registers must be defined before use"},
		HelpText: "did you mean '%p'?",
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "note:")
	assert.Contains(t, formatted, "registers must be defined before use")
	assert.Contains(t, formatted, "help:")
	assert.Contains(t, formatted, "did you mean '%p'?")
}

func TestWarningFormatting(t *testing.T) {
	source := `function f() -> i64 {
entry:
  %x = const 1
  ret %x
}`
	reporter := NewErrorReporter("sample.ir", source)

	err := CompilerError{
		Level:    Warning,
		Message:  "unreachable block",
		Position: Position{Line: 2, Column: 1},
	}
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "warning:")
	assert.Contains(t, formatted, "unreachable block")
}

func TestErrorMarkerCreation(t *testing.T) {
	source := `  %sum = add %a, %b`
	reporter := NewErrorReporter("sample.ir", source)

	marker := reporter.createMarker(9, 3, Error) // "add" is 3 chars at column 9

	spaces := strings.Count(marker, " ")
	assert.Equal(t, 8, spaces) // column 9 means 8 spaces before
	carets := strings.Count(marker, "^")
	assert.Equal(t, 3, carets)
}

func TestLineNumberWidthMinimumThree(t *testing.T) {
	reporter := NewErrorReporter("sample.ir", "one\ntwo")
	assert.Equal(t, 3, reporter.getLineNumberWidth(1))
	assert.Equal(t, 3, reporter.getLineNumberWidth(42))
	assert.Equal(t, 4, reporter.getLineNumberWidth(1000))
}

func TestErrorLevelsProduceDistinctPrefixes(t *testing.T) {
	source := `test`
	reporter := NewErrorReporter("sample.ir", source)
	pos := Position{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	errorFormatted := reporter.FormatError(errorErr)
	warningFormatted := reporter.FormatError(warningErr)

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
}
