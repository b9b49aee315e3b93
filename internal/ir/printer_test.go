package ir

import (
	"strings"
	"testing"
)

func TestPrintIncludesSignatureAndBody(t *testing.T) {
	fn := buildSimpleFunction()
	out := Print(fn)

	if !strings.Contains(out, "function add_one(") {
		t.Fatalf("printed output missing signature, got:\n%s", out)
	}
	if !strings.Contains(out, "entry:") {
		t.Fatalf("printed output missing entry label, got:\n%s", out)
	}
	if !strings.Contains(out, "= const 1") {
		t.Fatalf("printed output missing const instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "ret ") {
		t.Fatalf("printed output missing return terminator, got:\n%s", out)
	}
}
