package errors

// Error codes for the constprop toolchain.
//
// E01xx: textual IR syntax errors (irasm)
// E02xx: IR lowering errors (undefined register/block references)
// E03xx: CLI configuration errors

const (
	// E0101: malformed .ir source, reported at the parser's error position
	ErrorSyntax = "E0101"

	// E0201: a phi or terminator names a block with no matching label
	ErrorUndefinedBlock = "E0201"

	// E0202: an instruction references a register defined nowhere in its function
	ErrorUndefinedRegister = "E0202"

	// E0301: -pass names something other than nscp or sccp
	ErrorUnknownPass = "E0301"
)
