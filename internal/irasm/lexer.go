package irasm

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes the textual IR assembly format, the engine's diagnostic
// printer output reversed into an input format so fixtures and tests can
// write IR directly instead of programmatic Builder calls. One stateful
// root state, ordered so keywords fall out of Ident and get matched as
// string literals in the grammar rather than as their own token kind.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Arrow", `->`, nil},
		{"Register", `%[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `-?[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Punctuation", `[(){}\[\],:*=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
