package irasm

import "github.com/alecthomas/participle/v2/lexer"

// File is one parsed .ir source file: zero or more function definitions.
type File struct {
	Functions []*FunctionDecl `@@*`
}

type FunctionDecl struct {
	Name   string        `"function" @Ident "("`
	Params []*ParamDecl  `[ @@ { "," @@ } ] ")"`
	Return *TypeRef      `[ "->" @@ ]`
	Blocks []*BlockDecl  `"{" @@* "}"`
}

type ParamDecl struct {
	Name string  `@Register ":"`
	Type *TypeRef `@@`
}

type TypeRef struct {
	Name string `@Ident`
}

type BlockDecl struct {
	Pos   lexer.Position
	Label string      `@Ident ":"`
	Insts []*InstDecl `@@*`
	Term  *TermDecl   `@@`
}

// InstDecl is one non-terminator instruction. Participle tries each
// alternative in order; more specific keyword prefixes (icmp, alloca, ...)
// must be listed before plain binary ops since "const"/"phi"/etc. are
// themselves just Ident tokens distinguished only by the literal they
// match against.
type InstDecl struct {
	Pos    lexer.Position
	Alloca *AllocaDecl `  @@`
	Load   *LoadDecl   `| @@`
	Store  *StoreDecl  `| @@`
	Cmp    *CmpDecl    `| @@`
	Const  *ConstDecl  `| @@`
	Phi    *PhiDecl    `| @@`
	Binary *BinaryDecl `| @@`
}

type AllocaDecl struct {
	Result string   `@Register "=" "alloca"`
	Elem   *TypeRef `@@`
}

type LoadDecl struct {
	Result string `@Register "=" "load"`
	Addr   string `@Register`
}

type StoreDecl struct {
	Addr string `"store" @Register ","`
	Val  string `@Register`
}

type BinaryDecl struct {
	Result string `@Register "="`
	Op     string `@("add" | "sub" | "mul" | "sdiv")`
	Left   string `@Register ","`
	Right  string `@Register`
}

type CmpDecl struct {
	Result string `@Register "=" "icmp"`
	Pred   string `@("eq" | "ne" | "sgt" | "slt" | "sge" | "sle")`
	Left   string `@Register ","`
	Right  string `@Register`
}

type ConstDecl struct {
	Result string `@Register "=" "const"`
	Imm    int64  `@Integer`
}

type PhiDecl struct {
	Result string          `@Register "=" "phi"`
	Edges  []*PhiEdgeDecl  `@@ { "," @@ }`
}

type PhiEdgeDecl struct {
	Val  string `"[" @Register ","`
	Pred string `@Ident "]"`
}

// TermDecl is the one instruction that closes a block.
type TermDecl struct {
	Pos    lexer.Position
	CondBr *CondBrDecl `  @@`
	Jump   *JumpDecl   `| @@`
	Return *ReturnDecl `| @@`
}

type CondBrDecl struct {
	Cond  string `"br" @Register ","`
	True  string `@Ident ","`
	False string `@Ident`
}

type JumpDecl struct {
	Target string `"jmp" @Ident`
}

type ReturnDecl struct {
	Val *string `"ret" [ @Register ]`
}
