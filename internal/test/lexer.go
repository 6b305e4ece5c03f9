package test

import (
	"math/rand"
	"strings"
)

const validTokens = "widget;Button;page;Home;field;email;.header;{;};(;);[;];=;:;,;@;#;|;\"Click me\";\"this is a small string\";\"\";`true`;true;false;null;123;-25.43;0x1A;0b101;1.5e10;dark.primary;unique;//comment\n;\n"

// GetRandomTokens returns a space-separated sequence of size random
// SD2 lexemes, for feeding the lexer benchmarks.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

// GetRandomTokensWithSep is GetRandomTokens with an explicit separator
// between lexemes.
func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
