package expr

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"dyntype/pkg/errors"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	EOF TokenType = iota
	LITERAL
	IDENT
	OPERATOR
	LPAREN
	RPAREN
	COMMA
	DOT
	QUESTION
	COLON
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case LITERAL:
		return "LITERAL"
	case IDENT:
		return "IDENT"
	case OPERATOR:
		return "OPERATOR"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case COMMA:
		return ","
	case DOT:
		return "."
	case QUESTION:
		return "?"
	case COLON:
		return ":"
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexeme. Pos is the rune offset into the source.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}

// tokenPattern is anchored with \G so each match starts exactly where the
// previous one ended. Group order matters: floats before ints, instanceof
// and the literal keywords before identifiers.
var tokenPattern = regexp2.MustCompile(`\G(?:`+
	`(?<ws>\s+)`+
	`|(?<char>'(?:\\u[0-9a-fA-F]{4}|\\.|[^'\\])')`+
	`|(?<string>"(?:\\.|[^"\\])*")`+
	`|(?<hex>0[xX][0-9a-fA-F]+[lL]?)`+
	`|(?<float>(?:\d+\.\d*|\.\d+)(?:[eE][+-]?\d+)?[fFdD]?|\d+[eE][+-]?\d+[fFdD]?|\d+[fFdD])`+
	`|(?<int>\d+[lL]?)`+
	`|(?<keyword>(?:true|false|null)(?![\w$]))`+
	`|(?<op>instanceof(?![\w$])|>>>=?|<<=?|>>=?|[-+*/%&|^]=|<=|>=|==|!=|&&|\|\||\+\+|--|[-+*/%&|^!~<>=])`+
	`|(?<ident>[A-Za-z_$][\w$]*)`+
	`|(?<punct>[(),.?:])`+
	`)`, regexp2.None)

// Tokenize splits src into tokens, ending with an EOF token.
func Tokenize(src string) ([]Token, error) {
	runes := []rune(src)
	var tokens []Token
	pos := 0
	for pos < len(runes) {
		m, err := tokenPattern.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			return nil, err
		}
		if m == nil || m.Index != pos || m.Length == 0 {
			return nil, &errors.SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", runes[pos])}
		}
		text := m.String()
		switch {
		case matched(m, "ws"):
			// skip
		case matched(m, "char"), matched(m, "string"), matched(m, "hex"),
			matched(m, "float"), matched(m, "int"), matched(m, "keyword"):
			tokens = append(tokens, Token{Type: LITERAL, Text: text, Pos: pos})
		case matched(m, "op"):
			tokens = append(tokens, Token{Type: OPERATOR, Text: text, Pos: pos})
		case matched(m, "ident"):
			tokens = append(tokens, Token{Type: IDENT, Text: text, Pos: pos})
		case matched(m, "punct"):
			tokens = append(tokens, Token{Type: punctType(text), Text: text, Pos: pos})
		}
		pos += m.Length
	}
	return append(tokens, Token{Type: EOF, Pos: pos}), nil
}

func matched(m *regexp2.Match, name string) bool {
	g := m.GroupByName(name)
	return g != nil && len(g.Captures) > 0
}

func punctType(text string) TokenType {
	switch text {
	case "(":
		return LPAREN
	case ")":
		return RPAREN
	case ",":
		return COMMA
	case ".":
		return DOT
	case "?":
		return QUESTION
	}
	return COLON
}
