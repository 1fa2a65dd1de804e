package expr

import (
	"fmt"
	"strings"

	"dyntype/pkg/errors"
	"dyntype/pkg/kind"
)

// Binding powers, lowest first.
const (
	precLowest = iota
	precAssign
	precTernary
	precOrOr
	precAndAnd
	precOr
	precXor
	precAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

var binaryPrec = map[string]int{
	"||": precOrOr,
	"&&": precAndAnd,
	"|":  precOr,
	"^":  precXor,
	"&":  precAnd,
	"==": precEquality, "!=": precEquality,
	"<": precRelational, "<=": precRelational, ">": precRelational, ">=": precRelational,
	"instanceof": precRelational,
	"<<":         precShift, ">>": precShift, ">>>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=", ">>>=":
		return true
	}
	return false
}

type parser struct {
	tokens []Token
	pos    int
}

// Parse parses a single expression.
func Parse(src string) (Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.errorf(tok, "unexpected %q", tok.Text)
	}
	return n, nil
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(tt TokenType) (Token, error) {
	tok := p.next()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s, found %q", tt, tok.Text)
	}
	return tok, nil
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) error {
	return &errors.SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case tok.Type == OPERATOR && isAssignOp(tok.Text) && minPrec <= precAssign:
			p.next()
			if !isTarget(left) {
				return nil, p.errorf(tok, "cannot assign to %s", left)
			}
			// right associative
			value, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			left = &Assign{Op: tok.Text, Target: left, Value: value}
		case tok.Type == QUESTION && minPrec <= precTernary:
			p.next()
			then, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON); err != nil {
				return nil, err
			}
			els, err := p.parseExpr(precTernary)
			if err != nil {
				return nil, err
			}
			left = &Conditional{Cond: left, Then: then, Else: els}
		case tok.Type == OPERATOR:
			prec, ok := binaryPrec[tok.Text]
			if !ok || prec <= minPrec {
				return left, nil
			}
			p.next()
			right, err := p.parseExpr(prec)
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: tok.Text, X: left, Y: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	if tok.Type == OPERATOR {
		if op, ok := kind.ParseUnaryOp(tok.Text, false); ok {
			p.next()
			if op == kind.Minus {
				if lit := p.peek(); lit.Type == LITERAL && isNumberText(lit.Text) {
					p.next()
					v, err := ParseLiteral("-" + lit.Text)
					if err != nil {
						return nil, p.errorf(lit, "%s", err.(*errors.SyntaxError).Msg)
					}
					return p.parsePostfix(&Literal{Value: v})
				}
			}
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if (op == kind.PreIncrement || op == kind.PreDecrement) && !isTarget(x) {
				return nil, p.errorf(tok, "operand of %s is not a variable", tok.Text)
			}
			return &Unary{Op: op, X: x}, nil
		}
	}
	if tok.Type == LPAREN && p.peekAt(1).Type == IDENT && p.peekAt(2).Type == RPAREN {
		if k, ok := kind.ForName(p.peekAt(1).Text); ok && startsOperand(p.peekAt(3), k.IsPrimitive()) {
			p.pos += 3
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &Cast{To: k, X: x}, nil
		}
	}
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(primary)
}

// startsOperand decides whether "(T)" before tok is a cast. A primitive
// cast may also be followed by a sign or increment operator.
func startsOperand(tok Token, primitive bool) bool {
	switch tok.Type {
	case LITERAL, IDENT, LPAREN:
		return true
	case OPERATOR:
		switch tok.Text {
		case "!", "~":
			return true
		case "+", "-", "++", "--":
			return primitive
		}
	}
	return false
}

// isTarget reports whether n can be stored into.
func isTarget(n Node) bool {
	switch n.(type) {
	case *Ident, *Member:
		return true
	}
	return false
}

func isNumberText(text string) bool {
	return text != "" && (text[0] >= '0' && text[0] <= '9' || text[0] == '.')
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Type {
	case LITERAL:
		v, err := ParseLiteral(tok.Text)
		if err != nil {
			return nil, p.errorf(tok, "%s", err.(*errors.SyntaxError).Msg)
		}
		return &Literal{Value: v}, nil
	case IDENT:
		if tok.Text == "new" {
			return p.parseNew()
		}
		return &Ident{Name: tok.Text}, nil
	case LPAREN:
		n, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return n, nil
	case EOF:
		return nil, p.errorf(tok, "unexpected end of expression")
	}
	return nil, p.errorf(tok, "unexpected %q", tok.Text)
}

func (p *parser) parseNew() (Node, error) {
	var parts []string
	for {
		tok, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		parts = append(parts, tok.Text)
		if p.peek().Type != DOT {
			break
		}
		p.next()
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &New{Type: strings.Join(parts, "."), Args: args}, nil
}

// parseArgs parses a comma separated list up to and including ')'.
func (p *parser) parseArgs() ([]Node, error) {
	var args []Node
	if p.peek().Type == RPAREN {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		if tok.Type == RPAREN {
			return args, nil
		}
		if tok.Type != COMMA {
			return nil, p.errorf(tok, "expected , or ) in argument list, found %q", tok.Text)
		}
	}
}

func (p *parser) parsePostfix(n Node) (Node, error) {
	for {
		tok := p.peek()
		switch {
		case tok.Type == DOT:
			p.next()
			name, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			n = &Member{X: n, Name: name.Text}
		case tok.Type == LPAREN:
			if !isTarget(n) {
				return n, nil
			}
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			n = &Call{Callee: n, Args: args}
		case tok.Type == OPERATOR && (tok.Text == "++" || tok.Text == "--"):
			if !isTarget(n) {
				return nil, p.errorf(tok, "operand of %s is not a variable", tok.Text)
			}
			op, _ := kind.ParseUnaryOp(tok.Text, true)
			p.next()
			n = &Unary{Op: op, X: n}
		default:
			return n, nil
		}
	}
}
