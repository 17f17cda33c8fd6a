package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseContext provides table-name resolution for cross-table references
type ParseContext struct {
	// ResolveTable maps a table prefix to a table index. When nil, or when
	// it reports no match, the reference keeps an out-of-range table id so
	// resolution fails with #REF! instead of silently hitting the wrong
	// table.
	ResolveTable func(name string) (int, bool)
}

// Parser parses tokens into an AST
type Parser struct {
	tokens  []Token
	pos     int
	context *ParseContext
}

// NewParser creates a new parser with the given tokens and context
func NewParser(tokens []Token, context *ParseContext) *Parser {
	if context == nil {
		context = &ParseContext{}
	}
	return &Parser{
		tokens:  tokens,
		pos:     0,
		context: context,
	}
}

// Parse parses formula text, including the leading =, into an AST.
func Parse(input string, context *ParseContext) (Node, error) {
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, context).Parse()
}

// Parse parses the tokens into an AST
func (p *Parser) Parse() (Node, error) {
	if len(p.tokens) == 0 {
		return nil, fmt.Errorf("no tokens to parse")
	}

	// expect and skip the equals prefix
	if p.tokens[p.pos].Type != TokenEquals {
		return nil, fmt.Errorf("formula must start with '='")
	}
	p.pos++

	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	if p.tokens[p.pos].Type != TokenEOF {
		return nil, fmt.Errorf("unexpected token after expression: %s", p.tokens[p.pos].Value)
	}

	return node, nil
}

// parseAddition handles addition and subtraction (lowest precedence)
func (p *Parser) parseAddition() (Node, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.tokens[p.pos].Type == TokenBinaryOp {
		var op BinaryOp
		switch p.tokens[p.pos].Value {
		case "+":
			op = OpAdd
		case "-":
			op = OpSubtract
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *Parser) parseMultiplication() (Node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	for p.tokens[p.pos].Type == TokenBinaryOp {
		var op BinaryOp
		switch p.tokens[p.pos].Value {
		case "*":
			op = OpMultiply
		case "/":
			op = OpDivide
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parsePower handles exponentiation
func (p *Parser) parsePower() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	// right-associative
	if p.tokens[p.pos].Type == TokenBinaryOp && p.tokens[p.pos].Value == "^" {
		p.pos++
		right, err := p.parsePower() // recursive for right-associativity
		if err != nil {
			return nil, err
		}
		return &BinaryNode{Op: OpPower, Left: left, Right: right}, nil
	}

	return left, nil
}

// parseUnary handles leading +/-. Unary minus is expressed through the
// closed binary-operator set as 0-x; unary plus is transparent.
func (p *Parser) parseUnary() (Node, error) {
	tok := p.tokens[p.pos]
	if tok.Type == TokenBinaryOp && (tok.Value == "+" || tok.Value == "-") {
		p.pos++
		operand, err := p.parseUnary() // recurse for chained unary operators
		if err != nil {
			return nil, err
		}
		if tok.Value == "-" {
			return &BinaryNode{Op: OpSubtract, Left: &LiteralNode{Value: 0.0}, Right: operand}, nil
		}
		return operand, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles primary expressions (literals, references,
// functions, parentheses)
func (p *Parser) parsePrimary() (Node, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenNumber:
		p.pos++
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", tok.Value)
		}
		return &LiteralNode{Value: val}, nil

	case TokenString:
		p.pos++
		return &LiteralNode{Value: tok.Value}, nil

	case TokenCell:
		p.pos++
		ref, table, hasTable := p.splitTablePrefix(tok.Value)
		return &CellNode{Ref: ref, Table: table, HasTable: hasTable}, nil

	case TokenRange:
		p.pos++
		ref, table, hasTable := p.splitTablePrefix(tok.Value)
		return &RangeNode{Ref: ref, Table: table, HasTable: hasTable}, nil

	case TokenFunction:
		return p.parseCall()

	case TokenLeftParen:
		p.pos++
		node, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		if p.tokens[p.pos].Type != TokenRightParen {
			return nil, fmt.Errorf("expected closing parenthesis")
		}
		p.pos++
		return node, nil

	case TokenIdentifier:
		return nil, fmt.Errorf("unknown identifier: %s", tok.Value)

	default:
		return nil, fmt.Errorf("unexpected token: %s", tok.Value)
	}
}

// parseCall parses a function call
func (p *Parser) parseCall() (Node, error) {
	name := p.tokens[p.pos].Value
	p.pos++

	if p.tokens[p.pos].Type != TokenLeftParen {
		return nil, fmt.Errorf("expected '(' after function name")
	}
	p.pos++

	args := []Node{}

	// empty argument list
	if p.tokens[p.pos].Type == TokenRightParen {
		p.pos++
		return &CallNode{Name: name, Args: args}, nil
	}

	for {
		arg, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.tokens[p.pos].Type == TokenRightParen {
			p.pos++
			break
		}
		if p.tokens[p.pos].Type != TokenComma {
			return nil, fmt.Errorf("expected ',' or ')' in function arguments")
		}
		p.pos++
	}

	return &CallNode{Name: name, Args: args}, nil
}

// splitTablePrefix splits an optional table prefix off a reference token.
// An unresolvable prefix keeps hasTable=true with an invalid index so the
// bounds check downstream reports it.
func (p *Parser) splitTablePrefix(value string) (ref string, table int, hasTable bool) {
	idx := strings.LastIndex(value, "!")
	if idx == -1 {
		return value, 0, false
	}

	name := value[:idx]
	ref = value[idx+1:]
	if strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") && len(name) >= 2 {
		name = name[1 : len(name)-1]
	}

	table = -1
	if p.context.ResolveTable != nil {
		if resolved, ok := p.context.ResolveTable(name); ok {
			table = resolved
		}
	}
	return ref, table, true
}
