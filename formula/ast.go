package formula

import (
	"fmt"
	"strings"
)

// Node is an expression tree node. The set of variants is closed: literal,
// cell reference, range reference, function call, and binary operation.
// The evaluator dispatches over the concrete types with a type switch so
// an unknown variant surfaces as a fault instead of silently evaluating.
type Node interface {
	String() string
}

// BinaryOp represents binary operators in AST nodes
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpPower:
		return "^"
	}
	return "?"
}

// LiteralNode represents a literal value
type LiteralNode struct {
	Value Value
}

func (n *LiteralNode) String() string {
	if s, ok := n.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return toString(n.Value)
}

// CellNode represents a single cell reference, optionally pinned to a
// table other than the evaluation context's current one.
type CellNode struct {
	Ref      string
	Table    int
	HasTable bool
}

func (n *CellNode) String() string {
	if n.HasTable {
		return fmt.Sprintf("%d!%s", n.Table, n.Ref)
	}
	return n.Ref
}

// RangeNode represents a rectangular range reference, optionally pinned to
// a table other than the evaluation context's current one.
type RangeNode struct {
	Ref      string
	Table    int
	HasTable bool
}

func (n *RangeNode) String() string {
	if n.HasTable {
		return fmt.Sprintf("%d!%s", n.Table, n.Ref)
	}
	return n.Ref
}

// CallNode represents a function call with unevaluated arguments
type CallNode struct {
	Name string
	Args []Node
}

func (n *CallNode) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ","))
}

// BinaryNode represents a binary operation
type BinaryNode struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func (n *BinaryNode) String() string {
	return fmt.Sprintf("(%s%s%s)", n.Left.String(), n.Op.String(), n.Right.String())
}
