package formula

import (
	"fmt"

	"github.com/midbel/mis/formula/op"
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Literal string
	Type    op.Op
	Position
}

func (t Token) String() string {
	var str string
	switch t.Type {
	case op.Invalid:
		return "<invalid>"
	case op.EOF:
		return "<eof>"
	case op.Ident:
		str = "identifier"
	case op.Number:
		str = "number"
	case op.Literal:
		str = "literal"
	case op.Add:
		return "<add>"
	case op.Sub:
		return "<subtract>"
	case op.Mul:
		return "<multiply>"
	case op.Div:
		return "<divide>"
	case op.Eq:
		return "<equal>"
	case op.Ne:
		return "<notequal>"
	case op.Lt:
		return "<lesser>"
	case op.Le:
		return "<lesseq>"
	case op.Gt:
		return "<greater>"
	case op.Ge:
		return "<greateq>"
	case op.Comma:
		return "<comma>"
	case op.Dot:
		return "<dot>"
	case op.BegGrp:
		return "<beg-group>"
	case op.EndGrp:
		return "<end-group>"
	case op.BegList:
		return "<beg-list>"
	case op.EndList:
		return "<end-list>"
	}
	return fmt.Sprintf("%s(%s)", str, t.Literal)
}
