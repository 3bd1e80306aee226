package op

type Op rune

const (
	Invalid Op = 0

	EOF Op = 1 << iota
	Ident
	Number
	Literal
	Add
	Sub
	Mul
	Div
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Comma
	Dot
	BegGrp
	EndGrp
	BegList
	EndList
)

var mapping = map[Op]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	Eq:  "==",
	Ne:  "!=",
	Lt:  "<",
	Le:  "<=",
	Gt:  ">",
	Ge:  ">=",
}

func Symbol(oper Op) string {
	return mapping[oper]
}

func IsComparison(oper Op) bool {
	switch oper {
	case Eq, Ne, Lt, Le, Gt, Ge:
		return true
	default:
		return false
	}
}
