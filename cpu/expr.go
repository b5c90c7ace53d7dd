package cpu

import (
	"math"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// exprResult is the starlark global receiving the expression value.
const exprResult = "expr_rc"

// exprTokenRe splits an expression into numbers, identifiers and operators.
var exprTokenRe = regexp.MustCompile(`0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|[0-9]+|[A-Za-z_][A-Za-z0-9_]*|[-+*/()]|\s+|.`)

// evalExpression computes an integer expression of literals and symbols
// with + - * / and parentheses. Every symbol must already be defined.
// Division truncates toward negative infinity.
func (asm *Assembler) evalExpression(expr string) (value int32, err error) {
	pred := starlark.StringDict{}

	var prog strings.Builder
	prog.WriteString(exprResult + "=")
	for _, token := range exprTokenRe.FindAllString(expr, -1) {
		switch {
		case token == "/":
			token = "//"
		case IsIdentifier(token):
			var symval int32
			symval, err = asm.expressionSymbol(token)
			if err != nil {
				return
			}
			pred[token] = starlark.MakeInt64(int64(symval))
		case strings.TrimSpace(token) == "":
		case len(token) == 1 && !strings.ContainsAny(token, "+-*()0123456789"):
			err = ErrParseExpression(expr)
			return
		}
		prog.WriteString(token)
	}
	prog.WriteString("\n")

	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog.String(), pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict[exprResult]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < math.MinInt32 || st_int64 > math.MaxUint32 {
		err = ErrParseExpression(expr)
		return
	}

	value = int32(uint32(st_int64))
	return
}

// expressionSymbol returns the value of a symbol used in an expression.
func (asm *Assembler) expressionSymbol(name string) (value int32, err error) {
	index, ok := asm.obj.Lookup(name)
	if !ok {
		err = &ErrSymbol{Name: name, Err: ErrSymbolUndefined}
		return
	}

	sym := &asm.obj.Symbols[index]
	switch {
	case sym.External:
		err = &ErrSymbol{Name: name, Err: ErrSymbolExternal}
	case !sym.Defined:
		err = &ErrSymbol{Name: name, Err: ErrSymbolUndefined}
	default:
		value = sym.Value
	}

	return
}
