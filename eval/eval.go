package eval

import (
	"fmt"
	"strconv"

	"github.com/binframe/codec/errs"
)

// Expr is a parsed, reusable expression tree. Descriptor lists are
// immutable after load (spec §3), so parsing once and reusing the tree
// across many decode/encode calls avoids re-lexing hot-path conditions.
type Expr struct {
	root node
	src  string
}

// Parse compiles expr into a reusable Expr. An empty string parses to an
// Expr that Bool() always evaluates true (spec §3: "true or empty ⇒
// include").
func Parse(expr string) (*Expr, error) {
	if expr == "" {
		return &Expr{root: boolLit{true}, src: expr}, nil
	}
	toks, err := newLexer(expr).tokens()
	if err != nil {
		return nil, errs.Wrap(errs.KindAnnotation, err)
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, errs.Wrap(errs.KindAnnotation, err)
	}
	if p.cur().kind != tokEOF {
		return nil, errs.Newf(errs.KindAnnotation, "eval: unexpected trailing input in %q", expr)
	}
	return &Expr{root: n, src: expr}, nil
}

// MustParse panics on error; useful only for static, known-good tests.
func MustParse(expr string) *Expr {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) String() string { return e.src }

// Eval evaluates the expression against ctx, returning a Go value:
// bool, int64, float64 or string for computed results, or a looked-up
// value (a field, variable or prefix) exactly as it is stored.
func (e *Expr) Eval(ctx *Context) (any, error) {
	return e.root.eval(ctx)
}

// Bool evaluates expr as a condition per spec §6 evaluate(expr, root, bool).
func (e *Expr) Bool(ctx *Context) (bool, error) {
	v, err := e.Eval(ctx)
	if err != nil {
		return false, err
	}
	return toBool(v)
}

// Int evaluates expr as an integer-valued expression.
func (e *Expr) Int(ctx *Context) (int64, error) {
	v, err := e.Eval(ctx)
	if err != nil {
		return 0, err
	}
	return toInt(v)
}

// Size evaluates a size expression, enforcing spec §3's invariant that
// size expressions produce non-negative integers.
func (e *Expr) Size(ctx *Context) (int, error) {
	n, err := e.Int(ctx)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errs.Newf(errs.KindDecode, "size expression %q evaluated to negative value %d", e.src, n)
	}
	return int(n), nil
}

// EvaluateSize is the spec §6 convenience entry point: an all-digit expr
// is parsed directly, bypassing the evaluator and its Context entirely.
func EvaluateSize(expr string, ctx *Context) (int, error) {
	if IsAllDigits(expr) {
		n, err := strconv.Atoi(expr)
		if err != nil {
			return 0, errs.Wrap(errs.KindDecode, err)
		}
		return n, nil
	}
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return e.Size(ctx)
}

// ---- AST ----

type node interface {
	eval(ctx *Context) (any, error)
}

type boolLit struct{ v bool }

func (n boolLit) eval(*Context) (any, error) { return n.v, nil }

type numLit struct{ v float64 }

func (n numLit) eval(*Context) (any, error) { return n.v, nil }

type strLit struct{ v string }

func (n strLit) eval(*Context) (any, error) { return n.v, nil }

type ident struct{ name string }

func (n ident) eval(ctx *Context) (any, error) {
	switch n.name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "self":
		return ctx.Self, nil
	case "root":
		return ctx.Root, nil
	case "prefix":
		if ctx.Prefix == nil {
			return nil, errs.New(errs.KindDecode, "prefix referenced outside a choice table")
		}
		return *ctx.Prefix, nil
	}
	if v, ok := ctx.Vars[n.name]; ok {
		return v, nil
	}
	if v, ok := ctx.FindField(n.name); ok {
		return v, nil
	}
	return nil, errs.Newf(errs.KindDecode, "unknown variable %q", n.name)
}

type parentRef struct {
	levels int
	field  string
}

func (n parentRef) eval(ctx *Context) (any, error) {
	parent, ok := ctx.ParentField(n.levels)
	if !ok {
		return nil, errs.Newf(errs.KindDecode, "no parent %d levels up", n.levels)
	}
	v, ok := parent[n.field]
	if !ok {
		return nil, errs.Newf(errs.KindDecode, "parent has no field %q", n.field)
	}
	return v, nil
}

type member struct {
	obj   node
	field string
}

func (n member) eval(ctx *Context) (any, error) {
	v, err := n.obj.eval(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errs.Newf(errs.KindDecode, "cannot access field %q of non-object value", n.field)
	}
	fv, ok := m[n.field]
	if !ok {
		return nil, errs.Newf(errs.KindDecode, "object has no field %q", n.field)
	}
	return fv, nil
}

type index struct {
	arr, idx node
}

func (n index) eval(ctx *Context) (any, error) {
	av, err := n.arr.eval(ctx)
	if err != nil {
		return nil, err
	}
	iv, err := n.idx.eval(ctx)
	if err != nil {
		return nil, err
	}
	i, err := toInt(iv)
	if err != nil {
		return nil, err
	}
	arr, ok := av.([]any)
	if !ok {
		return nil, errs.New(errs.KindDecode, "cannot index non-array value")
	}
	if i < 0 || int(i) >= len(arr) {
		return nil, errs.Newf(errs.KindDecode, "index %d out of range (len %d)", i, len(arr))
	}
	return arr[i], nil
}

type call struct {
	fn   string
	args []node
}

func (n call) eval(ctx *Context) (any, error) {
	switch n.fn {
	case "len":
		if len(n.args) != 1 {
			return nil, errs.New(errs.KindAnnotation, "len() takes exactly one argument")
		}
		v, err := n.args[0].eval(ctx)
		if err != nil {
			return nil, err
		}
		switch t := v.(type) {
		case []any:
			return int64(len(t)), nil
		case string:
			return int64(len(t)), nil
		default:
			return nil, errs.New(errs.KindDecode, "len() requires an array or string")
		}
	case "position_of":
		if len(n.args) != 2 {
			return nil, errs.New(errs.KindAnnotation, "position_of(array, type) takes two arguments")
		}
		arrName, typeName, err := n.twoIdentArgs(ctx)
		if err != nil {
			return nil, err
		}
		key := arrName + "_" + typeName
		pos, ok := ctx.Positions[key]
		if !ok || len(pos) == 0 {
			return nil, errs.Newf(errs.KindDecode, "no tracked position for %s", key)
		}
		return int64(pos[len(pos)-1]), nil
	default:
		return evalTypeIndexFn(n, ctx)
	}
}

func (n call) twoIdentArgs(ctx *Context) (string, string, error) {
	id0, ok0 := n.args[0].(ident)
	id1, ok1 := n.args[1].(ident)
	if !ok0 || !ok1 {
		return "", "", errs.New(errs.KindAnnotation, "expected identifier arguments")
	}
	return id0.name, id1.name, nil
}

// evalTypeIndexFn handles corresponding<Type>(array)/first<Type>(array)/
// last<Type>(array), the cross-array-correlation functions from
// spec.md C, named with an embedded "<Type>" suffix by the lexer.
// first<Type> and last<Type> return the array's first and last element;
// their <Type> argument is parsed but does not filter by type.
func evalTypeIndexFn(n call, ctx *Context) (any, error) {
	fn, typeName, ok := splitGenericFn(n.fn)
	if !ok {
		return nil, errs.Newf(errs.KindAnnotation, "unknown function %q", n.fn)
	}
	if len(n.args) != 1 {
		return nil, errs.Newf(errs.KindAnnotation, "%s takes exactly one argument", n.fn)
	}
	arrID, ok := n.args[0].(ident)
	if !ok {
		return nil, errs.Newf(errs.KindAnnotation, "%s requires an array field name argument", n.fn)
	}
	iter, ok := ctx.ArrayIterations[arrID.name]
	if !ok {
		return nil, errs.Newf(errs.KindDecode, "no active iteration for array %q", arrID.name)
	}
	var idx int
	switch fn {
	case "corresponding":
		i, ok := ctx.TypeIndex(arrID.name, typeName)
		if !ok {
			return nil, errs.Newf(errs.KindDecode, "corresponding<%s>: no element of that type seen in %q", typeName, arrID.name)
		}
		idx = i
	case "first":
		idx = 0
	case "last":
		idx = len(iter.Items) - 1
	default:
		return nil, errs.Newf(errs.KindAnnotation, "unknown function %q", n.fn)
	}
	if idx < 0 || idx >= len(iter.Items) {
		return nil, errs.Newf(errs.KindDecode, "%s: index %d out of range", n.fn, idx)
	}
	return iter.Items[idx], nil
}

func splitGenericFn(name string) (fn string, typeArg string, ok bool) {
	lt := -1
	for i, r := range name {
		if r == '<' {
			lt = i
			break
		}
	}
	if lt < 0 || name[len(name)-1] != '>' {
		return "", "", false
	}
	fn = name[:lt]
	typeArg = name[lt+1 : len(name)-1]
	if fn != "corresponding" && fn != "first" && fn != "last" {
		return "", "", false
	}
	return fn, typeArg, true
}

type unary struct {
	op string
	x  node
}

func (n unary) eval(ctx *Context) (any, error) {
	v, err := n.x.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "-":
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return -f, nil
	case "!":
		b, err := toBool(v)
		if err != nil {
			return nil, err
		}
		return !b, nil
	}
	return nil, errs.Newf(errs.KindAnnotation, "unknown unary operator %q", n.op)
}

type binary struct {
	op   string
	l, r node
}

func (n binary) eval(ctx *Context) (any, error) {
	switch n.op {
	case "&&":
		l, err := n.l.eval(ctx)
		if err != nil {
			return nil, err
		}
		lb, err := toBool(l)
		if err != nil {
			return nil, err
		}
		if !lb {
			return false, nil
		}
		r, err := n.r.eval(ctx)
		if err != nil {
			return nil, err
		}
		return toBool(r)
	case "||":
		l, err := n.l.eval(ctx)
		if err != nil {
			return nil, err
		}
		lb, err := toBool(l)
		if err != nil {
			return nil, err
		}
		if lb {
			return true, nil
		}
		r, err := n.r.eval(ctx)
		if err != nil {
			return nil, err
		}
		return toBool(r)
	}

	lv, err := n.l.eval(ctx)
	if err != nil {
		return nil, err
	}
	rv, err := n.r.eval(ctx)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return valuesEqual(lv, rv), nil
	case "!=":
		return !valuesEqual(lv, rv), nil
	}

	lf, lerr := toFloat(lv)
	rf, rerr := toFloat(rv)
	if lerr == nil && rerr == nil {
		switch n.op {
		case "+":
			return lf + rf, nil
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			if rf == 0 {
				return nil, errs.New(errs.KindDecode, "division by zero")
			}
			return lf / rf, nil
		case "%":
			li, _ := toInt(lv)
			ri, _ := toInt(rv)
			if ri == 0 {
				return nil, errs.New(errs.KindDecode, "modulo by zero")
			}
			return li % ri, nil
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		case ">":
			return lf > rf, nil
		case ">=":
			return lf >= rf, nil
		}
	}

	if n.op == "+" {
		ls, lok := lv.(string)
		rs, rok := rv.(string)
		if lok && rok {
			return ls + rs, nil
		}
	}

	return nil, errs.Newf(errs.KindDecode, "operator %q not applicable to operand types", n.op)
}

func valuesEqual(a, b any) bool {
	af, aerr := toFloat(a)
	bf, berr := toFloat(b)
	if aerr == nil && berr == nil {
		return af == bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	ab, aok2 := a.(bool)
	bb, bok2 := b.(bool)
	if aok2 && bok2 {
		return ab == bb
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
