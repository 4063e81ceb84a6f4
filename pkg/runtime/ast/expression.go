// Licensed to Apache Software Foundation (ASF) under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Apache Software Foundation (ASF) licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.
//

package ast

import (
	"fmt"
	"strings"
)

const (
	_ BinaryOp = iota
	OpEq
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

var _binaryOpNames = [...]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpLt:  "<",
	OpLte: "<=",
	OpGt:  ">",
	OpGte: ">=",
	OpAnd: "AND",
	OpOr:  "OR",
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
}

// BinaryOp is the operator of a BinaryExpr.
type BinaryOp uint8

func (o BinaryOp) String() string {
	return _binaryOpNames[o]
}

// IsComparison returns true for =, <>, <, <=, > and >=.
func (o BinaryOp) IsComparison() bool {
	return o >= OpEq && o <= OpGte
}

// Reverse returns the operator after swapping both sides, eg: '1 < a' is 'a > 1'.
func (o BinaryOp) Reverse() BinaryOp {
	switch o {
	case OpLt:
		return OpGt
	case OpLte:
		return OpGte
	case OpGt:
		return OpLt
	case OpGte:
		return OpLte
	default:
		return o
	}
}

// Expr is an expression node.
// Implementations: *LiteralExpr, *ParamExpr, *ColumnExpr, *BinaryExpr, *InExpr,
// *BetweenExpr, *NotExpr, *FuncExpr, *SubqueryExpr.
type Expr interface {
	fmt.Stringer
	isExpr()
}

var (
	_ Expr = (*LiteralExpr)(nil)
	_ Expr = (*ParamExpr)(nil)
	_ Expr = (*ColumnExpr)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*InExpr)(nil)
	_ Expr = (*BetweenExpr)(nil)
	_ Expr = (*NotExpr)(nil)
	_ Expr = (*FuncExpr)(nil)
	_ Expr = (*SubqueryExpr)(nil)
)

// LiteralExpr is a constant value, NULL is represented by a nil Value.
type LiteralExpr struct {
	Span
	Value interface{}
}

// ParamExpr is a parameter marker, Index is the zero-based position in the parameter list.
type ParamExpr struct {
	Span
	Index int
}

type ColumnExpr struct {
	Column *ColumnSegment
}

type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

type InExpr struct {
	Left   Expr
	Values []Expr
	Not    bool
}

type BetweenExpr struct {
	Left  Expr
	Lower Expr
	Upper Expr
	Not   bool
}

type NotExpr struct {
	Expr Expr
}

type FuncExpr struct {
	Name string
	Args []Expr
}

type SubqueryExpr struct {
	Select *SelectStatement
}

func (l *LiteralExpr) isExpr()  {}
func (p *ParamExpr) isExpr()    {}
func (c *ColumnExpr) isExpr()   {}
func (b *BinaryExpr) isExpr()   {}
func (i *InExpr) isExpr()       {}
func (b *BetweenExpr) isExpr()  {}
func (n *NotExpr) isExpr()      {}
func (f *FuncExpr) isExpr()     {}
func (s *SubqueryExpr) isExpr() {}

func (l *LiteralExpr) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return fmt.Sprint(v)
	}
}

func (p *ParamExpr) String() string {
	return fmt.Sprintf("?%d", p.Index)
}

func (c *ColumnExpr) String() string {
	if c.Column.Owner != nil {
		return c.Column.Owner.Name + "." + c.Column.Name
	}
	return c.Column.Name
}

func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}

func (i *InExpr) String() string {
	var sb strings.Builder
	sb.WriteString(i.Left.String())
	if i.Not {
		sb.WriteString(" NOT")
	}
	sb.WriteString(" IN (")
	writeExprs(&sb, i.Values)
	sb.WriteByte(')')
	return sb.String()
}

func (b *BetweenExpr) String() string {
	var sb strings.Builder
	sb.WriteString(b.Left.String())
	if b.Not {
		sb.WriteString(" NOT")
	}
	sb.WriteString(" BETWEEN ")
	sb.WriteString(b.Lower.String())
	sb.WriteString(" AND ")
	sb.WriteString(b.Upper.String())
	return sb.String()
}

func (n *NotExpr) String() string {
	return "NOT " + n.Expr.String()
}

func (f *FuncExpr) String() string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	writeExprs(&sb, f.Args)
	sb.WriteByte(')')
	return sb.String()
}

func (s *SubqueryExpr) String() string {
	return "(" + s.Select.SQL + ")"
}

func writeExprs(sb *strings.Builder, exprs []Expr) {
	for i, it := range exprs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(it.String())
	}
}

// Walk visits the expression tree in depth-first order.
// The children of a node are skipped if fn returns false, sub-queries are entered.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch it := e.(type) {
	case *BinaryExpr:
		Walk(it.Left, fn)
		Walk(it.Right, fn)
	case *InExpr:
		Walk(it.Left, fn)
		for _, v := range it.Values {
			Walk(v, fn)
		}
	case *BetweenExpr:
		Walk(it.Left, fn)
		Walk(it.Lower, fn)
		Walk(it.Upper, fn)
	case *NotExpr:
		Walk(it.Expr, fn)
	case *FuncExpr:
		for _, v := range it.Args {
			Walk(v, fn)
		}
	case *SubqueryExpr:
		for _, v := range it.Select.exprs() {
			Walk(v, fn)
		}
	}
}

// Params returns the parameter indexes of the expression in order of appearance.
func Params(e Expr) []int {
	var ret []int
	Walk(e, func(next Expr) bool {
		if p, ok := next.(*ParamExpr); ok {
			ret = append(ret, p.Index)
		}
		return true
	})
	return ret
}
