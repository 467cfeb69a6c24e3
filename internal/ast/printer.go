// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

func (e *IntConstExpr) String() string { return strconv.FormatInt(e.Val, 10) }

func (e *IntVarExpr) String() string { return e.Var.Name() }

func (e *IntUnaryExpr) String() string {
	return fmt.Sprintf("%s%s", e.Op, e.Exp)
}

func (e *IntBinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.LHS, e.Op, e.RHS)
}

func (e *IntRandExpr) String() string {
	return fmt.Sprintf("rand(%d, %d)", e.Lo, e.Hi)
}

func (e *BoolConstExpr) String() string {
	if e.Val {
		return "true"
	}
	return "false"
}

func (e *BoolUnaryExpr) String() string {
	return fmt.Sprintf("!%s", e.Exp)
}

func (e *BoolBinaryExpr) String() string {
	op := "&&"
	if e.Op == Or {
		op = "||"
	}
	return fmt.Sprintf("(%s %s %s)", e.LHS, op, e.RHS)
}

func (e *CompareExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.LHS, e.Op, e.RHS)
}

func (s *Block) String() string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, d := range s.Decls {
		b.WriteString(fmt.Sprintf("  %s %s;\n", d.Type(), d.Name()))
	}
	for _, stmt := range s.Stmts {
		b.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (s *Assign) String() string {
	return fmt.Sprintf("%s = %s;", s.LHS.Name(), s.RHS)
}

func (s *If) String() string {
	if s.Otherwise == nil {
		return fmt.Sprintf("if (%s) %s", s.Cond, s.Then)
	}
	return fmt.Sprintf("if (%s) %s else %s", s.Cond, s.Then, s.Otherwise)
}

func (s *While) String() string {
	return fmt.Sprintf("while (%s) %s", s.Cond, s.Body)
}

func (s *Halt) String() string { return "halt;" }

func (s *Assert) String() string {
	return fmt.Sprintf("assert(%s);", s.Cond)
}

func (s *Print) String() string {
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.Name()
	}
	return fmt.Sprintf("print(%s);", strings.Join(names, ", "))
}

// PrintProgram renders a full program, one statement per line.
func PrintProgram(p Program) string {
	var b strings.Builder
	for _, stmt := range p {
		b.WriteString(stmt.String())
		b.WriteByte('\n')
	}
	return b.String()
}
