package odata

import (
	"fmt"
	"strings"
)

// Operator is one of the protocol's comparison operators.
type Operator string

// Comparison operators accepted in $filter expressions.
const (
	OpEq Operator = "eq"
	OpNe Operator = "ne"
	OpGt Operator = "gt"
	OpGe Operator = "ge"
	OpLt Operator = "lt"
	OpLe Operator = "le"
)

// operand is the left-hand side of a comparison. A property either
// resolves against the entity set's schema or passes through as a raw
// name for the server to judge.
type operand interface {
	renderOperand() string
}

// resolvedProperty is a schema-backed property reference.
type resolvedProperty struct {
	name    string
	edmType string
}

func (p resolvedProperty) renderOperand() string { return p.name }

// rawName is the fallback for properties the schema does not know.
// Unknown names are deliberately not rejected here; protocol validation
// is the server's job.
type rawName string

func (r rawName) renderOperand() string { return string(r) }

// Criteria is one comparison expression in a filter clause. It is a value
// type: the comparator methods return a populated copy, and a fully
// formed Criteria is immutable.
type Criteria struct {
	prop  operand
	op    Operator
	value interface{}
}

// Eq compares for equality.
func (c Criteria) Eq(v interface{}) Criteria { return c.compare(OpEq, v) }

// Ne compares for inequality.
func (c Criteria) Ne(v interface{}) Criteria { return c.compare(OpNe, v) }

// Gt compares for greater-than.
func (c Criteria) Gt(v interface{}) Criteria { return c.compare(OpGt, v) }

// Ge compares for greater-than-or-equal.
func (c Criteria) Ge(v interface{}) Criteria { return c.compare(OpGe, v) }

// Lt compares for less-than.
func (c Criteria) Lt(v interface{}) Criteria { return c.compare(OpLt, v) }

// Le compares for less-than-or-equal.
func (c Criteria) Le(v interface{}) Criteria { return c.compare(OpLe, v) }

func (c Criteria) compare(op Operator, v interface{}) Criteria {
	c.op = op
	c.value = v
	return c
}

// String renders the comparison in filter syntax:
// "<property> <operator> <value>".
func (c Criteria) String() string {
	return fmt.Sprintf("%s %s %s", c.prop.renderOperand(), c.op, renderValue(c.value))
}

// renderValue quotes strings, passes numbers through bare, and renders
// nil as the literal null token.
func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// quote single-quotes a string literal, doubling embedded quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
