/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package store

import (
	"bytes"
	"fmt"
	"reflect"
)

/*
Operator of a query condition.
*/
type Operator int

/*
Supported operators
*/
const (
	OpEq Operator = iota // Field equals value
	OpIn                 // Field equals one of a list of values
)

/*
Condition is a single filter on a document field.
*/
type Condition struct {
	Field string        // Field name
	Op    Operator      // Operator
	Value interface{}   // Compared value (OpEq)
	Set   []interface{} // Compared values (OpIn)
}

/*
Criteria is a conjunction of conditions. Empty criteria match everything.
*/
type Criteria []Condition

/*
Eq returns a condition which matches documents with field == value.
*/
func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

/*
In returns a condition which matches documents where the field is one of the
given values.
*/
func In(field string, values ...interface{}) Condition {
	return Condition{Field: field, Op: OpIn, Set: values}
}

/*
InStrings returns an In condition for a list of strings.
*/
func InStrings(field string, values []string) Condition {
	set := make([]interface{}, len(values))
	for i, v := range values {
		set[i] = v
	}
	return In(field, set...)
}

/*
Match checks if a document matches the criteria.
*/
func (c Criteria) Match(doc map[string]interface{}) bool {
	for _, cond := range c {
		if !cond.Match(doc) {
			return false
		}
	}
	return true
}

/*
String returns a string representation of the criteria.
*/
func (c Criteria) String() string {
	var buf bytes.Buffer

	for i, cond := range c {
		if i > 0 {
			buf.WriteString(" and ")
		}
		buf.WriteString(cond.String())
	}

	return buf.String()
}

/*
Match checks if a document matches the condition. A missing field never
matches.
*/
func (c Condition) Match(doc map[string]interface{}) bool {
	val, ok := doc[c.Field]
	if !ok {
		return false
	}

	if c.Op == OpIn {
		for _, v := range c.Set {
			if ValuesEqual(val, v) {
				return true
			}
		}
		return false
	}

	return ValuesEqual(val, c.Value)
}

/*
String returns a string representation of the condition.
*/
func (c Condition) String() string {
	if c.Op == OpIn {
		return fmt.Sprintf("%v in %v", c.Field, c.Set)
	}
	return fmt.Sprintf("%v = %v", c.Field, c.Value)
}

/*
ValuesEqual compares two document values. Numbers are compared by value
regardless of their type.
*/
func ValuesEqual(v1 interface{}, v2 interface{}) bool {
	if isNumber(v1) && isNumber(v2) {
		if n1, ok := AsUint64(v1); ok {
			if n2, ok := AsUint64(v2); ok {
				return n1 == n2
			}
		}
		return asFloat64(v1) == asFloat64(v2)
	}

	return reflect.DeepEqual(v1, v2)
}
