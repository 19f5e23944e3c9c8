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
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Helper functions for document values
// ====================================

/*
AsUint64 converts a value into an unsigned integer. Accepts integer and
float types holding a non-negative whole number, json.Number and decimal
strings.
*/
func AsUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case int32:
		return uint64(n), n >= 0
	case int16:
		return uint64(n), n >= 0
	case int8:
		return uint64(n), n >= 0
	case float64:
		return uint64(n), n >= 0 && n == math.Trunc(n) && n <= math.MaxUint64
	case float32:
		return uint64(n), n >= 0 && float64(n) == math.Trunc(float64(n))
	case json.Number:
		return AsUint64(string(n))
	case string:
		res, err := strconv.ParseUint(strings.TrimSpace(n), 10, 64)
		return res, err == nil
	}

	return 0, false
}

/*
isNumber checks if a value has a numeric type.
*/
func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

/*
asFloat64 converts a numeric value into a float.
*/
func asFloat64(v interface{}) float64 {
	if n, ok := v.(json.Number); ok {
		f, _ := n.Float64()
		return f
	}

	f, _ := strconv.ParseFloat(fmt.Sprint(v), 64)
	return f
}

/*
KeyString returns the canonical string form of a primary key. Numeric keys
are normalized so 1, uint64(1) and 1.0 produce the same key.
*/
func KeyString(id interface{}) string {
	if isNumber(id) {
		if n, ok := AsUint64(id); ok {
			return strconv.FormatUint(n, 10)
		}
	}
	return fmt.Sprint(id)
}

/*
SortKeys sorts primary keys. Numeric keys come first in numeric order,
all other keys follow in lexical order.
*/
func SortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		n1, err1 := strconv.ParseUint(keys[i], 10, 64)
		n2, err2 := strconv.ParseUint(keys[j], 10, 64)

		if err1 == nil && err2 == nil {
			return n1 < n2
		} else if err1 == nil || err2 == nil {
			return err1 == nil
		}

		return keys[i] < keys[j]
	})
}

/*
ToDocument converts a given object into a plain document. Supported are
plain maps and objects implementing Document.
*/
func ToDocument(obj interface{}) (map[string]interface{}, bool) {
	switch doc := obj.(type) {
	case map[string]interface{}:
		return CopyDocument(doc), true
	case Document:
		return doc.Flatten(), true
	}
	return nil, false
}

/*
CopyDocument returns a deep copy of a document. Nested maps and slices are
copied, all other values are shared.
*/
func CopyDocument(doc map[string]interface{}) map[string]interface{} {
	if doc == nil {
		return nil
	}

	ret := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		ret[k] = copyValue(v)
	}

	return ret
}

/*
copyValue deep copies maps and slices.
*/
func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return CopyDocument(val)
	case map[string]string:
		ret := make(map[string]string, len(val))
		for k, s := range val {
			ret[k] = s
		}
		return ret
	case []interface{}:
		ret := make([]interface{}, len(val))
		for i, e := range val {
			ret[i] = copyValue(e)
		}
		return ret
	case []string:
		return append([]string(nil), val...)
	}
	return v
}

/*
Project returns a copy of a document which only contains the given fields.
The primary key is always kept. A nil field list returns the whole document.
*/
func Project(doc map[string]interface{}, fields []string) map[string]interface{} {
	if fields == nil {
		return CopyDocument(doc)
	}

	ret := make(map[string]interface{}, len(fields)+1)

	if id, ok := doc[FieldID]; ok {
		ret[FieldID] = id
	}

	for _, f := range fields {
		if v, ok := doc[f]; ok {
			ret[f] = copyValue(v)
		}
	}

	return ret
}

/*
Result converts a document into the form requested by a result mode.
*/
func Result(doc map[string]interface{}, mode ResultMode, fields []string, hydrator Hydrator) (interface{}, error) {
	if mode.Is(ResultID) {
		return doc[FieldID], nil
	}

	doc = Project(doc, fields)

	if mode.Is(ResultRaw) || hydrator == nil {
		return doc, nil
	}

	return hydrator(doc)
}
