/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ontology

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/milko/ontograph/store"
)

/*
DefaultLanguage is the language which is used if a requested language is
not available.
*/
const DefaultLanguage = "en"

/*
Resolver resolves field keys into tag ids.
*/
type Resolver interface {

	/*
		Resolve resolves a field key. A key can be a TagID, an integer, a
		decimal string, a global identifier or FieldNativeIdentifier. Returns
		false if the key does not name a known tag.
	*/
	Resolve(ctx context.Context, key interface{}) (TagID, bool, error)
}

/*
Record is a document whose field keys are tag ids.
*/
type Record struct {
	data     map[string]interface{} // Data which is held by this record
	resolver Resolver               // Resolver for field keys
}

/*
NewRecord creates a new empty Record instance.
*/
func NewRecord(resolver Resolver) *Record {
	return &Record{make(map[string]interface{}), resolver}
}

/*
NewRecordFromMap creates a new Record instance which holds the given data.
*/
func NewRecordFromMap(resolver Resolver, data map[string]interface{}) *Record {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Record{data, resolver}
}

/*
Resolver returns the resolver of this record.
*/
func (r *Record) Resolver() Resolver {
	return r.resolver
}

/*
Data returns the data of this record.
*/
func (r *Record) Data() map[string]interface{} {
	return r.data
}

/*
Attr returns a field of this record. Returns nil if the field does not exist.
*/
func (r *Record) Attr(id TagID) interface{} {
	return r.data[id.String()]
}

/*
SetAttr sets a field of this record. Setting a nil value removes the field.
*/
func (r *Record) SetAttr(id TagID, val interface{}) {
	if val != nil {
		r.data[id.String()] = val
	} else {
		delete(r.data, id.String())
	}
}

/*
HasAttr checks if this record has a given field.
*/
func (r *Record) HasAttr(id TagID) bool {
	_, ok := r.data[id.String()]
	return ok
}

/*
StringAttr returns the value of a field as a string. Returns an empty string
if the value can't be represented as a string.
*/
func (r *Record) StringAttr(id TagID) string {
	val, found := r.data[id.String()]

	if st, ok := val.(string); found && ok {
		return st
	} else if st, ok := val.(fmt.Stringer); found && ok {
		return st.String()
	}

	return ""
}

/*
Get returns a field of this record. The key is resolved first, an unknown
key returns nil.
*/
func (r *Record) Get(ctx context.Context, key interface{}) (interface{}, error) {
	id, ok, err := r.resolve(ctx, key)

	if err != nil || !ok {
		return nil, err
	}

	return r.Attr(id), nil
}

/*
Set sets a field of this record. The key is resolved first, an unknown key
results in an error. Setting a nil value removes the field.
*/
func (r *Record) Set(ctx context.Context, key interface{}, val interface{}) error {
	id, ok, err := r.resolve(ctx, key)

	if err == nil && !ok {
		if val == nil {
			return nil
		}
		err = NewError(ErrResolution, fmt.Sprint("Unknown field:", key))
	}

	if err == nil {
		r.SetAttr(id, val)
	}

	return err
}

/*
Has checks if this record has a given field.
*/
func (r *Record) Has(ctx context.Context, key interface{}) (bool, error) {
	id, ok, err := r.resolve(ctx, key)

	if err != nil || !ok {
		return false, err
	}

	return r.HasAttr(id), nil
}

/*
Delete removes a field of this record.
*/
func (r *Record) Delete(ctx context.Context, key interface{}) error {
	return r.Set(ctx, key, nil)
}

/*
resolve resolves a field key. Without a resolver only numeric keys and
FieldNativeIdentifier are accepted.
*/
func (r *Record) resolve(ctx context.Context, key interface{}) (TagID, bool, error) {
	if r.resolver != nil {
		return r.resolver.Resolve(ctx, key)
	}

	if key == FieldNativeIdentifier {
		return NativeIdentifier, true, nil
	} else if id, ok := key.(TagID); ok {
		return id, true, nil
	} else if id, ok := store.AsUint64(key); ok {
		return TagID(id), true, nil
	}

	return 0, false, NewError(ErrResolution, fmt.Sprint("No resolver for field:", key))
}

/*
Keys returns the sorted field keys of this record.
*/
func (r *Record) Keys() []string {
	ret := make([]string, 0, len(r.data))

	for k := range r.data {
		ret = append(ret, k)
	}

	sort.Slice(ret, func(i, j int) bool {
		n1, err1 := strconv.ParseUint(ret[i], 10, 64)
		n2, err2 := strconv.ParseUint(ret[j], 10, 64)

		if err1 == nil && err2 == nil {
			return n1 < n2
		} else if err1 == nil || err2 == nil {
			return err1 != nil
		}

		return ret[i] < ret[j]
	})

	return ret
}

/*
Flatten returns the record as a plain structure. Nested records are
flattened as well.
*/
func (r *Record) Flatten() map[string]interface{} {
	return flattenMap(r.data)
}

/*
flattenMap returns a plain copy of a map.
*/
func flattenMap(m map[string]interface{}) map[string]interface{} {
	ret := make(map[string]interface{}, len(m))

	for k, v := range m {
		ret[k] = flattenValue(v)
	}

	return ret
}

/*
flattenValue returns a plain copy of a value.
*/
func flattenValue(v interface{}) interface{} {
	switch val := v.(type) {
	case store.Document:
		return val.Flatten()
	case map[string]interface{}:
		return flattenMap(val)
	case []interface{}:
		ret := make([]interface{}, len(val))
		for i, e := range val {
			ret[i] = flattenValue(e)
		}
		return ret
	case map[string]string:
		ret := make(map[string]interface{}, len(val))
		for k, s := range val {
			ret[k] = s
		}
		return ret
	case []string:
		ret := make([]interface{}, len(val))
		for i, s := range val {
			ret[i] = s
		}
		return ret
	}

	return v
}

/*
String returns a string representation of this record.
*/
func (r *Record) String() string {
	return r.Describe("Record")
}

/*
Describe returns a string representation of this record with a given
type name.
*/
func (r *Record) Describe(dataType string) string {
	var buf bytes.Buffer

	keys := r.Keys()
	maxlen := 0

	for _, k := range keys {
		if klen := len(k); klen > maxlen {
			maxlen = klen
		}
	}

	buf.WriteString(dataType + ":\n")

	for _, k := range keys {
		buf.WriteString(fmt.Sprintf("    %"+
			strconv.Itoa(maxlen)+"v : %v\n", k, r.data[k]))
	}

	return buf.String()
}

/*
Localize returns the text of a per-language value in a given language. If
the language is not available the default language is used, then the first
available language in sort order. Plain values are returned as they are.
*/
func Localize(value interface{}, lang string) string {
	var texts map[string]string

	switch val := value.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]string:
		texts = val
	case map[string]interface{}:
		texts = make(map[string]string, len(val))
		for k, v := range val {
			texts[k] = fmt.Sprint(v)
		}
	default:
		return fmt.Sprint(val)
	}

	if text, ok := texts[lang]; ok {
		return text
	} else if text, ok := texts[DefaultLanguage]; ok {
		return text
	}

	langs := make([]string, 0, len(texts))
	for k := range texts {
		langs = append(langs, k)
	}

	if len(langs) == 0 {
		return ""
	}

	sort.Strings(langs)

	return texts[langs[0]]
}

/*
setLanguageString sets the text of a per-language field.
*/
func (r *Record) setLanguageString(id TagID, lang string, text string) {
	texts := make(map[string]interface{})

	switch val := r.Attr(id).(type) {
	case map[string]interface{}:
		texts = val
	case map[string]string:
		for k, v := range val {
			texts[k] = v
		}
	case string:
		texts[DefaultLanguage] = val
	}

	if text == "" {
		delete(texts, lang)
	} else {
		texts[lang] = text
	}

	if len(texts) == 0 {
		r.SetAttr(id, nil)
	} else {
		r.SetAttr(id, texts)
	}
}

/*
languageStrings returns all texts of a per-language field.
*/
func (r *Record) languageStrings(id TagID) map[string]string {
	ret := make(map[string]string)

	switch val := r.Attr(id).(type) {
	case map[string]interface{}:
		for k, v := range val {
			ret[k] = fmt.Sprint(v)
		}
	case map[string]string:
		for k, v := range val {
			ret[k] = v
		}
	case string:
		ret[DefaultLanguage] = val
	}

	return ret
}

/*
localizeAttr replaces a per-language field with its text in a given language.
*/
func (r *Record) localizeAttr(id TagID, lang string) {
	if val := r.Attr(id); val != nil {
		r.SetAttr(id, Localize(val, lang))
	}
}

/*
stringList returns a list field as a list of strings.
*/
func (r *Record) stringList(id TagID) []string {
	var ret []string

	switch val := r.Attr(id).(type) {
	case []string:
		ret = append(ret, val...)
	case []interface{}:
		for _, v := range val {
			ret = append(ret, fmt.Sprint(v))
		}
	case string:
		ret = append(ret, val)
	}

	return ret
}

/*
setStringList sets a list field. An empty list removes the field.
*/
func (r *Record) setStringList(id TagID, list []string) {
	if len(list) == 0 {
		r.SetAttr(id, nil)
		return
	}

	val := make([]interface{}, len(list))
	for i, s := range list {
		val[i] = s
	}

	r.SetAttr(id, val)
}
