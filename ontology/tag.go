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
	"fmt"
	"sort"

	"devt.de/krotik/common/stringutil"
	"github.com/milko/ontograph/store"
)

/*
Tag is a property definition.
*/
type Tag struct {
	*Record
}

/*
NewTag creates a new Tag instance.
*/
func NewTag(resolver Resolver) *Tag {
	return &Tag{NewRecord(resolver)}
}

/*
NewTagFromMap creates a new Tag instance from a plain document.
*/
func NewTagFromMap(resolver Resolver, data map[string]interface{}) *Tag {
	return &Tag{NewRecordFromMap(resolver, data)}
}

/*
NID returns the native identifier of this tag. Returns 0 if no native
identifier was assigned yet.
*/
func (t *Tag) NID() TagID {
	id, _ := store.AsUint64(t.Attr(NativeIdentifier))
	return TagID(id)
}

/*
SetNID assigns the native identifier of this tag. A native identifier
cannot be changed once it was assigned.
*/
func (t *Tag) SetNID(id TagID) error {
	if current := t.NID(); current != NativeIdentifier && current != id {
		return NewError(ErrInvalidData,
			fmt.Sprintf("Native identifier of tag %v is immutable", current))
	} else if id == NativeIdentifier {
		return NewError(ErrInvalidData, "Invalid native identifier: 0")
	}

	t.SetAttr(NativeIdentifier, uint64(id))

	return nil
}

/*
GlobalID returns the global identifier of this tag.
*/
func (t *Tag) GlobalID() string {
	return t.StringAttr(TagGID)
}

/*
SetGlobalID sets the global identifier of this tag.
*/
func (t *Tag) SetGlobalID(gid string) {
	if gid == "" {
		t.SetAttr(TagGID, nil)
	} else {
		t.SetAttr(TagGID, gid)
	}
}

/*
Label returns the label of this tag in a given language.
*/
func (t *Tag) Label(lang string) string {
	return Localize(t.Attr(TagLabel), lang)
}

/*
Labels returns the labels of this tag in all languages.
*/
func (t *Tag) Labels() map[string]string {
	return t.languageStrings(TagLabel)
}

/*
SetLabel sets the label of this tag in a given language. An empty text
removes the label of the language.
*/
func (t *Tag) SetLabel(lang string, text string) {
	t.setLanguageString(TagLabel, lang, text)
}

/*
Description returns the description of this tag in a given language.
*/
func (t *Tag) Description(lang string) string {
	return Localize(t.Attr(TagDescription), lang)
}

/*
SetDescription sets the description of this tag in a given language.
*/
func (t *Tag) SetDescription(lang string, text string) {
	t.setLanguageString(TagDescription, lang, text)
}

/*
DataType returns the data type of this tag.
*/
func (t *Tag) DataType() string {
	return t.StringAttr(TagType)
}

/*
SetDataType sets the data type of this tag.
*/
func (t *Tag) SetDataType(dtype string) {
	if dtype == "" {
		t.SetAttr(TagType, nil)
	} else {
		t.SetAttr(TagType, dtype)
	}
}

/*
DataKinds returns the sorted data kinds of this tag.
*/
func (t *Tag) DataKinds() []string {
	kinds := t.stringList(TagKind)
	sort.Strings(kinds)
	return kinds
}

/*
HasDataKind checks if this tag has a given data kind.
*/
func (t *Tag) HasDataKind(kind string) bool {
	return stringutil.IndexOf(kind, t.stringList(TagKind)) != -1
}

/*
AddDataKind adds a data kind to this tag.
*/
func (t *Tag) AddDataKind(kind string) {
	if !t.HasDataKind(kind) {
		kinds := append(t.stringList(TagKind), kind)
		sort.Strings(kinds)
		t.setStringList(TagKind, kinds)
	}
}

/*
RemoveDataKind removes a data kind from this tag.
*/
func (t *Tag) RemoveDataKind(kind string) {
	var kinds []string

	for _, k := range t.stringList(TagKind) {
		if k != kind {
			kinds = append(kinds, k)
		}
	}

	t.setStringList(TagKind, kinds)
}

/*
Validate checks that this tag is complete and only uses known data types
and data kinds.
*/
func (t *Tag) Validate() error {
	if t.GlobalID() == "" {
		return NewError(ErrInvalidData, "Tag has no global identifier")
	} else if len(t.Labels()) == 0 {
		return NewError(ErrInvalidData, fmt.Sprintf("Tag %v has no label", t.GlobalID()))
	} else if stringutil.IndexOf(t.DataType(), DataTypes) == -1 {
		return NewError(ErrInvalidData, fmt.Sprintf("Tag %v has unknown data type: %v",
			t.GlobalID(), t.DataType()))
	}

	for _, k := range t.stringList(TagKind) {
		if stringutil.IndexOf(k, DataKinds) == -1 {
			return NewError(ErrInvalidData, fmt.Sprintf("Tag %v has unknown data kind: %v",
				t.GlobalID(), k))
		}
	}

	return nil
}

/*
Localize replaces all per-language fields of this tag with their text in
a given language.
*/
func (t *Tag) Localize(lang string) {
	t.localizeAttr(TagLabel, lang)
	t.localizeAttr(TagDescription, lang)
}

/*
String returns a string representation of this tag.
*/
func (t *Tag) String() string {
	return t.Describe("Tag")
}
