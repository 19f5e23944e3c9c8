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

import "strconv"

/*
TagID is the native identifier of a tag.
*/
type TagID uint64

/*
NativeIdentifier is the tag id which denotes the primary key field of a record.
*/
const NativeIdentifier TagID = 0

/*
String returns the field key of a tag id.
*/
func (id TagID) String() string {
	if id == NativeIdentifier {
		return FieldNativeIdentifier
	}
	return strconv.FormatUint(uint64(id), 10)
}

/*
FieldNativeIdentifier is the field key of the primary key of a record.
*/
const FieldNativeIdentifier = "_id"

/*
TermSeparator separates the namespace and the local identifier of a term.
*/
const TermSeparator = ":"

/*
Builtin tags
*/
const (
	TagGID         TagID = iota + 1 // Global identifier
	TagLabel                        // Label (per language)
	TagDefinition                   // Definition (per language)
	TagDescription                  // Description (per language)
	TagType                         // Data type
	TagKind                         // Data kinds
	TagNamespace                    // Term namespace
	TagLID                          // Term local identifier
	TagTerm                         // Term reference of a node
	TagTag                          // Tag reference of a node
	TagSubject                      // Subject of an edge
	TagPredicate                    // Predicate of an edge
	TagObject                       // Object of an edge
	TagSynonym                      // Synonyms of a term
	FirstUserTag                    // First id which is available for user tags
)

/*
Builtin namespaces
*/
const (
	NamespacePredicate = ":predicate"
	NamespaceType      = ":type"
	NamespaceKind      = ":kind"
)

/*
Builtin predicates
*/
const (
	PredicateSubclassOf = NamespacePredicate + TermSeparator + "SUBCLASS-OF"
	PredicateEnumOf     = NamespacePredicate + TermSeparator + "ENUM-OF"
	PredicatePropertyOf = NamespacePredicate + TermSeparator + "PROPERTY-OF"
)

/*
Data types
*/
const (
	TypeString          = NamespaceType + TermSeparator + "string"
	TypeInt             = NamespaceType + TermSeparator + "int"
	TypeFloat           = NamespaceType + TermSeparator + "float"
	TypeBool            = NamespaceType + TermSeparator + "bool"
	TypeLanguageStrings = NamespaceType + TermSeparator + "language-strings"
	TypeEnum            = NamespaceType + TermSeparator + "enum"
	TypeSet             = NamespaceType + TermSeparator + "set"
	TypeStruct          = NamespaceType + TermSeparator + "struct"
	TypeTermRef         = NamespaceType + TermSeparator + "term-ref"
	TypeTagRef          = NamespaceType + TermSeparator + "tag-ref"
	TypeNodeRef         = NamespaceType + TermSeparator + "node-ref"
	TypeDate            = NamespaceType + TermSeparator + "date"
)

/*
Data kinds
*/
const (
	KindList         = NamespaceKind + TermSeparator + "list"
	KindRequired     = NamespaceKind + TermSeparator + "required"
	KindIndexed      = NamespaceKind + TermSeparator + "indexed"
	KindDiscrete     = NamespaceKind + TermSeparator + "discrete"
	KindContinuous   = NamespaceKind + TermSeparator + "continuous"
	KindQuantitative = NamespaceKind + TermSeparator + "quantitative"
	KindCategorical  = NamespaceKind + TermSeparator + "categorical"
)

/*
DataTypes is the list of all known data types.
*/
var DataTypes = []string{TypeString, TypeInt, TypeFloat, TypeBool,
	TypeLanguageStrings, TypeEnum, TypeSet, TypeStruct, TypeTermRef,
	TypeTagRef, TypeNodeRef, TypeDate}

/*
DataKinds is the list of all known data kinds.
*/
var DataKinds = []string{KindList, KindRequired, KindIndexed, KindDiscrete,
	KindContinuous, KindQuantitative, KindCategorical}

/*
Predicates is the list of all builtin predicates.
*/
var Predicates = []string{PredicateSubclassOf, PredicateEnumOf, PredicatePropertyOf}

/*
builtinTag describes a builtin tag.
*/
type builtinTag struct {
	id    TagID
	gid   string
	dtype string
	kinds []string
	label string
}

/*
builtinTags contains the definitions of all builtin tags.
*/
var builtinTags = []builtinTag{
	{TagGID, ":gid", TypeString, []string{KindRequired, KindIndexed}, "Global identifier"},
	{TagLabel, ":label", TypeLanguageStrings, []string{KindRequired}, "Label"},
	{TagDefinition, ":definition", TypeLanguageStrings, nil, "Definition"},
	{TagDescription, ":description", TypeLanguageStrings, nil, "Description"},
	{TagType, ":type", TypeString, []string{KindRequired, KindCategorical}, "Data type"},
	{TagKind, ":kind", TypeSet, []string{KindList, KindCategorical}, "Data kind"},
	{TagNamespace, ":namespace", TypeTermRef, []string{KindIndexed}, "Namespace"},
	{TagLID, ":lid", TypeString, []string{KindRequired}, "Local identifier"},
	{TagTerm, ":term", TypeTermRef, []string{KindIndexed}, "Term reference"},
	{TagTag, ":tag", TypeTagRef, []string{KindIndexed}, "Tag reference"},
	{TagSubject, ":subject", TypeNodeRef, []string{KindRequired, KindIndexed}, "Subject"},
	{TagPredicate, ":predicate", TypeTermRef, []string{KindRequired, KindIndexed}, "Predicate"},
	{TagObject, ":object", TypeNodeRef, []string{KindRequired, KindIndexed}, "Object"},
	{TagSynonym, ":synonym", TypeString, []string{KindList}, "Synonym"},
}

/*
BuiltinTags returns new records of all builtin tags.
*/
func BuiltinTags(resolver Resolver) []*Tag {
	ret := make([]*Tag, 0, len(builtinTags))

	for _, bt := range builtinTags {
		t := NewTag(resolver)

		t.SetNID(bt.id)
		t.SetGlobalID(bt.gid)
		t.SetDataType(bt.dtype)
		t.SetLabel(DefaultLanguage, bt.label)

		for _, k := range bt.kinds {
			t.AddDataKind(k)
		}

		ret = append(ret, t)
	}

	return ret
}

/*
BuiltinTerms returns new records of all builtin terms. Namespaces come before
the terms which they contain.
*/
func BuiltinTerms(resolver Resolver) []*Term {
	var ret []*Term

	newTerm := func(namespace, lid, label string) {
		t := NewTerm(resolver)
		t.SetNamespace(namespace)
		t.SetLocalID(lid)
		t.SetLabel(DefaultLanguage, label)
		ret = append(ret, t)
	}

	newTerm("", NamespacePredicate, "Predicates")
	newTerm("", NamespaceType, "Data types")
	newTerm("", NamespaceKind, "Data kinds")

	for _, gid := range Predicates {
		newTerm(NamespacePredicate, gid[len(NamespacePredicate)+1:], gid[len(NamespacePredicate)+1:])
	}

	for _, gid := range DataTypes {
		newTerm(NamespaceType, gid[len(NamespaceType)+1:], gid[len(NamespaceType)+1:])
	}

	for _, gid := range DataKinds {
		newTerm(NamespaceKind, gid[len(NamespaceKind)+1:], gid[len(NamespaceKind)+1:])
	}

	return ret
}
