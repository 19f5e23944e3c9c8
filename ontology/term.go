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
)

/*
Term is a vocabulary concept. The native identifier of a term is its
global identifier.
*/
type Term struct {
	*Record
}

/*
NewTerm creates a new Term instance.
*/
func NewTerm(resolver Resolver) *Term {
	return &Term{NewRecord(resolver)}
}

/*
NewTermFromMap creates a new Term instance from a plain document.
*/
func NewTermFromMap(resolver Resolver, data map[string]interface{}) *Term {
	return &Term{NewRecordFromMap(resolver, data)}
}

/*
Namespace returns the global identifier of the namespace of this term.
*/
func (t *Term) Namespace() string {
	return t.StringAttr(TagNamespace)
}

/*
SetNamespace sets the namespace of this term. The namespace can be given as
Term or as global identifier. An empty value removes the namespace.
*/
func (t *Term) SetNamespace(ns interface{}) error {
	var gid string

	switch val := ns.(type) {
	case nil:
	case *Term:
		if gid = val.GlobalID(); gid == "" {
			return NewError(ErrInvalidData, "Namespace term has no global identifier")
		}
	case string:
		gid = val
	case int, int64, uint64, float64:
		gid = fmt.Sprint(val)
	default:
		return NewError(ErrType, fmt.Sprintf("Namespace must be a term not %T", ns))
	}

	if gid == "" {
		t.SetAttr(TagNamespace, nil)
	} else {
		t.SetAttr(TagNamespace, gid)
	}

	t.updateGlobalID()

	return nil
}

/*
LocalID returns the local identifier of this term.
*/
func (t *Term) LocalID() string {
	return t.StringAttr(TagLID)
}

/*
SetLocalID sets the local identifier of this term.
*/
func (t *Term) SetLocalID(lid string) {
	if lid == "" {
		t.SetAttr(TagLID, nil)
	} else {
		t.SetAttr(TagLID, lid)
	}

	t.updateGlobalID()
}

/*
GlobalID returns the global identifier of this term.
*/
func (t *Term) GlobalID() string {
	lid := t.LocalID()

	if ns := t.Namespace(); ns != "" && lid != "" {
		return ns + TermSeparator + lid
	}

	return lid
}

/*
updateGlobalID recomputes the stored global identifier of this term.
*/
func (t *Term) updateGlobalID() {
	if gid := t.GlobalID(); gid != "" {
		t.SetAttr(NativeIdentifier, gid)
		t.SetAttr(TagGID, gid)
	} else {
		t.SetAttr(NativeIdentifier, nil)
		t.SetAttr(TagGID, nil)
	}
}

/*
Label returns the label of this term in a given language.
*/
func (t *Term) Label(lang string) string {
	return Localize(t.Attr(TagLabel), lang)
}

/*
Labels returns the labels of this term in all languages.
*/
func (t *Term) Labels() map[string]string {
	return t.languageStrings(TagLabel)
}

/*
SetLabel sets the label of this term in a given language.
*/
func (t *Term) SetLabel(lang string, text string) {
	t.setLanguageString(TagLabel, lang, text)
}

/*
Definition returns the definition of this term in a given language.
*/
func (t *Term) Definition(lang string) string {
	return Localize(t.Attr(TagDefinition), lang)
}

/*
SetDefinition sets the definition of this term in a given language.
*/
func (t *Term) SetDefinition(lang string, text string) {
	t.setLanguageString(TagDefinition, lang, text)
}

/*
Synonyms returns the sorted synonyms of this term.
*/
func (t *Term) Synonyms() []string {
	syn := t.stringList(TagSynonym)
	sort.Strings(syn)
	return syn
}

/*
AddSynonym adds a synonym to this term.
*/
func (t *Term) AddSynonym(synonym string) {
	syn := t.stringList(TagSynonym)

	if synonym != "" && stringutil.IndexOf(synonym, syn) == -1 {
		syn = append(syn, synonym)
		sort.Strings(syn)
		t.setStringList(TagSynonym, syn)
	}
}

/*
Validate checks that this term is complete.
*/
func (t *Term) Validate() error {
	if t.LocalID() == "" {
		return NewError(ErrInvalidData, "Term has no local identifier")
	} else if len(t.Labels()) == 0 {
		return NewError(ErrInvalidData, fmt.Sprintf("Term %v has no label", t.GlobalID()))
	}

	return nil
}

/*
Localize replaces all per-language fields of this term with their text in
a given language.
*/
func (t *Term) Localize(lang string) {
	t.localizeAttr(TagLabel, lang)
	t.localizeAttr(TagDefinition, lang)
}

/*
String returns a string representation of this term.
*/
func (t *Term) String() string {
	return t.Describe("Term")
}
