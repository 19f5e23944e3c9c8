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
	"context"
	"fmt"

	"github.com/milko/ontograph/kvcache"
	"github.com/milko/ontograph/store"
)

/*
Collection names and sequence selectors of the ontology
*/
const (
	CollectionTags  = "tags"
	CollectionTerms = "terms"
	SequenceTags    = "tags"
)

/*
Ontology provides access to the tags and terms of a database.
*/
type Ontology struct {
	db    store.Database   // Database which holds the ontology
	tags  store.Collection // Tag collection
	terms store.Collection // Term collection
	ids   *IdentifierCache // Identifier cache
}

/*
New creates a new Ontology instance on a given database. The identifier
cache uses the given cache as backend and the tag collection as catalog.
*/
func New(ctx context.Context, db store.Database, cache kvcache.Cache) (*Ontology, error) {
	tags, err := db.Collection(ctx, CollectionTags, true)
	if err != nil {
		return nil, err
	}

	terms, err := db.Collection(ctx, CollectionTerms, true)
	if err != nil {
		return nil, err
	}

	o := &Ontology{db: db, tags: tags, terms: terms}
	o.ids = NewIdentifierCache(cache, o)

	tags.SetHydrator(func(data map[string]interface{}) (interface{}, error) {
		return NewTagFromMap(o.ids, data), nil
	})
	terms.SetHydrator(func(data map[string]interface{}) (interface{}, error) {
		return NewTermFromMap(o.ids, data), nil
	})

	return o, nil
}

/*
Database returns the database of this ontology.
*/
func (o *Ontology) Database() store.Database {
	return o.db
}

/*
Identifiers returns the identifier cache of this ontology.
*/
func (o *Ontology) Identifiers() *IdentifierCache {
	return o.ids
}

/*
Bootstrap stores all builtin tags and terms. Existing builtin records are
replaced. The tag sequence is moved past the highest stored tag.
*/
func (o *Ontology) Bootstrap(ctx context.Context) error {
	for _, t := range BuiltinTags(o.ids) {
		if _, err := o.tags.Save(ctx, t); err != nil {
			return err
		}
	}

	for _, t := range BuiltinTerms(o.ids) {
		if _, err := o.terms.Save(ctx, t); err != nil {
			return err
		}
	}

	tags, err := o.Tags(ctx)
	if err != nil {
		return err
	}

	next := FirstUserTag
	for _, t := range tags {
		if t.NID() >= next {
			next = t.NID() + 1
		}
	}

	logger.Info(fmt.Sprintf("Bootstrapped ontology in database %v (next tag %v)",
		o.db.Name(), uint64(next)))

	return o.db.Sequencer().ResetSequence(ctx, SequenceTags, uint64(next))
}

/*
Tags returns all stored tags.
*/
func (o *Ontology) Tags(ctx context.Context) ([]*Tag, error) {
	cur, err := o.tags.MatchAll(ctx, nil, store.ResultObject, nil, "")
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	ret := make([]*Tag, 0, cur.Count())

	for cur.Next() {
		ret = append(ret, cur.Value().(*Tag))
	}

	return ret, cur.Err()
}

/*
CommitTag validates and stores a new tag. A native identifier is allocated
if the tag has none. Returns the native identifier of the tag.
*/
func (o *Ontology) CommitTag(ctx context.Context, tag *Tag) (TagID, error) {
	if err := tag.Validate(); err != nil {
		return 0, err
	}

	if _, ok, err := o.ids.TagID(ctx, tag.GlobalID(), false); err != nil {
		return 0, err
	} else if ok {
		return 0, NewError(ErrInvalidData, fmt.Sprint("Duplicate tag:", tag.GlobalID()))
	}

	if tag.NID() == NativeIdentifier {
		seq := o.db.Sequencer()

		nid, err := seq.NextSequence(ctx, SequenceTags)

		if err == nil && nid < uint64(FirstUserTag) {
			if err = seq.ResetSequence(ctx, SequenceTags, uint64(FirstUserTag)); err == nil {
				nid, err = seq.NextSequence(ctx, SequenceTags)
			}
		}

		if err != nil {
			return 0, err
		}

		tag.SetNID(TagID(nid))
	}

	if _, err := o.tags.Commit(ctx, tag); err != nil {
		return 0, err
	}

	return tag.NID(), o.ids.SetTag(ctx, tag)
}

/*
Tag returns a tag by its native identifier. Returns nil if the tag does not
exist unless assert is set.
*/
func (o *Ontology) Tag(ctx context.Context, nid TagID, assert bool) (*Tag, error) {
	res, err := o.tags.MatchOne(ctx, store.Criteria{store.Eq(store.FieldID, uint64(nid))},
		store.ResultObject, nil)

	if err != nil {
		return nil, err
	} else if res == nil {
		if assert {
			return nil, NewError(ErrResolution, fmt.Sprint("Unknown tag:", uint64(nid)))
		}
		return nil, nil
	}

	return res.(*Tag), nil
}

/*
LookupTag returns a stored tag by its native identifier or nil.
*/
func (o *Ontology) LookupTag(ctx context.Context, nid TagID) (*Tag, error) {
	return o.Tag(ctx, nid, false)
}

/*
LookupTagByGlobalID returns a stored tag by its global identifier or nil.
The tag collection is queried directly without the identifier cache.
*/
func (o *Ontology) LookupTagByGlobalID(ctx context.Context, gid string) (*Tag, error) {
	res, err := o.tags.MatchOne(ctx, store.Criteria{store.Eq(TagGID.String(), gid)},
		store.ResultObject, nil)

	if err != nil || res == nil {
		return nil, err
	}

	return res.(*Tag), nil
}

/*
TagByGlobalID returns a tag by its global identifier. Returns nil if the tag
does not exist unless assert is set.
*/
func (o *Ontology) TagByGlobalID(ctx context.Context, gid string, assert bool) (*Tag, error) {
	nid, ok, err := o.ids.TagID(ctx, gid, assert)

	if err != nil || !ok {
		return nil, err
	}

	return o.Tag(ctx, nid, assert)
}

/*
DeleteTag removes a tag and its identifier cache entries.
*/
func (o *Ontology) DeleteTag(ctx context.Context, nid TagID) (store.DeleteResult, error) {
	tag, err := o.Tag(ctx, nid, false)
	if err != nil || tag == nil {
		return store.NotFound, err
	}

	res, err := o.tags.Delete(ctx, uint64(nid))
	if err == nil {
		err = o.ids.DeleteTag(ctx, tag)
	}

	return res, err
}

/*
CommitTerm validates and stores a new term. The namespace of the term must
already exist. Returns the global identifier of the term.
*/
func (o *Ontology) CommitTerm(ctx context.Context, term *Term) (string, error) {
	if err := term.Validate(); err != nil {
		return "", err
	}

	if ns := term.Namespace(); ns != "" {
		if res, err := o.Term(ctx, ns, false); err != nil {
			return "", err
		} else if res == nil {
			return "", NewError(ErrReferential, fmt.Sprint("Unknown namespace:", ns))
		}
	}

	gid := term.GlobalID()

	if res, err := o.Term(ctx, gid, false); err != nil {
		return "", err
	} else if res != nil {
		return "", NewError(ErrInvalidData, fmt.Sprint("Duplicate term:", gid))
	}

	if _, err := o.terms.Commit(ctx, term); err != nil {
		return "", err
	}

	return gid, nil
}

/*
Term returns a term by its global identifier. Returns nil if the term does
not exist unless assert is set.
*/
func (o *Ontology) Term(ctx context.Context, gid string, assert bool) (*Term, error) {
	res, err := o.terms.MatchOne(ctx, store.Criteria{store.Eq(store.FieldID, gid)},
		store.ResultObject, nil)

	if err != nil {
		return nil, err
	} else if res == nil {
		if assert {
			return nil, NewError(ErrResolution, fmt.Sprint("Unknown term:", gid))
		}
		return nil, nil
	}

	return res.(*Term), nil
}

/*
DeleteTerm removes a term.
*/
func (o *Ontology) DeleteTerm(ctx context.Context, gid string) (store.DeleteResult, error) {
	return o.terms.Delete(ctx, gid)
}
