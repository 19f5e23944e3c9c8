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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"devt.de/krotik/common/logutil"
	"github.com/milko/ontograph/kvcache"
	"github.com/milko/ontograph/store"
	"golang.org/x/sync/singleflight"
)

/*
Key prefixes of the identifier cache
*/
const (
	PrefixTagID     = "tag.id:"  // Global identifier -> native identifier
	PrefixTagRecord = "tag.rec:" // Native identifier -> tag record
)

/*
CatalogMarker is the cache key which signals that the tag catalog was
already loaded into the cache.
*/
const CatalogMarker = "tag.catalog"

/*
logger of the ontology package
*/
var logger = logutil.GetLogger("ontograph.ontology")

/*
TagSource provides the tag catalog which is loaded into the identifier cache.
*/
type TagSource interface {

	/*
		Tags returns all tags of the catalog.
	*/
	Tags(ctx context.Context) ([]*Tag, error)
}

/*
TagLookup is a TagSource which can also look up single tags. The identifier
cache reads through to a TagLookup if an entry is missing from the backing
cache.
*/
type TagLookup interface {
	TagSource

	/*
		LookupTag returns a tag by its native identifier or nil.
	*/
	LookupTag(ctx context.Context, nid TagID) (*Tag, error)

	/*
		LookupTagByGlobalID returns a tag by its global identifier or nil.
	*/
	LookupTagByGlobalID(ctx context.Context, gid string) (*Tag, error)
}

/*
IdentifierCache maps global identifiers of tags to native identifiers and
native identifiers to tag records.
*/
type IdentifierCache struct {
	cache  kvcache.Cache      // Backing cache
	source TagSource          // Source of the tag catalog
	group  singleflight.Group // Group to de-duplicate initializations
	ready  atomic.Bool        // Flag if the cache was initialized
}

/*
NewIdentifierCache creates a new IdentifierCache instance. The source may be
nil in which case only the builtin tags are loaded. Entries which are missing
from the backing cache (e.g. evicted by a size limit) are restored from the
builtin tags or from the source if it is a TagLookup.
*/
func NewIdentifierCache(cache kvcache.Cache, source TagSource) *IdentifierCache {
	return &IdentifierCache{cache: cache, source: source}
}

/*
Init loads the builtin tags and the tag catalog into the backing cache. The
load is skipped if another process already populated the cache. Init is
called by all other operations and can safely be called more than once.
A failed initialization is retried by the next call.
*/
func (ic *IdentifierCache) Init(ctx context.Context) error {
	if ic.ready.Load() {
		return nil
	}

	_, err, _ := ic.group.Do("init", func() (interface{}, error) {
		if ic.ready.Load() {
			return nil, nil
		}

		err := ic.load(ctx)

		if err == nil {
			identifierLoads.WithLabelValues("ok").Inc()
			ic.ready.Store(true)
		} else {
			identifierLoads.WithLabelValues("error").Inc()
		}

		return nil, err
	})

	return err
}

/*
load loads all tags into the backing cache.
*/
func (ic *IdentifierCache) load(ctx context.Context) error {
	_, ok, err := ic.cache.Get(ctx, CatalogMarker)
	if err != nil {
		return err
	} else if ok {
		logger.Info("Identifier cache is already populated")
		return nil
	}

	tags := BuiltinTags(ic)

	if ic.source != nil {
		catalog, err := ic.source.Tags(ctx)
		if err != nil {
			return err
		}

		tags = append(tags, catalog...)
	}

	for _, t := range tags {
		if err := ic.putTag(ctx, t); err != nil {
			return err
		}
	}

	logger.Info(fmt.Sprintf("Loaded %v tags into identifier cache", len(tags)))

	return ic.cache.Set(ctx, CatalogMarker, []byte(strconv.Itoa(len(tags))), 0)
}

/*
Invalidate removes all entries from the backing cache. The next operation
reloads the tag catalog.
*/
func (ic *IdentifierCache) Invalidate(ctx context.Context) error {
	ic.ready.Store(false)
	return ic.cache.Flush(ctx)
}

/*
SetTag stores the identifier mapping and the record of a tag.
*/
func (ic *IdentifierCache) SetTag(ctx context.Context, tag *Tag) error {
	if err := ic.Init(ctx); err != nil {
		return err
	}
	return ic.putTag(ctx, tag)
}

/*
putTag stores the identifier mapping and the record of a tag.
*/
func (ic *IdentifierCache) putTag(ctx context.Context, tag *Tag) error {
	if err := ic.setTagID(ctx, tag.GlobalID(), tag.NID()); err != nil {
		return err
	}
	return ic.setTagRecord(ctx, tag)
}

/*
DeleteTag removes the identifier mapping and the record of a tag.
*/
func (ic *IdentifierCache) DeleteTag(ctx context.Context, tag *Tag) error {
	if _, err := ic.DeleteTagID(ctx, tag.GlobalID(), false); err != nil {
		return err
	}

	_, err := ic.DeleteTagRecord(ctx, tag.NID(), false)

	return err
}

/*
SetTagID stores the native identifier of a global identifier.
*/
func (ic *IdentifierCache) SetTagID(ctx context.Context, gid string, nid TagID) error {
	if err := ic.Init(ctx); err != nil {
		return err
	}
	return ic.setTagID(ctx, gid, nid)
}

/*
setTagID stores the native identifier of a global identifier.
*/
func (ic *IdentifierCache) setTagID(ctx context.Context, gid string, nid TagID) error {
	if gid == "" || nid == NativeIdentifier {
		return NewError(ErrInvalidData, fmt.Sprintf("Invalid tag identifiers: %q %v", gid, uint64(nid)))
	}

	return ic.cache.Set(ctx, PrefixTagID+gid, []byte(strconv.FormatUint(uint64(nid), 10)), 0)
}

/*
TagID returns the native identifier of a global identifier. Returns false if
the global identifier is unknown unless assert is set.
*/
func (ic *IdentifierCache) TagID(ctx context.Context, gid string, assert bool) (TagID, bool, error) {
	if err := ic.Init(ctx); err != nil {
		return 0, false, err
	}

	val, ok, err := ic.cache.Get(ctx, PrefixTagID+gid)

	countLookup("id", ok)

	if err != nil {
		return 0, false, err
	} else if !ok {
		tag, err := ic.restore(ctx, NativeIdentifier, gid)
		if err != nil {
			return 0, false, err
		} else if tag != nil {
			return tag.NID(), true, nil
		}

		if assert {
			return 0, false, NewError(ErrResolution, fmt.Sprint("Unknown tag:", gid))
		}
		return 0, false, nil
	}

	nid, err := strconv.ParseUint(string(val), 10, 64)
	if err != nil {
		return 0, false, NewError(ErrInvalidData, fmt.Sprintf("Corrupt identifier of tag %v: %v", gid, err))
	}

	return TagID(nid), true, nil
}

/*
DeleteTagID removes the native identifier of a global identifier.
*/
func (ic *IdentifierCache) DeleteTagID(ctx context.Context, gid string, assert bool) (kvcache.DeleteResult, error) {
	if err := ic.Init(ctx); err != nil {
		return kvcache.NotFound, err
	}

	res, err := ic.cache.Delete(ctx, PrefixTagID+gid)

	if err == nil && res == kvcache.NotFound && assert {
		err = NewError(ErrResolution, fmt.Sprint("Unknown tag:", gid))
	}

	return res, err
}

/*
SetTagRecord stores the record of a tag under its native identifier.
*/
func (ic *IdentifierCache) SetTagRecord(ctx context.Context, tag *Tag) error {
	if err := ic.Init(ctx); err != nil {
		return err
	}
	return ic.setTagRecord(ctx, tag)
}

/*
setTagRecord stores the record of a tag under its native identifier.
*/
func (ic *IdentifierCache) setTagRecord(ctx context.Context, tag *Tag) error {
	nid := tag.NID()

	if nid == NativeIdentifier {
		return NewError(ErrInvalidData, "Tag record has no native identifier")
	}

	data, err := json.Marshal(tag.Flatten())
	if err != nil {
		return NewError(ErrInvalidData, err.Error())
	}

	return ic.cache.Set(ctx, PrefixTagRecord+nid.String(), data, 0)
}

/*
TagRecord returns the record of a tag. Returns nil if the native identifier
is unknown unless assert is set.
*/
func (ic *IdentifierCache) TagRecord(ctx context.Context, nid TagID, assert bool) (*Tag, error) {
	if err := ic.Init(ctx); err != nil {
		return nil, err
	}

	val, ok, err := ic.cache.Get(ctx, PrefixTagRecord+nid.String())

	countLookup("record", ok)

	if err != nil {
		return nil, err
	} else if !ok {
		tag, err := ic.restore(ctx, nid, "")
		if err != nil || tag != nil {
			return tag, err
		}

		if assert {
			return nil, NewError(ErrResolution, fmt.Sprint("Unknown tag:", uint64(nid)))
		}
		return nil, nil
	}

	var data map[string]interface{}

	dec := json.NewDecoder(bytes.NewReader(val))
	dec.UseNumber()

	if err := dec.Decode(&data); err != nil {
		return nil, NewError(ErrInvalidData, fmt.Sprintf("Corrupt record of tag %v: %v", uint64(nid), err))
	}

	return NewTagFromMap(ic, data), nil
}

/*
restore looks up a tag which is missing from the backing cache either by its
native or by its global identifier. A found tag is written back into the
backing cache. Returns nil if the tag is unknown.
*/
func (ic *IdentifierCache) restore(ctx context.Context, nid TagID, gid string) (*Tag, error) {
	var tag *Tag
	var err error

	for _, t := range BuiltinTags(ic) {
		if (nid != NativeIdentifier && t.NID() == nid) || (gid != "" && t.GlobalID() == gid) {
			tag = t
			break
		}
	}

	if lookup, ok := ic.source.(TagLookup); tag == nil && ok {
		if nid != NativeIdentifier {
			tag, err = lookup.LookupTag(ctx, nid)
		} else if gid != "" {
			tag, err = lookup.LookupTagByGlobalID(ctx, gid)
		}
	}

	if err != nil || tag == nil {
		return nil, err
	}

	logger.Debug("Restoring tag ", tag.GlobalID(), " in identifier cache")

	identifierRestores.Inc()

	return tag, ic.putTag(ctx, tag)
}

/*
DeleteTagRecord removes the record of a tag.
*/
func (ic *IdentifierCache) DeleteTagRecord(ctx context.Context, nid TagID, assert bool) (kvcache.DeleteResult, error) {
	if err := ic.Init(ctx); err != nil {
		return kvcache.NotFound, err
	}

	res, err := ic.cache.Delete(ctx, PrefixTagRecord+nid.String())

	if err == nil && res == kvcache.NotFound && assert {
		err = NewError(ErrResolution, fmt.Sprint("Unknown tag:", uint64(nid)))
	}

	return res, err
}

/*
GlobalID returns the global identifier of a native identifier. The
NativeIdentifier resolves to FieldNativeIdentifier without a lookup.
*/
func (ic *IdentifierCache) GlobalID(ctx context.Context, nid TagID, assert bool) (string, bool, error) {
	if nid == NativeIdentifier {
		return FieldNativeIdentifier, true, nil
	}

	tag, err := ic.TagRecord(ctx, nid, assert)

	if err != nil || tag == nil {
		return "", false, err
	}

	return tag.GlobalID(), true, nil
}

/*
Resolve resolves a field key into a tag id. Numeric keys must name a known
tag, strings which are not numeric are treated as global identifiers.
*/
func (ic *IdentifierCache) Resolve(ctx context.Context, key interface{}) (TagID, bool, error) {
	var nid uint64

	switch k := key.(type) {
	case TagID:
		nid = uint64(k)

	case string:
		if k == FieldNativeIdentifier {
			return NativeIdentifier, true, nil
		}

		n, err := strconv.ParseUint(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return ic.TagID(ctx, k, false)
		}

		nid = n

	default:
		n, ok := store.AsUint64(key)
		if !ok {
			return 0, false, NewError(ErrType, fmt.Sprintf("Field key must be a tag identifier not %T", key))
		}

		nid = n
	}

	if nid == uint64(NativeIdentifier) {
		return NativeIdentifier, true, nil
	}

	tag, err := ic.TagRecord(ctx, TagID(nid), false)

	return TagID(nid), tag != nil, err
}
