/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package catalog loads ontology catalogs. A catalog is a YAML document which
lists tags, terms, nodes and edges:

	tags:
	  - gid: ":weight"
	    label: {en: Weight}
	    type: ":type:float"
	    kind: [":kind:quantitative"]
	terms:
	  - lid: fruit
	    label: {en: Fruit}
	  - namespace: fruit
	    lid: apple
	    label: {en: Apple, de: Apfel}
	nodes:
	  - key: fruit
	    term: fruit
	  - key: apple
	    term: "fruit:apple"
	edges:
	  - subject: apple
	    predicate: ":predicate:SUBCLASS-OF"
	    object: fruit

Node keys are only valid within a catalog. Edges refer to nodes either by
their catalog key or by a native node id. Entries are loaded in document
order. A failing entry does not stop the load, all errors are reported
together.
*/
package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"devt.de/krotik/common/errorutil"
	"devt.de/krotik/common/logutil"
	"github.com/milko/ontograph/graph"
	"github.com/milko/ontograph/graph/data"
	"github.com/milko/ontograph/ontology"
	"gopkg.in/yaml.v3"
)

/*
logger is the logger of the catalog loader
*/
var logger = logutil.GetLogger("ontograph.catalog")

/*
Catalog is the content of a catalog document.
*/
type Catalog struct {
	Tags  []TagEntry  `yaml:"tags"`
	Terms []TermEntry `yaml:"terms"`
	Nodes []NodeEntry `yaml:"nodes"`
	Edges []EdgeEntry `yaml:"edges"`
}

/*
TagEntry describes a tag.
*/
type TagEntry struct {
	GID         string            `yaml:"gid"`
	Label       map[string]string `yaml:"label"`
	Description map[string]string `yaml:"description"`
	Type        string            `yaml:"type"`
	Kind        []string          `yaml:"kind"`
}

/*
TermEntry describes a term.
*/
type TermEntry struct {
	Namespace  string            `yaml:"namespace"`
	LID        string            `yaml:"lid"`
	Label      map[string]string `yaml:"label"`
	Definition map[string]string `yaml:"definition"`
	Synonyms   []string          `yaml:"synonyms"`
}

/*
NodeEntry describes a node which references either a term or a tag.
*/
type NodeEntry struct {
	Key  string `yaml:"key"`
	Term string `yaml:"term"`
	Tag  string `yaml:"tag"`
}

/*
EdgeEntry describes an edge. Subject and object are node keys or native
node ids.
*/
type EdgeEntry struct {
	Subject   string `yaml:"subject"`
	Predicate string `yaml:"predicate"`
	Object    string `yaml:"object"`
}

/*
Result lists everything which was created by a load.
*/
type Result struct {
	Tags  []ontology.TagID  // Native ids of created tags
	Terms []string          // Global ids of created terms
	Nodes map[string]uint64 // Native ids of created nodes by catalog key
	Edges []string          // Keys of created edges
}

/*
String returns a summary of a load result.
*/
func (r *Result) String() string {
	return fmt.Sprintf("%v tags, %v terms, %v nodes, %v edges",
		len(r.Tags), len(r.Terms), len(r.Nodes), len(r.Edges))
}

/*
NodeKeys returns the catalog keys of all created nodes in alphabetical order.
*/
func (r *Result) NodeKeys() []string {
	keys := make([]string, 0, len(r.Nodes))
	for k := range r.Nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

/*
Parse reads a catalog document.
*/
func Parse(r io.Reader) (*Catalog, error) {
	var cat Catalog

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cat); err != nil && err != io.EOF {
		return nil, ontology.NewError(ontology.ErrInvalidData,
			fmt.Sprint("Could not parse catalog: ", err))
	}

	return &cat, nil
}

/*
Load reads a catalog document and stores its content. The builtin tags and
terms are written before the catalog content. Returns the created objects
and an errorutil.CompositeError if any entry could not be stored.
*/
func Load(ctx context.Context, onto *ontology.Ontology, gm *graph.Manager, r io.Reader) (*Result, error) {
	cat, err := Parse(r)
	if err != nil {
		return nil, err
	}

	if err := onto.Bootstrap(ctx); err != nil {
		return nil, err
	}

	return Store(ctx, onto, gm, cat)
}

/*
Store stores the content of a parsed catalog.
*/
func Store(ctx context.Context, onto *ontology.Ontology, gm *graph.Manager, cat *Catalog) (*Result, error) {
	res := &Result{Nodes: make(map[string]uint64)}
	errs := errorutil.NewCompositeError()

	for _, entry := range cat.Tags {
		if nid, err := storeTag(ctx, onto, entry); err != nil {
			errs.Add(fmt.Errorf("Tag %v: %w", entry.GID, err))
		} else {
			res.Tags = append(res.Tags, nid)
		}
	}

	for _, entry := range cat.Terms {
		if gid, err := storeTerm(ctx, onto, entry); err != nil {
			errs.Add(fmt.Errorf("Term %v: %w", entry.LID, err))
		} else {
			res.Terms = append(res.Terms, gid)
		}
	}

	for _, entry := range cat.Nodes {
		if _, ok := res.Nodes[entry.Key]; ok {
			errs.Add(fmt.Errorf("Node %v: Duplicate node key", entry.Key))
		} else if id, err := storeNode(ctx, gm, entry); err != nil {
			errs.Add(fmt.Errorf("Node %v: %w", entry.Key, err))
		} else {
			res.Nodes[entry.Key] = id
		}
	}

	for _, entry := range cat.Edges {
		if key, err := storeEdge(ctx, gm, res.Nodes, entry); err != nil {
			errs.Add(fmt.Errorf("Edge %v %v %v: %w", entry.Subject, entry.Predicate, entry.Object, err))
		} else {
			res.Edges = append(res.Edges, key)
		}
	}

	logger.Info(fmt.Sprintf("Loaded catalog into database %v: %v (%v errors)",
		onto.Database().Name(), res, len(errs.Errors)))

	if errs.HasErrors() {
		return res, errs
	}

	return res, nil
}

/*
storeTag stores a tag entry.
*/
func storeTag(ctx context.Context, onto *ontology.Ontology, entry TagEntry) (ontology.TagID, error) {
	tag := ontology.NewTag(onto.Identifiers())

	tag.SetGlobalID(entry.GID)
	tag.SetDataType(entry.Type)

	for lang, text := range entry.Label {
		tag.SetLabel(lang, text)
	}

	for lang, text := range entry.Description {
		tag.SetDescription(lang, text)
	}

	for _, kind := range entry.Kind {
		tag.AddDataKind(kind)
	}

	return onto.CommitTag(ctx, tag)
}

/*
storeTerm stores a term entry.
*/
func storeTerm(ctx context.Context, onto *ontology.Ontology, entry TermEntry) (string, error) {
	term := ontology.NewTerm(onto.Identifiers())

	if err := term.SetNamespace(entry.Namespace); err != nil {
		return "", err
	}

	term.SetLocalID(entry.LID)

	for lang, text := range entry.Label {
		term.SetLabel(lang, text)
	}

	for lang, text := range entry.Definition {
		term.SetDefinition(lang, text)
	}

	for _, synonym := range entry.Synonyms {
		term.AddSynonym(synonym)
	}

	return onto.CommitTerm(ctx, term)
}

/*
storeNode stores a node entry.
*/
func storeNode(ctx context.Context, gm *graph.Manager, entry NodeEntry) (uint64, error) {
	node := data.NewNode(gm.Ontology().Identifiers())

	var err error

	switch {
	case entry.Key == "":
		err = ontology.NewError(ontology.ErrInvalidData, "Node has no key")
	case entry.Term != "" && entry.Tag != "":
		err = ontology.NewError(ontology.ErrInvalidData, "Node can only reference a term or a tag")
	case entry.Tag != "":
		err = node.SetTag(entry.Tag)
	default:
		err = node.SetTerm(entry.Term)
	}

	if err != nil {
		return 0, err
	}

	return gm.StoreNode(ctx, node)
}

/*
storeEdge stores an edge entry.
*/
func storeEdge(ctx context.Context, gm *graph.Manager, nodes map[string]uint64, entry EdgeEntry) (string, error) {
	subject, err := nodeRef(nodes, entry.Subject)
	if err != nil {
		return "", err
	}

	object, err := nodeRef(nodes, entry.Object)
	if err != nil {
		return "", err
	}

	edge := data.NewEdge(gm.Ontology().Identifiers())

	if err = edge.SetSubject(subject); err == nil {
		if err = edge.SetPredicate(entry.Predicate); err == nil {
			err = edge.SetObject(object)
		}
	}

	if err != nil {
		return "", err
	}

	return gm.StoreEdge(ctx, edge)
}

/*
nodeRef resolves a node reference of an edge entry. Catalog keys take
precedence over native ids.
*/
func nodeRef(nodes map[string]uint64, ref string) (uint64, error) {
	if id, ok := nodes[ref]; ok {
		return id, nil
	}

	if id, err := strconv.ParseUint(ref, 10, 64); err == nil && id != 0 {
		return id, nil
	}

	return 0, ontology.NewError(ontology.ErrReferential, fmt.Sprint("Unknown node: ", ref))
}
