/*
 * ontograph
 *
 * Copyright 2026 The ontograph Authors. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/milko/ontograph/graph/data"
	"github.com/milko/ontograph/ontology"
	"github.com/milko/ontograph/store"
)

/*
graphRulesManager data structure
*/
type graphRulesManager struct {
	gm       *Manager                // Manager which provides events
	rules    map[string]Rule         // Map of graph rules
	eventMap map[int]map[string]Rule // Map of events to graph rules
}

/*
Rule models a graph rule.
*/
type Rule interface {

	/*
	   Name returns the name of the rule.
	*/
	Name() string

	/*
		Handles returns a list of events which are handled by this rule.
	*/
	Handles() []int

	/*
		Handle handles an event. A rule which returns ErrEventHandled
		prevents the default operation.
	*/
	Handle(ctx context.Context, gm *Manager, event int, data ...interface{}) error
}

/*
graphEvent main event handler which receives all graph related events.
*/
func (gr *graphRulesManager) graphEvent(ctx context.Context, event int, data ...interface{}) error {
	var errs []error
	var errors []string

	rules, ok := gr.eventMap[event]

	handled := false // Flag to return a special handled error if no other error occured

	if ok {

		// Rules are called in name order

		names := make([]string, 0, len(rules))
		for name := range rules {
			names = append(names, name)
		}
		sort.Strings(names)

		// Create a Manager clone which can be used by the rules without
		// running into the lock of the calling operation

		gmclone := gr.cloneManager()

		for _, name := range names {

			if err := rules[name].Handle(ctx, gmclone, event, data...); err != nil {
				if err == ErrEventHandled {
					handled = true
				} else {
					errs = append(errs, err)
					errors = append(errors, err.Error())
				}
			}
		}
	}

	if errors != nil {
		return &Error{Type: ErrRule, Detail: strings.Join(errors, ";"), Causes: errs}
	}

	if handled {
		return ErrEventHandled
	}

	return nil
}

/*
cloneManager clones the manager and inserts a new RWMutex.
*/
func (gr *graphRulesManager) cloneManager() *Manager {
	return &Manager{gr.gm.onto, gr.gm.gs, gr, &sync.RWMutex{}}
}

/*
SetGraphRule sets a GraphRule.
*/
func (gr *graphRulesManager) SetGraphRule(rule Rule) {
	gr.rules[rule.Name()] = rule

	for _, handledEvent := range rule.Handles() {

		rules, ok := gr.eventMap[handledEvent]
		if !ok {
			rules = make(map[string]Rule)
			gr.eventMap[handledEvent] = rules
		}

		rules[rule.Name()] = rule
	}
}

/*
GraphRules returns a list of all available graph rules.
*/
func (gr *graphRulesManager) GraphRules() []string {
	ret := make([]string, 0, len(gr.rules))

	for rule := range gr.rules {
		ret = append(ret, rule)
	}

	sort.StringSlice(ret).Sort()

	return ret
}

// System rule SystemRuleCheckReferences
// =====================================

/*
SystemRuleCheckReferences is a system rule which makes sure that stored
nodes and edges only reference existing objects. A node must reference an
existing term or tag. An edge must have an existing term as predicate and
must connect existing nodes.
*/
type SystemRuleCheckReferences struct {
}

/*
Name returns the name of the rule.
*/
func (r *SystemRuleCheckReferences) Name() string {
	return "system.checkreferences"
}

/*
Handles returns a list of events which are handled by this rule.
*/
func (r *SystemRuleCheckReferences) Handles() []int {
	return []int{EventNodeStore, EventEdgeStore}
}

/*
Handle handles an event.
*/
func (r *SystemRuleCheckReferences) Handle(ctx context.Context, gm *Manager, event int, ed ...interface{}) error {
	onto := gm.Ontology()

	if event == EventNodeStore {
		node := ed[0].(*data.Node)
		ref := node.Reference()

		switch ref.Kind {
		case data.RefTerm:
			if term, err := onto.Term(ctx, ref.ID, false); err != nil || term != nil {
				return err
			}
		case data.RefTag:
			if tag, err := onto.TagByGlobalID(ctx, ref.ID, false); err != nil || tag != nil {
				return err
			}
		default:
			return ontology.NewError(ontology.ErrInvalidData, "Node has no reference")
		}

		return ontology.NewError(ontology.ErrReferential, fmt.Sprint("Node references unknown ", ref))
	}

	edge := ed[0].(*data.Edge)

	if term, err := onto.Term(ctx, edge.Predicate(), false); err != nil {
		return err
	} else if term == nil {
		return ontology.NewError(ontology.ErrReferential,
			fmt.Sprint("Edge predicate is not a known term: ", edge.Predicate()))
	}

	for _, id := range []uint64{edge.Subject(), edge.Object()} {
		if props, err := gm.gs.Vertex(ctx, id, false); err != nil {
			return err
		} else if props == nil {
			return ontology.NewError(ontology.ErrReferential,
				fmt.Sprint("Edge references unknown node: ", id))
		}
	}

	return nil
}

// System rule SystemRuleProtectNodeEdges
// ======================================

/*
SystemRuleProtectNodeEdges is a system rule which prevents the removal of
nodes which are still connected to other nodes.
*/
type SystemRuleProtectNodeEdges struct {
}

/*
Name returns the name of the rule.
*/
func (r *SystemRuleProtectNodeEdges) Name() string {
	return "system.protectnodeedges"
}

/*
Handles returns a list of events which are handled by this rule.
*/
func (r *SystemRuleProtectNodeEdges) Handles() []int {
	return []int{EventNodeDelete}
}

/*
Handle handles an event.
*/
func (r *SystemRuleProtectNodeEdges) Handle(ctx context.Context, gm *Manager, event int, ed ...interface{}) error {
	node := ed[0].(*data.Node)

	c, err := gm.gs.VertexEdges(ctx, node.ID(), nil, store.DirAll)
	if err != nil {
		return err
	}
	defer c.Close()

	if count := c.Count(); count > 0 {
		return ontology.NewError(ontology.ErrReferential,
			fmt.Sprintf("Node %v is still connected by %v edges", node.ID(), count))
	}

	return nil
}
