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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	traversalQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ontograph",
		Subsystem: "traversal",
		Name:      "queries_total",
		Help:      "Total graph store queries issued by traversal caches by direction and outcome",
	}, []string{"direction", "outcome"})

	traversalLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ontograph",
		Subsystem: "traversal",
		Name:      "lookups_total",
		Help:      "Total neighbour lookups of traversal caches by direction and result",
	}, []string{"direction", "result"})

	traversalObjects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ontograph",
		Subsystem: "traversal",
		Name:      "cached_objects_total",
		Help:      "Total objects cached by traversal caches by kind",
	}, []string{"kind"})
)
