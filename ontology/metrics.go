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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	identifierLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ontograph",
		Subsystem: "identifiers",
		Name:      "lookups_total",
		Help:      "Total identifier cache lookups by namespace and result",
	}, []string{"namespace", "result"})

	identifierLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ontograph",
		Subsystem: "identifiers",
		Name:      "catalog_loads_total",
		Help:      "Total identifier cache initializations by outcome",
	}, []string{"outcome"})

	identifierRestores = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ontograph",
		Subsystem: "identifiers",
		Name:      "restores_total",
		Help:      "Total tags restored into the identifier cache after a miss",
	})
)

/*
countLookup records the result of an identifier cache lookup.
*/
func countLookup(namespace string, found bool) {
	if found {
		identifierLookups.WithLabelValues(namespace, "hit").Inc()
	} else {
		identifierLookups.WithLabelValues(namespace, "miss").Inc()
	}
}
