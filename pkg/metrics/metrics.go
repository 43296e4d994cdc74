// Package metrics define los contadores Prometheus del motor. Se registran en
// el registry por defecto, que main expone en /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MovementsApplied cuenta los movimientos de stock aplicados, por tipo.
var MovementsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inventario_movements_applied_total",
	Help: "Movimientos de stock aplicados, por tipo.",
}, []string{"kind"})

// ReconciliationVariances cuenta las conciliaciones que terminaron con
// varianza distinta de cero.
var ReconciliationVariances = promauto.NewCounter(prometheus.CounterOpts{
	Name: "inventario_reconciliations_variance_total",
	Help: "Conciliaciones con varianza distinta de cero.",
})
