package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Machine holds the collectors the vending machine reports to.
type Machine struct {
	Purchases       *prometheus.CounterVec
	ChangeDispensed *prometheus.CounterVec
	Inserted        *prometheus.CounterVec
	Refunds         prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Machine
)

// New creates the collectors and registers them with reg. A collector that is
// already registered is reused.
func New(namespace string, reg prometheus.Registerer) *Machine {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Machine{
		Purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Purchase attempts by outcome.",
		}, []string{"result"}),
		ChangeDispensed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_units_dispensed_total",
			Help:      "Coins and banknotes paid out as change.",
		}, []string{"category"}),
		Inserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_inserted_total",
			Help:      "Coins and banknotes inserted by customers.",
		}, []string{"category"}),
		Refunds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Sessions cancelled with money returned.",
		}),
	}

	m.Purchases = register(reg, m.Purchases)
	m.ChangeDispensed = register(reg, m.ChangeDispensed)
	m.Inserted = register(reg, m.Inserted)
	m.Refunds = register(reg, m.Refunds)
	return m
}

// Default returns collectors registered with the process-wide registry.
func Default() *Machine {
	defaultOnce.Do(func() {
		defaultMetrics = New("vending", prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
