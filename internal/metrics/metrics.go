// Package metrics collects FamilySync counters and gauges on a private
// Prometheus registry.
//
// All methods are safe on a nil *Metrics, so components can run without
// metrics wired in.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
)

// Metric names.
const (
	MetricOperationsTotal     = "familysync_operations_total"
	MetricUnlockAttemptsTotal = "familysync_unlock_attempts_total"
	MetricStorageWritesTotal  = "familysync_storage_writes_total"
	MetricItems               = "familysync_items"
	MetricMembers             = "familysync_members"
)

// Metrics holds the collectors.
type Metrics struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	unlockAttempts *prometheus.CounterVec
	storageWrites  *prometheus.CounterVec
	items          *prometheus.GaugeVec
	members        prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricOperationsTotal,
			Help: "Core operations by name and result kind.",
		}, []string{"op", "result"}),
		unlockAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricUnlockAttemptsTotal,
			Help: "Private access unlock attempts by result kind.",
		}, []string{"result"}),
		storageWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStorageWritesTotal,
			Help: "Persistent store writes by key and result.",
		}, []string{"key", "result"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricItems,
			Help: "Items in the catalog by visibility.",
		}, []string{"visibility"}),
		members: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricMembers,
			Help: "Registered members.",
		}),
	}
	m.registry.MustRegister(m.operations, m.unlockAttempts, m.storageWrites, m.items, m.members)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// ObserveOperation counts one core operation.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, Result(err)).Inc()
}

// ObserveUnlock counts one unlock attempt.
func (m *Metrics) ObserveUnlock(err error) {
	if m == nil {
		return
	}
	m.unlockAttempts.WithLabelValues(Result(err)).Inc()
}

// ObserveWrite counts one storage write.
func (m *Metrics) ObserveWrite(key string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storageWrites.WithLabelValues(key, result).Inc()
}

// SetInventory records the current collection sizes.
func (m *Metrics) SetInventory(members, family, private int) {
	if m == nil {
		return
	}
	m.members.Set(float64(members))
	m.items.WithLabelValues(string(models.VisibilityFamily)).Set(float64(family))
	m.items.WithLabelValues(string(models.VisibilityPrivate)).Set(float64(private))
}

// WriteToTextfile writes the current values in the text exposition format,
// for collection by a node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return errors.New("metrics are not enabled")
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// Result labels err by kind: "ok", a lowercased error kind, or "error".
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	switch models.KindOf(err) {
	case models.KindValidation:
		return "validation"
	case models.KindAuth:
		return "auth"
	case models.KindPermission:
		return "permission"
	case models.KindStorage:
		return "storage"
	case models.KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}
