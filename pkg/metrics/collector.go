package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uc-client/pkg/logging"
	"github.com/uc-client/pkg/ucclient"
)

// Collector exports the lifecycle of a handle holder as Prometheus metrics.
type Collector struct {
	holder   *ucclient.Holder
	clientID string

	// Info metric (always 1)
	info *prometheus.Desc

	handlePresent    *prometheus.Desc
	handleCreations  *prometheus.Desc
	handleConfigures *prometheus.Desc
	handleDestroys   *prometheus.Desc
	endpointInfo     *prometheus.Desc

	// Counters (protected by mutex)
	mu         sync.RWMutex
	creations  float64
	configures float64
	destroys   float64
}

var (
	defaultOnce      sync.Once
	defaultCollector *Collector
)

// Default returns the collector bound to the process-wide holder, adding its
// hooks on first use. Hooks already on the holder keep firing.
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultCollector = Instrument(ucclient.Default())
	})
	return defaultCollector
}

// Instrument creates a collector for h and chains its lifecycle hooks after
// any already set on h.
func Instrument(h *ucclient.Holder) *Collector {
	c := NewCollector(h)
	h.AddHooks(c.Hooks())
	return c
}

// NewCollector creates a new metrics collector reading state from h
func NewCollector(h *ucclient.Holder) *Collector {
	labels := []string{"client"}
	return &Collector{
		holder:   h,
		clientID: logging.GetClientID(),
		info: prometheus.NewDesc(
			"uc_client_info",
			"Universal Controller client process info metric (always 1)",
			labels,
			nil,
		),
		handlePresent: prometheus.NewDesc(
			"uc_client_handle_present",
			"Whether a controller handle is currently installed (1=present, 0=absent)",
			labels,
			nil,
		),
		handleCreations: prometheus.NewDesc(
			"uc_client_handle_creations_total",
			"Total number of controller handles constructed",
			labels,
			nil,
		),
		handleConfigures: prometheus.NewDesc(
			"uc_client_handle_configures_total",
			"Total number of configure calls applied to the installed handle",
			labels,
			nil,
		),
		handleDestroys: prometheus.NewDesc(
			"uc_client_handle_destroys_total",
			"Total number of handles torn down",
			labels,
			nil,
		),
		endpointInfo: prometheus.NewDesc(
			"uc_client_endpoint_info",
			"Endpoint stored in the installed handle (always 1, absent when no handle is installed)",
			[]string{"client", "remote_addr", "remote_port", "local_port"},
			nil,
		),
	}
}

// Hooks returns lifecycle hooks that update the collector counters.
func (c *Collector) Hooks() ucclient.Hooks {
	return ucclient.Hooks{
		OnCreate: func(*ucclient.Client) {
			c.mu.Lock()
			c.creations++
			c.mu.Unlock()
		},
		OnConfigure: func(*ucclient.Client, ucclient.Endpoint) {
			c.mu.Lock()
			c.configures++
			c.mu.Unlock()
		},
		OnDestroy: func(*ucclient.Client) {
			c.mu.Lock()
			c.destroys++
			c.mu.Unlock()
		},
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.info
	ch <- c.handlePresent
	ch <- c.handleCreations
	ch <- c.handleConfigures
	ch <- c.handleDestroys
	ch <- c.endpointInfo
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, c.clientID)

	current := c.holder.Current()
	present := 0.0
	if current != nil {
		present = 1
	}
	ch <- prometheus.MustNewConstMetric(c.handlePresent, prometheus.GaugeValue, present, c.clientID)

	c.mu.RLock()
	creations, configures, destroys := c.creations, c.configures, c.destroys
	c.mu.RUnlock()

	ch <- prometheus.MustNewConstMetric(c.handleCreations, prometheus.CounterValue, creations, c.clientID)
	ch <- prometheus.MustNewConstMetric(c.handleConfigures, prometheus.CounterValue, configures, c.clientID)
	ch <- prometheus.MustNewConstMetric(c.handleDestroys, prometheus.CounterValue, destroys, c.clientID)

	if current != nil {
		ep := current.Endpoint()
		ch <- prometheus.MustNewConstMetric(c.endpointInfo, prometheus.GaugeValue, 1,
			c.clientID, ep.RemoteAddr, strconv.Itoa(ep.RemotePort), strconv.Itoa(ep.LocalPort))
	}
}
