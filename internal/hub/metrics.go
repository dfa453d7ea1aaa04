package hub

import "github.com/prometheus/client_golang/prometheus"

var (
	connectionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connections_open",
			Help: "Number of live websocket connections",
		},
	)

	eventsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_events_delivered_total",
			Help: "Number of events pushed to connections, by event type",
		},
		[]string{"type"},
	)

	commandsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_commands_total",
			Help: "Number of inbound socket commands, by command type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(connectionsOpen)
	prometheus.MustRegister(eventsDelivered)
	prometheus.MustRegister(commandsHandled)
}
