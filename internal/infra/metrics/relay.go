package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(relayWebhooksTotal, relayPushedTotal, relayClients) }

var relayWebhooksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reage_relay_webhooks_total",
		Help: "Webhook callbacks accepted by the relay, labeled by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'bad_request'
)

var relayPushedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "reage_relay_messages_pushed_total",
		Help: "Messages fanned out to connected websocket clients.",
	},
)

var relayClients = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "reage_relay_clients",
		Help: "Currently connected websocket clients.",
	},
)

func IncRelayWebhook(outcome string) {
	relayWebhooksTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddRelayPushed(n int) { relayPushedTotal.Add(float64(n)) }

func SetRelayClients(n int) { relayClients.Set(float64(n)) }
