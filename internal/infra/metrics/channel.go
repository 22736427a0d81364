package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(channelReconnectsTotal, channelMessagesTotal) }

var channelReconnectsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "reage_channel_reconnects_total",
		Help: "Total number of push channel reconnect attempts.",
	},
)

var channelMessagesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reage_channel_messages_total",
		Help: "Inbound push messages, labeled by classification outcome.",
	},
	[]string{"outcome"}, // 'applied', 'dropped', 'malformed'
)

func IncChannelReconnect() { channelReconnectsTotal.Inc() }

func IncChannelMessage(outcome string) {
	channelMessagesTotal.WithLabelValues(norm(outcome)).Inc()
}
