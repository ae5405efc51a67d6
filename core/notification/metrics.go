package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sendBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academicflow_send_batches_total",
		Help: "Notification send batches dispatched.",
	})
	emailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academicflow_emails_sent_total",
		Help: "Emails delivered to the gateway successfully.",
	})
	emailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academicflow_emails_failed_total",
		Help: "Per-recipient email delivery failures.",
	})
	channelFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academicflow_channel_failures_total",
		Help: "Send batches lost to transport-level gateway failures.",
	})
)
