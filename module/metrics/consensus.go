// Package metrics implements the module metrics interfaces on prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/halcyonnet/halcyon-go/module"
)

const namespace = "halcyon"

// ConsensusCollector reports certificate-formation counters to prometheus.
type ConsensusCollector struct {
	quorumMessagesProcessed  prometheus.Counter
	timeoutMessagesProcessed prometheus.Counter
	invalidMessagesDetected  prometheus.Counter
	quorumCertificates       prometheus.Counter
	timeoutCertificates      prometheus.Counter
}

var _ module.ConsensusMetrics = (*ConsensusCollector)(nil)

// NewConsensusCollector creates the collector and registers its counters
// with the given registerer.
func NewConsensusCollector(registerer prometheus.Registerer) *ConsensusCollector {
	cc := &ConsensusCollector{
		quorumMessagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consensus",
			Name:      "quorum_messages_processed_total",
			Help:      "number of quorum votes accepted by vote collectors",
		}),
		timeoutMessagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consensus",
			Name:      "timeout_messages_processed_total",
			Help:      "number of timeout votes accepted by timeout collectors",
		}),
		invalidMessagesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consensus",
			Name:      "invalid_messages_detected_total",
			Help:      "number of votes rejected due to invalid signatures or content",
		}),
		quorumCertificates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consensus",
			Name:      "quorum_certificates_constructed_total",
			Help:      "number of quorum certificates assembled",
		}),
		timeoutCertificates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consensus",
			Name:      "timeout_certificates_constructed_total",
			Help:      "number of timeout certificates assembled",
		}),
	}
	registerer.MustRegister(
		cc.quorumMessagesProcessed,
		cc.timeoutMessagesProcessed,
		cc.invalidMessagesDetected,
		cc.quorumCertificates,
		cc.timeoutCertificates,
	)
	return cc
}

func (cc *ConsensusCollector) OnQuorumMessageProcessed() {
	cc.quorumMessagesProcessed.Inc()
}

func (cc *ConsensusCollector) OnTimeoutMessageProcessed() {
	cc.timeoutMessagesProcessed.Inc()
}

func (cc *ConsensusCollector) OnInvalidMessageDetected() {
	cc.invalidMessagesDetected.Inc()
}

func (cc *ConsensusCollector) OnQuorumCertificateConstructed() {
	cc.quorumCertificates.Inc()
}

func (cc *ConsensusCollector) OnTimeoutCertificateConstructed() {
	cc.timeoutCertificates.Inc()
}
