package metrics

import "github.com/halcyonnet/halcyon-go/module"

// NoopCollector discards all metrics. Used in tests and by callers that do
// not run a metrics server.
type NoopCollector struct{}

var _ module.ConsensusMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector { return &NoopCollector{} }

func (nc *NoopCollector) OnQuorumMessageProcessed()        {}
func (nc *NoopCollector) OnTimeoutMessageProcessed()       {}
func (nc *NoopCollector) OnInvalidMessageDetected()        {}
func (nc *NoopCollector) OnQuorumCertificateConstructed()  {}
func (nc *NoopCollector) OnTimeoutCertificateConstructed() {}
