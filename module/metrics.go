// Package module defines the interfaces between the consensus core and its
// supporting infrastructure.
package module

// ConsensusMetrics exposes the counters the certificate-formation layer
// reports into.
type ConsensusMetrics interface {
	// OnQuorumMessageProcessed is called for every quorum vote accepted by a
	// vote collector.
	OnQuorumMessageProcessed()

	// OnTimeoutMessageProcessed is called for every timeout vote accepted by
	// a timeout collector.
	OnTimeoutMessageProcessed()

	// OnInvalidMessageDetected is called for every vote rejected due to an
	// invalid signature or mismatched content.
	OnInvalidMessageDetected()

	// OnQuorumCertificateConstructed is called when a collector assembles a
	// quorum certificate.
	OnQuorumCertificateConstructed()

	// OnTimeoutCertificateConstructed is called when a collector assembles a
	// timeout certificate.
	OnTimeoutCertificateConstructed()
}
