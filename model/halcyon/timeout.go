package halcyon

import "encoding/binary"

// TimeoutSignatureMessage is the canonical byte domain a finalizer signs to
// give up on a round, attesting the round and epoch of the highest quorum
// certificate it knows. Domain separation by genesis hash, as for quorum
// votes.
type TimeoutSignatureMessage struct {
	Genesis Hash
	Round   Round
	QCRound Round
	QCEpoch Epoch
}

// Bytes returns the canonical byte form of the message.
func (m TimeoutSignatureMessage) Bytes() []byte {
	msg := make([]byte, 0, HashLen+24)
	msg = append(msg, m.Genesis[:]...)
	msg = binary.BigEndian.AppendUint64(msg, uint64(m.Round))
	msg = binary.BigEndian.AppendUint64(msg, uint64(m.QCRound))
	msg = binary.BigEndian.AppendUint64(msg, uint64(m.QCEpoch))
	return msg
}

// TimeoutMessageBody is the content of a finalizer's timeout vote: the
// highest QC it knows, the round it is giving up on, and its BLS signature
// on the corresponding TimeoutSignatureMessage.
//
// The epoch is defined to equal the embedded QC's epoch. This derivation is
// the documented protocol contract; see NewTimeoutMessageBody.
type TimeoutMessageBody struct {
	Finalizer          FinalizerIndex
	Round              Round
	Epoch              Epoch
	QuorumCertificate  QuorumCertificate
	AggregateSignature TimeoutSignature
}

// UntrustedTimeoutMessageBody is an input-only representation of a
// TimeoutMessageBody, used for construction with named fields.
type UntrustedTimeoutMessageBody TimeoutMessageBody

// NewTimeoutMessageBody validates the untrusted input and returns a
// TimeoutMessageBody. All errors indicate a valid body cannot be
// constructed.
func NewTimeoutMessageBody(untrusted UntrustedTimeoutMessageBody) (*TimeoutMessageBody, error) {
	if untrusted.Round <= untrusted.QuorumCertificate.Round {
		return nil, NewInvalidMessageErrorf("timeout round (%d) must be larger than its QC round (%d)", untrusted.Round, untrusted.QuorumCertificate.Round)
	}
	if untrusted.Epoch != untrusted.QuorumCertificate.Epoch {
		return nil, NewInvalidMessageErrorf("timeout epoch (%d) must equal its QC epoch (%d)", untrusted.Epoch, untrusted.QuorumCertificate.Epoch)
	}
	if len(untrusted.AggregateSignature) != TimeoutSignatureLen {
		return nil, NewInvalidMessageErrorf("timeout signature must be %d bytes, got %d", TimeoutSignatureLen, len(untrusted.AggregateSignature))
	}
	return &TimeoutMessageBody{
		Finalizer:          untrusted.Finalizer,
		Round:              untrusted.Round,
		Epoch:              untrusted.Epoch,
		QuorumCertificate:  untrusted.QuorumCertificate,
		AggregateSignature: untrusted.AggregateSignature,
	}, nil
}

// SignatureMessage reconstructs the byte domain the body's BLS signature
// covers, given the genesis hash of the chain.
func (b *TimeoutMessageBody) SignatureMessage(genesis Hash) TimeoutSignatureMessage {
	return TimeoutSignatureMessage{
		Genesis: genesis,
		Round:   b.Round,
		QCRound: b.QuorumCertificate.Round,
		QCEpoch: b.QuorumCertificate.Epoch,
	}
}

// TimeoutMessage is a broadcast timeout vote: a body plus the finalizer's
// block-key signature over (genesis, canonical body encoding). Because the
// outer signature covers the canonical encoding, any field-level edit of the
// body after signing invalidates it.
type TimeoutMessage struct {
	Body      TimeoutMessageBody
	Signature BlockSignature
}

// UntrustedTimeoutMessage is an input-only representation of a
// TimeoutMessage, used for construction with named fields.
type UntrustedTimeoutMessage TimeoutMessage

// NewTimeoutMessage validates the untrusted input and returns a
// TimeoutMessage. All errors indicate a valid message cannot be constructed.
func NewTimeoutMessage(untrusted UntrustedTimeoutMessage) (*TimeoutMessage, error) {
	body, err := NewTimeoutMessageBody(UntrustedTimeoutMessageBody(untrusted.Body))
	if err != nil {
		return nil, err
	}
	if len(untrusted.Signature) != BlockSignatureLen {
		return nil, NewInvalidMessageErrorf("block signature must be %d bytes, got %d", BlockSignatureLen, len(untrusted.Signature))
	}
	return &TimeoutMessage{
		Body:      *body,
		Signature: untrusted.Signature,
	}, nil
}
