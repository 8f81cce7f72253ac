package codec

import "github.com/halcyonnet/halcyon-go/model/halcyon"

// EncodeQuorumMessage returns the canonical encoding of a quorum vote.
func EncodeQuorumMessage(m *halcyon.QuorumMessage) []byte {
	var w writer
	writeQuorumMessage(&w, m)
	return w.buf
}

// DecodeQuorumMessage decodes and structurally validates a quorum vote.
func DecodeQuorumMessage(b []byte) (*halcyon.QuorumMessage, error) {
	r := reader{buf: b}
	m, err := readQuorumMessage(&r)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return m, nil
}

func writeQuorumMessage(w *writer, m *halcyon.QuorumMessage) {
	w.raw(m.Signature)
	w.hash(m.Block)
	w.u32(uint32(m.Finalizer))
	w.u64(uint64(m.Round))
	w.u64(uint64(m.Epoch))
}

func readQuorumMessage(r *reader) (*halcyon.QuorumMessage, error) {
	sig, err := r.sig(halcyon.QuorumSignatureLen)
	if err != nil {
		return nil, err
	}
	block, err := r.hash()
	if err != nil {
		return nil, err
	}
	finalizer, err := r.u32()
	if err != nil {
		return nil, err
	}
	round, err := r.u64()
	if err != nil {
		return nil, err
	}
	epoch, err := r.u64()
	if err != nil {
		return nil, err
	}
	return halcyon.NewQuorumMessage(halcyon.UntrustedQuorumMessage{
		Signature: sig,
		Block:     block,
		Finalizer: halcyon.FinalizerIndex(finalizer),
		Round:     halcyon.Round(round),
		Epoch:     halcyon.Epoch(epoch),
	})
}

// EncodeTimeoutMessageBody returns the canonical encoding of a timeout vote
// body. This is also the byte domain (after the genesis hash) covered by the
// outer block-key signature, which is why any field edit after signing
// invalidates the message.
func EncodeTimeoutMessageBody(b *halcyon.TimeoutMessageBody) []byte {
	var w writer
	writeTimeoutMessageBody(&w, b)
	return w.buf
}

// DecodeTimeoutMessageBody decodes and structurally validates a timeout vote
// body.
func DecodeTimeoutMessageBody(b []byte) (*halcyon.TimeoutMessageBody, error) {
	r := reader{buf: b}
	body, err := readTimeoutMessageBody(&r)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return body, nil
}

func writeTimeoutMessageBody(w *writer, b *halcyon.TimeoutMessageBody) {
	w.u32(uint32(b.Finalizer))
	w.u64(uint64(b.Round))
	w.u64(uint64(b.Epoch))
	writeQuorumCertificate(w, &b.QuorumCertificate)
	w.raw(b.AggregateSignature)
}

func readTimeoutMessageBody(r *reader) (*halcyon.TimeoutMessageBody, error) {
	finalizer, err := r.u32()
	if err != nil {
		return nil, err
	}
	round, err := r.u64()
	if err != nil {
		return nil, err
	}
	epoch, err := r.u64()
	if err != nil {
		return nil, err
	}
	qc, err := readQuorumCertificate(r)
	if err != nil {
		return nil, err
	}
	sig, err := r.sig(halcyon.TimeoutSignatureLen)
	if err != nil {
		return nil, err
	}
	return halcyon.NewTimeoutMessageBody(halcyon.UntrustedTimeoutMessageBody{
		Finalizer:          halcyon.FinalizerIndex(finalizer),
		Round:              halcyon.Round(round),
		Epoch:              halcyon.Epoch(epoch),
		QuorumCertificate:  *qc,
		AggregateSignature: sig,
	})
}

// EncodeTimeoutMessage returns the canonical encoding of a timeout vote.
func EncodeTimeoutMessage(m *halcyon.TimeoutMessage) []byte {
	var w writer
	writeTimeoutMessage(&w, m)
	return w.buf
}

// DecodeTimeoutMessage decodes and structurally validates a timeout vote.
func DecodeTimeoutMessage(b []byte) (*halcyon.TimeoutMessage, error) {
	r := reader{buf: b}
	m, err := readTimeoutMessage(&r)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return m, nil
}

func writeTimeoutMessage(w *writer, m *halcyon.TimeoutMessage) {
	writeTimeoutMessageBody(w, &m.Body)
	w.raw(m.Signature)
}

func readTimeoutMessage(r *reader) (*halcyon.TimeoutMessage, error) {
	body, err := readTimeoutMessageBody(r)
	if err != nil {
		return nil, err
	}
	sig, err := r.sig(halcyon.BlockSignatureLen)
	if err != nil {
		return nil, err
	}
	return halcyon.NewTimeoutMessage(halcyon.UntrustedTimeoutMessage{
		Body:      *body,
		Signature: sig,
	})
}
