package codec

import "github.com/halcyonnet/halcyon-go/model/halcyon"

// EncodeFinalizerSet returns the canonical encoding of a finalizer set.
func EncodeFinalizerSet(s halcyon.FinalizerSet) []byte {
	var w writer
	writeFinalizerSet(&w, s)
	return w.buf
}

// DecodeFinalizerSet decodes a finalizer set, rejecting non-canonical and
// trailing bytes.
func DecodeFinalizerSet(b []byte) (halcyon.FinalizerSet, error) {
	r := reader{buf: b}
	s, err := readFinalizerSet(&r)
	if err != nil {
		return halcyon.FinalizerSet{}, err
	}
	return s, r.finish()
}

func writeFinalizerSet(w *writer, s halcyon.FinalizerSet) {
	w.lenPrefixed(s.Bytes())
}

func readFinalizerSet(r *reader) (halcyon.FinalizerSet, error) {
	b, err := r.lenPrefixed()
	if err != nil {
		return halcyon.FinalizerSet{}, err
	}
	return halcyon.FinalizerSetFromBytes(b)
}

func writeFinalizerRounds(w *writer, fr halcyon.FinalizerRounds) {
	entries := fr.Entries()
	w.u32(uint32(len(entries)))
	for _, e := range entries {
		w.u64(uint64(e.Round))
		writeFinalizerSet(w, e.Finalizers)
	}
}

func readFinalizerRounds(r *reader) (halcyon.FinalizerRounds, error) {
	count, err := r.u32()
	if err != nil {
		return halcyon.FinalizerRounds{}, err
	}
	var fr halcyon.FinalizerRounds
	var prev halcyon.Round
	for i := uint32(0); i < count; i++ {
		round, err := r.u64()
		if err != nil {
			return halcyon.FinalizerRounds{}, err
		}
		if i > 0 && halcyon.Round(round) <= prev {
			return halcyon.FinalizerRounds{}, halcyon.NewInvalidEncodingErrorf("finalizer rounds not strictly ascending: %d after %d", round, prev)
		}
		prev = halcyon.Round(round)
		set, err := readFinalizerSet(r)
		if err != nil {
			return halcyon.FinalizerRounds{}, err
		}
		if set.IsEmpty() {
			return halcyon.FinalizerRounds{}, halcyon.NewInvalidEncodingErrorf("finalizer rounds entry for round %d has empty finalizer set", round)
		}
		fr.Add(halcyon.Round(round), set)
	}
	return fr, nil
}

// EncodeQuorumCertificate returns the canonical encoding of a QC.
func EncodeQuorumCertificate(qc *halcyon.QuorumCertificate) []byte {
	var w writer
	writeQuorumCertificate(&w, qc)
	return w.buf
}

// DecodeQuorumCertificate decodes and structurally validates a QC.
func DecodeQuorumCertificate(b []byte) (*halcyon.QuorumCertificate, error) {
	r := reader{buf: b}
	qc, err := readQuorumCertificate(&r)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return qc, nil
}

func writeQuorumCertificate(w *writer, qc *halcyon.QuorumCertificate) {
	w.hash(qc.Block)
	w.u64(uint64(qc.Round))
	w.u64(uint64(qc.Epoch))
	w.raw(qc.AggregateSignature)
	writeFinalizerSet(w, qc.Signatories)
}

func readQuorumCertificate(r *reader) (*halcyon.QuorumCertificate, error) {
	block, err := r.hash()
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
	sig, err := r.sig(halcyon.QuorumSignatureLen)
	if err != nil {
		return nil, err
	}
	signatories, err := readFinalizerSet(r)
	if err != nil {
		return nil, err
	}
	return halcyon.NewQuorumCertificate(halcyon.UntrustedQuorumCertificate{
		Block:              block,
		Round:              halcyon.Round(round),
		Epoch:              halcyon.Epoch(epoch),
		AggregateSignature: sig,
		Signatories:        signatories,
	})
}

// EncodeTimeoutCertificate returns the canonical encoding of a TC. An empty
// second-epoch mapping is always written explicitly as a zero-count mapping.
func EncodeTimeoutCertificate(tc *halcyon.TimeoutCertificate) []byte {
	var w writer
	writeTimeoutCertificate(&w, tc)
	return w.buf
}

// DecodeTimeoutCertificate decodes and structurally validates a TC.
func DecodeTimeoutCertificate(b []byte) (*halcyon.TimeoutCertificate, error) {
	r := reader{buf: b}
	tc, err := readTimeoutCertificate(&r)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return tc, nil
}

func writeTimeoutCertificate(w *writer, tc *halcyon.TimeoutCertificate) {
	w.u64(uint64(tc.Round))
	w.u64(uint64(tc.MinEpoch))
	writeFinalizerRounds(w, tc.FinalizerRoundsFirst)
	writeFinalizerRounds(w, tc.FinalizerRoundsSecond)
	w.raw(tc.AggregateSignature)
}

func readTimeoutCertificate(r *reader) (*halcyon.TimeoutCertificate, error) {
	round, err := r.u64()
	if err != nil {
		return nil, err
	}
	minEpoch, err := r.u64()
	if err != nil {
		return nil, err
	}
	first, err := readFinalizerRounds(r)
	if err != nil {
		return nil, err
	}
	second, err := readFinalizerRounds(r)
	if err != nil {
		return nil, err
	}
	sig, err := r.sig(halcyon.TimeoutSignatureLen)
	if err != nil {
		return nil, err
	}
	return halcyon.NewTimeoutCertificate(halcyon.UntrustedTimeoutCertificate{
		Round:                 halcyon.Round(round),
		MinEpoch:              halcyon.Epoch(minEpoch),
		FinalizerRoundsFirst:  first,
		FinalizerRoundsSecond: second,
		AggregateSignature:    sig,
	})
}

// EncodeFinalizationEntry returns the canonical encoding of a finalization
// entry.
func EncodeFinalizationEntry(fe *halcyon.FinalizationEntry) []byte {
	var w writer
	writeFinalizationEntry(&w, fe)
	return w.buf
}

// DecodeFinalizationEntry decodes a finalization entry and re-validates the
// successor linkage, so a decoded entry is always well-formed.
func DecodeFinalizationEntry(b []byte) (*halcyon.FinalizationEntry, error) {
	r := reader{buf: b}
	fe, err := readFinalizationEntry(&r)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return fe, nil
}

func writeFinalizationEntry(w *writer, fe *halcyon.FinalizationEntry) {
	writeQuorumCertificate(w, &fe.FinalizedQC)
	writeQuorumCertificate(w, &fe.SuccessorQC)
	w.hash(fe.SuccessorProof)
}

func readFinalizationEntry(r *reader) (*halcyon.FinalizationEntry, error) {
	finalized, err := readQuorumCertificate(r)
	if err != nil {
		return nil, err
	}
	successor, err := readQuorumCertificate(r)
	if err != nil {
		return nil, err
	}
	proof, err := r.hash()
	if err != nil {
		return nil, err
	}
	return halcyon.NewFinalizationEntry(halcyon.UntrustedFinalizationEntry{
		FinalizedQC:    *finalized,
		SuccessorQC:    *successor,
		SuccessorProof: proof,
	})
}
