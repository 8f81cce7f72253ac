package codec

import "github.com/halcyonnet/halcyon-go/model/halcyon"

// EncodeBakedBlock returns the canonical encoding of an unsigned block under
// the given protocol version.
func EncodeBakedBlock(version ProtocolVersion, b *halcyon.BakedBlock) ([]byte, error) {
	if !version.valid() {
		return nil, halcyon.NewInvalidEncodingErrorf("unsupported protocol version %d", version)
	}
	var w writer
	writeBakedBlock(&w, b)
	return w.buf, nil
}

// DecodeBakedBlock decodes an unsigned block. maxTransactionTime bounds the
// arrival time of every carried transaction; items beyond the bound are a
// decode error and the whole block is rejected.
func DecodeBakedBlock(version ProtocolVersion, maxTransactionTime halcyon.Timestamp, b []byte) (*halcyon.BakedBlock, error) {
	if !version.valid() {
		return nil, halcyon.NewInvalidEncodingErrorf("unsupported protocol version %d", version)
	}
	r := reader{buf: b}
	block, err := readBakedBlock(&r, maxTransactionTime)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return block, nil
}

func writeBakedBlock(w *writer, b *halcyon.BakedBlock) {
	w.u64(uint64(b.Round))
	w.u64(uint64(b.Epoch))
	w.u64(uint64(b.Timestamp))
	w.u64(uint64(b.Baker))
	writeQuorumCertificate(w, &b.QuorumCertificate)
	if b.TimeoutCertificate != nil {
		w.u8(tagPresent)
		writeTimeoutCertificate(w, b.TimeoutCertificate)
	} else {
		w.u8(tagAbsent)
	}
	if b.EpochFinalizationEntry != nil {
		w.u8(tagPresent)
		writeFinalizationEntry(w, b.EpochFinalizationEntry)
	} else {
		w.u8(tagAbsent)
	}
	w.lenPrefixed(b.BlockNonce)
	w.hash(b.StateHash)
	w.hash(b.TransactionOutcomesHash)
	w.u32(uint32(len(b.Transactions)))
	for i := range b.Transactions {
		writeBlockItem(w, &b.Transactions[i])
	}
}

func readBakedBlock(r *reader, maxTransactionTime halcyon.Timestamp) (*halcyon.BakedBlock, error) {
	round, err := r.u64()
	if err != nil {
		return nil, err
	}
	epoch, err := r.u64()
	if err != nil {
		return nil, err
	}
	timestamp, err := r.u64()
	if err != nil {
		return nil, err
	}
	baker, err := r.u64()
	if err != nil {
		return nil, err
	}
	qc, err := readQuorumCertificate(r)
	if err != nil {
		return nil, err
	}
	var tc *halcyon.TimeoutCertificate
	present, err := r.presence()
	if err != nil {
		return nil, err
	}
	if present {
		if tc, err = readTimeoutCertificate(r); err != nil {
			return nil, err
		}
	}
	var fe *halcyon.FinalizationEntry
	present, err = r.presence()
	if err != nil {
		return nil, err
	}
	if present {
		if fe, err = readFinalizationEntry(r); err != nil {
			return nil, err
		}
	}
	nonce, err := r.lenPrefixed()
	if err != nil {
		return nil, err
	}
	stateHash, err := r.hash()
	if err != nil {
		return nil, err
	}
	outcomesHash, err := r.hash()
	if err != nil {
		return nil, err
	}
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	// Each item occupies at least 12 bytes (arrival time plus payload length
	// prefix). Bounding the claimed count against the remaining input keeps a
	// hostile count field from demanding a huge allocation up front.
	if uint64(count) > uint64(r.remaining())/12 {
		return nil, halcyon.NewInvalidEncodingErrorf("transaction count %d cannot fit in %d remaining bytes", count, r.remaining())
	}
	var items []halcyon.BlockItem
	if count > 0 {
		items = make([]halcyon.BlockItem, 0, count)
	}
	for i := uint32(0); i < count; i++ {
		item, err := readBlockItem(r, maxTransactionTime)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return halcyon.NewBakedBlock(halcyon.UntrustedBakedBlock{
		Round:                   halcyon.Round(round),
		Epoch:                   halcyon.Epoch(epoch),
		Timestamp:               halcyon.Timestamp(timestamp),
		Baker:                   halcyon.BakerID(baker),
		QuorumCertificate:       *qc,
		TimeoutCertificate:      tc,
		EpochFinalizationEntry:  fe,
		BlockNonce:              nonce,
		StateHash:               stateHash,
		TransactionOutcomesHash: outcomesHash,
		Transactions:            items,
	})
}

func writeBlockItem(w *writer, item *halcyon.BlockItem) {
	w.u64(uint64(item.ArrivalTime))
	w.lenPrefixed(item.Payload)
}

func readBlockItem(r *reader, maxTransactionTime halcyon.Timestamp) (halcyon.BlockItem, error) {
	arrival, err := r.u64()
	if err != nil {
		return halcyon.BlockItem{}, err
	}
	if halcyon.Timestamp(arrival).After(maxTransactionTime) {
		return halcyon.BlockItem{}, halcyon.NewInvalidEncodingErrorf("transaction arrival time %d exceeds bound %d", arrival, maxTransactionTime)
	}
	payload, err := r.lenPrefixed()
	if err != nil {
		return halcyon.BlockItem{}, err
	}
	return halcyon.BlockItem{
		ArrivalTime: halcyon.Timestamp(arrival),
		Payload:     payload,
	}, nil
}

// EncodeSignedBlock returns the canonical encoding of a signed block.
func EncodeSignedBlock(version ProtocolVersion, sb *halcyon.SignedBlock) ([]byte, error) {
	if !version.valid() {
		return nil, halcyon.NewInvalidEncodingErrorf("unsupported protocol version %d", version)
	}
	var w writer
	writeBakedBlock(&w, &sb.Block)
	w.raw(sb.Signature)
	return w.buf, nil
}

// DecodeSignedBlock decodes a signed block under the given protocol version
// and transaction-time bound.
func DecodeSignedBlock(version ProtocolVersion, maxTransactionTime halcyon.Timestamp, b []byte) (*halcyon.SignedBlock, error) {
	if !version.valid() {
		return nil, halcyon.NewInvalidEncodingErrorf("unsupported protocol version %d", version)
	}
	r := reader{buf: b}
	block, err := readBakedBlock(&r, maxTransactionTime)
	if err != nil {
		return nil, err
	}
	sig, err := r.sig(halcyon.BlockSignatureLen)
	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return halcyon.NewSignedBlock(halcyon.UntrustedSignedBlock{
		Block:     *block,
		Signature: sig,
	})
}
