package codec

import "github.com/halcyonnet/halcyon-go/model/halcyon"

// EncodePersistentRoundStatus returns the storage encoding of the baker's
// round status. This layout is part of the external interface: it is what
// gets written to stable storage before a vote or block is released.
func EncodePersistentRoundStatus(s *halcyon.PersistentRoundStatus) []byte {
	var w writer
	if s.LastSignedQuorumMessage != nil {
		w.u8(tagPresent)
		writeQuorumMessage(&w, s.LastSignedQuorumMessage)
	} else {
		w.u8(tagAbsent)
	}
	if s.LastSignedTimeoutMessage != nil {
		w.u8(tagPresent)
		writeTimeoutMessage(&w, s.LastSignedTimeoutMessage)
	} else {
		w.u8(tagAbsent)
	}
	w.u64(uint64(s.LastBakedRound))
	if s.LatestTimeoutCertificate != nil {
		w.u8(tagPresent)
		writeTimeoutCertificate(&w, s.LatestTimeoutCertificate)
	} else {
		w.u8(tagAbsent)
	}
	return w.buf
}

// DecodePersistentRoundStatus decodes a stored round status.
func DecodePersistentRoundStatus(b []byte) (*halcyon.PersistentRoundStatus, error) {
	r := reader{buf: b}
	var s halcyon.PersistentRoundStatus
	present, err := r.presence()
	if err != nil {
		return nil, err
	}
	if present {
		if s.LastSignedQuorumMessage, err = readQuorumMessage(&r); err != nil {
			return nil, err
		}
	}
	present, err = r.presence()
	if err != nil {
		return nil, err
	}
	if present {
		if s.LastSignedTimeoutMessage, err = readTimeoutMessage(&r); err != nil {
			return nil, err
		}
	}
	lastBaked, err := r.u64()
	if err != nil {
		return nil, err
	}
	s.LastBakedRound = halcyon.Round(lastBaked)
	present, err = r.presence()
	if err != nil {
		return nil, err
	}
	if present {
		if s.LatestTimeoutCertificate, err = readTimeoutCertificate(&r); err != nil {
			return nil, err
		}
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return &s, nil
}
