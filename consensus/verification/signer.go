// Package verification constructs and checks the signed artifacts of the
// protocol: quorum votes, timeout votes, signed blocks, and the aggregate
// certificates built from them. All operations are pure computations over
// immutable values and safe for concurrent use.
package verification

import (
	"fmt"

	"github.com/onflow/crypto"

	"github.com/halcyonnet/halcyon-go/model/codec"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/module/signature"
)

// Signer produces this baker's signed protocol artifacts. It holds the
// private key material and the chain's genesis hash for domain separation.
// It deliberately has no access to the round status: refusing to double-sign
// is the job of consensus/safety, which wraps this signer.
type Signer struct {
	genesis   halcyon.Hash
	version   codec.ProtocolVersion
	finalizer halcyon.FinalizerIndex
	blsKey    crypto.PrivateKey
	blockKey  crypto.PrivateKey
}

// NewSigner creates a signer for the given finalizer identity. blsKey signs
// quorum and timeout votes; blockKey signs timeout messages and blocks.
func NewSigner(
	genesis halcyon.Hash,
	version codec.ProtocolVersion,
	finalizer halcyon.FinalizerIndex,
	blsKey crypto.PrivateKey,
	blockKey crypto.PrivateKey,
) *Signer {
	return &Signer{
		genesis:   genesis,
		version:   version,
		finalizer: finalizer,
		blsKey:    blsKey,
		blockKey:  blockKey,
	}
}

// CreateQuorumMessage signs a quorum vote for the given block.
func (s *Signer) CreateQuorumMessage(block halcyon.BlockHash, round halcyon.Round, epoch halcyon.Epoch) (*halcyon.QuorumMessage, error) {
	msg := halcyon.QuorumSignatureMessage{
		Genesis: s.genesis,
		Block:   block,
		Round:   round,
		Epoch:   epoch,
	}
	sig, err := signature.SignQuorumSignatureMessage(s.blsKey, msg)
	if err != nil {
		return nil, fmt.Errorf("could not sign quorum vote: %w", err)
	}
	return halcyon.NewQuorumMessage(halcyon.UntrustedQuorumMessage{
		Signature: sig,
		Block:     block,
		Finalizer: s.finalizer,
		Round:     round,
		Epoch:     epoch,
	})
}

// CreateTimeoutMessage signs a timeout vote for round, attesting qc as the
// highest quorum certificate known to this finalizer. The body's BLS
// signature covers the timeout signature message; the outer block-key
// signature covers the genesis hash and the canonical body encoding.
func (s *Signer) CreateTimeoutMessage(round halcyon.Round, qc *halcyon.QuorumCertificate) (*halcyon.TimeoutMessage, error) {
	sigMsg := halcyon.TimeoutSignatureMessage{
		Genesis: s.genesis,
		Round:   round,
		QCRound: qc.Round,
		QCEpoch: qc.Epoch,
	}
	aggSig, err := signature.SignTimeoutSignatureMessage(s.blsKey, sigMsg)
	if err != nil {
		return nil, fmt.Errorf("could not sign timeout vote: %w", err)
	}
	body, err := halcyon.NewTimeoutMessageBody(halcyon.UntrustedTimeoutMessageBody{
		Finalizer:          s.finalizer,
		Round:              round,
		Epoch:              qc.Epoch,
		QuorumCertificate:  *qc,
		AggregateSignature: aggSig,
	})
	if err != nil {
		return nil, err
	}
	outer, err := s.blockKey.Sign(timeoutMessageBytes(s.genesis, body), signature.NewBlockSignatureHasher())
	if err != nil {
		return nil, fmt.Errorf("could not sign timeout message body: %w", err)
	}
	return halcyon.NewTimeoutMessage(halcyon.UntrustedTimeoutMessage{
		Body:      *body,
		Signature: halcyon.BlockSignature(outer),
	})
}

// SignBlock signs the baked block with the baker's block key, scoped to the
// chain by the genesis hash.
func (s *Signer) SignBlock(block *halcyon.BakedBlock) (*halcyon.SignedBlock, error) {
	msg, err := blockBytes(s.genesis, s.version, block)
	if err != nil {
		return nil, err
	}
	sig, err := s.blockKey.Sign(msg, signature.NewBlockSignatureHasher())
	if err != nil {
		return nil, fmt.Errorf("could not sign block: %w", err)
	}
	return halcyon.NewSignedBlock(halcyon.UntrustedSignedBlock{
		Block:     *block,
		Signature: halcyon.BlockSignature(sig),
	})
}

// timeoutMessageBytes is the byte domain of the outer timeout-message
// signature: genesis hash followed by the canonical body encoding.
func timeoutMessageBytes(genesis halcyon.Hash, body *halcyon.TimeoutMessageBody) []byte {
	enc := codec.EncodeTimeoutMessageBody(body)
	msg := make([]byte, 0, len(genesis)+len(enc))
	msg = append(msg, genesis[:]...)
	msg = append(msg, enc...)
	return msg
}

// blockBytes is the byte domain of the block signature: genesis hash
// followed by the canonical block encoding.
func blockBytes(genesis halcyon.Hash, version codec.ProtocolVersion, block *halcyon.BakedBlock) ([]byte, error) {
	enc, err := codec.EncodeBakedBlock(version, block)
	if err != nil {
		return nil, fmt.Errorf("could not encode block for signing: %w", err)
	}
	msg := make([]byte, 0, len(genesis)+len(enc))
	msg = append(msg, genesis[:]...)
	msg = append(msg, enc...)
	return msg, nil
}
