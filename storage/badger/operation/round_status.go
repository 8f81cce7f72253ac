package operation

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/halcyonnet/halcyon-go/model/codec"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
)

// UpsertRoundStatus persists the round status for the chain identified by
// genesis, using the canonical storage encoding.
func UpsertRoundStatus(genesis halcyon.Hash, status *halcyon.PersistentRoundStatus) func(*badger.Txn) error {
	return upsert(makePrefix(codeRoundStatus, genesis), codec.EncodePersistentRoundStatus(status))
}

// RetrieveRoundStatus loads the round status for the chain identified by
// genesis.
func RetrieveRoundStatus(genesis halcyon.Hash, status *halcyon.PersistentRoundStatus) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var val []byte
		if err := retrieve(makePrefix(codeRoundStatus, genesis), &val)(tx); err != nil {
			return err
		}
		decoded, err := codec.DecodePersistentRoundStatus(val)
		if err != nil {
			return fmt.Errorf("could not decode round status: %w", err)
		}
		*status = *decoded
		return nil
	}
}
