// Package persister implements durable round-status storage on badger.
package persister

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/halcyonnet/halcyon-go/consensus"
	"github.com/halcyonnet/halcyon-go/model/halcyon"
	"github.com/halcyonnet/halcyon-go/storage/badger/operation"
)

// Persister reads and writes the baker's round status, keyed by the chain's
// genesis hash. Badger syncs writes before commit returns, which gives the
// persist-before-release guarantee SafetyRules depends on.
type Persister struct {
	db      *badger.DB
	genesis halcyon.Hash
}

var _ consensus.Persister = (*Persister)(nil)

// New creates a persister on the given database for the chain identified by
// genesis.
func New(db *badger.DB, genesis halcyon.Hash) *Persister {
	return &Persister{
		db:      db,
		genesis: genesis,
	}
}

// GetRoundStatus retrieves the last persisted round status. Returns
// storage.ErrNotFound if none was ever stored.
func (p *Persister) GetRoundStatus() (*halcyon.PersistentRoundStatus, error) {
	var status halcyon.PersistentRoundStatus
	err := p.db.View(operation.RetrieveRoundStatus(p.genesis, &status))
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// PutRoundStatus durably persists the round status.
func (p *Persister) PutRoundStatus(status *halcyon.PersistentRoundStatus) error {
	return p.db.Update(operation.UpsertRoundStatus(p.genesis, status))
}
