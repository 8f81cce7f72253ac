package consensus

import "github.com/halcyonnet/halcyon-go/model/halcyon"

// Persister provides durable storage for the baker's round status. The
// write must be flushed to stable storage before it returns: safety across
// restarts depends on the status being persisted before the corresponding
// vote or block reaches the network.
type Persister interface {
	// GetRoundStatus retrieves the last persisted round status. Returns
	// storage.ErrNotFound if none was ever stored.
	GetRoundStatus() (*halcyon.PersistentRoundStatus, error)

	// PutRoundStatus durably persists the round status.
	PutRoundStatus(status *halcyon.PersistentRoundStatus) error
}
