package domain

// TxState is the lifecycle of one booking or cancellation transaction.
// Row locks are held only while Started.
type TxState string

const (
	TxIdle       TxState = "idle"
	TxStarted    TxState = "started"
	TxCommitted  TxState = "committed"
	TxRolledBack TxState = "rolled_back"
)

func (s TxState) Terminal() bool {
	return s == TxCommitted || s == TxRolledBack
}
