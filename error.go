package clearing

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidParam     = errors.New("the param is invalid")
	ErrConfig           = errors.New("the runtime config is invalid")
	ErrInvalidOrder     = errors.New("the order amounts are invalid")
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrBatchAborted     = errors.New("the batch was aborted")
)

// MatchingError ties an instrument to the invariant violation that stopped
// it. In strict mode it aborts the batch; in best-effort mode it is
// recorded on the result while other instruments keep clearing.
type MatchingError struct {
	Instrument common.Address
	OrderID    uint64
	Err        error
}

func (e *MatchingError) Error() string {
	return fmt.Sprintf("instrument %s halted at order %d: %v", e.Instrument, e.OrderID, e.Err)
}

func (e *MatchingError) Unwrap() error {
	return e.Err
}
