// SPDX-License-Identifier: BUSL-1.1

package gas

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var ledgerLog = logrus.StandardLogger().WithField("component", "gas.Ledger")

// Ledger tracks remaining and total-used gas for a single message
// execution. Charge debits atomically: either the full charge is
// applied, or the ledger is driven to exhaustion and an OutOfGas error
// is returned. There is never a partial debit.
type Ledger struct {
	mu          sync.Mutex
	remaining   Gas
	totalUsed   Gas
	limit       Gas
	executionID string
}

// NewLedger creates a Ledger with the given gas limit.
func NewLedger(limit Gas) *Ledger {
	return &Ledger{remaining: limit, limit: limit}
}

// NewLedgerForExecution is NewLedger plus a diagnostic execution ID
// attached to log lines, mirroring the teacher's practice of tagging
// long-running operations with a UUID for traceability.
func NewLedgerForExecution(limit Gas, executionID string) *Ledger {
	l := NewLedger(limit)
	l.executionID = executionID
	return l
}

// Remaining returns the gas still available.
func (l *Ledger) Remaining() Gas {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// TotalUsed returns the cumulative gas charged so far.
func (l *Ledger) TotalUsed() Gas {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalUsed
}

// Limit returns the ledger's original gas limit.
func (l *Ledger) Limit() Gas {
	return l.limit
}

// Charge debits the full charge from the ledger, or leaves the ledger
// untouched (other than being driven to zero remaining) and returns an
// OutOfGas VMError if the charge cannot be fully paid.
func (l *Ledger) Charge(gc GasCharge) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := gc.Total()
	if total.GreaterThan(l.remaining) {
		l.remaining = Zero
		ledgerLog.WithFields(logrus.Fields{
			"charge":       gc.Name,
			"requested":    uint64(total),
			"execution_id": l.executionID,
		}).Warn("gas ledger exhausted")
		return ErrOutOfGas()
	}
	l.remaining = l.remaining.Sub(total)
	l.totalUsed = l.totalUsed.Add(total)
	return nil
}
