package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("resource not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrPolicyViolation       = errors.New("policy violation")
	ErrRemoteCall            = errors.New("remote call failed")
	ErrPersistenceConflict   = errors.New("persistence conflict")
	ErrReservationLeaked     = errors.New("reservation leaked, manual reconciliation required")
	ErrTimeout               = errors.New("deadline exceeded")
	ErrInvalidInput          = errors.New("invalid input")
)

type ErrorKind string

const (
	KindNotFound              ErrorKind = "not_found"
	KindInsufficientInventory ErrorKind = "insufficient_inventory"
	KindPolicyViolation       ErrorKind = "policy_violation"
	KindRemoteCallFailure     ErrorKind = "remote_call_failure"
	KindPersistenceConflict   ErrorKind = "persistence_conflict"
	KindReservationLeaked     ErrorKind = "reservation_leaked"
	KindTimeout               ErrorKind = "timeout"
	KindInvalidInput          ErrorKind = "invalid_input"
	KindInternal              ErrorKind = "internal"
)

// Checked in order: a leak wraps the persistence and release causes, so it has to win.
var kindOrder = []struct {
	kind ErrorKind
	err  error
}{
	{KindReservationLeaked, ErrReservationLeaked},
	{KindTimeout, ErrTimeout},
	{KindNotFound, ErrNotFound},
	{KindInsufficientInventory, ErrInsufficientInventory},
	{KindPolicyViolation, ErrPolicyViolation},
	{KindPersistenceConflict, ErrPersistenceConflict},
	{KindInvalidInput, ErrInvalidInput},
	{KindRemoteCallFailure, ErrRemoteCall},
}

// KindOf classifies err into the booking error taxonomy.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// ReservationLeakError reports seats that were decremented remotely with no
// booking persisted and no successful compensating release.
type ReservationLeakError struct {
	FlightID   string
	Seats      int
	PNR        string
	PersistErr error
	ReleaseErr error
}

func (e *ReservationLeakError) Error() string {
	return fmt.Sprintf("%s: flight %s, %d seats, pnr %s: persist: %v; release: %v",
		ErrReservationLeaked, e.FlightID, e.Seats, e.PNR, e.PersistErr, e.ReleaseErr)
}

func (e *ReservationLeakError) Unwrap() []error {
	return []error{ErrReservationLeaked, e.PersistErr, e.ReleaseErr}
}
