package domain

import "errors"

// ErrorKind classifies a rejected operation.
type ErrorKind string

const (
	KindAuthorization ErrorKind = "authorization"
	KindValidation    ErrorKind = "validation"
	KindEscrow        ErrorKind = "escrow"
	KindNotFound      ErrorKind = "not_found"
	KindInternal      ErrorKind = "internal"
)

// Error is a rejection with a stable, user-facing reason.
type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func newError(kind ErrorKind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// KindOf returns the kind of a ledger rejection, or KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Authorization failures.
var (
	ErrNotAdmin                 = newError(KindAuthorization, "Restricted to admins")
	ErrNotTokenizer             = newError(KindAuthorization, "Restricted to Tokenizers and admin")
	ErrNotTransformationHandler = newError(KindAuthorization, "Restricted to Transformation Handlers or admins")
	ErrNotInformationHandler    = newError(KindAuthorization, "Restricted to Information Handlers or admins")
	ErrNotCurrentHandler        = newError(KindAuthorization, "Caller is not the current handler")
	ErrNotNamedHandler          = newError(KindAuthorization, "Not a handler")
	ErrNotOwner                 = newError(KindAuthorization, "Not the owner")
	ErrNotSeller                = newError(KindAuthorization, "Not the seller")
	ErrNotNewOwner              = newError(KindAuthorization, "Not the new owner")
	ErrIncorrectOwner           = newError(KindAuthorization, "transfer from incorrect owner")
	ErrNotApproved              = newError(KindAuthorization, "transfer caller is not owner nor approved")
	ErrCustodianCaller          = newError(KindAuthorization, "Custodian addresses cannot act")
	ErrInCustody                = newError(KindAuthorization, "Commodity is held in custody")
)

// Validation failures.
var (
	ErrBatchTooShort       = newError(KindValidation, "Length of array must be greater than 1")
	ErrSplitTooShort       = newError(KindValidation, "Length of array must be bigger than 1")
	ErrAmountsDontAddUp    = newError(KindValidation, "The amounts don't add up")
	ErrZeroPartition       = newError(KindValidation, "Partition can't be 0")
	ErrPropertiesMismatch  = newError(KindValidation, "Properties don't match")
	ErrIndexOutOfRange     = newError(KindValidation, "Index not in range")
	ErrCompositionTooSmall = newError(KindValidation, "Must contain at least 2 tokens")
	ErrCompositionTooFew   = newError(KindValidation, "Composition must be more than 2 tokens")
	ErrNotStored           = newError(KindValidation, "Commodity must be stored")
	ErrInvalidState        = newError(KindValidation, "Invalid state")
	ErrAmountUnderflow     = newError(KindValidation, "Amount can't go below 0")
	ErrAmountOverflow      = newError(KindValidation, "Amount overflow")
	ErrZeroAddress         = newError(KindValidation, "Zero address")
	ErrDuplicateID         = newError(KindValidation, "Duplicate token id")
	ErrCustodianAddress    = newError(KindValidation, "Custodian address not allowed")
)

// Escrow and payment failures.
var (
	ErrAlreadyPaid       = newError(KindEscrow, "Token is already paid for")
	ErrNotEnoughEther    = newError(KindEscrow, "Not enough Ether")
	ErrNotPaid           = newError(KindEscrow, "Not payed for yet")
	ErrNotMinted         = newError(KindEscrow, "Commodity not minted yet")
	ErrNothingToWithdraw = newError(KindEscrow, "Nothing to withdraw")
)

// Lookup failures.
var (
	ErrNonexistentToken = newError(KindNotFound, "owner query for nonexistent token")
	ErrNoSaleOrder      = newError(KindNotFound, "No sale initialized for token")
)

// ErrSnapshotNotFound is returned by a SnapshotStore that holds no snapshot yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")
