package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors: bad input, never partially applied.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrMissingField       = errors.New("required field is missing")
	ErrInvalidField       = errors.New("invalid field value")
	ErrInvalidAccountCode = errors.New("invalid account code")
	ErrMissingParent      = errors.New("account above level 1 requires a parent")
	ErrParentLevel        = errors.New("parent account must be exactly one level up")
	ErrTooFewLines        = errors.New("journal entry must have at least 2 lines")
	ErrInvalidLine        = errors.New("line must carry exactly one positive debit or credit")
	ErrUnbalancedEntry    = errors.New("journal entry debits and credits do not balance")
	ErrUnknownAccount     = errors.New("line references an unknown account")
	ErrInactiveAccount    = errors.New("line references an inactive account")
	ErrInvalidRFC         = errors.New("invalid RFC")
	ErrInvalidCFDIUse     = errors.New("invalid CFDI use")
	ErrNonPositivePayment = errors.New("payment amount must be positive")
	ErrNotIncomeEntry     = errors.New("only income entries can be reconciled")
	ErrOutgoingMovement   = errors.New("outgoing bank movements cannot settle an income entry")
)

// Not-found errors.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrEntryNotFound    = errors.New("journal entry not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrOpenItemNotFound = errors.New("receivable or payable not found")
	ErrBankTxnNotFound  = errors.New("bank transaction not found")
	ErrTaxEventNotFound = errors.New("tax event not found")
)

// Conflict errors: the request is well formed but collides with current state.
var (
	ErrDuplicateAccount     = errors.New("account code already exists")
	ErrDuplicateEntryNumber = errors.New("journal entry number already in use")
	ErrDuplicateClient      = errors.New("client RFC already registered")
	ErrDuplicateInvoice     = errors.New("invoice folio already exists")
	ErrDuplicateBankRef     = errors.New("bank reference already imported")
	ErrAlreadyVoided        = errors.New("journal entry is already voided")
	ErrInvalidTransition    = errors.New("journal entry status transition not allowed")
	ErrNothingOutstanding   = errors.New("nothing outstanding to pay")
	ErrItemCancelled        = errors.New("receivable is cancelled")
	ErrInvoiceCancelled     = errors.New("invoice is already cancelled")
	ErrInvoiceHasPayments   = errors.New("invoice has payments applied")
	ErrAlreadyReconciled    = errors.New("already reconciled")
	ErrEntryVoided          = errors.New("journal entry is voided")
	ErrTaxEventFiled        = errors.New("tax event already filed")
	ErrIdempotencyKeyReused = errors.New("idempotency key already used for another item")
)

// Kind classifies an error into the taxonomy the API and CLI report.
type Kind int

const (
	KindService Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "service"
	}
}

var (
	validationErrs = []error{
		ErrInvalidAmount, ErrInvalidDate, ErrMissingField, ErrInvalidField,
		ErrInvalidAccountCode, ErrMissingParent, ErrParentLevel, ErrTooFewLines,
		ErrInvalidLine, ErrUnbalancedEntry, ErrUnknownAccount, ErrInactiveAccount,
		ErrInvalidRFC, ErrInvalidCFDIUse, ErrNonPositivePayment, ErrNotIncomeEntry,
		ErrOutgoingMovement,
	}
	notFoundErrs = []error{
		ErrAccountNotFound, ErrEntryNotFound, ErrClientNotFound, ErrInvoiceNotFound,
		ErrOpenItemNotFound, ErrBankTxnNotFound, ErrTaxEventNotFound,
	}
	conflictErrs = []error{
		ErrDuplicateAccount, ErrDuplicateEntryNumber, ErrDuplicateClient, ErrDuplicateInvoice,
		ErrDuplicateBankRef,
		ErrAlreadyVoided, ErrInvalidTransition, ErrNothingOutstanding, ErrItemCancelled,
		ErrInvoiceCancelled, ErrInvoiceHasPayments, ErrAlreadyReconciled, ErrEntryVoided,
		ErrTaxEventFiled, ErrIdempotencyKeyReused,
	}
)

// ErrorKind classifies err. Validation wins over the others so a
// ValidationErrors list holding an unknown-account line stays a 422.
func ErrorKind(err error) Kind {
	switch {
	case err == nil:
		return KindService
	case isAny(err, validationErrs):
		return KindValidation
	case isAny(err, notFoundErrs):
		return KindNotFound
	case isAny(err, conflictErrs):
		return KindConflict
	default:
		return KindService
	}
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// FieldError ties a sentinel error to the input field that caused it.
type FieldError struct {
	Field  string `json:"field"`
	Err    error  `json:"-"`
	Detail string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Field, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }

// ValidationErrors collects every violation found in one input.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Add appends a violation.
func (v *ValidationErrors) Add(field string, err error, format string, args ...any) {
	*v = append(*v, FieldError{Field: field, Err: err, Detail: fmt.Sprintf(format, args...)})
}

// Err returns nil when no violations were collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Fields extracts field-level detail from err, if it carries any.
func Fields(err error) []FieldError {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	var fe FieldError
	if errors.As(err, &fe) {
		return []FieldError{fe}
	}
	return nil
}
