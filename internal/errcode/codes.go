// Package errcode provides machine-readable error codes for the lottery engine.
package errcode

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeEmptyRoundID    Code = "ROUND_ID_EMPTY"
	CodeEmptyPrincipal  Code = "PRINCIPAL_EMPTY"
	CodeInvalidFee      Code = "ENTRY_FEE_NEGATIVE"
	CodeInvalidFunding  Code = "INITIAL_FUNDING_NEGATIVE"
	CodeInvalidDeadline Code = "DRAW_TIME_NOT_FUTURE"
	CodeWrongPayment    Code = "PAYMENT_MISMATCH"
	CodeZeroSponsorship Code = "SPONSORSHIP_NOT_POSITIVE"

	// State errors
	CodeAlreadyEntered Code = "PARTICIPANT_ALREADY_ENTERED"
	CodeNotOpen        Code = "ROUND_NOT_OPEN"
	CodeDrawTooEarly   Code = "DRAW_BEFORE_DEADLINE"
	CodeAlreadyDrawn   Code = "WINNER_ALREADY_DRAWN"
	CodeNoParticipants Code = "ROUND_HAS_NO_PARTICIPANTS"
	CodeNotClaimable   Code = "ROUND_NOT_CLAIMABLE"
	CodeNotWinner      Code = "CALLER_NOT_WINNER"
	CodeNotCreator     Code = "CALLER_NOT_CREATOR"
	CodeNotClosed      Code = "ROUND_NOT_CLOSED"

	// Lookup errors
	CodeRoundNotFound    Code = "ROUND_NOT_FOUND"
	CodeDuplicateRoundID Code = "ROUND_ID_TAKEN"

	// Custody errors
	CodePayoutFailed        Code = "CUSTODY_PAYOUT_FAILED"
	CodeInsufficientCustody Code = "CUSTODY_BALANCE_SHORT"
)

// Kind groups codes into the four failure families callers branch on.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindState      Kind = "STATE"
	KindNotFound   Kind = "NOT_FOUND"
	KindCustody    Kind = "CUSTODY"
	KindUnknown    Kind = "UNKNOWN"
)

// Kind returns the failure family of the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeEmptyRoundID,
		CodeEmptyPrincipal,
		CodeInvalidFee,
		CodeInvalidFunding,
		CodeInvalidDeadline,
		CodeWrongPayment,
		CodeZeroSponsorship:
		return KindValidation

	case CodeAlreadyEntered,
		CodeNotOpen,
		CodeDrawTooEarly,
		CodeAlreadyDrawn,
		CodeNoParticipants,
		CodeNotClaimable,
		CodeNotWinner,
		CodeNotCreator,
		CodeNotClosed:
		return KindState

	case CodeRoundNotFound,
		CodeDuplicateRoundID:
		return KindNotFound

	case CodePayoutFailed,
		CodeInsufficientCustody:
		return KindCustody

	default:
		return KindUnknown
	}
}

// HTTPStatus maps the code to an HTTP status for the transport layer.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindState:
		return http.StatusConflict
	case KindNotFound:
		if c == CodeDuplicateRoundID {
			return http.StatusConflict
		}
		return http.StatusNotFound
	case KindCustody:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
