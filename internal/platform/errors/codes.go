package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors. These are fatal: the process must not serve
	// sessions when the roster or the backing store is unusable.
	CodeRosterColumnMissing Code = "ROSTER_COLUMN_MISSING"
	CodeRosterEmpty         Code = "ROSTER_EMPTY"
	CodeStoreUnavailable    Code = "STORE_UNAVAILABLE"

	// Session validation errors. Recoverable: the transition is blocked and
	// the current screen is re-rendered with an inline notice.
	CodeIntroNameEmpty     Code = "INTRO_NAME_EMPTY"
	CodeInterestMissing    Code = "RESULT_INTEREST_MISSING"
	CodeInterestLocked     Code = "RESULT_INTEREST_LOCKED"
	CodeAnswerTagInvalid   Code = "ANSWER_TAG_INVALID"
	CodeResultIncomplete   Code = "RESULT_ANSWERS_INCOMPLETE"
	CodeScreenTransition   Code = "SCREEN_INVALID_TRANSITION"

	// Lead recording errors. Recoverable: recorded stays false and the next
	// result render retries the write.
	CodeLeadStoreUnavailable Code = "LEAD_STORE_UNAVAILABLE"

	// Notification errors. Never surfaced to visitors: a failed push is
	// logged and the lead stays recorded.
	CodeNotificationFailed Code = "NOTIFICATION_FAILED"

	// Admin report errors.
	CodeAdminPasswordInvalid Code = "ADMIN_PASSWORD_INVALID"
	CodeAdminGrantInvalid    Code = "ADMIN_GRANT_INVALID"

	// Storage errors.
	CodeNotFound Code = "NOT_FOUND"
)

// Class groups codes by recovery behavior.
type Class int

const (
	ClassInternal Class = iota
	ClassValidation
	ClassUnauthorized
	ClassNotFound
	ClassTransient
)

// Class returns the recovery class for the code.
func (c Code) Class() Class {
	switch c {
	case CodeIntroNameEmpty,
		CodeInterestMissing,
		CodeInterestLocked,
		CodeAnswerTagInvalid,
		CodeResultIncomplete,
		CodeScreenTransition:
		return ClassValidation
	case CodeAdminPasswordInvalid,
		CodeAdminGrantInvalid:
		return ClassUnauthorized
	case CodeNotFound:
		return ClassNotFound
	case CodeLeadStoreUnavailable:
		return ClassTransient
	default:
		return ClassInternal
	}
}
