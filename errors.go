package console

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeNetworkFailure flags transport-level failures with no HTTP status.
	TextCodeNetworkFailure = "console_network_failure"
	// TextCodeLoginFailed is the fallback when the server sends no detail.
	TextCodeLoginFailed = "console_login_failed"
	// TextCodeRegistrationFailed is the register fallback.
	TextCodeRegistrationFailed = "console_registration_failed"
	// TextCodeTokenRejected marks a bearer token the remote service refused.
	TextCodeTokenRejected = "console_token_rejected"
	// TextCodeRequestFailed is the fallback for admin mutations.
	TextCodeRequestFailed = "console_request_failed"
	// TextCodeNotAuthenticated marks calls that require a live session.
	TextCodeNotAuthenticated = "console_not_authenticated"
	// TextCodeActionForbidden marks role-policy denials.
	TextCodeActionForbidden = "console_action_forbidden"
	// TextCodeSelfTarget marks self-delete / self-demote attempts.
	TextCodeSelfTarget = "console_self_target"
	// TextCodeNoCredentials marks an empty credential store.
	TextCodeNoCredentials = "console_no_credentials"
	// TextCodeMutationInFlight marks overlapping directory mutations.
	TextCodeMutationInFlight = "console_mutation_in_flight"
	// TextCodeInvalidPayload marks input rejected before any network call.
	TextCodeInvalidPayload = "console_invalid_payload"
)

// ErrNetworkFailure is returned when the identity service is unreachable.
var ErrNetworkFailure = goerrors.New("unable to reach the identity service", goerrors.CategoryOperation).
	WithTextCode(TextCodeNetworkFailure).
	WithCode(goerrors.CodeInternal)

// ErrLoginFailed is the generic login failure when the body carries no detail.
var ErrLoginFailed = goerrors.New("Login failed", goerrors.CategoryAuth).
	WithTextCode(TextCodeLoginFailed).
	WithCode(goerrors.CodeUnauthorized)

// ErrRegistrationFailed is the generic registration failure.
var ErrRegistrationFailed = goerrors.New("Registration failed", goerrors.CategoryAuth).
	WithTextCode(TextCodeRegistrationFailed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenRejected is returned when whoAmI refuses the stored token.
var ErrTokenRejected = goerrors.New("session token rejected", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRejected).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotAuthenticated is returned when an operation needs a live session.
var ErrNotAuthenticated = goerrors.New("not authenticated", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrActionForbidden is the role-policy denial. Distinct from auth failures
// so the UI can tell "you are not allowed" apart from "the request failed".
var ErrActionForbidden = goerrors.New("your role does not permit this action", goerrors.CategoryAuthz).
	WithTextCode(TextCodeActionForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrSelfTarget rejects directory operations aimed at the acting identity.
var ErrSelfTarget = goerrors.New("you cannot perform this action on your own account", goerrors.CategoryAuthz).
	WithTextCode(TextCodeSelfTarget).
	WithCode(goerrors.CodeForbidden)

// ErrNoCredentials is returned by credential stores on first run.
var ErrNoCredentials = goerrors.New("no stored credentials", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNoCredentials).
	WithCode(goerrors.CodeNotFound)

// ErrMutationInFlight rejects a directory mutation started while another one
// is still submitting.
var ErrMutationInFlight = goerrors.New("another directory mutation is still submitting", goerrors.CategoryConflict).
	WithTextCode(TextCodeMutationInFlight).
	WithCode(goerrors.CodeConflict)

// IsNetworkError reports transport/connectivity failures.
func IsNetworkError(err error) bool {
	return hasCategory(err, goerrors.CategoryOperation)
}

// IsAuthError reports non-2xx auth endpoint failures and missing sessions.
func IsAuthError(err error) bool {
	return hasCategory(err, goerrors.CategoryAuth)
}

// IsAuthorizationError reports role-policy denials caught before any request.
func IsAuthorizationError(err error) bool {
	return hasCategory(err, goerrors.CategoryAuthz)
}

// IsValidationError reports input rejected before any network call.
func IsValidationError(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation)
}

// IsNoCredentials reports the empty credential store sentinel.
func IsNoCredentials(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeNoCredentials
}

// UserMessage extracts the text a user should see for err: the
// server-supplied detail when present, otherwise the categorized message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return err.Error()
}

func hasCategory(err error, category goerrors.Category) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == category
}
