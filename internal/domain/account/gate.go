package account

import "net/http"

// GateError is a terminal status-gate failure with its user-facing message
// and HTTP status.
type GateError struct {
	Code    int
	Message string
}

func (e *GateError) Error() string { return e.Message }

// statusCheck classifies the current account status. It returns a terminal
// failure or nil to pass control to the next check.
type statusCheck func(u *User) *GateError

func checkAccountExists(u *User) *GateError {
	if u == nil {
		return &GateError{Code: http.StatusUnauthorized, Message: "No account found."}
	}
	return nil
}

func checkAccountPending(u *User) *GateError {
	if u != nil && u.Status == StatusPending {
		return &GateError{Code: http.StatusForbidden, Message: "This account is currently under review, please wait for 1 to 3 working days."}
	}
	return nil
}

func checkAccountTerminated(u *User) *GateError {
	if u != nil && u.Status == StatusTerminated {
		return &GateError{Code: http.StatusForbidden, Message: "This account has been terminated, please contact admin for further assistance."}
	}
	return nil
}

// loginChecks run in fixed order; the first failure short-circuits and
// credential verification is never reached.
var loginChecks = []statusCheck{
	checkAccountExists,
	checkAccountPending,
	checkAccountTerminated,
}

// CheckLoginStatus applies the ordered status checks to a looked-up account
// (nil when no account matched). A nil return means the caller may proceed
// with credential verification.
func CheckLoginStatus(u *User) *GateError {
	for _, check := range loginChecks {
		if gerr := check(u); gerr != nil {
			return gerr
		}
	}
	return nil
}
