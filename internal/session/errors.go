package session

import (
	"fmt"
	"strings"
)

// LoginFailureKind buckets the server's free-text login failure messages.
type LoginFailureKind string

const (
	KindInvalidCredentials LoginFailureKind = "invalid_credentials"
	KindAccountLocked      LoginFailureKind = "account_locked"
	KindTooManyAttempts    LoginFailureKind = "too_many_attempts"
	KindUnknown            LoginFailureKind = "unknown"
)

// LoginError is a classified, non-retriable (within the current cycle)
// login rejection.
type LoginError struct {
	Kind    LoginFailureKind
	Message string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("session: login rejected (%s): %s", e.Kind, e.Message)
}

// failureSubstrings maps known message fragments to failure kinds; probed
// in order, first hit wins. The server message set is observed behavior,
// not documented.
var failureSubstrings = []struct {
	fragment string
	kind     LoginFailureKind
}{
	{"password", KindInvalidCredentials},
	{"pwd error", KindInvalidCredentials},
	{"帳號或密碼", KindInvalidCredentials},
	{"locked", KindAccountLocked},
	{"suspend", KindAccountLocked},
	{"停用", KindAccountLocked},
	{"too many", KindTooManyAttempts},
	{"try again later", KindTooManyAttempts},
	{"稍後再試", KindTooManyAttempts},
}

// ClassifyLoginFailure maps a server failure message to its kind.
func ClassifyLoginFailure(message string) LoginFailureKind {
	msg := strings.ToLower(message)
	for _, f := range failureSubstrings {
		if strings.Contains(msg, f.fragment) {
			return f.kind
		}
	}
	return KindUnknown
}
