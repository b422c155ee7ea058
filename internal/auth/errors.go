package auth

import "fmt"

// ErrorKind classifies a failed login step
type ErrorKind int

const (
	KindWalletAbsent ErrorKind = iota + 1
	KindUserRejected
	KindBackendRejected
	KindSignatureRejected
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindWalletAbsent:
		return "wallet_absent"
	case KindUserRejected:
		return "user_rejected"
	case KindBackendRejected:
		return "backend_rejected"
	case KindSignatureRejected:
		return "signature_rejected"
	case KindTransport:
		return "transport"
	}
	return "unknown"
}

// Error is a login or refresh failure. Message is safe to show to the user.
type Error struct {
	Kind ErrorKind
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth %s: %s", e.Step, e.Kind)
	}
	return fmt.Sprintf("auth %s: %s: %v", e.Step, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the guidance shown to the user
func (e *Error) Message() string {
	switch e.Kind {
	case KindWalletAbsent:
		return "No wallet found. Provide a key file with --key-file or NETSTATS_KEY_FILE."
	case KindUserRejected:
		return "The request was rejected in your wallet."
	case KindBackendRejected:
		return "The authentication service refused the request. Please try again later."
	case KindSignatureRejected:
		return "Your signature could not be verified. Make sure you signed with the selected account."
	case KindTransport:
		return "Could not reach the authentication service. Check your connection."
	}
	return "Authentication failed."
}
