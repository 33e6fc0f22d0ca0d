package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a SQL injection pattern detected in
// user-supplied text.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckInputForInjection screens free-form user input (the natural-language
// query) for SQL injection payloads before it reaches classification or the
// translator. Returns nil when the input is clean.
func CheckInputForInjection(input string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(input)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
	}
}
