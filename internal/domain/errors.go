package domain

import "errors"

// Import failure taxonomy. Every failure inside the import pipeline is
// classified into one of these before it crosses the API boundary.
var (
	// ErrInvalidCredentials means the retailer explicitly rejected the login
	// (wrong password or email). User-actionable; never retried.
	ErrInvalidCredentials = errors.New("retailer rejected the provided credentials")

	// ErrLoginFailed covers ambiguous login failures: navigation timeout,
	// unexpected page, unrecognized error text.
	ErrLoginFailed = errors.New("retailer login failed")

	// ErrChallengeRequired means a 2FA, CAPTCHA, or similar interactive
	// verification step was detected. Automated login cannot satisfy it.
	ErrChallengeRequired = errors.New("retailer requires interactive verification")

	// ErrFieldNotFound means none of the known selector variants resolved a
	// login form field within the field budget.
	ErrFieldNotFound = errors.New("login form field not found")

	// ErrUnsupportedRetailer means the requested retailer is not in the known
	// set at all.
	ErrUnsupportedRetailer = errors.New("retailer is not supported")

	// ErrRetailerNotImplemented means the retailer is known but has no
	// importer yet.
	ErrRetailerNotImplemented = errors.New("retailer importer is not implemented yet")

	// ErrImportInProgress means another import for the same user and retailer
	// currently holds the import lock.
	ErrImportInProgress = errors.New("an import for this retailer is already running")
)
