package protocol

import "fmt"

// ErrorCode is the closed taxonomy of structured backend/core errors.
type ErrorCode string

const (
	ErrNavigation           ErrorCode = "navigation_error"
	ErrElementNotFound      ErrorCode = "element_not_found"
	ErrElementStale         ErrorCode = "element_stale"
	ErrElementNotVisible    ErrorCode = "element_not_visible"
	ErrElementDisabled      ErrorCode = "element_disabled"
	ErrElementNotInteractable ErrorCode = "element_not_interactable"
	ErrInvalidElementType   ErrorCode = "invalid_element_type"
	ErrOptionNotFound       ErrorCode = "option_not_found"
	ErrSelectorInvalid      ErrorCode = "selector_invalid"
	ErrScript               ErrorCode = "script_error"
	ErrTimeout              ErrorCode = "timeout"
	ErrUnknownCommand       ErrorCode = "unknown_command"
	ErrInvalidRequest       ErrorCode = "invalid_request"
	ErrScanner              ErrorCode = "scanner_error"
	ErrConnectionLost       ErrorCode = "connection_lost"
	ErrNotReady             ErrorCode = "not_ready"
	ErrNotSupported         ErrorCode = "not_supported"
	ErrIO                   ErrorCode = "io_error"
	ErrSerialization        ErrorCode = "serialization_error"
	ErrInternal             ErrorCode = "internal_error"
)

// recoveryHints maps each taxonomy entry to its canned recovery hint.
var recoveryHints = map[ErrorCode]string{
	ErrNavigation:             "check the URL and your network connectivity",
	ErrElementNotFound:        "run observe first to refresh the scan context",
	ErrElementStale:           "run observe to rescan the page",
	ErrElementNotVisible:      "scroll the element into view or wait for it to appear",
	ErrElementDisabled:        "wait for the element to become enabled",
	ErrElementNotInteractable: "use --force or wait for the element to settle",
	ErrInvalidElementType:     "verify the element type matches the command",
	ErrOptionNotFound:         "list the select's options and retry with a valid value",
	ErrSelectorInvalid:        "check the css()/xpath() selector syntax",
	ErrScript:                 "check the in-page script for exceptions",
	ErrTimeout:                "increase --timeout or verify the condition can be met",
	ErrUnknownCommand:         "run help to list supported commands",
	ErrInvalidRequest:         "check the command's arguments",
	ErrScanner:                "the scanner runtime may need reinjection; retry",
	ErrConnectionLost:         "the browser connection dropped; relaunch the session",
	ErrNotReady:               "wait for the browser/session to finish launching",
	ErrNotSupported:           "this backend does not implement this operation",
	ErrIO:                     "check file permissions and available disk space",
	ErrSerialization:          "the payload could not be encoded/decoded as JSON",
	ErrInternal:               "an internal invariant was violated; please report it",
}

// Error is the structured taxonomy error surfaced to the user.
type Error struct {
	Code    ErrorCode
	Message string
	Details string
	Hint    string
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Hint: recoveryHints[code]}
}

func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ScannerData is the sum of payloads an Ok response may carry.
type ScannerData struct {
	Scan   *ScanResult   `json:"scan,omitempty"`
	Action *ActionResult `json:"action,omitempty"`
	Value  interface{}   `json:"value,omitempty"`
}

// ActionResult is the outcome of a non-scan Scanner/Browser/Session action.
type ActionResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Navigation bool   `json:"navigation,omitempty"`
	DOMChanges *Changes `json:"dom_changes,omitempty"`
}

// ScannerProtocolResponse is the full envelope returned across the wire
// boundary: either an Ok carrying ScannerData and warnings, or a structured
// Error.
type ScannerProtocolResponse struct {
	Status   string       `json:"status"`
	Data     *ScannerData `json:"data,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Code     ErrorCode    `json:"code,omitempty"`
	Message  string       `json:"message,omitempty"`
	Details  string       `json:"details,omitempty"`
	Hint     string       `json:"hint,omitempty"`
}

func Ok(data *ScannerData, warnings ...string) ScannerProtocolResponse {
	return ScannerProtocolResponse{Status: "ok", Data: data, Warnings: warnings}
}

func OkScan(scan ScanResult) ScannerProtocolResponse {
	return Ok(&ScannerData{Scan: &scan})
}

func OkAction(result ActionResult) ScannerProtocolResponse {
	return Ok(&ScannerData{Action: &result})
}

func FromError(err *Error) ScannerProtocolResponse {
	return ScannerProtocolResponse{
		Status:  "error",
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
		Hint:    err.Hint,
	}
}

func (r ScannerProtocolResponse) IsOk() bool { return r.Status == "ok" }

// Err reconstructs a structured Error from an error-status response.
func (r ScannerProtocolResponse) Err() *Error {
	if r.IsOk() {
		return nil
	}
	return &Error{Code: r.Code, Message: r.Message, Details: r.Details, Hint: r.Hint}
}
