package model

// Status is the verdict label produced by the scan oracle.
type Status string

const (
	// StatusSafe means the oracle found nothing suspicious.
	StatusSafe Status = "safe"

	// StatusPhishing means the target was judged to be a phishing attempt.
	// This is the only status that counts toward ThreatsBlocked.
	StatusPhishing Status = "phishing"

	// StatusSuspicious means the target looks risky but was not labeled phishing.
	StatusSuspicious Status = "suspicious"

	// StatusAllowed is returned by the backend for explicitly allow-listed targets.
	StatusAllowed Status = "allowed"

	// StatusMalicious is used by file and image scans for harmful content.
	StatusMalicious Status = "malicious"

	// StatusError is synthesized locally whenever the oracle could not be reached
	// or answered with something unusable. It is never sent by the backend.
	StatusError Status = "error"
)

// ThreatScoreThreshold is the score at or above which a verdict is treated as
// dangerous for blocking downloads and showing the page banner.
const ThreatScoreThreshold = 70

// allStatuses lists every status in display order.
var allStatuses = []Status{
	StatusSafe,
	StatusAllowed,
	StatusSuspicious,
	StatusPhishing,
	StatusMalicious,
	StatusError,
}

// Statuses returns every known status in display order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// ScanResult is a single verdict. It drives exactly one UI update and is
// never modified after it is received.
type ScanResult struct {
	// Status is the verdict label.
	Status Status `json:"status"`

	// Score is the threat score in the range 0-100.
	Score int `json:"score"`

	// Details is a human-readable explanation from the oracle.
	Details string `json:"details"`
}

// Internal page and failure details.
const (
	internalPageDetails = "Browser internal page"
	unreachableDetails  = "Unable to scan"
)

// SafeInternal returns the synthetic verdict used for browser-internal pages.
func SafeInternal() ScanResult {
	return ScanResult{Status: StatusSafe, Score: 0, Details: internalPageDetails}
}

// Failure returns an error verdict with the given details.
// An empty details string is replaced with a generic message.
func Failure(details string) ScanResult {
	if details == "" {
		details = unreachableDetails
	}
	return ScanResult{Status: StatusError, Score: 0, Details: details}
}

// IsError reports whether the verdict was synthesized from a failure.
func (r ScanResult) IsError() bool {
	return r.Status == StatusError
}

// IsPhishing reports whether the oracle labeled the target phishing.
func (r ScanResult) IsPhishing() bool {
	return r.Status == StatusPhishing
}

// IsSafe reports whether the verdict is rendered as safe by the frontend.
// Both safe and allowed count.
func (r ScanResult) IsSafe() bool {
	return r.Status == StatusSafe || r.Status == StatusAllowed
}

// IsThreat reports whether an image verdict should be obscured.
func (r ScanResult) IsThreat() bool {
	return r.Status == StatusMalicious || r.Status == StatusPhishing
}

// BlocksDownload reports whether a download from the scanned source must be
// cancelled. Either condition alone is sufficient.
func (r ScanResult) BlocksDownload() bool {
	return r.Status == StatusPhishing || r.Score >= ThreatScoreThreshold
}

// WarrantsBanner reports whether the content monitor should inject the
// full-width warning banner. Both conditions are required.
func (r ScanResult) WarrantsBanner() bool {
	return r.Status == StatusPhishing && r.Score >= ThreatScoreThreshold
}

// Normalize clamps the score into 0-100 and turns unknown statuses into an
// error verdict. The backend contract only guarantees the JSON shape.
func (r ScanResult) Normalize() ScanResult {
	if !r.Status.Valid() {
		return Failure("Unexpected verdict " + string(r.Status))
	}
	switch {
	case r.Score < 0:
		r.Score = 0
	case r.Score > 100:
		r.Score = 100
	}
	return r
}
