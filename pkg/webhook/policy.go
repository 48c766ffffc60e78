package webhook

import (
	"golang.org/x/mod/semver"
	"strings"
)

// FailurePolicy decides whether the outcome of a send is reported to the caller as an error.
type FailurePolicy interface {
	Check(Outcome) error
}

// RaiseOnFailure returns a NotificationError for any outcome with a status code of 400 or higher.
type RaiseOnFailure struct{}

func (RaiseOnFailure) Check(o Outcome) error {
	if o.Failed() {
		return &NotificationError{StatusCode: o.StatusCode, Body: o.Body}
	}
	return nil
}

// NeverRaise accepts every outcome. This matches hosts that predate failure reporting.
type NeverRaise struct{}

func (NeverRaise) Check(Outcome) error {
	return nil
}

var (
	_ FailurePolicy = RaiseOnFailure{}
	_ FailurePolicy = NeverRaise{}
)

// FailureReportingSince is the first host version that expects notification failures to be reported.
const FailureReportingSince = "v2.17.2"

// PolicyFor returns the FailurePolicy matching the host version: RaiseOnFailure from FailureReportingSince
// onwards, NeverRaise for older versions or when the version is empty or can't be parsed.
func PolicyFor(hostVersion string) FailurePolicy {
	v := strings.TrimSpace(hostVersion)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Compare(v, FailureReportingSince) < 0 {
		return NeverRaise{}
	}
	return RaiseOnFailure{}
}
