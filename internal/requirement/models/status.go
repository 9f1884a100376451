package models

import (
	"fmt"
	"strings"

	e "github.com/talentops/rfh/internal/requirement/errors"
)

// Status is one value of the fixed workflow enumeration. The workflow is a
// flat re-assignable enumeration: any status may follow any other, subject
// only to the role gate on On_Hold.
type Status string

const (
	StatusOpen                Status = "Open"
	StatusCandidateSubmission Status = "Candidate_Submission"
	StatusInterviewScheduled  Status = "Interview_Scheduled"
	StatusOfferRecommendation Status = "Offer_Recommendation"
	StatusOnBoarding          Status = "On_Boarding"
	StatusOnHold              Status = "On_Hold"
	StatusClosed              Status = "Closed"
)

// AllStatuses lists every workflow status in display order.
var AllStatuses = []Status{
	StatusOpen,
	StatusCandidateSubmission,
	StatusInterviewScheduled,
	StatusOfferRecommendation,
	StatusOnBoarding,
	StatusOnHold,
	StatusClosed,
}

// NormalizeStatus maps a raw status token to its canonical comparison form:
// lower case, underscores treated as spaces, runs of whitespace collapsed.
// It is idempotent and is the single form used for equality and filtering.
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), " ")
}

// DisplayStatus renders a status token as a human-readable label
// ("On_Hold" -> "On Hold").
func DisplayStatus(s Status) string {
	words := strings.Fields(NormalizeStatus(string(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParseStatus resolves a raw token against the enumeration using normalized
// comparison, so "on hold", "ON HOLD" and "On_Hold" all parse to
// StatusOnHold.
func ParseStatus(raw string) (Status, error) {
	n := NormalizeStatus(raw)
	for _, s := range AllStatuses {
		if NormalizeStatus(string(s)) == n {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, raw)
}

// StatusEqual compares two raw status tokens in normalized form.
func StatusEqual(a, b string) bool {
	return NormalizeStatus(a) == NormalizeStatus(b)
}

// CanTransition applies the workflow's role gate. Recruiters may neither
// move a requirement into On_Hold nor act on one that is already on hold;
// admins may move any status to any other. There is no sequencing
// constraint beyond that.
func CanTransition(role Role, current, next Status) error {
	if role == RoleRecruiter && (current == StatusOnHold || next == StatusOnHold) {
		return fmt.Errorf("%w: recruiters cannot modify on-hold requirements", e.ErrForbidden)
	}
	return nil
}
