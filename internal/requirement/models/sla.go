package models

import (
	"time"
)

// SLAConfig is the time budget annotated on one workflow step. Entries are
// descriptive only: they never block a transition, external reporting reads
// them to flag breaches.
type SLAConfig struct {
	StepName    string `gorm:"primaryKey;size:64"`
	SLAHours    int
	SLADays     int
	Description string `gorm:"size:512"`
	Priority    int
	UpdatedAt   time.Time
}

// DefaultSLAConfig returns the shipped per-step budgets, one entry per
// workflow step that has a turn-around expectation (Closed is terminal and
// carries none).
func DefaultSLAConfig() []*SLAConfig {
	return []*SLAConfig{
		{StepName: string(StatusOpen), SLAHours: 48, SLADays: 2, Description: "Assign recruiters and begin sourcing", Priority: 1},
		{StepName: string(StatusCandidateSubmission), SLAHours: 120, SLADays: 5, Description: "Submit first candidate profiles", Priority: 2},
		{StepName: string(StatusInterviewScheduled), SLAHours: 72, SLADays: 3, Description: "Complete scheduled interview rounds", Priority: 3},
		{StepName: string(StatusOfferRecommendation), SLAHours: 48, SLADays: 2, Description: "Release offer recommendation", Priority: 4},
		{StepName: string(StatusOnBoarding), SLAHours: 168, SLADays: 7, Description: "Candidate joining and onboarding", Priority: 5},
		{StepName: string(StatusOnHold), SLAHours: 0, SLADays: 0, Description: "No budget while on hold", Priority: 6},
	}
}
