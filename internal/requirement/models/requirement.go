// Package models defines the core domain models for the requirement (RFH)
// tracker: the Requirement aggregate, the status workflow enumeration,
// the enum-value registry and the SLA step configuration.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role identifies the actor class performing an operation.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
)

// Actor is the authenticated identity attached to a mutating operation.
type Actor struct {
	ID   string
	Role Role
}

// Requirement is the aggregate root for one job requisition. Assignment,
// status and archival are attributes of the record itself, not separately
// owned entities.
type Requirement struct {
	// RequestID is the unique, human-readable identifier assigned at
	// creation. It never changes afterwards.
	RequestID string `gorm:"primaryKey;size:32"`

	JobTitle         string `gorm:"size:256;index"`
	Company          string `gorm:"size:128;index"`
	Department       string `gorm:"size:128"`
	Location         string `gorm:"size:128"`
	Shift            string `gorm:"size:64"`
	JobType          string `gorm:"size:64"`
	HiringManager    string `gorm:"size:128"`
	ExperienceRange  string `gorm:"size:64"`
	Skills           []string `gorm:"serializer:json"`
	MinQualification string `gorm:"size:256"`
	Positions        int    `gorm:"check:positions >= 0"`
	Budget           string `gorm:"size:64"`
	Priority         string `gorm:"size:32"`
	TentativeDOJ     string `gorm:"size:32"`
	Remarks          string `gorm:"size:3000"`

	// Provenance: a requirement either originates from an inbound email or
	// was entered manually.
	EmailSubject        string `gorm:"size:512"`
	EmailSender         string `gorm:"size:256"`
	IsManualRequirement bool

	// Optional job-description attachment.
	JDPath     string `gorm:"size:512"`
	JDFilename string `gorm:"size:256"`
	JDText     string

	// JobPosted is set once the posting webhook has been delivered.
	JobPosted bool

	Status             Status   `gorm:"size:32;index"`
	AssignedRecruiters []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	DeletedBy string         `gorm:"size:128"`
}

// Archived reports whether the requirement is soft-deleted.
func (r *Requirement) Archived() bool {
	return r.DeletedAt.Valid
}

// RequirementUpdate represents the fields that can be updated on a
// Requirement. Pointer types allow partial updates; RequestID itself is
// immutable and only used to address the record.
type RequirementUpdate struct {
	RequestID string

	JobTitle         *string
	Company          *string
	Department       *string
	Location         *string
	Shift            *string
	JobType          *string
	HiringManager    *string
	ExperienceRange  *string
	Skills           *[]string
	MinQualification *string
	Positions        *int
	Budget           *string
	Priority         *string
	TentativeDOJ     *string
	Remarks          *string

	JDPath     *string
	JDFilename *string
	JDText     *string
	JobPosted  *bool

	Status             *Status
	AssignedRecruiters *[]string
}

// MatchType classifies the result of a duplicate check.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchSimilar MatchType = "similar"
	MatchNone    MatchType = ""
)

// CreateResult is the outcome of a gated create: either a committed
// requirement, or the set of candidate duplicates for a human decision.
// Exactly one branch is populated.
type CreateResult struct {
	Requirement *Requirement
	Duplicates  []*Requirement
	MatchType   MatchType
}

// Created reports whether the requirement was committed.
func (r *CreateResult) Created() bool {
	return r.Requirement != nil
}

// TrackerStats summarizes the tracker for the dashboard: active counts per
// normalized status plus totals.
type TrackerStats struct {
	ByStatus      map[string]int64
	TotalActive   int64
	TotalArchived int64
}

// ListFilter narrows tracker list queries. Status is compared in normalized
// form; empty fields are ignored.
type ListFilter struct {
	Status    string
	Company   string
	Recruiter string
}
