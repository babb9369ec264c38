package model

// Phase is the claimant's contractual standing at an event's date
type Phase string

const (
	PhasePreContract   Phase = "PRE_CONTRACT"
	PhaseWaitingPeriod Phase = "WAITING_PERIOD"
	PhaseCoveredPeriod Phase = "COVERED_PERIOD"
)

// Role classifies how an event relates to the disputed claim
type Role string

const (
	RoleClaimCore  Role = "CLAIM_CORE"
	RoleEtiology   Role = "ETIOLOGY"
	RoleRiskFactor Role = "RISK_FACTOR"
	RoleBackground Role = "BACKGROUND"
)

// Duty is the disclosure-obligation judgment for an event
type Duty string

const (
	DutyNone               Duty = "NONE"
	DutyPotential          Duty = "POTENTIAL"
	DutyViolationCandidate Duty = "VIOLATION_CANDIDATE"
)

// DisputeTag is the scored judgment attached to one timeline event.
// Value semantics: a tag is never mutated after creation; episode
// aggregation replaces it only with a strictly higher-importance tag.
type DisputeTag struct {
	Phase      Phase    `json:"phase"`
	Role       Role     `json:"role"`
	Duty       Duty     `json:"duty_to_disclose"`
	Importance float64  `json:"importance_score"` // [0,1]
	Reasons    []string `json:"reasons,omitempty"`
}
