package models

// ClaimStatus is the review state of a claim.
type ClaimStatus string

const (
	StatusPending  ClaimStatus = "PENDING"
	StatusVerified ClaimStatus = "VERIFIED"
	StatusRejected ClaimStatus = "REJECTED"
	StatusResolved ClaimStatus = "RESOLVED"
)

func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusResolved:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// DetectionType tells whether a claim came from the automatic detector or a person.
type DetectionType string

const (
	DetectionAutomatic DetectionType = "AUTOMATIC"
	DetectionManual    DetectionType = "MANUAL"
)

func (d DetectionType) Valid() bool {
	return d == DetectionAutomatic || d == DetectionManual
}

var (
	ClaimStatuses  = []ClaimStatus{StatusPending, StatusVerified, StatusRejected, StatusResolved}
	Severities     = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	DetectionTypes = []DetectionType{DetectionAutomatic, DetectionManual}
)
