package models

import (
	"strings"
	"time"

	"github.com/kinganjia/backend/internal/timex"
)

// Claim is an incident report owned by exactly one user.
type Claim struct {
	ID               int64
	UserID           int64
	Location         string
	Latitude         *float64
	Longitude        *float64
	Status           *ClaimStatus
	Hash             string
	Severity         *Severity
	Description      *string
	DetectionType    *DetectionType
	ConfirmationTime *time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Ref is a nested {"id": n} reference to an owning record.
type Ref struct {
	ID *int64 `json:"id"`
}

// ClaimInput is an incoming claim representation. Images listed here are
// created or merged together with the claim.
type ClaimInput struct {
	UserID           *int64           `json:"userId"`
	User             *Ref             `json:"user"`
	Location         *string          `json:"location" binding:"omitempty,max=255"`
	Latitude         *float64         `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude        *float64         `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Status           *ClaimStatus     `json:"status" binding:"omitempty,oneof=PENDING VERIFIED REJECTED RESOLVED"`
	Hash             *string          `json:"hash" binding:"omitempty,max=255"`
	Severity         *Severity        `json:"severity" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Description      *string          `json:"description"`
	DetectionType    *DetectionType   `json:"detectionType" binding:"omitempty,oneof=AUTOMATIC MANUAL"`
	ConfirmationTime *timex.Timestamp `json:"confirmationTime"`
	Images           []ImageInput     `json:"images" binding:"omitempty,dive"`
}

// OwnerID returns the referenced user id from either userId or user.id.
func (in ClaimInput) OwnerID() *int64 {
	if in.UserID != nil {
		return in.UserID
	}
	if in.User != nil {
		return in.User.ID
	}
	return nil
}

func (c *Claim) Validate() map[string]string {
	errs := map[string]string{}
	if c.UserID == 0 {
		errs["userId"] = "User is required"
	}
	if strings.TrimSpace(c.Location) == "" {
		errs["location"] = "Location is required"
	}
	if c.Latitude == nil {
		errs["latitude"] = "Latitude is required"
	}
	if c.Longitude == nil {
		errs["longitude"] = "Longitude is required"
	}
	if strings.TrimSpace(c.Hash) == "" {
		errs["hash"] = "Hash is required"
	}
	if c.Status != nil && !c.Status.Valid() {
		errs["status"] = "Unknown status"
	}
	if c.Severity != nil && !c.Severity.Valid() {
		errs["severity"] = "Unknown severity"
	}
	if c.DetectionType != nil && !c.DetectionType.Valid() {
		errs["detectionType"] = "Unknown detection type"
	}
	return errs
}
