package models

import (
	"strings"
	"time"

	"github.com/kinganjia/backend/internal/timex"
)

// Image is evidence attached to exactly one claim.
type Image struct {
	ID        int64
	ClaimID   int64
	URL       string
	Hash      string
	Timestamp *time.Time
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ImageInput is an incoming image representation. ID is only meaningful
// for images nested in a ClaimInput, where it selects an existing image.
type ImageInput struct {
	ID            *int64           `json:"id"`
	ClaimID       *int64           `json:"claimId"`
	LegacyClaimID *int64           `json:"claim_id"`
	Claim         *Ref             `json:"claim"`
	URL           *string          `json:"url" binding:"omitempty,max=2048"`
	Hash          *string          `json:"hash" binding:"omitempty,max=255"`
	Timestamp     *timex.Timestamp `json:"timestamp"`
}

// OwnerID returns the referenced claim id from claimId, claim_id or claim.id.
func (in ImageInput) OwnerID() *int64 {
	switch {
	case in.ClaimID != nil:
		return in.ClaimID
	case in.LegacyClaimID != nil:
		return in.LegacyClaimID
	case in.Claim != nil:
		return in.Claim.ID
	}
	return nil
}

func (i *Image) Validate() map[string]string {
	errs := map[string]string{}
	if i.ClaimID == 0 {
		errs["claimId"] = "Claim is required"
	}
	if strings.TrimSpace(i.URL) == "" {
		errs["url"] = "URL is required"
	}
	if strings.TrimSpace(i.Hash) == "" {
		errs["hash"] = "Hash is required"
	}
	return errs
}
