// Package merge applies an incoming representation onto a stored record.
//
// Two strategies exist. FullReplace overwrites every mutable field and an
// absent (nil) incoming value clears the target. PartialMerge applies only
// the fields that are present. Neither strategy touches ids, creation
// times or owner references, and a stored password hash is only ever
// replaced by re-hashing a non-empty incoming password.
package merge

import (
	"time"

	"github.com/kinganjia/backend/internal/server/models"
)

type Strategy int

const (
	FullReplace Strategy = iota
	PartialMerge
)

func (s Strategy) String() string {
	if s == PartialMerge {
		return "partial"
	}
	return "full"
}

// Value merges a non-nullable field. Under FullReplace an absent src resets
// dst to the zero value.
func Value[T any](s Strategy, dst *T, src *T) {
	if src != nil {
		*dst = *src
		return
	}
	if s == FullReplace {
		var zero T
		*dst = zero
	}
}

// Nullable merges an optional field. Under FullReplace an absent src sets
// dst to nil.
func Nullable[T any](s Strategy, dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
		return
	}
	if s == FullReplace {
		*dst = nil
	}
}

// ApplyUser merges in onto u. It returns the raw password to hash when the
// input carries a non-empty one; an absent or empty password keeps the
// stored hash under both strategies.
func ApplyUser(s Strategy, u *models.User, in models.UserInput) (rawPassword string, rehash bool) {
	Value(s, &u.Email, in.Email)
	Value(s, &u.FirstName, in.FirstName)
	Value(s, &u.LastName, in.LastName)

	if in.Password != nil && *in.Password != "" {
		return *in.Password, true
	}
	return "", false
}

// ApplyClaim merges in onto c. The owner reference and nested images are
// handled by the caller.
func ApplyClaim(s Strategy, c *models.Claim, in models.ClaimInput) {
	Value(s, &c.Location, in.Location)
	Nullable(s, &c.Latitude, in.Latitude)
	Nullable(s, &c.Longitude, in.Longitude)
	Nullable(s, &c.Status, in.Status)
	Value(s, &c.Hash, in.Hash)
	Nullable(s, &c.Severity, in.Severity)
	Nullable(s, &c.Description, in.Description)
	Nullable(s, &c.DetectionType, in.DetectionType)

	var confirmed *time.Time
	if in.ConfirmationTime != nil {
		t := in.ConfirmationTime.Time
		confirmed = &t
	}
	Nullable(s, &c.ConfirmationTime, confirmed)
}

// ApplyImage merges in onto i. The claim reference is handled by the caller.
func ApplyImage(s Strategy, i *models.Image, in models.ImageInput) {
	Value(s, &i.URL, in.URL)
	Value(s, &i.Hash, in.Hash)

	var ts *time.Time
	if in.Timestamp != nil {
		t := in.Timestamp.Time
		ts = &t
	}
	Nullable(s, &i.Timestamp, ts)
}

// Stamp marks a record as newly created.
func Stamp(now time.Time, createdAt, updatedAt *time.Time) {
	*createdAt = now
	*updatedAt = now
}

// Touch marks a successful mutating save. createdAt is never written here;
// the version is bumped by the repository when the row is written.
func Touch(now time.Time, updatedAt *time.Time) {
	*updatedAt = now
}
