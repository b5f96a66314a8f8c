package models

import (
	"cmp"
	"slices"
)

// ClaimStats aggregates claims for the admin dashboard.
type ClaimStats struct {
	Total           int                   `json:"total"`
	ByStatus        map[ClaimStatus]int   `json:"byStatus"`
	BySeverity      map[Severity]int      `json:"bySeverity"`
	ByDetectionType map[DetectionType]int `json:"byDetectionType"`
	ByLocation      []LocationCount       `json:"byLocation"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// NewClaimStats counts claims per status, severity, detection type and
// location. Locations are ordered by count, then name.
func NewClaimStats(claims []Claim) *ClaimStats {
	st := &ClaimStats{
		Total:           len(claims),
		ByStatus:        make(map[ClaimStatus]int),
		BySeverity:      make(map[Severity]int),
		ByDetectionType: make(map[DetectionType]int),
		ByLocation:      []LocationCount{},
	}

	locations := map[string]int{}
	for _, c := range claims {
		if c.Status != nil {
			st.ByStatus[*c.Status]++
		}
		if c.Severity != nil {
			st.BySeverity[*c.Severity]++
		}
		if c.DetectionType != nil {
			st.ByDetectionType[*c.DetectionType]++
		}
		locations[c.Location]++
	}

	for loc, n := range locations {
		st.ByLocation = append(st.ByLocation, LocationCount{Location: loc, Count: n})
	}
	slices.SortFunc(st.ByLocation, func(a, b LocationCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})
	return st
}
