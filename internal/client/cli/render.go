package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/kinganjia/backend/internal/server/models"
)

func orDash[T ~string](v *T) string {
	if v == nil {
		return "-"
	}
	return string(*v)
}

func printClaims(w io.Writer, list []models.ClaimView) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No claims")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLOCATION\tSTATUS\tSEVERITY\tIMAGES\tOWNER\tCREATED")
	for _, c := range list {
		owner := "-"
		if c.User != nil {
			owner = c.User.Email
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.ID, c.Location, orDash(c.Status), orDash(c.Severity), c.ImageCount, owner, c.CreatedAt)
	}
	_ = tw.Flush()
}

func printClaim(w io.Writer, c *models.ClaimView) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", c.ID)
	fmt.Fprintf(tw, "Location:\t%s\n", c.Location)
	if c.Latitude != nil && c.Longitude != nil {
		fmt.Fprintf(tw, "Coordinates:\t%.6f, %.6f\n", *c.Latitude, *c.Longitude)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", orDash(c.Status))
	fmt.Fprintf(tw, "Severity:\t%s\n", orDash(c.Severity))
	fmt.Fprintf(tw, "Detection:\t%s\n", orDash(c.DetectionType))
	fmt.Fprintf(tw, "Hash:\t%s\n", c.Hash)
	if c.Description != nil {
		fmt.Fprintf(tw, "Description:\t%s\n", *c.Description)
	}
	if c.User != nil {
		fmt.Fprintf(tw, "Owner:\t%s %s <%s>\n", c.User.FirstName, c.User.LastName, c.User.Email)
	}
	fmt.Fprintf(tw, "Version:\t%d\n", c.Version)
	fmt.Fprintf(tw, "Images:\t%d\n", c.ImageCount)
	_ = tw.Flush()
}

func printImages(w io.Writer, list []models.ImageView) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No images")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURL\tHASH\tTAKEN")
	for _, i := range list {
		taken := "-"
		if i.Timestamp != nil {
			taken = i.Timestamp.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i.ID, i.URL, i.Hash, taken)
	}
	_ = tw.Flush()
}

func printStats(w io.Writer, s *models.ClaimStats) {
	fmt.Fprintf(w, "Total claims: %d\n", s.Total)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	statuses := make([]string, 0, len(s.ByStatus))
	for st := range s.ByStatus {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	for _, st := range statuses {
		fmt.Fprintf(tw, "  status %s\t%d\n", st, s.ByStatus[models.ClaimStatus(st)])
	}
	for _, lc := range s.ByLocation {
		fmt.Fprintf(tw, "  location %s\t%d\n", lc.Location, lc.Count)
	}
	_ = tw.Flush()
}
