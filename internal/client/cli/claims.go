package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kinganjia/backend/internal/filex"
	"github.com/kinganjia/backend/internal/netx"
	"github.com/kinganjia/backend/internal/server/models"
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func (a *App) Claims(ctx context.Context) error {
	list, err := a.api.Claims(ctx)
	if err != nil {
		return err
	}
	printClaims(a.out, list)
	return nil
}

func (a *App) Claim(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("claim <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, err := a.api.Claim(ctx, id)
	if err != nil {
		return err
	}
	printClaim(a.out, c)
	return nil
}

func (a *App) Images(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("images <claimId>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	list, err := a.api.ClaimImages(ctx, id)
	if err != nil {
		return err
	}
	printImages(a.out, list)
	return nil
}

// NewClaim files a claim on behalf of the logged-in operator.
func (a *App) NewClaim(ctx context.Context) error {
	location, err := getSimpleText(a.reader, "Location", a.out)
	if err != nil {
		return err
	}
	lat, err := a.readFloat("Latitude")
	if err != nil {
		return err
	}
	lon, err := a.readFloat("Longitude")
	if err != nil {
		return err
	}
	hash, err := getSimpleText(a.reader, "Evidence hash", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}

	a.mu.Lock()
	owner := a.user.ID
	a.mu.Unlock()

	in := models.ClaimInput{
		UserID:    &owner,
		Location:  &location,
		Latitude:  &lat,
		Longitude: &lon,
		Hash:      &hash,
	}
	if description != "" {
		in.Description = &description
	}

	c, err := a.api.CreateClaim(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created claim #%d\n", c.ID)
	return nil
}

func (a *App) readFloat(prompt string) (float64, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", strings.ToLower(prompt), s)
	}
	return f, nil
}

// SetStatus moves a claim to a new status using the version just read, so
// a concurrent edit surfaces as a conflict.
func (a *App) SetStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("status <id> <PENDING|VERIFIED|REJECTED|RESOLVED>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	st := models.ClaimStatus(strings.ToUpper(args[1]))
	if !st.Valid() {
		return fmt.Errorf("unknown status %q", args[1])
	}

	cur, err := a.api.Claim(ctx, id)
	if err != nil {
		return err
	}
	c, err := a.api.UpdateClaimStatus(ctx, id, cur.Version, st)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Claim #%d is now %s (version %d)\n", c.ID, st, c.Version)
	return nil
}

func (a *App) DeleteClaim(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.api.DeleteClaim(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted claim #%d\n", id)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}
	printStats(a.out, s)
	return nil
}

// Upload sends a local file to object storage through a presigned URL and
// records it as an image of the claim, keyed by its SHA-256.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("upload <claimId> <file>")
	}
	claimID, err := parseID(args[0])
	if err != nil {
		return err
	}
	ev, err := filex.ReadEvidence(args[1])
	if err != nil {
		return err
	}

	up, err := a.api.PresignUpload(ctx, claimID)
	if err != nil {
		return err
	}
	if err := netx.UploadToPresignedURL(ctx, a.api.HTTPClient(), up.URL, ev.ContentType, ev.Data); err != nil {
		return err
	}

	img, err := a.api.CreateImage(ctx, claimID, up.Key, ev.SHA256)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded image #%d (%d bytes, sha256 %s)\n", img.ID, len(ev.Data), ev.SHA256)
	return nil
}
