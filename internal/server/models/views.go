package models

import "github.com/kinganjia/backend/internal/timex"

// UserSummary is the owner block embedded in claim and image projections.
type UserSummary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UserView struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Version   int64           `json:"version"`
	CreatedAt timex.Timestamp `json:"createdAt"`
	UpdatedAt timex.Timestamp `json:"updatedAt"`
	Claims    []ClaimSummary  `json:"claims,omitempty"`
}

type ClaimSummary struct {
	ID            int64          `json:"id"`
	Location      string         `json:"location"`
	Status        *ClaimStatus   `json:"status,omitempty"`
	Hash          string         `json:"hash"`
	Severity      *Severity      `json:"severity,omitempty"`
	Description   *string        `json:"description,omitempty"`
	DetectionType *DetectionType `json:"detectionType,omitempty"`
}

type ImageSummary struct {
	ID   int64  `json:"id"`
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

// ClaimView is a claim with its owner and image summaries. User is nil when
// the owner no longer exists.
type ClaimView struct {
	ID               int64            `json:"id"`
	Location         string           `json:"location"`
	Latitude         *float64         `json:"latitude,omitempty"`
	Longitude        *float64         `json:"longitude,omitempty"`
	Status           *ClaimStatus     `json:"status,omitempty"`
	Hash             string           `json:"hash"`
	Severity         *Severity        `json:"severity,omitempty"`
	Description      *string          `json:"description,omitempty"`
	DetectionType    *DetectionType   `json:"detectionType,omitempty"`
	ConfirmationTime *timex.Timestamp `json:"confirmationTime,omitempty"`
	Version          int64            `json:"version"`
	CreatedAt        timex.Timestamp  `json:"createdAt"`
	UpdatedAt        timex.Timestamp  `json:"updatedAt"`
	User             *UserSummary     `json:"user,omitempty"`
	Images           []ImageSummary   `json:"images"`
	ImageCount       int              `json:"imageCount"`
}

type ImageView struct {
	ID        int64            `json:"id"`
	URL       string           `json:"url"`
	Hash      string           `json:"hash"`
	Timestamp *timex.Timestamp `json:"timestamp,omitempty"`
	Version   int64            `json:"version"`
	CreatedAt timex.Timestamp  `json:"createdAt"`
	UpdatedAt timex.Timestamp  `json:"updatedAt"`
	Claim     *ClaimSummary    `json:"claim,omitempty"`
	User      *UserSummary     `json:"user,omitempty"`
}

func SummarizeUser(u *User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

// NewUserView never exposes the password hash.
func NewUserView(u *User, claims []Claim) UserView {
	v := UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Version:   u.Version,
		CreatedAt: timex.NewTimestamp(u.CreatedAt),
		UpdatedAt: timex.NewTimestamp(u.UpdatedAt),
	}
	for i := range claims {
		v.Claims = append(v.Claims, *SummarizeClaim(&claims[i]))
	}
	return v
}

func SummarizeClaim(c *Claim) *ClaimSummary {
	if c == nil {
		return nil
	}
	return &ClaimSummary{
		ID:            c.ID,
		Location:      c.Location,
		Status:        c.Status,
		Hash:          c.Hash,
		Severity:      c.Severity,
		Description:   c.Description,
		DetectionType: c.DetectionType,
	}
}

func NewClaimView(c *Claim, owner *User, images []Image) ClaimView {
	v := ClaimView{
		ID:               c.ID,
		Location:         c.Location,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		Status:           c.Status,
		Hash:             c.Hash,
		Severity:         c.Severity,
		Description:      c.Description,
		DetectionType:    c.DetectionType,
		ConfirmationTime: timex.Ptr(c.ConfirmationTime),
		Version:          c.Version,
		CreatedAt:        timex.NewTimestamp(c.CreatedAt),
		UpdatedAt:        timex.NewTimestamp(c.UpdatedAt),
		User:             SummarizeUser(owner),
		Images:           make([]ImageSummary, 0, len(images)),
		ImageCount:       len(images),
	}
	for _, img := range images {
		v.Images = append(v.Images, ImageSummary{ID: img.ID, URL: img.URL, Hash: img.Hash})
	}
	return v
}

// NewImageView projects an image with its claim and the claim's owner.
// Either may be nil once orphaned.
func NewImageView(i *Image, claim *Claim, owner *User) ImageView {
	return ImageView{
		ID:        i.ID,
		URL:       i.URL,
		Hash:      i.Hash,
		Timestamp: timex.Ptr(i.Timestamp),
		Version:   i.Version,
		CreatedAt: timex.NewTimestamp(i.CreatedAt),
		UpdatedAt: timex.NewTimestamp(i.UpdatedAt),
		Claim:     SummarizeClaim(claim),
		User:      SummarizeUser(owner),
	}
}
