package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/timex"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Session struct {
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	ExpiresIn int64           `json:"expiresIn"`
	User      models.UserView `json:"user"`
}

type Upload struct {
	Key       string          `json:"key"`
	URL       string          `json:"url"`
	ExpiresAt timex.Timestamp `json:"expiresAt"`
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, r RegisterRequest) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/register", r, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/login", in, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (*models.UserView, error) {
	var u models.UserView
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout tells the server and forgets the token even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	return c.do(ctx, http.MethodPost, apiPrefix+"/auth/logout", nil, nil)
}

func (c *Client) Claims(ctx context.Context) ([]models.ClaimView, error) {
	var out []models.ClaimView
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/claims", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Claim(ctx context.Context, id int64) (*models.ClaimView, error) {
	var v models.ClaimView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/claims/%d", apiPrefix, id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) ClaimImages(ctx context.Context, claimID int64) ([]models.ImageView, error) {
	var out []models.ImageView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/claims/%d/images", apiPrefix, claimID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateClaim(ctx context.Context, in models.ClaimInput) (*models.ClaimView, error) {
	var v models.ClaimView
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/claims", in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateClaimStatus patches only the status, guarded by the version the
// caller last saw.
func (c *Client) UpdateClaimStatus(ctx context.Context, id, version int64, status models.ClaimStatus) (*models.ClaimView, error) {
	var v models.ClaimView
	in := models.ClaimInput{Status: &status}
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("%s/claims/%d", apiPrefix, id), in, &v,
		common.IfMatchHeader, strconv.Quote(strconv.FormatInt(version, 10)))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) DeleteClaim(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/claims/%d", apiPrefix, id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*models.ClaimStats, error) {
	var s models.ClaimStats
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/claims/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) PresignUpload(ctx context.Context, claimID int64) (*Upload, error) {
	var u Upload
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/images/presign", map[string]int64{"claimId": claimID}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CreateImage(ctx context.Context, claimID int64, url, hash string) (*models.ImageView, error) {
	var v models.ImageView
	in := models.ImageInput{ClaimID: &claimID, URL: &url, Hash: &hash}
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/images", in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
