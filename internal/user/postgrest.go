package user

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sitesmith/builder-front/internal/postgrest"
)

// userRow mirrors the User table in the PostgREST schema
type userRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	Image     string `json:"image,omitempty"`
	Provider  string `json:"provider,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (r userRow) toUser() User {
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return User{
		ID:        r.ID,
		Email:     r.Email,
		Username:  r.Username,
		Image:     r.Image,
		CreatedAt: createdAt,
	}
}

// PostgRESTRepository persists users through the PostgREST gateway
type PostgRESTRepository struct {
	client *postgrest.Client
}

// NewPostgRESTRepository creates a repository over an existing client
func NewPostgRESTRepository(client *postgrest.Client) *PostgRESTRepository {
	return &PostgRESTRepository{client: client}
}

func (p *PostgRESTRepository) findByEmail(ctx context.Context, email string) (User, bool, error) {
	query := url.Values{}
	query.Set("email", postgrest.Eq(email))
	query.Set("limit", "1")

	var rows []userRow
	if err := p.client.Select(ctx, "User", query, &rows); err != nil {
		return User{}, false, fmt.Errorf("looking up user by email: %w", err)
	}
	if len(rows) == 0 {
		return User{}, false, nil
	}
	return rows[0].toUser(), true, nil
}

func (p *PostgRESTRepository) createOrLogin(ctx context.Context, email, username, image, provider string) (User, error) {
	if email == "" {
		return User{}, fmt.Errorf("email is required")
	}

	existing, found, err := p.findByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if found {
		return existing, nil
	}

	row := userRow{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		Image:    image,
		Provider: provider,
	}
	var created []userRow
	if err := p.client.Insert(ctx, "User", row, &created); err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	if len(created) == 0 {
		return User{}, fmt.Errorf("creating user: empty representation returned")
	}
	return created[0].toUser(), nil
}

// CreateOrLoginWithOAuth implements Repository
func (p *PostgRESTRepository) CreateOrLoginWithOAuth(ctx context.Context, profile OAuthProfile) (User, error) {
	image := ""
	if len(profile.Photos) > 0 {
		image = profile.Photos[0].Value
	}
	return p.createOrLogin(ctx, profile.Email(), profile.DisplayName, image, profile.Provider)
}

// CreateOrLoginWithDev implements Repository
func (p *PostgRESTRepository) CreateOrLoginWithDev(ctx context.Context, email string) (User, error) {
	return p.createOrLogin(ctx, email, "", "", "dev")
}

// GetByID implements Repository
func (p *PostgRESTRepository) GetByID(ctx context.Context, id string) (User, error) {
	query := url.Values{}
	query.Set("id", postgrest.Eq(id))
	query.Set("limit", "1")

	var rows []userRow
	if err := p.client.Select(ctx, "User", query, &rows); err != nil {
		return User{}, fmt.Errorf("looking up user by id: %w", err)
	}
	if len(rows) == 0 {
		return User{}, ErrNotFound
	}
	return rows[0].toUser(), nil
}
