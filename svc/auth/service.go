// Package auth implements credential verification against the master
// database and issues tenant-scoped access tokens. Every claim a tenant-aware
// request needs downstream is embedded in the token at login, so request
// handling never goes back to the master database for identity data.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/jwt"
)

var (
	// ErrInvalidCredentials covers unknown users, wrong passwords and inactive
	// accounts alike, so responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrMissingCredentials is returned when email or password is blank.
	ErrMissingCredentials = errors.New("auth: email and password are required")
)

// MasterDB is the slice of the master pool the service needs.
type MasterDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TenantConnections is the connection-routing dependency: warmed after a
// successful login so the user's first data request skips the directory
// lookup, invalidated on logout. Satisfied by *tenantdb.Executor.
type TenantConnections interface {
	Warm(ctx context.Context, orgID string) error
	Invalidate(orgID string)
}

// AccessClaims is the token payload. Organization claims ride along so the
// tenant middleware can resolve identity without touching the database.
type AccessClaims struct {
	jwt.StandardClaims
	Username    string `json:"username"`
	OrgID       string `json:"OrgId"`
	OrgName     string `json:"OrgName"`
	IsAdsLWA    bool   `json:"IsAdsLWA"`
	IsSellerLWA bool   `json:"IsSellerLWA"`
	IsVendorLWA bool   `json:"IsVendorLWA"`
}

// LoginResponse is what the client receives after login or refresh.
type LoginResponse struct {
	Token       string    `json:"token"`
	Username    string    `json:"username"`
	OrgID       string    `json:"orgId"`
	OrgName     string    `json:"orgName"`
	IsAdsLWA    bool      `json:"isAdsLWA"`
	IsSellerLWA bool      `json:"isSellerLWA"`
	IsVendorLWA bool      `json:"isVendorLWA"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Service verifies credentials and mints access tokens.
type Service struct {
	master  MasterDB
	tokens  *jwt.Service
	cfg     jwt.Config
	tenants TenantConnections
	log     *slog.Logger
}

// NewService wires the auth service.
func NewService(master MasterDB, tokens *jwt.Service, cfg jwt.Config, tenants TenantConnections, log *slog.Logger) *Service {
	return &Service{
		master:  master,
		tokens:  tokens,
		cfg:     cfg,
		tenants: tenants,
		log:     log,
	}
}

const userQuery = `
	SELECT u.user_id, u.first_name || ' ' || u.last_name AS username, u.password,
	       u.org_id, o.org_name, o.is_ads_lwa, o.is_seller_lwa, o.is_vendor_lwa
	FROM user_master u
	INNER JOIN org_master o ON u.org_id = o.org_id
	WHERE u.email = $1
	  AND u.is_active = true AND u.is_verified = true
	  AND o.is_active = true AND o.is_verified = true`

// Login verifies the credentials against the master database and returns a
// signed access token with the user's tenant claims.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var (
		userID       uuid.UUID
		username     string
		passwordHash string
		orgID        uuid.UUID
		orgName      string
		isAds        bool
		isSeller     bool
		isVendor     bool
	)
	err := s.master.QueryRow(ctx, userQuery, email).
		Scan(&userID, &username, &passwordHash, &orgID, &orgName, &isAds, &isSeller, &isVendor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.log.WarnContext(ctx, "login failed: user not found or inactive",
				slog.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: user lookup failed: %w", err)
	}

	if err := verifyPassword(passwordHash, password); err != nil {
		s.log.WarnContext(ctx, "login failed: password mismatch",
			slog.String("email", email))
		return nil, ErrInvalidCredentials
	}

	// Warm the connection cache so the first data request after login does not
	// pay for the directory lookup. Best effort only; login still succeeds if
	// the tenant database is briefly unreachable.
	if err := s.tenants.Warm(ctx, orgID.String()); err != nil {
		s.log.WarnContext(ctx, "connection warm-up failed after login",
			slog.String("org_id", orgID.String()),
			slog.Any("error", err))
	}

	resp, err := s.issueToken(userID.String(), username, orgID.String(), orgName, isAds, isSeller, isVendor)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "login successful",
		slog.String("email", email),
		slog.String("org_id", orgID.String()))
	return resp, nil
}

// Refresh issues a fresh token from the claims of a still-valid one. The
// master database is not consulted; revoked users keep their access until the
// current token expires, which is the accepted trade-off for a 60 minute TTL.
func (s *Service) Refresh(ctx context.Context, claims map[string]any) (*LoginResponse, error) {
	orgID, _ := claims["OrgId"].(string)
	userID, _ := claims["sub"].(string)
	if orgID == "" || userID == "" {
		return nil, ErrInvalidCredentials
	}

	username, _ := claims["username"].(string)
	orgName, _ := claims["OrgName"].(string)
	isAds, _ := claims["IsAdsLWA"].(bool)
	isSeller, _ := claims["IsSellerLWA"].(bool)
	isVendor, _ := claims["IsVendorLWA"].(bool)

	resp, err := s.issueToken(userID, username, orgID, orgName, isAds, isSeller, isVendor)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "token refreshed",
		slog.String("username", username),
		slog.String("org_id", orgID))
	return resp, nil
}

// Logout drops the tenant's cached connection string and pooled connections.
func (s *Service) Logout(ctx context.Context, orgID string) {
	if orgID == "" {
		return
	}
	s.tenants.Invalidate(orgID)
	s.log.InfoContext(ctx, "user logged out", slog.String("org_id", orgID))
}

func (s *Service) issueToken(userID, username, orgID, orgName string, isAds, isSeller, isVendor bool) (*LoginResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TTL)

	claims := AccessClaims{
		StandardClaims: jwt.StandardClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audience,
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:    username,
		OrgID:       orgID,
		OrgName:     orgName,
		IsAdsLWA:    isAds,
		IsSellerLWA: isSeller,
		IsVendorLWA: isVendor,
	}

	token, err := s.tokens.Generate(claims)
	if err != nil {
		return nil, fmt.Errorf("auth: token generation failed: %w", err)
	}

	return &LoginResponse{
		Token:       token,
		Username:    username,
		OrgID:       orgID,
		OrgName:     orgName,
		IsAdsLWA:    isAds,
		IsSellerLWA: isSeller,
		IsVendorLWA: isVendor,
		ExpiresAt:   expiresAt,
	}, nil
}
