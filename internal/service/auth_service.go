package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"podium/internal/model"
	"podium/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCode        = errors.New("unknown or already redeemed delegate code")
)

// AuthService issues and validates chair and delegate session tokens
type AuthService struct {
	chairUsername string
	chairPassword string
	jwtSecret     []byte
	committeeRepo repository.CommitteeRepo
	countryRepo   repository.CountryRepo
	codeRepo      repository.DelegateCodeRepo
}

// NewAuthService creates a new auth service
func NewAuthService(
	chairUsername, chairPassword, jwtSecret string,
	committeeRepo repository.CommitteeRepo,
	countryRepo repository.CountryRepo,
	codeRepo repository.DelegateCodeRepo,
) *AuthService {
	return &AuthService{
		chairUsername: chairUsername,
		chairPassword: chairPassword,
		jwtSecret:     []byte(jwtSecret),
		committeeRepo: committeeRepo,
		countryRepo:   countryRepo,
		codeRepo:      codeRepo,
	}
}

// Login validates chair credentials and returns a committee-scoped token
func (s *AuthService) Login(ctx context.Context, username, password, committeeID string) (*model.LoginResponse, error) {
	if username != s.chairUsername || password != s.chairPassword {
		return nil, ErrInvalidCredentials
	}
	committee, err := s.committeeRepo.GetByID(ctx, committeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get committee: %w", err)
	}
	if committee == nil {
		return nil, fmt.Errorf("%w: committee %s", ErrNotFound, committeeID)
	}

	token, err := s.sign(model.SessionClaims{
		Role:        model.RoleChair,
		CommitteeID: committee.ID,
	})
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, CommitteeID: committee.ID}, nil
}

// RedeemCode consumes a one-time delegate code and returns a token
// bound to the code's country. The code is gone afterwards.
func (s *AuthService) RedeemCode(ctx context.Context, code string) (*model.JoinResponse, error) {
	dc, err := s.codeRepo.Redeem(ctx, code)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to redeem code: %w", err)
	}

	country, err := s.countryRepo.GetByID(ctx, dc.CountryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	if country == nil {
		return nil, fmt.Errorf("%w: country %s", ErrNotFound, dc.CountryID)
	}

	token, err := s.sign(model.SessionClaims{
		Role:        model.RoleDelegate,
		CommitteeID: dc.CommitteeID,
		CountryID:   dc.CountryID,
		DelegateID:  "d_" + uuid.New().String()[:8],
	})
	if err != nil {
		return nil, err
	}
	return &model.JoinResponse{
		Token:       token,
		CommitteeID: dc.CommitteeID,
		Country:     country,
	}, nil
}

// ValidateToken parses a session token into a resolved caller. Chair
// takes precedence over delegate when a token somehow carries both.
func (s *AuthService) ValidateToken(tokenString string) (*model.Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.CommitteeID == "" {
		return nil, ErrNotInCommittee
	}

	caller := &model.Caller{CommitteeID: claims.CommitteeID}
	switch claims.Role {
	case model.RoleChair:
		caller.Role = model.RoleChair
	case model.RoleDelegate:
		if claims.CountryID == "" {
			return nil, ErrNotInCommittee
		}
		caller.Role = model.RoleDelegate
		caller.CountryID = claims.CountryID
		caller.DelegateID = claims.DelegateID
	default:
		return nil, ErrInvalidToken
	}
	return caller, nil
}

func (s *AuthService) sign(claims model.SessionClaims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
