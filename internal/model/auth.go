package model

import "github.com/golang-jwt/jwt/v5"

// Role is the caller's privilege level within a committee
type Role string

const (
	RoleChair    Role = "chair"
	RoleDelegate Role = "delegate"
)

// Caller is the resolved identity behind a request. CountryID and
// DelegateID are empty for chairs.
type Caller struct {
	Role        Role
	CommitteeID string
	CountryID   string
	DelegateID  string
}

// IsChair reports whether the caller holds the chair role
func (c Caller) IsChair() bool { return c.Role == RoleChair }

// Owns reports whether the caller is the delegate of countryID
func (c Caller) Owns(countryID string) bool {
	return c.Role == RoleDelegate && c.CountryID == countryID
}

// SessionClaims is the JWT payload for both roles. DelegateID is
// minted when a delegate code is redeemed and identifies the
// individual behind the country for speech attribution.
type SessionClaims struct {
	Role        Role   `json:"role"`
	CommitteeID string `json:"committeeId"`
	CountryID   string `json:"countryId,omitempty"`
	DelegateID  string `json:"delegateId,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for chair login
type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CommitteeID string `json:"committeeId"`
}

// LoginResponse is returned on chair login
type LoginResponse struct {
	Token       string `json:"token"`
	CommitteeID string `json:"committeeId"`
}

// JoinResponse is returned when a delegate code is redeemed
type JoinResponse struct {
	Token       string   `json:"token"`
	CommitteeID string   `json:"committeeId"`
	Country     *Country `json:"country"`
}

// DelegateCode is a one-time code binding a participant to a country;
// redeeming it deletes the code.
type DelegateCode struct {
	Code        string `json:"code" bson:"_id"`
	CommitteeID string `json:"committeeId" bson:"committeeId"`
	CountryID   string `json:"countryId" bson:"countryId"`
	Name        string `json:"name" bson:"name"`
}
