package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// ErrMalformedCredential marks a token that cannot be split into its three
// parts or whose payload is not structured claims.
var ErrMalformedCredential = errors.New("malformed credential")

// Claims describes the JWT payload issued for organizations and branches.
type Claims struct {
	SubjectID   string             `json:"sub_id"`
	SubjectKind domain.SubjectKind `json:"sub_type"`
	jwt.RegisteredClaims
}

// TokenPair bundles an access/refresh credential pair.
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTLMinutes, refreshTTLHours int) *TokenManager {
	if accessTTLMinutes <= 0 {
		accessTTLMinutes = 60
	}
	if refreshTTLHours <= 0 {
		refreshTTLHours = 24
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshTTLHours) * time.Hour,
	}
}

// GeneratePair builds and signs an access/refresh pair for the subject.
func (tm *TokenManager) GeneratePair(subjectID string, kind domain.SubjectKind) (TokenPair, error) {
	now := time.Now()
	access, accessExp, err := tm.sign(subjectID, kind, now, tm.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := tm.sign(subjectID, kind, now, tm.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (tm *TokenManager) sign(subjectID string, kind domain.SubjectKind, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := &Claims{
		SubjectID:   subjectID,
		SubjectKind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates the signature and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// DecodeClaims extracts claims from a token without verifying the signature
// and without network access. Used to rebuild an identity from a stored
// credential; expiry checking is the caller's responsibility.
func DecodeClaims(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, errors.Join(ErrMalformedCredential, err)
	}
	if claims.SubjectID == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformedCredential
	}
	switch claims.SubjectKind {
	case domain.SubjectKindOrg, domain.SubjectKindBranch:
	default:
		return nil, ErrMalformedCredential
	}
	return claims, nil
}
