// Package auth verifies Firebase ID tokens presented by the booking site.
// Tokens are RS256 JWTs signed by Google's securetoken service; the project
// id from the service-account file fixes the expected audience and issuer.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleSecureTokenJWKS is where Google publishes the signing keys for
// Firebase ID tokens.
const GoogleSecureTokenJWKS = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

var (
	// ErrInvalidToken covers malformed, expired, wrongly signed tokens and
	// tokens minted for another project.
	ErrInvalidToken = errors.New("invalid id token")
	// ErrVerifierUnavailable means the signing keys could not be fetched.
	ErrVerifierUnavailable = errors.New("token verifier unavailable")
)

// Identity is the verified principal behind a bearer token.
type Identity struct {
	UID   string
	Email string
}

// Verifier checks a raw ID token and returns who it belongs to.
type Verifier interface {
	VerifyIDToken(ctx context.Context, raw string) (Identity, error)
}

// ServiceAccount is the subset of the Firebase service-account JSON the
// verifier needs.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// LoadServiceAccount reads and validates a service-account file.
func LoadServiceAccount(path string) (ServiceAccount, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ServiceAccount{}, fmt.Errorf("read service account: %w", err)
	}
	var sa ServiceAccount
	if err := json.Unmarshal(b, &sa); err != nil {
		return ServiceAccount{}, fmt.Errorf("parse service account %s: %w", path, err)
	}
	if strings.TrimSpace(sa.ProjectID) == "" {
		return ServiceAccount{}, fmt.Errorf("service account %s: project_id is empty", path)
	}
	return sa, nil
}

type firebaseClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// FirebaseVerifier validates Firebase ID tokens for one project.
type FirebaseVerifier struct {
	projectID string
	keys      *KeySet
	leeway    time.Duration
}

// NewFirebaseVerifier builds a verifier for projectID using keys.
func NewFirebaseVerifier(projectID string, keys *KeySet) *FirebaseVerifier {
	return &FirebaseVerifier{projectID: projectID, keys: keys, leeway: 30 * time.Second}
}

// VerifyIDToken implements Verifier.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, raw string) (Identity, error) {
	var claims firebaseClaims
	lookup := v.keys.Keyfunc(ctx)
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if kid, _ := t.Header["kid"].(string); kid == "" {
			return nil, fmt.Errorf("%w: token has no kid header", ErrInvalidToken)
		}
		return lookup(t)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenUnverifiable) && !errors.Is(err, ErrInvalidToken) && !v.keys.available(ctx) {
			return Identity{}, fmt.Errorf("%w: no signing keys: %v", ErrVerifierUnavailable, err)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{UID: claims.Subject, Email: strings.TrimSpace(claims.Email)}, nil
}
