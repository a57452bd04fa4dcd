package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// KeySetOptions tune how the signing keys are fetched.
type KeySetOptions struct {
	// Client performs the JWKS requests. Defaults to a 10s timeout client.
	Client *http.Client
	// RefreshInterval is how often the whole set is refetched in the
	// background. Defaults to one hour.
	RefreshInterval time.Duration
	// UnknownKIDInterval is the minimum gap between refetches triggered by
	// a kid that is not in the cached set. Defaults to five minutes.
	UnknownKIDInterval time.Duration
}

// KeySet serves the RSA keys published at a JWKS URL. The set is fetched
// once at construction and then refreshed in the background until the
// construction context ends. A token carrying an unknown kid can trigger
// at most one refetch per UnknownKIDInterval, and concurrent lookups of
// the same kid share a single read.
type KeySet struct {
	storage jwkset.Storage
	kf      keyfunc.Keyfunc
}

// NewKeySet starts a key set for url. A failing first fetch is not an
// error; lookups report ErrVerifierUnavailable until keys arrive.
func NewKeySet(ctx context.Context, url string, o KeySetOptions) (*KeySet, error) {
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = time.Hour
	}
	if o.UnknownKIDInterval <= 0 {
		o.UnknownKIDInterval = 5 * time.Minute
	}

	remote, err := jwkset.NewStorageFromHTTP(url, jwkset.HTTPClientStorageOptions{
		Client:                    o.Client,
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           o.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			log.Warn().Err(err).Str("jwks", url).Msg("auth: jwks refresh failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks storage for %s: %w", url, err)
	}
	client, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{url: remote},
		RateLimitWaitMax:  time.Millisecond,
		RefreshUnknownKID: rate.NewLimiter(rate.Every(o.UnknownKIDInterval), 1),
	})
	if err != nil {
		return nil, fmt.Errorf("jwks client for %s: %w", url, err)
	}

	storage := &sharedReads{Storage: client}
	kf, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("keyfunc for %s: %w", url, err)
	}
	return &KeySet{storage: storage, kf: kf}, nil
}

// Keyfunc resolves a token's kid to its verification key.
func (s *KeySet) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return s.kf.KeyfuncCtx(ctx)
}

// available reports whether any key has been fetched so far.
func (s *KeySet) available(ctx context.Context) bool {
	keys, err := s.storage.KeyReadAll(ctx)
	return err == nil && len(keys) > 0
}

// sharedReads collapses concurrent reads of the same kid into one call
// against the underlying storage.
type sharedReads struct {
	jwkset.Storage
	group singleflight.Group
}

func (s *sharedReads) KeyRead(ctx context.Context, keyID string) (jwkset.JWK, error) {
	v, err, _ := s.group.Do(keyID, func() (interface{}, error) {
		return s.Storage.KeyRead(ctx, keyID)
	})
	if err != nil {
		return jwkset.JWK{}, err
	}
	jwk, ok := v.(jwkset.JWK)
	if !ok {
		return jwkset.JWK{}, errors.New("jwks: unexpected key type")
	}
	return jwk, nil
}
