package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the repositories.
const (
	AppointmentsCollection = "appointments"
	UsersCollection        = "users"
	DoctorsCollection      = "doctors"
)

// Options controls how Connect builds the client.
type Options struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	MinPoolSize uint64
	Attempts    int           // startup connect+ping attempts
	Backoff     time.Duration // first wait between attempts, doubled up to MaxBackoff
	MaxBackoff  time.Duration
}

// Connect opens a pooled client and pings the primary, retrying with
// exponential backoff until Attempts is exhausted. The driver handles
// reconnects on its own once the first ping succeeded. Operation level
// retries are switched off: a failed call is reported, never replayed.
func Connect(ctx context.Context, o Options) (*mongo.Client, *mongo.Database, error) {
	if o.Attempts < 1 {
		o.Attempts = 1
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(o.URI).
		SetMaxPoolSize(o.MaxPoolSize).
		SetMinPoolSize(o.MinPoolSize).
		SetRetryWrites(false).
		SetRetryReads(false).
		SetServerSelectionTimeout(10 * time.Second)

	backoff := o.Backoff
	var lastErr error
	for attempt := 1; attempt <= o.Attempts; attempt++ {
		client, err := connectOnce(ctx, clientOpts)
		if err == nil {
			return client, client.Database(o.Database), nil
		}
		lastErr = err
		if attempt == o.Attempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", backoff).Msg("mongo: connect failed")
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < o.MaxBackoff {
			backoff *= 2
			if backoff > o.MaxBackoff {
				backoff = o.MaxBackoff
			}
		}
	}
	return nil, nil, fmt.Errorf("mongo: connect after %d attempts: %w", o.Attempts, lastErr)
}

func connectOnce(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
