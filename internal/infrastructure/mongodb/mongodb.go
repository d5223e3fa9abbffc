package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config is the subset of settings the client needs.
type Config struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// Client wraps a mongo.Client bound to a single database.
type Client struct {
	Client   *mongo.Client
	Database *mongo.Database
	Config   Config
}

func NewClient(cfg Config) *Client {
	return &Client{Config: cfg}
}

// Connect dials MongoDB with exponential backoff and verifies the primary is reachable.
func (c *Client) Connect(ctx context.Context) error {
	log.Info().Str("database", c.Config.Database).Msg("[MONGODB] Initializing connection")

	opts := options.Client().
		ApplyURI(c.Config.URI).
		SetConnectTimeout(c.Config.ConnectTimeout).
		SetServerSelectionTimeout(c.Config.ConnectTimeout)
	if c.Config.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.Config.MaxPoolSize)
	}

	retries := c.Config.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, c.Config.ConnectTimeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				c.Client = client
				c.Database = client.Database(c.Config.Database)
				log.Info().Int("attempt", attempt).Msg("[MONGODB] Connected")
				return nil
			}
			_ = client.Disconnect(context.Background())
		}
		lastErr = err

		log.Warn().Err(err).Int("attempt", attempt).Int("max", retries).Msg("[MONGODB] Attempt failed")

		if attempt < retries {
			delay := c.Config.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to connect to mongodb after %d attempts: %w", retries, lastErr)
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}

// EnsureIndexes creates the indexes used by the price and name queries.
func (c *Client) EnsureIndexes(ctx context.Context, collection string) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "price", Value: 1}}, Options: options.Index().SetName("idx_price")},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("idx_name")},
	}

	if _, err := c.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes on %s: %w", collection, err)
	}

	log.Info().Str("collection", collection).Msg("[MONGODB] Indexes ready")
	return nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("mongodb client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close disconnects the client. Safe to call more than once.
func (c *Client) Close(ctx context.Context) error {
	if c.Client == nil {
		return nil
	}

	log.Info().Msg("[MONGODB] Disconnecting")
	err := c.Client.Disconnect(ctx)
	c.Client = nil
	c.Database = nil
	return err
}
