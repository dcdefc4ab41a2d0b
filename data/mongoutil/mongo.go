package mongoutil

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chat-relay/logger"
)

// Config represents the MongoDB connection settings.
type Config struct {
	URI         string
	Database    string
	MaxPoolSize int
	MaxRetry    int
	Timeout     time.Duration
}

func (c *Config) norm() {
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = 100
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

type Client struct {
	cli *mongo.Client
	db  *mongo.Database
}

func (c *Client) GetDB() *mongo.Database { return c.db }

func (c *Client) Close(ctx context.Context) error {
	return c.cli.Disconnect(ctx)
}

// Ping reports whether the server is reachable; used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx, nil)
}

// NewMongoDB connects with bounded retry. A replica that is still starting
// up is the common case during compose bring-up.
func NewMongoDB(ctx context.Context, config *Config) (*Client, error) {
	if config.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	config.norm()

	opts := options.Client().ApplyURI(config.URI)
	opts.SetMaxPoolSize(uint64(config.MaxPoolSize))

	var (
		cli *mongo.Client
		err error
	)
	for i := 0; i < config.MaxRetry; i++ {
		cli, err = connectMongo(ctx, opts, config.Timeout)
		if err == nil {
			break
		}
		logger.Warnf("[mongo] connect attempt %d/%d failed: %v", i+1, config.MaxRetry, err)
		time.Sleep(time.Second / 2)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to MongoDB at %s", config.URI)
	}

	return &Client{cli: cli, db: cli.Database(config.Database)}, nil
}

func connectMongo(ctx context.Context, opts *options.ClientOptions, timeout time.Duration) (*mongo.Client, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cli, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(cctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, err
	}
	return cli, nil
}
