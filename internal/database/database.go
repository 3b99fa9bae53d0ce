// Package database はストレージへの接続を確立・保持します。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"go-mongo-todo/internal/config"
)

// Pinger はストレージの疎通確認ができることを表します。
type Pinger interface {
	Ping(ctx context.Context) error
}

// MongoConnector はドキュメントストアへの接続を1つだけ確立し、プロセスの生存期間中それを共有します。
// Connect は何度呼んでも安全で、接続がまだない場合だけ実際に接続します。
type MongoConnector struct {
	cfg    config.MongoConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *mongo.Client
}

// NewMongoConnector は新しいMongoConnectorを作成します。まだ接続はしません。
func NewMongoConnector(cfg config.MongoConfig, logger *slog.Logger) *MongoConnector {
	return &MongoConnector{cfg: cfg, logger: logger}
}

// Connect は共有のクライアントを返します。未接続なら接続してから返します。
// 接続に失敗した場合はエラーをそのまま呼び出し元に返し、次回の呼び出しで再度接続を試みます。
func (c *MongoConnector) Connect(ctx context.Context) (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	opts := options.Client().ApplyURI(c.cfg.URI)
	if c.cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(c.cfg.ConnectTimeout).SetServerSelectionTimeout(c.cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("could not ping mongo: %w", err)
	}

	c.logger.Info("connected to MongoDB",
		slog.String("uri", c.cfg.RedactedURI()),
		slog.String("database", c.cfg.Database),
	)
	c.client = client
	return client, nil
}

// Collection はtodoドキュメントを格納するコレクションを返します。
func (c *MongoConnector) Collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(c.cfg.Database).Collection(c.cfg.Collection), nil
}

// Ping は接続済みのクライアントで疎通確認を行います。
func (c *MongoConnector) Ping(ctx context.Context) error {
	client, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close は接続を切断します。未接続なら何もしません。
func (c *MongoConnector) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	if err != nil {
		return fmt.Errorf("could not disconnect from mongo: %w", err)
	}
	c.logger.Info("disconnected from MongoDB")
	return nil
}

// OpenMySQL はMySQLへの接続プールを初期化します。
func OpenMySQL(ctx context.Context, cfg config.MySQLConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("could not open mysql connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping mysql: %w", err)
	}
	logger.Info("connected to MySQL", slog.String("host", cfg.Host), slog.String("database", cfg.Name))
	return db, nil
}

// SQLPinger は *sql.DB を Pinger として扱うためのアダプターです。
type SQLPinger struct {
	DB *sql.DB
}

// Ping はMySQLへの疎通確認を行います。
func (p SQLPinger) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// NopPinger は常に成功するPingerです (memoryバックエンド用)。
type NopPinger struct{}

// Ping は常にnilを返します。
func (NopPinger) Ping(context.Context) error { return nil }
