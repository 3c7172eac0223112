package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	// ErrNotInitialized is returned when the handle is used before Connect.
	ErrNotInitialized = errors.New("database not initialized: call Connect first")
	// ErrConnection wraps driver failures to reach the deployment.
	ErrConnection = errors.New("mongodb not connected")
)

const (
	connectTimeout         = 30 * time.Second
	serverSelectionTimeout = 10 * time.Second
	pingTimeout            = 10 * time.Second
)

// Mongo owns the process's single MongoDB client and database handle.
// Construct it once at startup and pass it to whatever needs collections.
type Mongo struct {
	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo() *Mongo {
	return &Mongo{}
}

// Connect opens the client and selects dbName. A second call keeps the
// already-open database without reconnecting.
func (m *Mongo) Connect(ctx context.Context, uri, dbName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	slog.Info("connecting to MongoDB", slog.String("uri", MaskURI(uri)), slog.String("database", dbName))
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, pingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	m.client = client
	m.db = client.Database(dbName)

	slog.Info("✅ Connected to MongoDB", slog.String("database", dbName))
	return nil
}

// Database returns the handle opened by Connect.
func (m *Mongo) Database() (*mongo.Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return nil, ErrNotInitialized
	}
	return m.db, nil
}

// Collection returns the named collection of the connected database, or
// ErrNotInitialized before Connect.
func (m *Mongo) Collection(name string) (*mongo.Collection, error) {
	db, err := m.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Ping checks that the deployment is still reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	db, err := m.Database()
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.Client().Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Disconnect closes the client. It is a no-op when Connect never succeeded.
func (m *Mongo) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := m.client.Disconnect(ctx)
	m.client = nil
	m.db = nil
	return err
}

// MaskURI hides the password of a connection string so it can be logged.
func MaskURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	if _, ok := u.User.Password(); !ok {
		return uri
	}
	return u.Redacted()
}
