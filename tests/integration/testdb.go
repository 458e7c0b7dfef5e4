// Package integration runs the storefront against a real PostgreSQL started
// with testcontainers.
package integration

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/apparel/storefront/internal/infrastructure/migration"
	"github.com/apparel/storefront/internal/infrastructure/persistence"
	"github.com/apparel/storefront/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "postgres"
	postgresPassword = "storefront"
)

// sharedContainer is the container reused by NewSharedTestDB; CleanupSharedContainer
// terminates it after the package's tests.
var sharedContainer struct {
	sync.Mutex
	container testcontainers.Container
	cfg       *config.DatabaseConfig
}

// TestDB is a migrated PostgreSQL schema opened through persistence.Database,
// so tests exercise the same pool and logger setup as the server.
type TestDB struct {
	*persistence.Database
	container testcontainers.Container
	t         *testing.T
}

// postgresContainer starts PostgreSQL and returns the settings to reach it.
// The pool is sized so concurrent checkouts really contend.
func postgresContainer(t *testing.T, dbName string) (testcontainers.Container, *config.DatabaseConfig) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(postgresUser),
		tcpostgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return container, &config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            postgresUser,
		Password:        postgresPassword,
		DBName:          dbName,
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	}
}

func connect(t *testing.T, cfg *config.DatabaseConfig) *persistence.Database {
	t.Helper()

	log, level := zap.NewNop(), "silent"
	if os.Getenv("TEST_DB_DEBUG") != "" {
		log, level = zaptest.NewLogger(t), "info"
	}
	db, err := persistence.NewDatabaseWithLogger(cfg, log, level, 0)
	require.NoError(t, err, "connect to postgres")
	return db
}

func migrate(t *testing.T, db *persistence.Database) {
	t.Helper()

	sqlDB, err := db.SQL()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply migrations")
}

// NewTestDB starts a dedicated container with the schema applied. The
// container is terminated when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	container, cfg := postgresContainer(t, "storefront_test")
	db := connect(t, cfg)
	migrate(t, db)

	tdb := &TestDB{Database: db, container: container, t: t}
	t.Cleanup(tdb.close)
	return tdb
}

// NewSharedTestDB connects to the package-wide container, starting and
// migrating it on first use. Callers clean up their own rows with CleanTables.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	tdb := &TestDB{Database: connect(t, sharedConfig(t)), t: t}
	t.Cleanup(tdb.close)
	return tdb
}

func sharedConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()

	sharedContainer.Lock()
	defer sharedContainer.Unlock()
	if sharedContainer.container == nil {
		container, cfg := postgresContainer(t, "storefront_shared_test")
		db := connect(t, cfg)
		migrate(t, db)
		_ = db.Close()
		sharedContainer.container, sharedContainer.cfg = container, cfg
	}
	return sharedContainer.cfg
}

func (tdb *TestDB) close() {
	_ = tdb.Close()
	if tdb.container == nil {
		return
	}
	if err := tdb.container.Terminate(context.Background()); err != nil {
		tdb.t.Logf("terminate postgres container: %v", err)
	}
}

// CleanTables empties every application table, leaving the migration state
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = tdb.DB.Statement.Quote(table)
	}
	require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+strings.Join(quoted, ", ")+" CASCADE").Error)
}

// CleanupSharedContainer terminates the shared container. Called from TestMain.
func CleanupSharedContainer() {
	sharedContainer.Lock()
	defer sharedContainer.Unlock()

	if sharedContainer.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedContainer.container.Terminate(ctx)
	sharedContainer.container, sharedContainer.cfg = nil, nil
}
