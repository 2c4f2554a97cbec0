package export

import (
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
)

// postgresDSN returns the test database from the environment or a .env file
// at the repository root, skipping the test when neither sets one.
func postgresDSN(t *testing.T) string {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("LMDB_BENCH_PG_DSN")
	if dsn == "" {
		t.Skip("LMDB_BENCH_PG_DSN not set")
	}
	return dsn
}

func TestPostgresWriteRun(t *testing.T) {
	pg, err := OpenPostgres(postgresDSN(t))
	require.NoError(t, err)
	defer pg.Close()

	require.NoError(t, pg.EnsureSchema())
	require.NoError(t, pg.EnsureSchema(), "schema creation is idempotent")

	run := NewRun(benchmark.DefaultConfig(), time.Now())
	require.NoError(t, pg.WriteRun(run, sampleResult()))

	n, err := pg.CountRun(run)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenPostgresUnreachable(t *testing.T) {
	_, err := OpenPostgres("host=127.0.0.1 port=1 user=nobody dbname=none sslmode=disable connect_timeout=1")
	assert.Error(t, err)
}
