package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name: "comments and blank lines",
			script: `
-- leading comment
CREATE TABLE a (x String) ENGINE = MergeTree() ORDER BY x;

-- second; with a semicolon
CREATE TABLE b (y String) ENGINE = MergeTree() ORDER BY y;
`,
			want: []string{
				"CREATE TABLE a (x String) ENGINE = MergeTree() ORDER BY x",
				"CREATE TABLE b (y String) ENGINE = MergeTree() ORDER BY y",
			},
		},
		{
			name:   "semicolon in string",
			script: "SELECT 'a;b'; SELECT 2",
			want:   []string{"SELECT 'a;b'", "SELECT 2"},
		},
		{
			name:   "doubled and escaped quotes",
			script: `SELECT 'it''s;', 'x\';y';`,
			want:   []string{`SELECT 'it''s;', 'x\';y'`},
		},
		{
			name:   "quoted identifier",
			script: "CREATE TABLE `odd;name` (x UInt8) ENGINE = Memory;",
			want:   []string{"CREATE TABLE `odd;name` (x UInt8) ENGINE = Memory"},
		},
		{
			name:   "dashes inside string",
			script: "SELECT '--not a comment';",
			want:   []string{"SELECT '--not a comment'"},
		},
		{
			name:   "empty",
			script: "-- nothing\n;;\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitStatements(tt.script)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitStatements_Unterminated(t *testing.T) {
	_, err := splitStatements("SELECT 'open;")
	assert.Error(t, err)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/economy")
	require.NoError(t, err)
	assert.Equal(t, "economy", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)

	_, err = databaseFromDSN("clickhouse://localhost:9000/eco;DROP")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/002_b.sql":  {Data: []byte("SELECT 2;")},
		"sql/001_a.sql":  {Data: []byte("SELECT 1;")},
		"sql/003_c.sql":  {Data: []byte("  \n")},
		"sql/README.txt": {Data: []byte("ignored")},
	}

	got, err := load(fsys, "sql")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "001_a.sql", got[0].name)
	assert.Equal(t, "002_b.sql", got[1].name)
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)

	for _, m := range ch {
		stmts, err := splitStatements(m.sql)
		require.NoError(t, err, m.name)
		assert.NotEmpty(t, stmts, m.name)
	}
}
