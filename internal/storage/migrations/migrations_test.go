package migrations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExec struct {
	stmts []string
	fail  error
}

func (r *recordingExec) Exec(_ context.Context, query string, _ ...any) error {
	r.stmts = append(r.stmts, query)
	return r.fail
}

type pgRecorder struct {
	scripts []string
}

func (p *pgRecorder) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	p.scripts = append(p.scripts, sql)
	return pgconn.CommandTag{}, nil
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (x Int8);\n\nCREATE TABLE b (y String)\n;\n")
	assert.Equal(t, []string{"CREATE TABLE a (x Int8)", "CREATE TABLE b (y String)"}, stmts)
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'it''s'; SELECT 1;"))
	assert.ErrorIs(t, validateNoSemicolonInStrings("SELECT 'a;b';"), errSemicolonInString)
}

func TestRunClickhouseMigrations(t *testing.T) {
	exec := &recordingExec{}
	require.NoError(t, RunClickhouseMigrations(context.Background(), exec))

	require.NotEmpty(t, exec.stmts)
	assert.True(t, strings.HasPrefix(exec.stmts[0], "CREATE TABLE IF NOT EXISTS price_samples"))
	for _, s := range exec.stmts {
		assert.NotContains(t, s, ";")
	}
}

func TestRunClickhouseMigrations_Error(t *testing.T) {
	exec := &recordingExec{fail: errors.New("boom")}
	err := RunClickhouseMigrations(context.Background(), exec)
	assert.ErrorContains(t, err, "001_price_samples.sql")
}

func TestRunPostgresMigrations(t *testing.T) {
	rec := &pgRecorder{}
	require.NoError(t, RunPostgresMigrations(context.Background(), rec))

	require.Len(t, rec.scripts, 1)
	assert.Contains(t, rec.scripts[0], "CREATE TABLE IF NOT EXISTS pairs")
	assert.Contains(t, rec.scripts[0], "CREATE TABLE IF NOT EXISTS positions")
}
