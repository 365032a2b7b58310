package itf

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// nopTx satisfies pgx.Tx so code wrapped in transaction helpers runs
// against the in-memory stores. Anything that actually issues SQL fails
// loudly instead of silently returning nothing.
type nopTx struct{}

var errNoDatabase = errors.New("no database behind the test transaction")

func (nopTx) Begin(_ context.Context) (pgx.Tx, error) { return nopTx{}, nil }
func (nopTx) Commit(_ context.Context) error          { return nil }
func (nopTx) Rollback(_ context.Context) error        { return nil }

func (nopTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, errNoDatabase
}

func (nopTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (nopTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }

func (nopTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, errNoDatabase
}

func (nopTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (nopTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errNoDatabase
}

func (nopTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row { return errRow{} }
func (nopTx) Conn() *pgx.Conn                                        { return nil }

type errRow struct{}

func (errRow) Scan(_ ...any) error { return errNoDatabase }
