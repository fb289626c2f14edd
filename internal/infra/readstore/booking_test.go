//go:build unit

package readstore_test

import (
	"context"
	"testing"

	"tidebook/internal/infra/readstore"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// captureDB records every statement without talking to a database, so the
// read-side SQL can be checked against the columns the write side maintains.
type captureDB struct {
	statements []string
}

func (d *captureDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	d.statements = append(d.statements, sql)
	return pgconn.CommandTag{}, nil
}

func (d *captureDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	d.statements = append(d.statements, sql)
	return emptyRows{}, nil
}

func (d *captureDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	d.statements = append(d.statements, sql)
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(...any) error                            { return pgx.ErrNoRows }
func (emptyRows) Values() ([]any, error)                       { return nil, nil }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

// bookings.booking_code is the column the write repository inserts; the read
// queries must reference the same name or every booking view 500s at runtime.
func TestBookingViewsSelectBookingCodeColumn(t *testing.T) {
	db := &captureDB{}
	rs := readstore.NewBookingReadStore(db)
	ctx := context.Background()
	id := uuid.New()

	_, _ = rs.FindByID(ctx, id)
	_, _ = rs.FindByUserID(ctx, id, 10, 0)
	_, _ = rs.FindBySchoolID(ctx, id, nil, 10, 0)

	assert.Len(t, db.statements, 3)
	for _, stmt := range db.statements {
		assert.Contains(t, stmt, "b.booking_code")
		assert.NotRegexp(t, `\bb\.code\b`, stmt)
	}
}
