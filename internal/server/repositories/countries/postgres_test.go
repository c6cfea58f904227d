package countries

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const qAvailable = `(?s)^\s*SELECT available FROM countries\s+WHERE iso3_code = \$1\s*$`

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		arg     string
		rows    *sqlmock.Rows
		err     error
		want    bool
		wantErr bool
	}{
		{name: "available", code: "fra", arg: "FRA", rows: sqlmock.NewRows([]string{"available"}).AddRow(true), want: true},
		{name: "closed", code: "PRK", arg: "PRK", rows: sqlmock.NewRows([]string{"available"}).AddRow(false), want: false},
		{name: "unknown", code: "ZZZ", arg: "ZZZ", err: sql.ErrNoRows, want: false},
		{name: "db error", code: "FRA", arg: "FRA", err: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectQuery(qAvailable).WithArgs(tt.arg)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			got, err := NewPostgresRepository(db).IsAvailable(context.Background(), tt.code)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIsAvailable_EmptyCodeSkipsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	got, err := NewPostgresRepository(db).IsAvailable(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
