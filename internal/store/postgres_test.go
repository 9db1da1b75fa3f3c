package store

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgres(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestFindOne(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM students WHERE key = $1")).
		WithArgs("22BEIT30043").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow([]byte(`{"enrollment_no":"22BEIT30043"}`)))

	doc, err := s.FindOne(context.Background(), CollectionStudents, "22BEIT30043")
	require.NoError(t, err)
	assert.JSONEq(t, `{"enrollment_no":"22BEIT30043"}`, string(doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneNoDocument(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM events WHERE key = $1")).
		WithArgs("MISSING").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	_, err := s.FindOne(context.Background(), CollectionEvents, "MISSING")
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneUnknownCollection(t *testing.T) {
	s, _, cleanup := newStoreMock(t)
	defer cleanup()

	_, err := s.FindOne(context.Background(), "invoices", "X")
	require.Error(t, err)
}

func TestInsertOne(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events (key, doc) VALUES ($1, $2)")).
		WithArgs("EV1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.InsertOne(context.Background(), CollectionEvents, "EV1", map[string]string{"event_id": "EV1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOneNoMatch(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE students SET doc =").
		WillReturnResult(sqlmock.NewResult(0, 0))

	matched, err := s.UpdateOne(context.Background(), CollectionStudents, "NOPE", UpdateSpec{
		Set: map[string]interface{}{"is_active": false},
	})
	require.NoError(t, err)
	assert.False(t, matched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOneEmptySpec(t *testing.T) {
	s, _, cleanup := newStoreMock(t)
	defer cleanup()

	_, err := s.UpdateOne(context.Background(), CollectionStudents, "22BEIT30043", UpdateSpec{})
	require.Error(t, err)
}

func TestDeleteOne(t *testing.T) {
	s, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE key = $1")).
		WithArgs("22BEIT30043").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := s.DeleteOne(context.Background(), CollectionStudents, "22BEIT30043")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompileUpdateSet(t *testing.T) {
	expr, args, err := compileUpdate(UpdateSpec{
		Set: map[string]interface{}{"event_participations.EV1.feedback_id": "FBK_X"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jsonb_set(doc, $2::text[], $1::jsonb, true)", expr)
	require.Len(t, args, 2)
	assert.Equal(t, []byte(`"FBK_X"`), args[0])
}

func TestCompileUpdateUnset(t *testing.T) {
	expr, args, err := compileUpdate(UpdateSpec{
		Unset: []string{"registrations.REG_X"},
	})
	require.NoError(t, err)
	assert.Equal(t, "(doc #- $1::text[])", expr)
	assert.Len(t, args, 1)
}

func TestCompileUpdateDeterministic(t *testing.T) {
	spec := UpdateSpec{
		Set: map[string]interface{}{
			"b.second": 2,
			"a.first":  1,
		},
		Inc: map[string]float64{"stats.registrations": 1},
	}

	expr1, args1, err := compileUpdate(spec)
	require.NoError(t, err)
	expr2, args2, err := compileUpdate(spec)
	require.NoError(t, err)

	assert.Equal(t, expr1, expr2, "identical specs compile to identical SQL")
	assert.Equal(t, len(args1), len(args2))
}

func TestCompileUpdateAddToSetAndPull(t *testing.T) {
	expr, args, err := compileUpdate(UpdateSpec{
		AddToSet: map[string]interface{}{"team_registrations.TEAM_1.participants": "22BEIT30046"},
	})
	require.NoError(t, err)
	assert.Contains(t, expr, "@>", "containment guard keeps set semantics")
	assert.NotEmpty(t, args)

	expr, args, err = compileUpdate(UpdateSpec{
		Pull: map[string]interface{}{"team_registrations.TEAM_1.participants": "22BEIT30046"},
	})
	require.NoError(t, err)
	assert.Contains(t, expr, "jsonb_array_elements")
	assert.NotEmpty(t, args)
}
