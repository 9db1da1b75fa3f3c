package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres implements Store on top of one (key, doc jsonb) table per
// collection. Partial updates compile into a single UPDATE statement so each
// document mutation stays atomic.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an sqlx handle as a document store.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the collection tables when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	for _, table := range []string{CollectionStudents, CollectionEvents} {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, doc JSONB NOT NULL)`, table)
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

var collectionTables = map[string]string{
	CollectionStudents: CollectionStudents,
	CollectionEvents:   CollectionEvents,
}

func tableFor(collection string) (string, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return table, nil
}

// FindOne loads a document by primary key.
func (s *Postgres) FindOne(ctx context.Context, collection, key string) (json.RawMessage, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}
	var doc []byte
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE key = $1`, table)
	if err := s.db.GetContext(ctx, &doc, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("find one %s/%s: %w", collection, key, err)
	}
	return json.RawMessage(doc), nil
}

// FindMany returns documents ordered by key. A non-positive limit returns
// everything.
func (s *Postgres) FindMany(ctx context.Context, collection string, limit int) ([]json.RawMessage, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY key`, table)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	var raw [][]byte
	if err := s.db.SelectContext(ctx, &raw, query); err != nil {
		return nil, fmt.Errorf("find many %s: %w", collection, err)
	}
	docs := make([]json.RawMessage, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, json.RawMessage(d))
	}
	return docs, nil
}

// InsertOne stores a new document. Duplicate keys surface as errors.
func (s *Postgres) InsertOne(ctx context.Context, collection, key string, doc interface{}) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (key, doc) VALUES ($1, $2)`, table)
	if _, err := s.db.ExecContext(ctx, query, key, payload); err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, key, err)
	}
	return nil
}

// UpdateOne applies the spec to a single document. Returns false when no
// document matched the key.
func (s *Postgres) UpdateOne(ctx context.Context, collection, key string, spec UpdateSpec) (bool, error) {
	table, err := tableFor(collection)
	if err != nil {
		return false, err
	}
	if spec.Empty() {
		return false, fmt.Errorf("empty update spec for %s/%s", collection, key)
	}

	expr, args, err := compileUpdate(spec)
	if err != nil {
		return false, err
	}
	args = append(args, key)
	query := fmt.Sprintf(`UPDATE %s SET doc = %s WHERE key = $%d`, table, expr, len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	return affected > 0, nil
}

// DeleteOne removes a document by key.
func (s *Postgres) DeleteOne(ctx context.Context, collection, key string) (bool, error) {
	table, err := tableFor(collection)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, table)
	res, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return affected > 0, nil
}

// compileUpdate folds the spec into a nested jsonb expression over the doc
// column. Operations are applied in a deterministic order (set, unset, inc,
// add-to-set, pull; paths sorted within each group) so generated SQL is
// stable for identical specs.
func compileUpdate(spec UpdateSpec) (string, []interface{}, error) {
	expr := "doc"
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	pathArg := func(path string) string {
		return arg(pq.Array(strings.Split(path, ".")))
	}
	jsonArg := func(v interface{}) (string, error) {
		payload, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal update value: %w", err)
		}
		return arg(payload), nil
	}

	for _, path := range sortedKeys(spec.Set) {
		val, err := jsonArg(spec.Set[path])
		if err != nil {
			return "", nil, err
		}
		expr = fmt.Sprintf("jsonb_set(%s, %s::text[], %s::jsonb, true)", expr, pathArg(path), val)
	}

	unset := append([]string(nil), spec.Unset...)
	sort.Strings(unset)
	for _, path := range unset {
		expr = fmt.Sprintf("(%s #- %s::text[])", expr, pathArg(path))
	}

	for _, path := range sortedFloatKeys(spec.Inc) {
		read := fmt.Sprintf("COALESCE((doc#>>%s::text[])::numeric, 0)", pathArg(path))
		expr = fmt.Sprintf("jsonb_set(%s, %s::text[], to_jsonb(%s + %s::numeric), true)",
			expr, pathArg(path), read, arg(spec.Inc[path]))
	}

	for _, path := range sortedKeys(spec.AddToSet) {
		// Element wrapped in a one-item array for both the containment
		// check and the concatenation.
		val, err := jsonArg([]interface{}{spec.AddToSet[path]})
		if err != nil {
			return "", nil, err
		}
		current := fmt.Sprintf("COALESCE(doc#>%s::text[], '[]'::jsonb)", pathArg(path))
		expr = fmt.Sprintf(
			"jsonb_set(%s, %s::text[], CASE WHEN %s @> %s::jsonb THEN %s ELSE %s || %s::jsonb END, true)",
			expr, pathArg(path), current, val, current, current, val)
	}

	for _, path := range sortedKeys(spec.Pull) {
		val, err := jsonArg(spec.Pull[path])
		if err != nil {
			return "", nil, err
		}
		filtered := fmt.Sprintf(
			"COALESCE((SELECT jsonb_agg(elem) FROM jsonb_array_elements(COALESCE(doc#>%s::text[], '[]'::jsonb)) elem WHERE elem <> %s::jsonb), '[]'::jsonb)",
			pathArg(path), val)
		expr = fmt.Sprintf("jsonb_set(%s, %s::text[], %s, true)", expr, pathArg(path), filtered)
	}

	return expr, args, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFloatKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
