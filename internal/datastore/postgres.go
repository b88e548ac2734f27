package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// db
type Document struct {
	bun.BaseModel `bun:"table:document"`
	Collection    string         `bun:"collection,pk"`
	ID            string         `bun:"id,pk"`
	Data          map[string]any `bun:"data,type:jsonb"`
	CreatedAt     time.Time      `bun:"created_at,notnull"`
	UpdatedAt     time.Time      `bun:"updated_at,notnull"`
}

func CreateTableDocument(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*Document)(nil)).
		Index("index_document_collection_created_at").
		Column("collection", "created_at").
		IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewRaw(`
		create index if not exists index_document_category_id
			on document ((data->>'categoryId'))
			where collection in ('questions', 'pendingQuestions');`).Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// PostgresStore keeps every collection in the jsonb "document" table.
type PostgresStore struct {
	db           *bun.DB
	maxBatchSize int
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db, maxBatchSize: DefaultMaxBatchSize}
}

func (s *PostgresStore) MaxBatchSize() int {
	return s.maxBatchSize
}

func (s *PostgresStore) NewID(collection string) string {
	return newID()
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Doc, error) {
	var document Document
	err := s.db.NewSelect().Model(&document).
		Where("collection = ?", collection).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Doc{ID: document.ID, Data: document.Data}, nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, where ...Where) ([]*Doc, error) {
	var documents []Document
	q := s.db.NewSelect().Model(&documents).Where("collection = ?", collection)
	for _, w := range where {
		if w.Value == nil {
			q = q.Where("data->>? IS NULL", w.Field)
			continue
		}
		q = q.Where("data->>? = ?", w.Field, fmt.Sprint(w.Value))
	}

	err := q.Order("created_at ASC", "id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*Doc, 0, len(documents))
	for _, document := range documents {
		docs = append(docs, &Doc{ID: document.ID, Data: document.Data})
	}
	return docs, nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := s.NewID(collection)
	return id, execPostgresOp(ctx, s.db, SetOp(collection, id, data))
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return execPostgresOp(ctx, s.db, SetOp(collection, id, data))
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return execPostgresOp(ctx, s.db, UpdateOp(collection, id, patch))
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	return execPostgresOp(ctx, s.db, DeleteOp(collection, id))
}

func (s *PostgresStore) Batch() Batch {
	return &postgresBatch{store: s}
}

type postgresBatch struct {
	opList
	store *PostgresStore
}

func (b *postgresBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > b.store.maxBatchSize {
		return fmt.Errorf("batch of %d operations exceeds limit %d", len(b.ops), b.store.maxBatchSize)
	}

	return b.store.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, op := range b.ops {
			if err := execPostgresOp(ctx, tx, op); err != nil {
				return fmt.Errorf("op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
			}
		}
		return nil
	})
}

func execPostgresOp(ctx context.Context, db bun.IDB, op Op) error {
	now := time.Now().UTC()

	switch op.Kind {
	case OpSet:
		data := op.Data
		if data == nil {
			data = map[string]any{}
		}
		document := &Document{
			Collection: op.Collection,
			ID:         op.ID,
			Data:       data,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		_, err := db.NewInsert().Model(document).
			On("CONFLICT (collection, id) DO UPDATE").
			Set("data = EXCLUDED.data").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err

	case OpUpdate:
		patch, err := json.Marshal(op.Data)
		if err != nil {
			return err
		}
		res, err := db.NewUpdate().Model((*Document)(nil)).
			Set("data = data || ?::jsonb", string(patch)).
			Set("updated_at = ?", now).
			Where("collection = ?", op.Collection).
			Where("id = ?", op.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil

	case OpDelete:
		_, err := db.NewDelete().Model((*Document)(nil)).
			Where("collection = ?", op.Collection).
			Where("id = ?", op.ID).
			Exec(ctx)
		return err

	case OpIncrement:
		extra := op.Data
		if extra == nil {
			extra = map[string]any{}
		}
		b, err := json.Marshal(extra)
		if err != nil {
			return err
		}
		_, err = db.ExecContext(ctx, `
			insert into document (collection, id, data, created_at, updated_at)
			values (?, ?, jsonb_build_object(?::text, ?::bigint) || ?::jsonb, ?, ?)
			on conflict (collection, id) do update
			set data = jsonb_set(document.data, array[?::text], to_jsonb(coalesce((document.data->>?)::bigint, 0) + ?)) || ?::jsonb,
				updated_at = excluded.updated_at`,
			op.Collection, op.ID, op.Field, op.Delta, string(b), now, now,
			op.Field, op.Field, op.Delta, string(b),
		)
		return err
	}

	return fmt.Errorf("unknown op kind %d", op.Kind)
}
