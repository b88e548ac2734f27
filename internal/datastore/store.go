package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("document not found")

const (
	CollectionCategories       = "categories"
	CollectionQuestions        = "questions"
	CollectionPendingQuestions = "pendingQuestions"
	CollectionMeta             = "meta"
	CollectionConfig           = "config"

	// DefaultMaxBatchSize is the operation limit of one atomic batch.
	DefaultMaxBatchSize = 500
)

// Doc is a stored document. The id is kept outside of Data.
type Doc struct {
	ID   string
	Data map[string]any
}

// Decode unmarshals the document into v, exposing the document id as "id".
func (d *Doc) Decode(v any) error {
	data := make(map[string]any, len(d.Data)+1)
	for k, value := range d.Data {
		data[k] = value
	}
	data["id"] = d.ID

	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Encode turns a model into document data. Nil pointers and slices are kept
// as explicit nulls and the "id" key is dropped.
func Encode(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	delete(data, "id")
	return data, nil
}

func MustEncode(v any) map[string]any {
	data, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return data
}

// Where is an equality condition on a top level field.
type Where struct {
	Field string
	Value any
}

func Eq(field string, value any) Where {
	return Where{Field: field, Value: value}
}

type Store interface {
	NewID(collection string) string
	Get(ctx context.Context, collection, id string) (*Doc, error)
	Query(ctx context.Context, collection string, where ...Where) ([]*Doc, error)
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges patch into an existing document and fails with
	// ErrNotFound when there is none.
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Batch() Batch
	MaxBatchSize() int
}

// Batch collects writes that commit atomically.
type Batch interface {
	Set(collection, id string, data map[string]any)
	Update(collection, id string, patch map[string]any)
	Delete(collection, id string)
	// Increment adds delta to a numeric field, creating the document when it
	// does not exist, and merges extra into it.
	Increment(collection, id, field string, delta int64, extra map[string]any)
	Ops() []Op
	Len() int
	Commit(ctx context.Context) error
}

type OpKind int

const (
	OpSet OpKind = iota
	OpUpdate
	OpDelete
	OpIncrement
)

func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpIncrement:
		return "increment"
	default:
		return "unknown"
	}
}

// Op is one write operation, used to hand work to a Batch.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       map[string]any
	Field      string
	Delta      int64
}

func SetOp(collection, id string, data map[string]any) Op {
	return Op{Kind: OpSet, Collection: collection, ID: id, Data: data}
}

func UpdateOp(collection, id string, patch map[string]any) Op {
	return Op{Kind: OpUpdate, Collection: collection, ID: id, Data: patch}
}

func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Collection: collection, ID: id}
}

func IncrementOp(collection, id, field string, delta int64, extra map[string]any) Op {
	return Op{Kind: OpIncrement, Collection: collection, ID: id, Field: field, Delta: delta, Data: extra}
}

// Apply queues the operation on b.
func (o Op) Apply(b Batch) {
	switch o.Kind {
	case OpSet:
		b.Set(o.Collection, o.ID, o.Data)
	case OpUpdate:
		b.Update(o.Collection, o.ID, o.Data)
	case OpDelete:
		b.Delete(o.Collection, o.ID)
	case OpIncrement:
		b.Increment(o.Collection, o.ID, o.Field, o.Delta, o.Data)
	}
}

// opList implements the queueing half of Batch.
type opList struct {
	ops []Op
}

func (l *opList) Set(collection, id string, data map[string]any) {
	l.ops = append(l.ops, SetOp(collection, id, data))
}

func (l *opList) Update(collection, id string, patch map[string]any) {
	l.ops = append(l.ops, UpdateOp(collection, id, patch))
}

func (l *opList) Delete(collection, id string) {
	l.ops = append(l.ops, DeleteOp(collection, id))
}

func (l *opList) Increment(collection, id, field string, delta int64, extra map[string]any) {
	l.ops = append(l.ops, IncrementOp(collection, id, field, delta, extra))
}

func (l *opList) Ops() []Op {
	return l.ops
}

func (l *opList) Len() int {
	return len(l.ops)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
