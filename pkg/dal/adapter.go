package dal

import (
	"context"
	"database/sql"
	"time"
)

// Adapter is one session-scoped handle to the persistence layer. An adapter
// instance is not safe for concurrent use; the async wrapper creates a fresh
// instance per call and closes it when the call completes.
//
// Operations whose semantics depend on a particular call sequence against one
// stateful instance (open data readers, multi-step transactional sequences)
// are deliberately absent from this contract.
type Adapter interface {
	// SetConnectionString overrides the connection the adapter opens.
	SetConnectionString(dsn string)

	// SetCommandTimeout bounds the execution time of each operation.
	SetCommandTimeout(timeout time.Duration)

	// SetPrefetchParameterThreshold tunes how prefetch path queries are
	// parameterized.
	SetPrefetchParameterThreshold(threshold int)

	// SetIsolationLevel sets the isolation level for multi-statement
	// operations.
	SetIsolationLevel(level sql.IsolationLevel)

	// Close releases the adapter's connection. Safe to call when no
	// connection was ever opened.
	Close() error

	// FetchEntity refetches the entity using its populated primary key fields.
	FetchEntity(ctx context.Context, entity Entity) error

	// FetchEntityUsingPK fetches the entity identified by the given primary
	// key values.
	FetchEntityUsingPK(ctx context.Context, entity Entity, pk ...any) error

	// FetchEntityCollection fetches entities matching the options into dest.
	FetchEntityCollection(ctx context.Context, dest EntityCollection, opts *FetchOptions) error

	// FetchTypedList fetches a typed list projection.
	FetchTypedList(ctx context.Context, list TypedList, opts *FetchOptions) error

	// FetchTypedView fetches a typed view projection.
	FetchTypedView(ctx context.Context, view TypedView, opts *FetchOptions) error

	// FetchRows executes a raw query and returns the tabular result.
	FetchRows(ctx context.Context, query string, args ...any) (*RowSet, error)

	// GetScalar evaluates a scalar aggregate expression.
	GetScalar(ctx context.Context, expression *AggregateExpression, filter *PredicateBucket) (any, error)

	// GetCount returns the number of rows in source matching the filter.
	GetCount(ctx context.Context, source string, filter *PredicateBucket) (int64, error)

	// SaveEntity inserts or updates one entity, optionally refetching it
	// afterwards.
	SaveEntity(ctx context.Context, entity Entity, refetch bool) error

	// SaveEntityCollection saves all entities of the collection in one
	// transaction and returns the number persisted.
	SaveEntityCollection(ctx context.Context, collection EntityCollection) (int, error)

	// DeleteEntity deletes one entity.
	DeleteEntity(ctx context.Context, entity Entity) error

	// DeleteEntityCollection deletes all entities of the collection in one
	// transaction and returns the number removed.
	DeleteEntityCollection(ctx context.Context, collection EntityCollection) (int, error)

	// DeleteEntitiesDirectly deletes rows of target matching the filter
	// without fetching them first.
	DeleteEntitiesDirectly(ctx context.Context, target string, filter *PredicateBucket) (int64, error)

	// UpdateEntitiesDirectly applies the non-zero fields of values to rows of
	// target matching the filter without fetching them first.
	UpdateEntitiesDirectly(ctx context.Context, values Entity, target string, filter *PredicateBucket) (int64, error)
}
