package async

import (
	"context"
	"database/sql"
	"time"

	"github.com/seasbee/go-dalx/pkg/dal"
	"github.com/seasbee/go-dalx/pkg/observability"
)

// Void is the result type of operations that complete without a value.
type Void struct{}

// Factory produces one fresh adapter per wrapper call.
type Factory[A dal.Adapter] func() (A, error)

// Wrapper re-exposes a synchronous adapter's operation set as task-returning
// asynchronous operations. Every call creates its own adapter via the
// factory, so concurrent calls never share a connection or transaction and
// complete in any order.
//
// The exported override fields are read once at the start of each call and
// are not guarded by a lock: configure them before issuing concurrent calls.
// Sentinel defaults leave the adapter's own settings untouched.
//
// The wrapper frees the calling goroutine only; the underlying operation
// stays synchronous on the worker, with the same cost it has when called
// directly.
type Wrapper[A dal.Adapter] struct {
	factory Factory[A]
	runner  Runner
	metrics *observability.Collector

	// ConnectionString overrides the adapter's default connection when
	// non-empty.
	ConnectionString string

	// CommandTimeout is applied only when strictly positive.
	CommandTimeout time.Duration

	// PrefetchParameterThreshold is applied only when strictly positive.
	PrefetchParameterThreshold int

	// IsolationLevel is applied only when not sql.LevelDefault.
	IsolationLevel sql.IsolationLevel
}

// Option configures a Wrapper.
type Option[A dal.Adapter] func(*Wrapper[A])

// WithRunner replaces the execution mode. The default Background runner
// dispatches each call to a new goroutine.
func WithRunner[A dal.Adapter](runner Runner) Option[A] {
	return func(w *Wrapper[A]) {
		w.runner = runner
	}
}

// WithCollector attaches an observability collector. Without one the wrapper
// records nothing.
func WithCollector[A dal.Adapter](collector *observability.Collector) Option[A] {
	return func(w *Wrapper[A]) {
		w.metrics = collector
	}
}

// NewWrapper creates a wrapper using the adapter's default connection.
func NewWrapper[A dal.Adapter](factory Factory[A], opts ...Option[A]) *Wrapper[A] {
	w := &Wrapper[A]{
		factory:        factory,
		runner:         Background{},
		IsolationLevel: sql.LevelDefault,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewWrapperWithConnectionString creates a wrapper overriding the adapter's
// connection string.
func NewWrapperWithConnectionString[A dal.Adapter](factory Factory[A], connectionString string, opts ...Option[A]) *Wrapper[A] {
	w := NewWrapper(factory, opts...)
	w.ConnectionString = connectionString
	return w
}

// run is the single dispatch primitive behind every public operation: create
// an adapter, apply the override snapshot, execute the synchronous operation
// on the runner, complete the task and release the adapter on every exit
// path. Failures from the factory or the operation reach the task verbatim.
func run[A dal.Adapter, T any](w *Wrapper[A], operation string, op func(ctx context.Context, adapter A) (T, error)) *Task[T] {
	task := newTask[T](operation)

	// Snapshot the overrides on the calling goroutine.
	connectionString := w.ConnectionString
	commandTimeout := w.CommandTimeout
	prefetchThreshold := w.PrefetchParameterThreshold
	isolationLevel := w.IsolationLevel

	w.runner.Do(func() {
		started := time.Now()

		var zero T
		adapter, err := w.factory()
		if err != nil {
			w.record(operation, started, false, err)
			task.complete(zero, err)
			return
		}

		released := false
		defer func() {
			if !released {
				adapter.Close()
			}
		}()

		if connectionString != "" {
			adapter.SetConnectionString(connectionString)
		}
		if commandTimeout > 0 {
			adapter.SetCommandTimeout(commandTimeout)
		}
		if prefetchThreshold > 0 {
			adapter.SetPrefetchParameterThreshold(prefetchThreshold)
		}
		if isolationLevel != sql.LevelDefault {
			adapter.SetIsolationLevel(isolationLevel)
		}

		ctx := context.Background()
		if w.metrics != nil {
			traceCtx, traceSpan := w.metrics.StartTrace(ctx, operation)
			ctx = traceCtx
			defer traceSpan.End()
			defer func() {
				if err != nil {
					w.metrics.RecordTraceError(traceSpan, err)
				}
			}()
		}

		var value T
		value, err = op(ctx, adapter)

		closeErr := adapter.Close()
		released = true
		if err == nil {
			err = closeErr
		}

		w.record(operation, started, err == nil, err)
		task.complete(value, err)
	})

	return task
}

func (w *Wrapper[A]) record(operation string, started time.Time, success bool, err error) {
	if w.metrics == nil {
		return
	}
	w.metrics.RecordOperation(operation, time.Since(started), success)
	if err != nil {
		w.metrics.IncrementError(operation, "operation_failed")
	}
}

// FetchEntityAsync refetches the entity using its populated primary key
// fields.
func (w *Wrapper[A]) FetchEntityAsync(entity dal.Entity) *Task[Void] {
	return run(w, "FetchEntity", func(ctx context.Context, a A) (Void, error) {
		return Void{}, a.FetchEntity(ctx, entity)
	})
}

// FetchEntityUsingPKAsync fetches the entity identified by the given primary
// key values.
func (w *Wrapper[A]) FetchEntityUsingPKAsync(entity dal.Entity, pk ...any) *Task[Void] {
	return run(w, "FetchEntityUsingPK", func(ctx context.Context, a A) (Void, error) {
		return Void{}, a.FetchEntityUsingPK(ctx, entity, pk...)
	})
}

// FetchEntityCollectionAsync fetches entities matching the options into dest.
func (w *Wrapper[A]) FetchEntityCollectionAsync(dest dal.EntityCollection, opts *dal.FetchOptions) *Task[Void] {
	return run(w, "FetchEntityCollection", func(ctx context.Context, a A) (Void, error) {
		return Void{}, a.FetchEntityCollection(ctx, dest, opts)
	})
}

// FetchTypedListAsync fetches a typed list projection.
func (w *Wrapper[A]) FetchTypedListAsync(list dal.TypedList, opts *dal.FetchOptions) *Task[Void] {
	return run(w, "FetchTypedList", func(ctx context.Context, a A) (Void, error) {
		return Void{}, a.FetchTypedList(ctx, list, opts)
	})
}

// FetchTypedViewAsync fetches a typed view projection.
func (w *Wrapper[A]) FetchTypedViewAsync(view dal.TypedView, opts *dal.FetchOptions) *Task[Void] {
	return run(w, "FetchTypedView", func(ctx context.Context, a A) (Void, error) {
		return Void{}, a.FetchTypedView(ctx, view, opts)
	})
}

// FetchRowsAsync executes a raw query and returns the tabular result.
func (w *Wrapper[A]) FetchRowsAsync(query string, args ...any) *Task[*dal.RowSet] {
	return run(w, "FetchRows", func(ctx context.Context, a A) (*dal.RowSet, error) {
		return a.FetchRows(ctx, query, args...)
	})
}

// GetScalarAsync evaluates a scalar aggregate expression.
func (w *Wrapper[A]) GetScalarAsync(expression *dal.AggregateExpression, filter *dal.PredicateBucket) *Task[any] {
	return run(w, "GetScalar", func(ctx context.Context, a A) (any, error) {
		return a.GetScalar(ctx, expression, filter)
	})
}

// GetCountAsync returns the number of rows in source matching the filter.
func (w *Wrapper[A]) GetCountAsync(source string, filter *dal.PredicateBucket) *Task[int64] {
	return run(w, "GetCount", func(ctx context.Context, a A) (int64, error) {
		return a.GetCount(ctx, source, filter)
	})
}

// SaveEntityAsync inserts or updates one entity, optionally refetching it.
func (w *Wrapper[A]) SaveEntityAsync(entity dal.Entity, refetch bool) *Task[Void] {
	return run(w, "SaveEntity", func(ctx context.Context, a A) (Void, error) {
		return Void{}, a.SaveEntity(ctx, entity, refetch)
	})
}

// SaveEntityCollectionAsync saves all entities of the collection and returns
// the number persisted.
func (w *Wrapper[A]) SaveEntityCollectionAsync(collection dal.EntityCollection) *Task[int] {
	return run(w, "SaveEntityCollection", func(ctx context.Context, a A) (int, error) {
		return a.SaveEntityCollection(ctx, collection)
	})
}

// DeleteEntityAsync deletes one entity.
func (w *Wrapper[A]) DeleteEntityAsync(entity dal.Entity) *Task[Void] {
	return run(w, "DeleteEntity", func(ctx context.Context, a A) (Void, error) {
		return Void{}, a.DeleteEntity(ctx, entity)
	})
}

// DeleteEntityCollectionAsync deletes all entities of the collection and
// returns the number removed.
func (w *Wrapper[A]) DeleteEntityCollectionAsync(collection dal.EntityCollection) *Task[int] {
	return run(w, "DeleteEntityCollection", func(ctx context.Context, a A) (int, error) {
		return a.DeleteEntityCollection(ctx, collection)
	})
}

// DeleteEntitiesDirectlyAsync deletes rows of target matching the filter
// without fetching them first.
func (w *Wrapper[A]) DeleteEntitiesDirectlyAsync(target string, filter *dal.PredicateBucket) *Task[int64] {
	return run(w, "DeleteEntitiesDirectly", func(ctx context.Context, a A) (int64, error) {
		return a.DeleteEntitiesDirectly(ctx, target, filter)
	})
}

// UpdateEntitiesDirectlyAsync applies the non-zero fields of values to rows
// of target matching the filter without fetching them first.
func (w *Wrapper[A]) UpdateEntitiesDirectlyAsync(values dal.Entity, target string, filter *dal.PredicateBucket) *Task[int64] {
	return run(w, "UpdateEntitiesDirectly", func(ctx context.Context, a A) (int64, error) {
		return a.UpdateEntitiesDirectly(ctx, values, target, filter)
	})
}
