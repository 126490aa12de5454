package dal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	dalerrors "github.com/seasbee/go-dalx/pkg/errors"
	"github.com/seasbee/go-dalx/pkg/logging"
	"github.com/seasbee/go-dalx/pkg/runtime"
)

// GormAdapter is the GORM-backed Adapter implementation. Instances are
// short-lived: the connection is opened lazily on the first operation so
// overrides set after construction still take effect, and Close releases it.
type GormAdapter struct {
	rt             *runtime.Configuration
	connectionName string
	logger         logging.Logger

	dsn               string
	commandTimeout    time.Duration
	prefetchThreshold int
	isolation         sql.IsolationLevel

	db *gorm.DB
}

// NewGormAdapter creates an adapter resolving its connection string and
// driver factory from the runtime configuration. A nil logger disables
// adapter diagnostics.
func NewGormAdapter(rt *runtime.Configuration, connectionName string, logger logging.Logger) *GormAdapter {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &GormAdapter{
		rt:             rt,
		connectionName: connectionName,
		logger:         logger,
		isolation:      sql.LevelDefault,
	}
}

// NewGormFactory returns a factory producing one fresh adapter per call, for
// use with the async wrapper.
func NewGormFactory(rt *runtime.Configuration, connectionName string, logger logging.Logger) func() (*GormAdapter, error) {
	return func() (*GormAdapter, error) {
		return NewGormAdapter(rt, connectionName, logger), nil
	}
}

// SetConnectionString overrides the connection string resolved from the
// runtime configuration.
func (a *GormAdapter) SetConnectionString(dsn string) {
	a.dsn = dsn
}

// SetCommandTimeout bounds the execution time of each operation.
func (a *GormAdapter) SetCommandTimeout(timeout time.Duration) {
	a.commandTimeout = timeout
}

// SetPrefetchParameterThreshold tunes query parameterization. A positive
// threshold switches the session to prepared, parameterized statements.
func (a *GormAdapter) SetPrefetchParameterThreshold(threshold int) {
	a.prefetchThreshold = threshold
}

// SetIsolationLevel sets the isolation level for multi-statement operations.
func (a *GormAdapter) SetIsolationLevel(level sql.IsolationLevel) {
	a.isolation = level
}

// Close releases the underlying connection.
func (a *GormAdapter) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	a.db = nil
	return sqlDB.Close()
}

// ensureDB opens the connection on first use.
func (a *GormAdapter) ensureDB() error {
	if a.db != nil {
		return nil
	}

	dsn := a.dsn
	if dsn == "" && a.rt != nil {
		if value, ok := a.rt.ConnectionString(a.connectionName); ok {
			dsn = value
		}
	}
	if dsn == "" {
		return dalerrors.New(dalerrors.ErrorTypeConnection, "no connection string configured").
			WithSource(a.connectionName)
	}

	factory := runtime.DriverFactoryFor("")
	if a.rt != nil {
		if f := a.rt.Engine().DriverFactory(); f != nil {
			factory = f
		}
	}

	cfg := &gorm.Config{Logger: glogger.Discard}
	if a.prefetchThreshold > 0 {
		cfg.PrepareStmt = true
	}

	db, err := gorm.Open(factory(dsn), cfg)
	if err != nil {
		return dalerrors.Wrap(err, dalerrors.ErrorTypeConnection, "failed to open connection").
			WithSource(a.connectionName)
	}

	a.db = db
	a.logger.Debug(context.Background(), "Adapter connection opened",
		logging.String("connection", a.connectionName))
	return nil
}

// session returns a context-bound handle; the cancel func must be deferred.
func (a *GormAdapter) session(ctx context.Context) (*gorm.DB, context.CancelFunc, error) {
	if err := a.ensureDB(); err != nil {
		return nil, nil, err
	}

	cancel := func() {}
	if a.commandTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, a.commandTimeout)
	}
	return a.db.WithContext(ctx), cancel, nil
}

// txOptions returns transaction options when an isolation level is set.
func (a *GormAdapter) txOptions() []*sql.TxOptions {
	if a.isolation == sql.LevelDefault {
		return nil
	}
	return []*sql.TxOptions{{Isolation: a.isolation}}
}

// applyBucket adds the bucket's relations and conditions to the query.
func applyBucket(tx *gorm.DB, bucket *PredicateBucket) *gorm.DB {
	if bucket == nil {
		return tx
	}
	for _, relation := range bucket.Relations {
		tx = tx.Joins(relation.Join)
	}
	for _, predicate := range bucket.Predicates {
		tx = tx.Where(predicate.Expression, predicate.Args...)
	}
	return tx
}

// applyOptions adds filter, sort, field list, grouping and paging to the query.
func applyOptions(tx *gorm.DB, opts *FetchOptions) *gorm.DB {
	if opts == nil {
		return tx
	}

	tx = applyBucket(tx, opts.Filter)

	for _, clause := range opts.Sort {
		order := clause.Field
		if clause.Descending {
			order += " DESC"
		}
		tx = tx.Order(order)
	}

	if opts.Fields != nil {
		if len(opts.Fields.Include) > 0 {
			tx = tx.Select(opts.Fields.Include)
		} else if len(opts.Fields.Exclude) > 0 {
			tx = tx.Omit(opts.Fields.Exclude...)
		}
	}

	for _, group := range opts.GroupBy {
		tx = tx.Group(group)
	}
	if opts.Distinct {
		tx = tx.Distinct()
	}

	if opts.Paging != nil && opts.Paging.PageSize > 0 {
		tx = tx.Offset(opts.Paging.Offset()).Limit(opts.Paging.PageSize)
	} else if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}

	return tx
}

// FetchEntity refetches the entity using its populated primary key fields.
func (a *GormAdapter) FetchEntity(ctx context.Context, entity Entity) error {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	return tx.First(entity).Error
}

// FetchEntityUsingPK fetches the entity identified by the given primary key
// values.
func (a *GormAdapter) FetchEntityUsingPK(ctx context.Context, entity Entity, pk ...any) error {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	return tx.First(entity, pk...).Error
}

// FetchEntityCollection fetches entities matching the options into dest.
func (a *GormAdapter) FetchEntityCollection(ctx context.Context, dest EntityCollection, opts *FetchOptions) error {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	tx = applyOptions(tx, opts)
	if opts != nil {
		for _, path := range opts.Prefetch {
			tx = tx.Preload(path)
		}
	}

	return tx.Find(dest.Items()).Error
}

// FetchTypedList fetches a typed list projection.
func (a *GormAdapter) FetchTypedList(ctx context.Context, list TypedList, opts *FetchOptions) error {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	tx = tx.Table(list.SourceName())
	if fields := list.FieldNames(); len(fields) > 0 {
		tx = tx.Select(fields)
	}
	tx = applyOptions(tx, opts)

	return tx.Find(list.Rows()).Error
}

// FetchTypedView fetches a typed view projection.
func (a *GormAdapter) FetchTypedView(ctx context.Context, view TypedView, opts *FetchOptions) error {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	tx = applyOptions(tx.Table(view.SourceName()), opts)
	return tx.Find(view.Rows()).Error
}

// FetchRows executes a raw query and returns the tabular result.
func (a *GormAdapter) FetchRows(ctx context.Context, query string, args ...any) (*RowSet, error) {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	rows, err := tx.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &RowSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}

	return result, rows.Err()
}

// GetScalar evaluates a scalar aggregate expression.
func (a *GormAdapter) GetScalar(ctx context.Context, expression *AggregateExpression, filter *PredicateBucket) (any, error) {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	field := expression.Field
	if field == "" {
		field = "*"
	}

	tx = applyBucket(tx.Table(expression.Source), filter)

	var value any
	row := tx.Select(fmt.Sprintf("%s(%s)", expression.Function, field)).Row()
	if err := row.Scan(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// GetCount returns the number of rows in source matching the filter.
func (a *GormAdapter) GetCount(ctx context.Context, source string, filter *PredicateBucket) (int64, error) {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	var count int64
	err = applyBucket(tx.Table(source), filter).Count(&count).Error
	return count, err
}

// SaveEntity inserts or updates one entity, optionally refetching it.
func (a *GormAdapter) SaveEntity(ctx context.Context, entity Entity, refetch bool) error {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := tx.Save(entity).Error; err != nil {
		return err
	}
	if refetch {
		return tx.First(entity).Error
	}
	return nil
}

// SaveEntityCollection saves all entities of the collection in one
// transaction.
func (a *GormAdapter) SaveEntityCollection(ctx context.Context, collection EntityCollection) (int, error) {
	db, cancel, err := a.session(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	var affected int64
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Save(collection.Items())
		affected = result.RowsAffected
		return result.Error
	}, a.txOptions()...)

	return int(affected), err
}

// DeleteEntity deletes one entity.
func (a *GormAdapter) DeleteEntity(ctx context.Context, entity Entity) error {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	return tx.Delete(entity).Error
}

// DeleteEntityCollection deletes all entities of the collection in one
// transaction.
func (a *GormAdapter) DeleteEntityCollection(ctx context.Context, collection EntityCollection) (int, error) {
	db, cancel, err := a.session(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	var affected int64
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(collection.Items())
		affected = result.RowsAffected
		return result.Error
	}, a.txOptions()...)

	return int(affected), err
}

// DeleteEntitiesDirectly deletes rows of target matching the filter without
// fetching them first. Relations in the bucket are not supported for direct
// deletes; conditions only.
func (a *GormAdapter) DeleteEntitiesDirectly(ctx context.Context, target string, filter *PredicateBucket) (int64, error) {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	stmt := "DELETE FROM " + target
	var args []any
	if !filter.IsEmpty() {
		conditions := make([]string, 0, len(filter.Predicates))
		for _, predicate := range filter.Predicates {
			conditions = append(conditions, predicate.Expression)
			args = append(args, predicate.Args...)
		}
		stmt += " WHERE " + strings.Join(conditions, " AND ")
	}

	result := tx.Exec(stmt, args...)
	return result.RowsAffected, result.Error
}

// UpdateEntitiesDirectly applies the non-zero fields of values to rows of
// target matching the filter without fetching them first.
func (a *GormAdapter) UpdateEntitiesDirectly(ctx context.Context, values Entity, target string, filter *PredicateBucket) (int64, error) {
	tx, cancel, err := a.session(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	tx = applyBucket(tx.Table(target), filter)
	if filter.IsEmpty() {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	}

	result := tx.Updates(values)
	return result.RowsAffected, result.Error
}

// Compile-time contract check.
var _ Adapter = (*GormAdapter)(nil)
