// Package dal defines the synchronous data access adapter contract and the
// opaque parameter types its operations accept: predicate buckets, sort
// clauses, prefetch paths, field lists and paging. These payloads are passed
// through to the adapter implementation unchanged.
package dal

// Entity is one persistable object. Implementations report the table they
// map to; the adapter handles everything else.
type Entity interface {
	TableName() string
}

// EntityCollection is a homogeneous set of entities fetched or persisted as
// one unit. Items returns a pointer to the underlying slice for scanning.
type EntityCollection interface {
	TableName() string
	Items() any
}

// Collection is the standard EntityCollection implementation over an entity
// value type.
type Collection[T Entity] struct {
	Entities []T
}

// NewCollection creates a collection seeded with the given entities.
func NewCollection[T Entity](entities ...T) *Collection[T] {
	return &Collection[T]{Entities: entities}
}

// TableName returns the mapped table of the element type.
func (c *Collection[T]) TableName() string {
	var entity T
	return entity.TableName()
}

// Items returns a pointer to the entity slice.
func (c *Collection[T]) Items() any {
	return &c.Entities
}

// Len returns the number of entities in the collection.
func (c *Collection[T]) Len() int {
	return len(c.Entities)
}

// Predicate is one row-selection condition with positional arguments.
type Predicate struct {
	Expression string
	Args       []any
}

// Relation is a join clause pulled in to support a predicate.
type Relation struct {
	Join string
}

// PredicateBucket describes row-selection conditions and the join relations
// they depend on. Conditions are combined with AND.
type PredicateBucket struct {
	Predicates []Predicate
	Relations  []Relation
}

// NewPredicateBucket creates an empty predicate bucket.
func NewPredicateBucket() *PredicateBucket {
	return &PredicateBucket{}
}

// Add appends a condition and returns the bucket for chaining.
func (b *PredicateBucket) Add(expression string, args ...any) *PredicateBucket {
	b.Predicates = append(b.Predicates, Predicate{Expression: expression, Args: args})
	return b
}

// AddRelation appends a join relation and returns the bucket for chaining.
func (b *PredicateBucket) AddRelation(join string) *PredicateBucket {
	b.Relations = append(b.Relations, Relation{Join: join})
	return b
}

// IsEmpty reports whether the bucket carries no conditions.
func (b *PredicateBucket) IsEmpty() bool {
	return b == nil || len(b.Predicates) == 0
}

// SortClause orders a result on one field.
type SortClause struct {
	Field      string
	Descending bool
}

// PrefetchPath declares related-entity graphs to load alongside a primary
// fetch. Elements are association names; nested graphs use dotted paths.
type PrefetchPath []string

// FieldList restricts the fetched columns. Include wins when both are set.
type FieldList struct {
	Include []string
	Exclude []string
}

// Paging selects one page of a result. PageNumber is 1-based.
type Paging struct {
	PageNumber int
	PageSize   int
}

// Offset returns the row offset for the page.
func (p *Paging) Offset() int {
	if p.PageNumber <= 1 {
		return 0
	}
	return (p.PageNumber - 1) * p.PageSize
}

// AggregateFunction names a scalar aggregate.
type AggregateFunction string

const (
	AggregateCount AggregateFunction = "COUNT"
	AggregateSum   AggregateFunction = "SUM"
	AggregateAvg   AggregateFunction = "AVG"
	AggregateMin   AggregateFunction = "MIN"
	AggregateMax   AggregateFunction = "MAX"
)

// AggregateExpression is a scalar aggregate over one field of a source.
type AggregateExpression struct {
	Function AggregateFunction
	Field    string
	Source   string
}

// FetchOptions bundles the optional parameters of a collection fetch.
type FetchOptions struct {
	Filter   *PredicateBucket
	Sort     []SortClause
	Prefetch PrefetchPath
	Fields   *FieldList
	Paging   *Paging
	GroupBy  []string
	Distinct bool

	// Limit caps the row count when Paging is not set. Zero means no limit.
	Limit int
}

// TypedList is a declarative projection of one or more tables into a flat
// result shape with an explicit field set.
type TypedList interface {
	SourceName() string
	FieldNames() []string
	Rows() any
}

// TypedView is a pre-defined database view projected into a flat result shape.
type TypedView interface {
	SourceName() string
	Rows() any
}

// RowSet is a raw tabular query result.
type RowSet struct {
	Columns []string
	Rows    [][]any
}
