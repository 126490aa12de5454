package dal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	EntityBase
	Name string
}

func (widget) TableName() string { return "widgets" }

func TestCollection(t *testing.T) {
	c := NewCollection(widget{Name: "a"}, widget{Name: "b"})

	assert.Equal(t, "widgets", c.TableName())
	assert.Equal(t, 2, c.Len())

	items, ok := c.Items().(*[]widget)
	require.True(t, ok)
	assert.Same(t, &c.Entities, items)
}

func TestCollection_EmptyStillReportsTable(t *testing.T) {
	c := NewCollection[widget]()
	assert.Equal(t, "widgets", c.TableName())
	assert.Equal(t, 0, c.Len())
}

func TestPredicateBucket(t *testing.T) {
	b := NewPredicateBucket().
		Add("price > ?", 10).
		Add("discontinued = ?", false).
		AddRelation("JOIN categories ON categories.id = widgets.category_id")

	assert.False(t, b.IsEmpty())
	require.Len(t, b.Predicates, 2)
	assert.Equal(t, "price > ?", b.Predicates[0].Expression)
	assert.Equal(t, []any{10}, b.Predicates[0].Args)
	require.Len(t, b.Relations, 1)
}

func TestPredicateBucket_IsEmpty(t *testing.T) {
	var nilBucket *PredicateBucket
	assert.True(t, nilBucket.IsEmpty())
	assert.True(t, NewPredicateBucket().IsEmpty())
}

func TestPagingOffset(t *testing.T) {
	tests := []struct {
		name   string
		paging Paging
		want   int
	}{
		{name: "first page", paging: Paging{PageNumber: 1, PageSize: 25}, want: 0},
		{name: "zero page treated as first", paging: Paging{PageNumber: 0, PageSize: 25}, want: 0},
		{name: "third page", paging: Paging{PageNumber: 3, PageSize: 25}, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.paging.Offset())
		})
	}
}

func TestEntityBase(t *testing.T) {
	var w widget
	assert.True(t, w.IsNew())

	err := w.BeforeCreate(nil)
	require.NoError(t, err)
	assert.False(t, w.IsNew())
	assert.Equal(t, w.ID, w.GetID())
}
