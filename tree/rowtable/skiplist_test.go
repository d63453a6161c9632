package rowtable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitylake/trinitylake-go/tree/rowtable"
)

func TestSkipList_Insert(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		verify func(*testing.T, *rowtable.SkipList)
	}{
		{
			name:  "insert single element",
			key:   "n\x1fsales",
			value: "ns/sales/abc",
			verify: func(t *testing.T, sl *rowtable.SkipList) {
				val, found := sl.Search("n\x1fsales")
				assert.True(t, found)
				assert.Equal(t, "ns/sales/abc", val)
			},
		},
		{
			name:  "insert multiple elements",
			key:   "n\x1fmarketing",
			value: "ns/marketing/def",
			verify: func(t *testing.T, sl *rowtable.SkipList) {
				sl.Insert("n\x1fsales", "ns/sales/abc")
				sl.Insert("t\x1fsales\x1forders", "tbl/sales/orders/ghi")

				assert.Equal(t, 3, sl.Len())
				val, found := sl.Search("n\x1fsales")
				assert.True(t, found)
				assert.Equal(t, "ns/sales/abc", val)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl := rowtable.New()
			sl.Insert(tt.key, tt.value)
			tt.verify(t, sl)
		})
	}
}

func TestSkipList_Update(t *testing.T) {
	sl := rowtable.New()

	sl.Insert("n\x1fsales", "ns/sales/abc")
	val, found := sl.Search("n\x1fsales")
	require.True(t, found)
	assert.Equal(t, "ns/sales/abc", val)

	sl.Insert("n\x1fsales", "ns/sales/def")
	val, found = sl.Search("n\x1fsales")
	require.True(t, found)
	assert.Equal(t, "ns/sales/def", val)

	assert.Equal(t, 1, sl.Len())
}

func TestSkipList_Delete(t *testing.T) {
	sl := rowtable.New()
	sl.Insert("n\x1fsales", "ns/sales/abc")
	sl.Insert("n\x1fmarketing", "ns/marketing/def")

	assert.True(t, sl.Delete("n\x1fsales"))
	assert.False(t, sl.Delete("n\x1fsales"))
	_, found := sl.Search("n\x1fsales")
	assert.False(t, found)
	assert.Equal(t, 1, sl.Len())
}

func TestSkipList_IteratorIsSortedByKey(t *testing.T) {
	sl := rowtable.New()
	sl.Insert("t\x1fsales\x1forders", "tbl/sales/orders/1")
	sl.Insert("n\x1fmarketing", "ns/marketing/1")
	sl.Insert("n\x1fsales", "ns/sales/1")

	var keys []string
	it := sl.Iterator()
	for it.Next() {
		keys = append(keys, it.Key())
	}
	assert.Equal(t, []string{"n\x1fmarketing", "n\x1fsales", "t\x1fsales\x1forders"}, keys)
}

func TestSkipList_CloneIsIndependent(t *testing.T) {
	sl := rowtable.New()
	sl.Insert("n\x1fsales", "ns/sales/abc")

	clone := sl.Clone()
	clone.Insert("n\x1fmarketing", "ns/marketing/def")

	assert.Equal(t, 1, sl.Len())
	assert.Equal(t, 2, clone.Len())
	_, found := sl.Search("n\x1fmarketing")
	assert.False(t, found)
}
