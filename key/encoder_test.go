package key_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/key"
	"github.com/trinitylake/trinitylake-go/objects"
)

func newEncoder() *key.Encoder {
	return key.NewEncoder(objects.NewLakehouseDef("lh", time.Now()))
}

func TestNamespaceAndTableKeyRoundTrip(t *testing.T) {
	e := newEncoder()

	nsKey, err := e.NamespaceKey("sales")
	require.NoError(t, err)
	assert.True(t, e.IsNamespaceKey(nsKey))
	assert.False(t, e.IsTableKey(nsKey))
	name, err := e.NamespaceNameFromKey(nsKey)
	require.NoError(t, err)
	assert.Equal(t, "sales", name)

	tblKey, err := e.TableKey("sales", "orders")
	require.NoError(t, err)
	assert.True(t, e.IsTableKey(tblKey))
	assert.False(t, e.IsNamespaceKey(tblKey))
	ns, tbl, err := e.TableNameFromKey(tblKey)
	require.NoError(t, err)
	assert.Equal(t, "sales", ns)
	assert.Equal(t, "orders", tbl)
}

func TestKeysAreInjective(t *testing.T) {
	e := newEncoder()

	a, _ := e.NamespaceKey("sales")
	b, _ := e.NamespaceKey("marketing")
	assert.NotEqual(t, a, b)

	c, _ := e.TableKey("sales", "orders")
	d, _ := e.TableKey("sales", "invoices")
	assert.NotEqual(t, c, d)
}

func TestClassificationIsExhaustiveAndDisjoint(t *testing.T) {
	e := newEncoder()
	reserved := e.Reserved()

	nsKey, _ := e.NamespaceKey("sales")
	tblKey, _ := e.TableKey("sales", "orders")

	keys := []string{nsKey, tblKey, reserved.LakehouseDefKey, reserved.NumKeysKey}
	for _, k := range keys {
		classes := 0
		if e.IsNamespaceKey(k) {
			classes++
		}
		if e.IsTableKey(k) {
			classes++
		}
		if reserved.IsReserved(k) {
			classes++
		}
		assert.Equal(t, 1, classes, "key %q must belong to exactly one class", k)
	}
}

func TestNamespaceNameFromKeyRejectsTableKey(t *testing.T) {
	e := newEncoder()
	tblKey, _ := e.TableKey("sales", "orders")

	_, err := e.NamespaceNameFromKey(tblKey)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindMalformedKey))
}

func TestValidateNameRejectsReservedBytes(t *testing.T) {
	e := newEncoder()

	_, err := e.NamespaceKey("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInvalidName))

	_, err = e.NamespaceKey("sa\x1fles")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInvalidName))

	_, err = e.NamespaceKey("sa\x00les")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInvalidName))
}
