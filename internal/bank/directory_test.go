// internal/bank/directory_test.go
package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minibank/internal/money"
)

func TestDirectoryLookups(t *testing.T) {
	dir := NewDirectory([]Account{
		{ID: 1, Username: "Alice", Email: "alice@example.com", Password: "pw-alice", AccountNumber: "1000000001", Balance: money.MustParse("10")},
		{ID: 2, Username: "bob", Email: "Bob@Example.com", Password: "pw-bob", AccountNumber: "1000000002"},
	})
	assert.Equal(t, 2, dir.Len())

	assert.Equal(t, 0, dir.IndexByUsername(" alice "))
	assert.Equal(t, 1, dir.IndexByUsername("BOB"))
	assert.Equal(t, -1, dir.IndexByUsername("carol"))

	assert.Equal(t, 1, dir.IndexByEmail("bob@example.com"))
	assert.Equal(t, -1, dir.IndexByEmail("nobody@example.com"))

	assert.Equal(t, 0, dir.IndexByAccountNumber("1000000001"))
	assert.Equal(t, -1, dir.IndexByAccountNumber(" 1000000001"), "index lookups are exact")
	assert.Equal(t, 1, dir.IndexByID(2))
	assert.Equal(t, -1, dir.IndexByID(3))

	a, ok := dir.ByAccountNumber(" 1000000001 ")
	require.True(t, ok)
	assert.Equal(t, "Alice", a.Username)
	assert.Empty(t, a.Password, "lookups return the public view")
	requireAmount(t, "10.00", a.Balance)

	_, ok = dir.ByID(42)
	assert.False(t, ok)
	_, ok = dir.ByUsername("")
	assert.False(t, ok)
}

func TestEmptyDirectory(t *testing.T) {
	dir := NewDirectory(nil)
	assert.Zero(t, dir.Len())
	assert.Equal(t, -1, dir.IndexByUsername("alice"))
	_, ok := dir.ByID(1)
	assert.False(t, ok)
}
