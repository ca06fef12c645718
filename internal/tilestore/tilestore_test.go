package tilestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_OpenInsertFlushClose(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dbs")

	store, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, store.Insert(Row{X: 1, Y: 2, Z: 3, Data: []byte("hello")}))
	require.NoError(t, store.Flush())
	require.NoError(t, store.Close())
}

func TestStore_RecreatesFromScratch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dbs")

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Insert(Row{X: 0, Y: 0, Z: 0, Data: []byte("first-run")}))
	require.NoError(t, store.Close())

	store2, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store2.Close())
}
