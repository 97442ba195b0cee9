// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(KeyspaceTasks, "t1", []byte(`{"name":"a"}`)))

	value, err := store.Get(KeyspaceTasks, "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a"}`, string(value))

	// Overwrite.
	require.NoError(t, store.Put(KeyspaceTasks, "t1", []byte(`{"name":"b"}`)))
	value, err = store.Get(KeyspaceTasks, "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"b"}`, string(value))

	require.NoError(t, store.Delete(KeyspaceTasks, "t1"))
	_, err = store.Get(KeyspaceTasks, "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine.
	assert.NoError(t, store.Delete(KeyspaceTasks, "t1"))
}

func TestKeyspacesAreIsolated(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(KeyspaceTasks, "id", []byte("task")))
	require.NoError(t, store.Put(KeyspaceProjects, "id", []byte("project")))

	value, err := store.Get(KeyspaceProjects, "id")
	require.NoError(t, err)
	assert.Equal(t, "project", string(value))

	_, err = store.Get(KeyspaceWorkflows, "id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(KeyspaceWorkflows, "w1", []byte("one")))
	require.NoError(t, store.Put(KeyspaceWorkflows, "w2", []byte("two")))

	values, err := store.List(KeyspaceWorkflows)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	values, err = store.List(KeyspaceTasks)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(KeyspaceTasks, "t1", []byte("x")))
	require.NoError(t, store.Put(KeyspaceTasks, "t2", []byte("y")))
	require.NoError(t, store.Put(KeyspaceProjects, "p1", []byte("z")))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TaskCount)
	assert.EqualValues(t, 1, stats.ProjectCount)
	assert.EqualValues(t, 0, stats.WorkflowCount)
}

func TestOpenFallsBackToMemory(t *testing.T) {
	// A directory path cannot be opened as a database file.
	store, err := Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	defer store.Close()

	assert.True(t, store.InMemory())
	require.NoError(t, store.Put(KeyspaceTasks, "t1", []byte("v")))
	value, err := store.Get(KeyspaceTasks, "t1")
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))
}
