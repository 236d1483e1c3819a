package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tester = Author{Name: "Trip Bot", Email: "bot@example.com"}

func newRepo(t *testing.T) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	r := Open(t.TempDir(), tester)
	require.NoError(t, r.Init())
	return r
}

func TestInit(t *testing.T) {
	r := newRepo(t)
	assert.True(t, IsRepo(r.Dir))

	// Second init is a no-op.
	require.NoError(t, r.Init())
}

func TestIsRepo_PlainDir(t *testing.T) {
	assert.False(t, IsRepo(t.TempDir()))
}

func TestCommit(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "expenses.csv"), []byte("x\n"), 0o644))

	dirty, err := r.HasChanges()
	require.NoError(t, err)
	assert.True(t, dirty)

	hash, err := r.Commit("expense: add 2025-01-001")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	subjects, err := r.Subjects(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"expense: add 2025-01-001"}, subjects)

	out, err := r.git("log", "-1", "--format=%an <%ae>")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip Bot <bot@example.com>")
}

func TestCommit_Clean(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "a.txt"), []byte("a"), 0o644))
	_, err := r.Commit("first")
	require.NoError(t, err)

	_, err = r.Commit("second")
	assert.ErrorIs(t, err, ErrNoChanges)

	subjects, err := r.Subjects(5)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, subjects)
}

func TestSubjects_Order(t *testing.T) {
	r := newRepo(t)
	for _, name := range []string{"one", "two"} {
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir, name), []byte(name), 0o644))
		_, err := r.Commit(name)
		require.NoError(t, err)
	}
	subjects, err := r.Subjects(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "one"}, subjects)
}
