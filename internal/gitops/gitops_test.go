package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(context.Background(), dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(ctx, dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tally.yaml"), []byte("business: {}\n"), 0o644))

	hash, err := Commit(ctx, dir, "init: test books", testAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	head, err := Head(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, hash, head)

	assert.Contains(t, gitLog(t, dir, "%s"), "init: test books")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), testAuthor.String())
	assert.Contains(t, gitLog(t, dir, "%cn <%ce>"), testAuthor.String())
}

func TestCommit_Paths(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(ctx, dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("b\n"), 0o644))

	_, err := Commit(ctx, dir, "journal: add a", testAuthor, "a.csv")
	require.NoError(t, err)

	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "?? b.csv")
}

func TestCommit_NothingToCommit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(ctx, dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("a\n"), 0o644))

	_, err := Commit(ctx, dir, "first", testAuthor)
	require.NoError(t, err)

	_, err = Commit(ctx, dir, "second", testAuthor)
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestCommit_NotARepo(t *testing.T) {
	_, err := Commit(context.Background(), t.TempDir(), "msg", testAuthor)
	assert.ErrorContains(t, err, "git add")
}
