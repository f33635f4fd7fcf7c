package pkg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimuelll/EchoSpace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicName(t *testing.T) {
	name := PublicName("My Holiday Pic.PNG")
	assert.Regexp(t, `^my-holiday-pic-[0-9a-f]{8}$`, name)

	assert.Regexp(t, `^image-[0-9a-f]{8}$`, PublicName("!!!.jpg"))
}

func TestLocalStoreUploadAndDestroy(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Upload(ctx, "echospace/posts", "cat.jpg", strings.NewReader("meow"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.URL, "/uploads/posts-cat-"))
	assert.Equal(t, "/uploads/"+ref.ID, ref.URL)

	data, err := os.ReadFile(filepath.Join(dir, ref.ID))
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))

	require.NoError(t, store.Destroy(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, ref.ID))
	assert.True(t, os.IsNotExist(err))

	// 已删除或空引用都视为成功
	assert.NoError(t, store.Destroy(ctx, ref))
	assert.NoError(t, store.Destroy(ctx, model.ImageRef{}))
}

func TestLocalStoreDestroyStaysInDir(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	store, err := NewLocalStore(dir, "/uploads")
	require.NoError(t, err)
	require.NoError(t, store.Destroy(context.Background(), model.ImageRef{ID: "../" + filepath.Base(filepath.Dir(outside)) + "/keep.txt"}))

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
