package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherBatchesGoFiles(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "billing")
	require.NoError(t, os.MkdirAll(pkg, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0755))

	changes := make(chan []string, 16)
	w, err := NewWatcher([]string{root + "/..."}, 20*time.Millisecond, nil, func(_ context.Context, paths []string) {
		changes <- paths
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	invoice := filepath.Join(pkg, "invoice.go")
	ignored := []string{
		filepath.Join(pkg, "invoice_test.go"),
		filepath.Join(pkg, "notes.txt"),
		filepath.Join(root, "vendor", "lib.go"),
	}

	var got []string
	require.Eventually(t, func() bool {
		for _, path := range ignored {
			require.NoError(t, os.WriteFile(path, []byte("package billing\n"), 0644))
		}
		require.NoError(t, os.WriteFile(invoice, []byte("package billing\n"), 0644))
		select {
		case got = <-changes:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, []string{invoice}, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()

	changes := make(chan []string, 16)
	w, err := NewWatcher([]string{root}, 20*time.Millisecond, nil, func(_ context.Context, paths []string) {
		changes <- paths
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	crm := filepath.Join(root, "crm")
	contact := filepath.Join(crm, "contact.go")
	require.Eventually(t, func() bool {
		require.NoError(t, os.MkdirAll(crm, 0755))
		require.NoError(t, os.WriteFile(contact, []byte("package crm\n"), 0644))
		select {
		case paths := <-changes:
			return assert.ObjectsAreEqual([]string{contact}, paths)
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
}
