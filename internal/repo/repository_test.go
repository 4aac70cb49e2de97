package repo_test

import (
	"testing"

	"github.com/hamed0406/pingmonitor/internal/repo"
	"github.com/hamed0406/pingmonitor/internal/repo/memory"
)

func TestMemoryStoreImplementsBoth(t *testing.T) {
	store := memory.New()
	var _ repo.SnapshotStore = store
	var _ repo.AlertStore = store
}
