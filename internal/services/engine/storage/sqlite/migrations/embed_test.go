package migrations

import (
	"io/fs"
	"sort"
	"testing"
)

func TestEngineMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(EngineFS, "engine")
	if err != nil {
		t.Fatalf("read engine migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected engine migrations to be embedded")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if files[0] != "001_engine.sql" {
		t.Fatalf("expected first engine migration 001_engine.sql, got %s", files[0])
	}
}
