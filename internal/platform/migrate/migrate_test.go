package migrate

import (
	"testing"
	"testing/fstest"
)

func TestMigrationNamesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_slots.sql":    {Data: []byte("select 2;")},
		"0001_accounts.sql": {Data: []byte("select 1;")},
		"README.md":         {Data: []byte("notes")},
		"archive/0000.sql":  {Data: []byte("select 0;")},
	}
	names, err := migrationNames(fsys)
	if err != nil {
		t.Fatalf("migrationNames err: %v", err)
	}
	if len(names) != 2 || names[0] != "0001_accounts.sql" || names[1] != "0002_slots.sql" {
		t.Fatalf("unexpected names: %v", names)
	}
}
