package migrations

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEmbedded(t *testing.T) {
	ms, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(ms) == 0 || ms[0].Version != "0001_init" {
		t.Fatalf("unexpected migrations %+v", ms)
	}
	for _, table := range []string{"accounts", "profiles", "usage_events", "integration_tokens"} {
		if !strings.Contains(ms[0].SQL, "create table if not exists "+table) {
			t.Fatalf("init migration missing table %s", table)
		}
	}
}

func TestLoadOrdersAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql":   {Data: []byte("select 2;")},
		"m/0001_a.sql":   {Data: []byte("select 1;")},
		"m/README.md":    {Data: []byte("notes")},
		"m/old/0000.sql": {Data: []byte("select 0;")},
	}
	ms, err := load(fsys, "m")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if len(ms) != 2 || ms[0].Version != "0001_a" || ms[1].Version != "0002_b" {
		t.Fatalf("unexpected order %+v", ms)
	}
}
