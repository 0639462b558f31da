package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintFileAcceptsMarkedQueries(t *testing.T) {
	dir := t.TempDir()
	path := writeGo(t, dir, "ok.go", "package q\n\nconst cols = `id, email`\n\nconst QOne = `--sql 0b9c3f3e-1d7a-4a8e-9f3c-2b6d1e5a7c41\nselect ` + cols + `\nfrom profiles;`\n")
	vs, err := newLinter(nil).lintFile(path)
	if err != nil {
		t.Fatalf("lintFile error: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("expected no violations, got %+v", vs)
	}
}

func TestLintFileFlagsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeGo(t, dir, "bad.go", "package q\n\nconst QBad = `select 1 from profiles`\n")
	vs, err := newLinter(nil).lintFile(path)
	if err != nil {
		t.Fatalf("lintFile error: %v", err)
	}
	if len(vs) != 1 || vs[0].name != "QBad" {
		t.Fatalf("expected one violation for QBad, got %+v", vs)
	}
}

func TestLintFileFlagsDuplicateMarker(t *testing.T) {
	dir := t.TempDir()
	body := "package q\n\nconst QA = `--sql 0b9c3f3e-1d7a-4a8e-9f3c-2b6d1e5a7c41\nselect 1;`\n\nconst QB = `--sql 0b9c3f3e-1d7a-4a8e-9f3c-2b6d1e5a7c41\nselect 2;`\n"
	path := writeGo(t, dir, "dup.go", body)
	vs, err := newLinter(nil).lintFile(path)
	if err != nil {
		t.Fatalf("lintFile error: %v", err)
	}
	if len(vs) != 1 || !strings.Contains(vs[0].message, "reused") {
		t.Fatalf("expected duplicate violation, got %+v", vs)
	}
}

func TestLintFileChecksSchema(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema")
	if err := os.Mkdir(schema, 0o755); err != nil {
		t.Fatal(err)
	}
	writeGo(t, schema, "0001_init.sql", "create table if not exists profiles (id uuid);\ncreate table integration_tokens (provider text);\n")
	tables, err := loadSchema(schema)
	if err != nil {
		t.Fatalf("loadSchema error: %v", err)
	}
	body := "package q\n\n" +
		"const QUp = `--sql 0b9c3f3e-1d7a-4a8e-9f3c-2b6d1e5a7c41\ninsert into integration_tokens (provider) values ($1)\non conflict (provider) do update set provider = excluded.provider;`\n\n" +
		"const QMissing = `--sql 1b9c3f3e-1d7a-4a8e-9f3c-2b6d1e5a7c41\nselect id from profiles p join accounts a on a.id = p.id;`\n"
	path := writeGo(t, dir, "q.go", body)
	vs, err := newLinter(tables).lintFile(path)
	if err != nil {
		t.Fatalf("lintFile error: %v", err)
	}
	if len(vs) != 1 || vs[0].name != "QMissing" || !strings.Contains(vs[0].message, `"accounts"`) {
		t.Fatalf("expected one accounts violation, got %+v", vs)
	}
}

func TestRunRepositoryQueries(t *testing.T) {
	if code := run("../../migrations/sql", []string{"../../sqlinline"}); code != 0 {
		t.Fatalf("repository queries fail lint with code %d", code)
	}
}
