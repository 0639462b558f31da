package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlMarkerPattern  = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	uuidMarkerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	tableRefPattern   = regexp.MustCompile(`(?i)\b(?:from|into|update|join)\s+([a-z_][a-z0-9_]*)`)
	createPattern     = regexp.MustCompile(`(?i)\bcreate\s+table\s+(?:if\s+not\s+exists\s+)?([a-z_][a-z0-9_]*)`)
)

// Words that follow from/into/update/join without naming a table.
var notTables = map[string]bool{"set": true, "select": true, "lateral": true, "only": true}

type markerSite struct {
	file string
	line int
	name string
}

type violation struct {
	file    string
	name    string
	line    int
	message string
}

// linter checks inline queries for a unique --sql <uuid> marker and, when a
// schema is loaded, that every referenced table is created by a migration.
type linter struct {
	seen   map[string]markerSite
	tables map[string]bool
}

func newLinter(tables map[string]bool) *linter {
	return &linter{seen: make(map[string]markerSite), tables: tables}
}

func main() {
	schemaDir := flag.String("schema", "", "directory of migration .sql files to check table names against")
	flag.Parse()
	os.Exit(run(*schemaDir, flag.Args()))
}

func run(schemaDir string, targets []string) int {
	if len(targets) == 0 {
		targets = []string{"."}
	}
	var tables map[string]bool
	if schemaDir != "" {
		var err error
		if tables, err = loadSchema(schemaDir); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			return 1
		}
	}
	l := newLinter(tables)

	var violations []violation
	for _, target := range targets {
		err := filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			vs, err := l.lintFile(path)
			violations = append(violations, vs...)
			return err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			return 1
		}
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: SQL marker or schema violations")
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "  %s:%d %s (%s)\n", v.file, v.line, v.message, v.name)
		}
		return 1
	}
	return 0
}

// loadSchema collects the table names created by the .sql files in dir.
func loadSchema(dir string) (map[string]bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sql files in %s", dir)
	}
	tables := make(map[string]bool)
	for _, f := range files {
		body, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range createPattern.FindAllStringSubmatch(string(body), -1) {
			tables[strings.ToLower(m[1])] = true
		}
	}
	return tables, nil
}

func (l *linter) lintFile(path string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	var violations []violation
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for _, value := range vs.Values {
			bl := leadingLiteral(value)
			if bl == nil {
				continue
			}
			raw, err := unquote(bl.Value)
			if err != nil || !sqlMarkerPattern.MatchString(raw) {
				continue
			}
			full := literalText(value)
			site := markerSite{file: path, line: fset.Position(bl.Pos()).Line, name: joinNames(vs.Names)}
			report := func(msg string) {
				violations = append(violations, violation{file: path, line: site.line, name: site.name, message: msg})
			}

			marker := firstLine(raw)
			switch prev, dup := l.seen[marker]; {
			case !uuidMarkerPattern.MatchString(marker):
				report("missing or invalid --sql <uuid> marker")
				continue
			case dup:
				report(fmt.Sprintf("marker reused from %s:%d (%s)", prev.file, prev.line, prev.name))
				continue
			}
			l.seen[marker] = site

			if l.tables == nil {
				continue
			}
			for _, m := range tableRefPattern.FindAllStringSubmatch(full, -1) {
				table := strings.ToLower(m[1])
				if !notTables[table] && !l.tables[table] {
					report(fmt.Sprintf("table %q is not created by any migration", table))
				}
			}
		}
		return true
	})
	return violations, nil
}

// leadingLiteral returns the leftmost string literal of a constant
// expression, so queries assembled with + are checked by their first line.
func leadingLiteral(expr ast.Expr) *ast.BasicLit {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			return e
		}
	case *ast.BinaryExpr:
		if e.Op == token.ADD {
			return leadingLiteral(e.X)
		}
	case *ast.ParenExpr:
		return leadingLiteral(e.X)
	}
	return nil
}

// literalText joins every string literal of a + expression; identifiers
// such as shared column lists are replaced by a space.
func literalText(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			if v, err := unquote(e.Value); err == nil {
				return v
			}
		}
	case *ast.BinaryExpr:
		if e.Op == token.ADD {
			return literalText(e.X) + literalText(e.Y)
		}
	case *ast.ParenExpr:
		return literalText(e.X)
	}
	return " "
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

func joinNames(idents []*ast.Ident) string {
	parts := make([]string, 0, len(idents))
	for _, ident := range idents {
		if ident == nil {
			continue
		}
		parts = append(parts, ident.Name)
	}
	return strings.Join(parts, ",")
}
