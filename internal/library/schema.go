package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// joinTable describes a Core Data many-to-many join table.
type joinTable struct {
	name  string
	left  string // column referencing the owning entity
	right string // column referencing the joined entity
}

// resolveSchema discovers the version-dependent pieces of the Photos schema:
// the keyword and album join tables and the ZDETECTEDFACE asset column. Core
// Data numbers these per schema generation, so the names cannot be hardcoded.
func (idx *Index) resolveSchema(ctx context.Context) error {
	kw, err := idx.findJoinTable(ctx, "KEYWORDS", "ASSETATTRIBUTES", "KEYWORDS")
	if err != nil {
		return fmt.Errorf("resolving keyword join: %w", err)
	}
	idx.keywordJoin = kw

	al, err := idx.findJoinTable(ctx, "ASSETS", "ALBUMS", "ASSETS")
	if err != nil {
		return fmt.Errorf("resolving album join: %w", err)
	}
	idx.albumJoin = al

	faceCol, err := idx.findColumn(ctx, "ZDETECTEDFACE", "ZASSETFORFACE", "ZASSET")
	if err != nil {
		return fmt.Errorf("resolving face asset column: %w", err)
	}
	idx.faceAsset = faceCol

	return nil
}

// findJoinTable locates a Z_<N><suffix> join table whose columns end in the
// given left/right suffixes.
func (idx *Index) findJoinTable(ctx context.Context, tableSuffix, leftSuffix, rightSuffix string) (joinTable, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'Z\_%' ESCAPE '\'`)
	if err != nil {
		return joinTable{}, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return joinTable{}, fmt.Errorf("scanning table name: %w", err)
		}
		if strings.HasSuffix(name, tableSuffix) {
			candidates = append(candidates, name)
		}
	}
	if err := rows.Err(); err != nil {
		return joinTable{}, fmt.Errorf("iterating tables: %w", err)
	}

	for _, name := range candidates {
		left, right, ok := idx.matchJoinColumns(ctx, name, leftSuffix, rightSuffix)
		if ok {
			return joinTable{name: name, left: left, right: right}, nil
		}
	}
	return joinTable{}, errors.New("join table not found")
}

// matchJoinColumns checks whether a table has exactly one column ending in
// each suffix and returns their names.
func (idx *Index) matchJoinColumns(ctx context.Context, table, leftSuffix, rightSuffix string) (string, string, bool) {
	rows, err := idx.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return "", "", false
	}
	defer rows.Close()

	var left, right string
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return "", "", false
		}
		// Z_FOK_* columns hold Core Data ordering keys, not references.
		if strings.HasPrefix(name, "Z_FOK") {
			continue
		}
		switch {
		case strings.HasSuffix(name, leftSuffix):
			left = name
		case strings.HasSuffix(name, rightSuffix):
			right = name
		}
	}
	return left, right, left != "" && right != ""
}

// findColumn returns the first of the candidate columns present on a table.
func (idx *Index) findColumn(ctx context.Context, table string, candidates ...string) (string, error) {
	rows, err := idx.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return "", fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer rows.Close()

	present := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return "", fmt.Errorf("scanning column info: %w", err)
		}
		present[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterating columns: %w", err)
	}

	for _, c := range candidates {
		if _, ok := present[c]; ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("no known asset column on %s", table)
}
