package library

import (
	"context"
	"database/sql"
	"fmt"
)

// userAlbumKind is ZGENERICALBUM.ZKIND for regular user-created albums
// (folders, smart albums and moments use other kinds).
const userAlbumKind = 2

// ListAlbums returns all user albums with the library's cached photo counts.
func (idx *Index) ListAlbums(ctx context.Context) ([]Album, error) {
	var albums []Album
	err := idx.query(ctx,
		`SELECT ZUUID, ZTITLE, IFNULL(ZCACHEDCOUNT, 0)
		 FROM ZGENERICALBUM
		 WHERE ZKIND = ? AND ZTRASHEDSTATE = 0
		   AND ZTITLE IS NOT NULL AND ZTITLE != ''
		 ORDER BY ZTITLE COLLATE NOCASE`,
		func(rows *sql.Rows) error {
			var a Album
			if err := rows.Scan(&a.ID, &a.Title, &a.PhotoCount); err != nil {
				return err
			}
			albums = append(albums, a)
			return nil
		}, userAlbumKind)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	return albums, nil
}

// AlbumContains reports whether an asset is a member of an album. This is a
// per-pair lookup; callers cache the result for the lifetime of a selection.
func (idx *Index) AlbumContains(ctx context.Context, albumID, itemID string) (bool, error) {
	if idx.db == nil {
		return false, nil
	}

	q := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1
			FROM %q j
			JOIN ZGENERICALBUM al ON al.Z_PK = j.%q
			JOIN ZASSET a ON a.Z_PK = j.%q
			WHERE al.ZUUID = ? AND a.ZUUID = ? AND a.ZTRASHEDSTATE = 0
		)`,
		idx.albumJoin.name, idx.albumJoin.left, idx.albumJoin.right)

	var contains bool
	err := idx.query(ctx, q, func(rows *sql.Rows) error {
		return rows.Scan(&contains)
	}, albumID, itemID)
	if err != nil {
		return false, fmt.Errorf("checking album membership: %w", err)
	}
	return contains, nil
}

// AlbumItems returns the identifiers of all assets in an album.
func (idx *Index) AlbumItems(ctx context.Context, albumID string) ([]string, error) {
	if idx.db == nil {
		return nil, nil
	}

	q := fmt.Sprintf(`
		SELECT a.ZUUID
		FROM %q j
		JOIN ZGENERICALBUM al ON al.Z_PK = j.%q
		JOIN ZASSET a ON a.Z_PK = j.%q
		WHERE al.ZUUID = ? AND a.ZTRASHEDSTATE = 0
		ORDER BY a.ZUUID`,
		idx.albumJoin.name, idx.albumJoin.left, idx.albumJoin.right)

	var items []string
	err := idx.query(ctx, q, func(rows *sql.Rows) error {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return err
		}
		items = append(items, uuid)
		return nil
	}, albumID)
	if err != nil {
		return nil, fmt.Errorf("listing album items: %w", err)
	}
	return items, nil
}
