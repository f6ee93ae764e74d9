package library

import (
	"context"
	"database/sql"
	"fmt"
)

// ListPeople returns all named subjects with their face counts.
func (idx *Index) ListPeople(ctx context.Context) ([]Person, error) {
	var people []Person
	err := idx.query(ctx,
		`SELECT ZPERSONUUID, ZDISPLAYNAME, IFNULL(ZFACECOUNT, 0)
		 FROM ZPERSON
		 WHERE ZDISPLAYNAME IS NOT NULL AND ZDISPLAYNAME != ''
		 ORDER BY ZDISPLAYNAME COLLATE NOCASE`,
		func(rows *sql.Rows) error {
			var p Person
			if err := rows.Scan(&p.ID, &p.Name, &p.FaceCount); err != nil {
				return err
			}
			people = append(people, p)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	return people, nil
}

// PeopleInItem returns the named subjects detected in an asset.
func (idx *Index) PeopleInItem(ctx context.Context, itemID string) ([]Person, error) {
	if idx.db == nil {
		return nil, nil
	}

	q := fmt.Sprintf(`
		SELECT DISTINCT p.ZPERSONUUID, p.ZDISPLAYNAME, IFNULL(p.ZFACECOUNT, 0)
		FROM ZDETECTEDFACE f
		JOIN ZASSET a ON a.Z_PK = f.%q
		JOIN ZPERSON p ON p.Z_PK = f.ZPERSON
		WHERE a.ZUUID = ?
		  AND p.ZDISPLAYNAME IS NOT NULL AND p.ZDISPLAYNAME != ''
		ORDER BY p.ZDISPLAYNAME COLLATE NOCASE`,
		idx.faceAsset)

	var people []Person
	err := idx.query(ctx, q, func(rows *sql.Rows) error {
		var p Person
		if err := rows.Scan(&p.ID, &p.Name, &p.FaceCount); err != nil {
			return err
		}
		people = append(people, p)
		return nil
	}, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing people in item: %w", err)
	}
	return people, nil
}

// ItemsWithoutFaces returns assets with no detected faces at all, plus the
// total count. Backs the "no people" sidebar filter.
func (idx *Index) ItemsWithoutFaces(ctx context.Context) ([]string, int, error) {
	if idx.db == nil {
		return nil, 0, nil
	}

	q := fmt.Sprintf(`
		SELECT a.ZUUID
		FROM ZASSET a
		WHERE a.ZTRASHEDSTATE = 0
		  AND NOT EXISTS (SELECT 1 FROM ZDETECTEDFACE f WHERE f.%q = a.Z_PK)
		ORDER BY a.ZUUID`,
		idx.faceAsset)

	var items []string
	err := idx.query(ctx, q, func(rows *sql.Rows) error {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return err
		}
		items = append(items, uuid)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing items without faces: %w", err)
	}
	return items, len(items), nil
}
