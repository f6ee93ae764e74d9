package library

import (
	"context"
	"database/sql"
	"fmt"
)

// ListTags returns every keyword title in the library, sorted
// case-insensitively.
func (idx *Index) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	err := idx.query(ctx,
		`SELECT ZTITLE FROM ZKEYWORD
		 WHERE ZTITLE IS NOT NULL AND ZTITLE != ''
		 ORDER BY ZTITLE COLLATE NOCASE`,
		func(rows *sql.Rows) error {
			var title string
			if err := rows.Scan(&title); err != nil {
				return err
			}
			tags = append(tags, title)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// ListTagCounts returns keywords with photo and video counts. Trashed assets
// are excluded. When includeZero is false, keywords with no matching assets
// are dropped from the listing.
func (idx *Index) ListTagCounts(ctx context.Context, includeZero bool) ([]TagCount, error) {
	if idx.db == nil {
		return nil, nil
	}

	q := fmt.Sprintf(`
		SELECT k.ZTITLE,
		       COUNT(CASE WHEN a.ZKIND = 0 THEN 1 END) AS photos,
		       COUNT(CASE WHEN a.ZKIND = 1 THEN 1 END) AS videos
		FROM ZKEYWORD k
		LEFT JOIN %q j ON j.%q = k.Z_PK
		LEFT JOIN ZADDITIONALASSETATTRIBUTES aa ON aa.Z_PK = j.%q
		LEFT JOIN ZASSET a ON a.Z_PK = aa.ZASSET AND a.ZTRASHEDSTATE = 0
		WHERE k.ZTITLE IS NOT NULL AND k.ZTITLE != ''
		GROUP BY k.Z_PK
		ORDER BY k.ZTITLE COLLATE NOCASE`,
		idx.keywordJoin.name, idx.keywordJoin.right, idx.keywordJoin.left)

	var counts []TagCount
	err := idx.query(ctx, q, func(rows *sql.Rows) error {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Photos, &tc.Videos); err != nil {
			return err
		}
		if !includeZero && tc.Total() == 0 {
			return nil
		}
		counts = append(counts, tc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tag counts: %w", err)
	}
	return counts, nil
}

// ItemsWithTag returns the identifiers of all non-trashed assets carrying the
// given keyword. Matching is case-insensitive.
func (idx *Index) ItemsWithTag(ctx context.Context, tag string) ([]string, error) {
	if idx.db == nil {
		return nil, nil
	}

	q := fmt.Sprintf(`
		SELECT a.ZUUID
		FROM ZKEYWORD k
		JOIN %q j ON j.%q = k.Z_PK
		JOIN ZADDITIONALASSETATTRIBUTES aa ON aa.Z_PK = j.%q
		JOIN ZASSET a ON a.Z_PK = aa.ZASSET
		WHERE lower(k.ZTITLE) = lower(?) AND a.ZTRASHEDSTATE = 0
		ORDER BY a.ZUUID`,
		idx.keywordJoin.name, idx.keywordJoin.right, idx.keywordJoin.left)

	var items []string
	err := idx.query(ctx, q, func(rows *sql.Rows) error {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return err
		}
		items = append(items, uuid)
		return nil
	}, tag)
	if err != nil {
		return nil, fmt.Errorf("listing items with tag: %w", err)
	}
	return items, nil
}
