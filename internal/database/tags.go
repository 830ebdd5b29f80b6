package database

import "database/sql"

// EnsureTag returns the ID for a tag slug, creating it if needed.
func (db *DB) EnsureTag(slug, name string) (int64, error) {
	row := db.conn.QueryRow(`SELECT id FROM tags WHERE slug = ?`, slug)
	var id int64
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := db.conn.Exec(`INSERT INTO tags (slug, name) VALUES (?, ?)`, slug, name)
	if err != nil {
		// Lost an insert race; the tag exists now.
		row := db.conn.QueryRow(`SELECT id FROM tags WHERE slug = ?`, slug)
		if scanErr := row.Scan(&id); scanErr == nil {
			return id, nil
		}
		return 0, err
	}
	return result.LastInsertId()
}

// AttachPostTags links a post to the given tag slugs, creating tags as
// needed. Existing links are left alone.
func (db *DB) AttachPostTags(postID int64, slugs []string) error {
	for _, slug := range slugs {
		tagID, err := db.EnsureTag(slug, tagName(slug))
		if err != nil {
			return err
		}
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`,
			postID, tagID,
		); err != nil {
			return err
		}
	}
	return nil
}

// AttachProductTags links a product to the given tag slugs.
func (db *DB) AttachProductTags(productID int64, slugs []string) error {
	for _, slug := range slugs {
		tagID, err := db.EnsureTag(slug, tagName(slug))
		if err != nil {
			return err
		}
		if _, err := db.conn.Exec(
			`INSERT OR IGNORE INTO product_tags (product_id, tag_id) VALUES (?, ?)`,
			productID, tagID,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetPostTags returns the tags attached to a post.
func (db *DB) GetPostTags(postID int64) ([]Tag, error) {
	rows, err := db.conn.Query(
		`SELECT t.id, t.slug, t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id WHERE pt.post_id = ? ORDER BY t.slug`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// GetProductTags returns the tags attached to a product.
func (db *DB) GetProductTags(productID int64) ([]Tag, error) {
	rows, err := db.conn.Query(
		`SELECT t.id, t.slug, t.name FROM tags t
		JOIN product_tags pt ON pt.tag_id = t.id WHERE pt.product_id = ? ORDER BY t.slug`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// GetAllTags returns every tag ordered by slug.
func (db *DB) GetAllTags() ([]Tag, error) {
	rows, err := db.conn.Query(`SELECT id, slug, name FROM tags ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func scanTags(rows *sql.Rows) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// tagName derives a display name from a slug ("time-tracking" -> "Time Tracking").
func tagName(slug string) string {
	out := make([]byte, 0, len(slug))
	upper := true
	for i := 0; i < len(slug); i++ {
		c := slug[i]
		if c == '-' || c == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
