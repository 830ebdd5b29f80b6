package database

import "database/sql"

const productColumns = `id, source, external_id, slug, name, description, category,
	signal_count, trending_score, created_at, updated_at`

// UpsertProduct resolves a product by (source, slug), creating it if
// absent and refreshing name/description otherwise. Returns the product ID.
func (db *DB) UpsertProduct(source, externalID, slug, name string, description, category *string) (int64, error) {
	row := db.conn.QueryRow(`SELECT id FROM products WHERE source = ? AND slug = ?`, source, slug)
	var id int64
	err := row.Scan(&id)
	if err == nil {
		_, err = db.conn.Exec(
			`UPDATE products SET name = ?, description = COALESCE(?, description),
			category = COALESCE(?, category), updated_at = ? WHERE id = ?`,
			name, description, category, nowUTC(), id,
		)
		return id, err
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := db.conn.Exec(
		`INSERT INTO products (source, external_id, slug, name, description, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		source, externalID, slug, name, description, category,
	)
	if err != nil {
		// Insert race on (source, slug): fall back to the existing row.
		row := db.conn.QueryRow(`SELECT id FROM products WHERE source = ? AND slug = ?`, source, slug)
		if scanErr := row.Scan(&id); scanErr == nil {
			return id, nil
		}
		return 0, err
	}
	return result.LastInsertId()
}

// BumpProductSignals increments the signal count and folds the new signal
// into the trending score. The score decays toward recent activity: each
// new signal contributes its post score weighted against the running value.
func (db *DB) BumpProductSignals(productID int64, postScore int) error {
	_, err := db.conn.Exec(
		`UPDATE products SET
			signal_count = signal_count + 1,
			trending_score = trending_score * 0.9 + ? * 0.1,
			updated_at = ?
		WHERE id = ?`,
		postScore, nowUTC(), productID,
	)
	return err
}

// GetProduct returns a product by (source, slug) with its tags, or nil.
func (db *DB) GetProduct(source, slug string) (*Product, error) {
	row := db.conn.QueryRow(
		`SELECT `+productColumns+` FROM products WHERE source = ? AND slug = ?`,
		source, slug,
	)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tags, err := db.GetProductTags(p.ID)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	return p, nil
}

// ProductListOptions parameterizes a paginated product list query.
// SortColumn must be one of trending_score, signal_count, created_at.
type ProductListOptions struct {
	SortColumn string
	Limit      int
	Cursor     map[string]any
	Source     string
	Category   string
}

// ListProducts runs a keyset-paginated list query ordered by
// sort_column DESC, id DESC.
func (db *DB) ListProducts(opts ProductListOptions) ([]Product, Page, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var where []string
	var args []any

	if opts.Source != "" {
		where = append(where, "source = ?")
		args = append(args, opts.Source)
	}
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}

	if clause, curArgs := keysetFilter(opts.SortColumn, opts.Cursor); clause != "" {
		where = append(where, clause)
		args = append(args, curArgs...)
	}

	query += whereClause(where)
	query += ` ORDER BY ` + opts.SortColumn + ` DESC, id DESC LIMIT ?`
	args = append(args, opts.Limit+1)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, Page{}, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Source, &p.ExternalID, &p.Slug, &p.Name,
			&p.Description, &p.Category, &p.SignalCount, &p.TrendingScore,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, Page{}, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, Page{}, err
	}

	products, page := trimPage(products, opts.Limit, func(p Product) map[string]any {
		return map[string]any{"v": p.sortValue(opts.SortColumn), "id": p.ID}
	})
	return products, page, nil
}

func (p Product) sortValue(col string) any {
	switch col {
	case "trending_score":
		return p.TrendingScore
	case "signal_count":
		return p.SignalCount
	default:
		if p.CreatedAt != nil {
			return *p.CreatedAt
		}
		return ""
	}
}

func scanProduct(row *sql.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Source, &p.ExternalID, &p.Slug, &p.Name,
		&p.Description, &p.Category, &p.SignalCount, &p.TrendingScore,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
