package database

// GetStats returns aggregate counts for the status command.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM posts", &stats.TotalPosts},
		{"SELECT COUNT(*) FROM posts WHERE post_type IS NOT NULL", &stats.TaggedPosts},
		{"SELECT COUNT(*) FROM posts WHERE cluster_id IS NOT NULL", &stats.ClusteredPosts},
		{"SELECT COUNT(*) FROM clusters", &stats.Clusters},
		{"SELECT COUNT(*) FROM briefs", &stats.Briefs},
		{"SELECT COUNT(*) FROM briefs WHERE status = 'published'", &stats.PublishedBriefs},
		{"SELECT COUNT(*) FROM products", &stats.Products},
		{"SELECT COUNT(*) FROM tags", &stats.Tags},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return stats, nil
}
