package database

import (
	"database/sql"
	"encoding/json"
)

// InsertCluster creates a cluster and assigns the given posts to it.
// Assignment and creation are one transaction so a cluster never exists
// without its members.
func (db *DB) InsertCluster(label, summary string, trendKeywords []string, postIDs []int64) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var keywordsJSON *string
	if len(trendKeywords) > 0 {
		data, err := json.Marshal(trendKeywords)
		if err != nil {
			return 0, err
		}
		s := string(data)
		keywordsJSON = &s
	}

	result, err := tx.Exec(
		`INSERT INTO clusters (label, summary, trend_keywords) VALUES (?, ?, ?)`,
		label, summary, keywordsJSON,
	)
	if err != nil {
		return 0, err
	}

	clusterID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, pid := range postIDs {
		if _, err := tx.Exec(
			`UPDATE posts SET cluster_id = ? WHERE id = ?`, clusterID, pid,
		); err != nil {
			return 0, err
		}
	}

	return clusterID, tx.Commit()
}

// GetCluster returns a cluster by ID, or nil if absent.
func (db *DB) GetCluster(clusterID int64) (*Cluster, error) {
	row := db.conn.QueryRow(
		`SELECT id, label, summary, status, trend_keywords, created_at FROM clusters WHERE id = ?`,
		clusterID,
	)

	var c Cluster
	var keywordsJSON *string
	if err := row.Scan(&c.ID, &c.Label, &c.Summary, &c.Status, &keywordsJSON, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if keywordsJSON != nil {
		if err := json.Unmarshal([]byte(*keywordsJSON), &c.TrendKeywords); err != nil {
			c.TrendKeywords = nil
		}
	}
	return &c, nil
}

// GetClusterPosts returns the posts assigned to a cluster.
func (db *DB) GetClusterPosts(clusterID int64) ([]Post, error) {
	rows, err := db.conn.Query(
		`SELECT `+postColumns+` FROM posts WHERE cluster_id = ? ORDER BY score DESC, id ASC`,
		clusterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}
