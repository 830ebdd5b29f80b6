package database

import "database/sql"

// UpsertRating records one session's vote on a brief. A second submission
// from the same session updates the existing rating instead of creating a
// duplicate, and the brief's vote counters are recomputed in the same
// transaction.
func (db *DB) UpsertRating(briefID int64, sessionID string, isPositive bool, feedback *string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	positive := 0
	if isPositive {
		positive = 1
	}

	if _, err := tx.Exec(
		`INSERT INTO brief_ratings (brief_id, session_id, is_positive, feedback)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(brief_id, session_id) DO UPDATE SET
			is_positive = excluded.is_positive,
			feedback = excluded.feedback,
			updated_at = datetime('now')`,
		briefID, sessionID, positive, feedback,
	); err != nil {
		return err
	}

	// Counters derive from the ratings table so replays cannot drift them.
	if _, err := tx.Exec(
		`UPDATE briefs SET
			upvote_count = (SELECT COUNT(*) FROM brief_ratings WHERE brief_id = ? AND is_positive = 1),
			downvote_count = (SELECT COUNT(*) FROM brief_ratings WHERE brief_id = ? AND is_positive = 0)
		WHERE id = ?`,
		briefID, briefID, briefID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRating returns one session's rating on a brief, or nil if absent.
func (db *DB) GetRating(briefID int64, sessionID string) (*Rating, error) {
	row := db.conn.QueryRow(
		`SELECT brief_id, session_id, is_positive, feedback, created_at, updated_at
		FROM brief_ratings WHERE brief_id = ? AND session_id = ?`,
		briefID, sessionID,
	)

	var r Rating
	var positive int
	if err := row.Scan(&r.BriefID, &r.SessionID, &positive, &r.Feedback, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r.IsPositive = positive != 0
	return &r, nil
}
