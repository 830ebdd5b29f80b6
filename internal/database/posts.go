package database

import (
	"database/sql"
	"errors"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const postColumns = `id, source, external_id, subreddit, title, body, external_url,
	external_created_at, score, num_comments, sentiment, post_type, cluster_id,
	created_at, updated_at`

// InsertPost inserts a new, unclassified post. Returns the ID on success,
// 0 if the (source, external_id) pair already exists. Any other write
// failure is returned as an error.
func (db *DB) InsertPost(source, externalID string, subreddit *string, title string, body *string, externalURL, externalCreatedAt string, score, numComments int) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO posts (source, external_id, subreddit, title, body, external_url, external_created_at, score, num_comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		source, externalID, subreddit, title, body, externalURL, externalCreatedAt, score, numComments,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, nil
		}
		return 0, err
	}
	return result.LastInsertId()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure,
// the signal for an insert race on an existing identity. CHECK
// violations, lock timeouts, and I/O errors do not qualify and must
// surface to the caller.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// GetPostBySourceExternalID resolves a post by its ingestion identity.
func (db *DB) GetPostBySourceExternalID(source, externalID string) (*Post, error) {
	row := db.conn.QueryRow(
		`SELECT `+postColumns+` FROM posts WHERE source = ? AND external_id = ?`,
		source, externalID,
	)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePostSignals refreshes the mutable fields of an existing post
// without disturbing its classification or tags.
func (db *DB) UpdatePostSignals(postID int64, title string, body *string, score, numComments int) error {
	_, err := db.conn.Exec(
		`UPDATE posts SET title = ?, body = ?, score = ?, num_comments = ?, updated_at = ? WHERE id = ?`,
		title, body, score, numComments, nowUTC(), postID,
	)
	return err
}

// GetUntaggedPosts returns posts with no classification yet, oldest first,
// up to the batch ceiling.
func (db *DB) GetUntaggedPosts(limit int) ([]Post, error) {
	rows, err := db.conn.Query(
		`SELECT `+postColumns+` FROM posts WHERE post_type IS NULL ORDER BY id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// SetPostClassification stores the tagger's verdict for a post.
func (db *DB) SetPostClassification(postID int64, postType, sentiment string) error {
	_, err := db.conn.Exec(
		`UPDATE posts SET post_type = ?, sentiment = ?, updated_at = ? WHERE id = ?`,
		postType, sentiment, nowUTC(), postID,
	)
	return err
}

// GetUnclusteredActionable returns tagged posts with an actionable type
// that do not yet belong to a cluster. Tags are loaded because the
// clusterer weighs them when measuring similarity.
func (db *DB) GetUnclusteredActionable() ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE cluster_id IS NULL AND post_type IN (` + placeholders(len(ActionableTypes)) + `)
		ORDER BY id ASC`

	args := make([]any, len(ActionableTypes))
	for i, t := range ActionableTypes {
		args[i] = t
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	posts, err := scanPosts(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if err := db.attachTags(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachTags populates Tags for a batch of posts with one query.
func (db *DB) attachTags(posts []Post) error {
	if len(posts) == 0 {
		return nil
	}

	idx := make(map[int64]int, len(posts))
	args := make([]any, len(posts))
	for i, p := range posts {
		idx[p.ID] = i
		args[i] = p.ID
	}

	rows, err := db.conn.Query(
		`SELECT pt.post_id, t.id, t.slug, t.name FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+placeholders(len(posts))+`)
		ORDER BY t.slug ASC`,
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var tag Tag
		if err := rows.Scan(&postID, &tag.ID, &tag.Slug, &tag.Name); err != nil {
			return err
		}
		posts[idx[postID]].Tags = append(posts[idx[postID]].Tags, tag)
	}
	return rows.Err()
}

// GetPostByID returns a single post with its tags, or nil if absent.
func (db *DB) GetPostByID(postID int64) (*Post, error) {
	row := db.conn.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, postID)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tags, err := db.GetPostTags(p.ID)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	return p, nil
}

// GetPostsByIDs returns the posts for a set of IDs, in id order.
func (db *DB) GetPostsByIDs(ids []int64) ([]Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.Query(
		`SELECT `+postColumns+` FROM posts WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// PostListOptions parameterizes a paginated post list query.
// SortColumn must be one of external_created_at, score, num_comments.
type PostListOptions struct {
	SortColumn string
	Limit      int
	Cursor     map[string]any
	Source     string
	Subreddit  string
	Sentiment  string
	PostType   string
	TagSlug    string
	Search     string
}

// ListPosts runs a keyset-paginated list query ordered by
// sort_column DESC, id DESC.
func (db *DB) ListPosts(opts PostListOptions) ([]Post, Page, error) {
	query := `SELECT ` + qualify(postColumns, "p") + ` FROM posts p`
	var where []string
	var args []any

	if opts.TagSlug != "" {
		query += ` JOIN post_tags pt ON pt.post_id = p.id JOIN tags t ON t.id = pt.tag_id`
		where = append(where, "t.slug = ?")
		args = append(args, opts.TagSlug)
	}
	if opts.Source != "" {
		where = append(where, "p.source = ?")
		args = append(args, opts.Source)
	}
	if opts.Subreddit != "" {
		where = append(where, "p.subreddit = ?")
		args = append(args, opts.Subreddit)
	}
	if opts.Sentiment != "" {
		where = append(where, "p.sentiment = ?")
		args = append(args, opts.Sentiment)
	}
	if opts.PostType != "" {
		where = append(where, "p.post_type = ?")
		args = append(args, opts.PostType)
	}
	if opts.Search != "" {
		where = append(where, "(p.title LIKE ? OR p.body LIKE ?)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}

	col := "p." + opts.SortColumn
	if clause, curArgs := keysetFilter(col, opts.Cursor); clause != "" {
		where = append(where, clause)
		args = append(args, curArgs...)
	}

	query += whereClause(where)
	query += ` ORDER BY ` + col + ` DESC, p.id DESC LIMIT ?`
	args = append(args, opts.Limit+1)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, Page{}, err
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, Page{}, err
	}

	posts, page := trimPage(posts, opts.Limit, func(p Post) map[string]any {
		return map[string]any{"v": p.sortValue(opts.SortColumn), "id": p.ID}
	})
	return posts, page, nil
}

func (p Post) sortValue(col string) any {
	switch col {
	case "score":
		return p.Score
	case "num_comments":
		return p.NumComments
	default:
		return p.ExternalCreatedAt
	}
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Source, &p.ExternalID, &p.Subreddit, &p.Title,
			&p.Body, &p.ExternalURL, &p.ExternalCreatedAt, &p.Score, &p.NumComments,
			&p.Sentiment, &p.PostType, &p.ClusterID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(row *sql.Row) (*Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.Source, &p.ExternalID, &p.Subreddit, &p.Title,
		&p.Body, &p.ExternalURL, &p.ExternalCreatedAt, &p.Score, &p.NumComments,
		&p.Sentiment, &p.PostType, &p.ClusterID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
