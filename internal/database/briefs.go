package database

import (
	"database/sql"
	"encoding/json"
)

const briefColumns = `id, cluster_id, slug, title, summary, problem_statement, opportunity,
	solution_directions, demand_signals, source_snapshots, source_post_ids,
	status, source_count, upvote_count, downvote_count, published_at, created_at`

// BriefParams carries the fields of a brief being persisted.
type BriefParams struct {
	ClusterID          int64
	Slug               string
	PostsKey           string
	Title              string
	Summary            string
	ProblemStatement   string
	Opportunity        string
	SolutionDirections []string
	DemandSignals      map[string]any
	SourceSnapshots    []SourceSnapshot
	SourcePostIDs      []int64
	Status             string
}

// BriefExistsForPosts reports whether a brief was already synthesized from
// this exact post-id set.
func (db *DB) BriefExistsForPosts(postsKey string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM briefs WHERE posts_key = ?`, postsKey).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BriefSlugExists reports whether a slug is already taken.
func (db *DB) BriefSlugExists(slug string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM briefs WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertBrief persists a synthesized brief. JSON-shaped fields are stored
// as TEXT columns.
func (db *DB) InsertBrief(p BriefParams) (int64, error) {
	directions, err := marshalJSON(p.SolutionDirections)
	if err != nil {
		return 0, err
	}
	signals, err := marshalJSON(p.DemandSignals)
	if err != nil {
		return 0, err
	}
	snapshots, err := marshalJSON(p.SourceSnapshots)
	if err != nil {
		return 0, err
	}
	postIDs, err := marshalJSON(p.SourcePostIDs)
	if err != nil {
		return 0, err
	}

	status := p.Status
	if status == "" {
		status = BriefDraft
	}
	var publishedAt *string
	if status == BriefPublished {
		now := nowUTC()
		publishedAt = &now
	}

	result, err := db.conn.Exec(
		`INSERT INTO briefs (cluster_id, slug, posts_key, title, summary, problem_statement,
			opportunity, solution_directions, demand_signals, source_snapshots,
			source_post_ids, status, source_count, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClusterID, p.Slug, p.PostsKey, p.Title, p.Summary, p.ProblemStatement,
		p.Opportunity, directions, signals, snapshots,
		postIDs, status, len(p.SourcePostIDs), publishedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetBriefBySlug returns a brief by slug, or nil if absent.
func (db *DB) GetBriefBySlug(slug string) (*Brief, error) {
	row := db.conn.QueryRow(`SELECT `+briefColumns+` FROM briefs WHERE slug = ?`, slug)
	return scanBrief(row)
}

// GetBriefByID returns a brief by ID, or nil if absent.
func (db *DB) GetBriefByID(briefID int64) (*Brief, error) {
	row := db.conn.QueryRow(`SELECT `+briefColumns+` FROM briefs WHERE id = ?`, briefID)
	return scanBrief(row)
}

// PublishBrief transitions a draft brief to published.
func (db *DB) PublishBrief(briefID int64) error {
	_, err := db.conn.Exec(
		`UPDATE briefs SET status = ?, published_at = ? WHERE id = ? AND status = ?`,
		BriefPublished, nowUTC(), briefID, BriefDraft,
	)
	return err
}

// BriefListOptions parameterizes a paginated brief list query.
// SortColumn must be one of created_at, upvote_count.
type BriefListOptions struct {
	SortColumn string
	Limit      int
	Cursor     map[string]any
	Status     string
	TagSlug    string
}

// ListBriefs runs a keyset-paginated list query ordered by
// sort_column DESC, id DESC.
func (db *DB) ListBriefs(opts BriefListOptions) ([]Brief, Page, error) {
	query := `SELECT ` + briefColumns + ` FROM briefs`
	var where []string
	var args []any

	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.TagSlug != "" {
		// A brief carries the tags of its cluster's member posts.
		where = append(where, `EXISTS (
			SELECT 1 FROM posts p
			JOIN post_tags pt ON pt.post_id = p.id
			JOIN tags t ON t.id = pt.tag_id
			WHERE p.cluster_id = briefs.cluster_id AND t.slug = ?)`)
		args = append(args, opts.TagSlug)
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

	var briefs []Brief
	for rows.Next() {
		b, err := scanBriefRow(rows)
		if err != nil {
			return nil, Page{}, err
		}
		briefs = append(briefs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, Page{}, err
	}

	briefs, page := trimPage(briefs, opts.Limit, func(b Brief) map[string]any {
		return map[string]any{"v": b.sortValue(opts.SortColumn), "id": b.ID}
	})
	return briefs, page, nil
}

func (b Brief) sortValue(col string) any {
	switch col {
	case "upvote_count":
		return b.UpvoteCount
	default:
		if b.CreatedAt != nil {
			return *b.CreatedAt
		}
		return ""
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBrief(row *sql.Row) (*Brief, error) {
	b, err := scanBriefFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func scanBriefRow(rows *sql.Rows) (*Brief, error) {
	return scanBriefFrom(rows)
}

func scanBriefFrom(s scanner) (*Brief, error) {
	var b Brief
	var directions, signals, snapshots, postIDs *string
	if err := s.Scan(&b.ID, &b.ClusterID, &b.Slug, &b.Title, &b.Summary,
		&b.ProblemStatement, &b.Opportunity, &directions, &signals, &snapshots,
		&postIDs, &b.Status, &b.SourceCount, &b.UpvoteCount, &b.DownvoteCount,
		&b.PublishedAt, &b.CreatedAt); err != nil {
		return nil, err
	}

	unmarshalInto(directions, &b.SolutionDirections)
	unmarshalInto(signals, &b.DemandSignals)
	unmarshalInto(snapshots, &b.SourceSnapshots)
	unmarshalInto(postIDs, &b.SourcePostIDs)
	return &b, nil
}

func marshalJSON(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func unmarshalInto[T any](raw *string, dst *T) {
	if raw == nil {
		return
	}
	if err := json.Unmarshal([]byte(*raw), dst); err != nil {
		var zero T
		*dst = zero
	}
}
