package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS clusters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    label TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active',
    trend_keywords TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL CHECK(source IN ('reddit', 'rss', 'app_store', 'play_store')),
    external_id TEXT NOT NULL,
    subreddit TEXT,
    title TEXT NOT NULL,
    body TEXT,
    external_url TEXT NOT NULL,
    external_created_at TEXT NOT NULL,
    score INTEGER DEFAULT 0,
    num_comments INTEGER DEFAULT 0,
    sentiment TEXT,
    post_type TEXT,
    cluster_id INTEGER REFERENCES clusters(id),
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now')),
    UNIQUE(source, external_id)
);

CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS post_tags (
    post_id INTEGER NOT NULL REFERENCES posts(id),
    tag_id INTEGER NOT NULL REFERENCES tags(id),
    PRIMARY KEY (post_id, tag_id)
);

CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL CHECK(source IN ('reddit', 'rss', 'app_store', 'play_store')),
    external_id TEXT NOT NULL,
    slug TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    category TEXT,
    signal_count INTEGER NOT NULL DEFAULT 0 CHECK(signal_count >= 0),
    trending_score REAL NOT NULL DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now')),
    UNIQUE(source, slug)
);

CREATE TABLE IF NOT EXISTS product_tags (
    product_id INTEGER NOT NULL REFERENCES products(id),
    tag_id INTEGER NOT NULL REFERENCES tags(id),
    PRIMARY KEY (product_id, tag_id)
);

CREATE TABLE IF NOT EXISTS briefs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cluster_id INTEGER NOT NULL REFERENCES clusters(id),
    slug TEXT UNIQUE NOT NULL,
    posts_key TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    problem_statement TEXT NOT NULL DEFAULT '',
    opportunity TEXT NOT NULL DEFAULT '',
    solution_directions TEXT,
    demand_signals TEXT,
    source_snapshots TEXT,
    source_post_ids TEXT,
    status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'published')),
    source_count INTEGER DEFAULT 0,
    upvote_count INTEGER NOT NULL DEFAULT 0 CHECK(upvote_count >= 0),
    downvote_count INTEGER NOT NULL DEFAULT 0 CHECK(downvote_count >= 0),
    published_at TEXT,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS brief_ratings (
    brief_id INTEGER NOT NULL REFERENCES briefs(id),
    session_id TEXT NOT NULL,
    is_positive INTEGER NOT NULL,
    feedback TEXT,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now')),
    PRIMARY KEY (brief_id, session_id)
);

CREATE INDEX IF NOT EXISTS idx_posts_source_external ON posts(source, external_id);
CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(external_created_at, id);
CREATE INDEX IF NOT EXISTS idx_posts_score ON posts(score, id);
CREATE INDEX IF NOT EXISTS idx_posts_comments ON posts(num_comments, id);
CREATE INDEX IF NOT EXISTS idx_posts_type ON posts(post_type);
CREATE INDEX IF NOT EXISTS idx_posts_cluster ON posts(cluster_id);
CREATE INDEX IF NOT EXISTS idx_products_trending ON products(trending_score, id);
CREATE INDEX IF NOT EXISTS idx_products_signals ON products(signal_count, id);
CREATE INDEX IF NOT EXISTS idx_briefs_created ON briefs(created_at, id);
CREATE INDEX IF NOT EXISTS idx_briefs_upvotes ON briefs(upvote_count, id);
CREATE INDEX IF NOT EXISTS idx_briefs_status ON briefs(status);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
