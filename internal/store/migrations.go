package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	from_addr  TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	snippet    TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id                  TEXT PRIMARY KEY,
	message_id          TEXT NOT NULL DEFAULT '',
	text                TEXT NOT NULL,
	priority            TEXT NOT NULL DEFAULT 'moderate',
	category            TEXT NOT NULL DEFAULT 'Other',
	deadline            DATETIME,
	deadline_confidence REAL NOT NULL DEFAULT 0,
	deadline_context    TEXT NOT NULL DEFAULT '',
	confidence          REAL NOT NULL DEFAULT 0,
	status              TEXT NOT NULL DEFAULT 'pending',
	completed           INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	from_addr           TEXT NOT NULL DEFAULT '',
	source              TEXT NOT NULL DEFAULT '',
	completion_date     DATETIME,
	last_modified       DATETIME,
	created_at          DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_message_id ON tasks(message_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS message_batches (
	cache_key  TEXT NOT NULL,
	position   INTEGER NOT NULL,
	message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	saved_at   DATETIME NOT NULL,
	PRIMARY KEY (cache_key, position)
);

CREATE INDEX IF NOT EXISTS idx_message_batches_message_id
	ON message_batches(message_id);

CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
