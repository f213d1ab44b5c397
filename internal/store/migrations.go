package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// Every mirrored table carries a sync_status column ('synced',
// 'pending_create', 'pending_update', 'pending_delete'); tasks additionally
// carry their lifecycle in its own column so the two axes can never be
// collapsed into one string by accident.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	target_date DATETIME,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS milestones (
	id          TEXT PRIMARY KEY,
	goal_id     TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	sort_order  INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	id           TEXT PRIMARY KEY,
	milestone_id TEXT NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	completed    INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	sort_order   INTEGER NOT NULL DEFAULT 0,
	sync_status  TEXT NOT NULL DEFAULT 'synced',
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id                         TEXT PRIMARY KEY,
	goal_id                    TEXT REFERENCES goals(id) ON DELETE SET NULL,
	title                      TEXT NOT NULL,
	description                TEXT NOT NULL DEFAULT '',
	priority                   TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('high', 'medium', 'low')),
	due_date                   DATETIME,
	location                   TEXT,
	estimated_duration_minutes INTEGER NOT NULL DEFAULT 0,
	is_today_focus             INTEGER NOT NULL DEFAULT 0 CHECK(is_today_focus IN (0, 1)),
	completed_at               DATETIME,
	sync_status                TEXT NOT NULL DEFAULT 'synced',
	lifecycle                  TEXT NOT NULL DEFAULT 'not_started' CHECK(lifecycle IN ('not_started', 'in_progress', 'completed')),
	created_at                 DATETIME NOT NULL,
	updated_at                 DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS calendar_events (
	id          TEXT PRIMARY KEY,
	task_id     TEXT REFERENCES tasks(id) ON DELETE SET NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location    TEXT,
	start_at    DATETIME NOT NULL,
	end_at      DATETIME NOT NULL,
	sync_status TEXT NOT NULL DEFAULT 'synced',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_threads (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	sync_status TEXT NOT NULL DEFAULT 'synced',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_messages (
	id          TEXT PRIMARY KEY,
	thread_id   TEXT NOT NULL REFERENCES conversation_threads(id) ON DELETE CASCADE,
	role        TEXT NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	sync_status TEXT NOT NULL DEFAULT 'synced',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_watermarks (
	entity_type TEXT PRIMARY KEY,
	pulled_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_goals_sync_status ON goals(sync_status);
CREATE INDEX IF NOT EXISTS idx_milestones_sync_status ON milestones(sync_status);
CREATE INDEX IF NOT EXISTS idx_milestones_goal_id ON milestones(goal_id);
CREATE INDEX IF NOT EXISTS idx_steps_sync_status ON steps(sync_status);
CREATE INDEX IF NOT EXISTS idx_steps_milestone_id ON steps(milestone_id);
CREATE INDEX IF NOT EXISTS idx_tasks_sync_status ON tasks(sync_status);
CREATE INDEX IF NOT EXISTS idx_tasks_goal_id ON tasks(goal_id);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_events_sync_status ON calendar_events(sync_status);
CREATE INDEX IF NOT EXISTS idx_events_task_id ON calendar_events(task_id);
CREATE INDEX IF NOT EXISTS idx_messages_sync_status ON conversation_messages(sync_status);
CREATE INDEX IF NOT EXISTS idx_messages_thread_id ON conversation_messages(thread_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_single_focus
	ON tasks(is_today_focus) WHERE is_today_focus = 1;

CREATE INDEX IF NOT EXISTS idx_tasks_lifecycle ON tasks(lifecycle);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
