package db

// migrationsSQL holds the full schema. Statements are split on ';' so no
// statement may contain one internally.
const migrationsSQL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS verbs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	infinitive TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS modes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS tenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	mode_id INTEGER NOT NULL REFERENCES modes(id) ON DELETE CASCADE,
	UNIQUE (name, mode_id)
);

CREATE TABLE IF NOT EXISTS persons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS conjugations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	value TEXT NOT NULL,
	verb_id INTEGER NOT NULL REFERENCES verbs(id) ON DELETE CASCADE,
	tense_id INTEGER NOT NULL REFERENCES tenses(id),
	person_id INTEGER NOT NULL REFERENCES persons(id),
	UNIQUE (verb_id, tense_id, person_id)
);

CREATE INDEX IF NOT EXISTS idx_conjugations_tense ON conjugations (tense_id);

CREATE TABLE IF NOT EXISTS batch_jobs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'processing', 'completed', 'failed')),
	total_tasks INTEGER NOT NULL DEFAULT 0,
	success_count INTEGER NOT NULL DEFAULT 0,
	failed_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);
`
