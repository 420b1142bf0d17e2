// ABOUTME: SQLite schema for conversation history, credentials, and chat links
// ABOUTME: All tables are scoped to a single user per row; no cross-user joins
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Conversation history, append-only per user/session
CREATE TABLE IF NOT EXISTS conversation_turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_email TEXT NOT NULL,
    session_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'tool')),
    content TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turns_user_session
    ON conversation_turns(user_email, session_id, id);

-- OAuth credentials, exactly one row per user, overwritten on refresh
CREATE TABLE IF NOT EXISTS credentials (
    user_email TEXT PRIMARY KEY,
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    expiry DATETIME,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Chat identity links: one bot chat resolves to one app user
CREATE TABLE IF NOT EXISTS chat_links (
    chat_id INTEGER PRIMARY KEY,
    user_email TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
