package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Tables are ordered so that foreign key targets exist first.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    subject TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    username TEXT NOT NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_by TEXT NOT NULL REFERENCES users(id),
    created_at INTEGER NOT NULL,
    invite_code TEXT NOT NULL UNIQUE,
    hall_of_fame_threshold INTEGER,
    senpai_enabled INTEGER NOT NULL DEFAULT 1,
    senpai_frequency TEXT NOT NULL DEFAULT 'normal',
    senpai_personality TEXT
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('owner', 'admin', 'member')),
    joined_at INTEGER NOT NULL,
    last_active_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS channels (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    icon TEXT,
    type TEXT NOT NULL CHECK (type IN ('hangout', 'event', 'bracket')),
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    parent_channel_id TEXT,
    parent_message_id TEXT,
    fork_depth INTEGER NOT NULL DEFAULT 0,
    is_archived INTEGER NOT NULL DEFAULT 0,
    archived_at INTEGER,
    event_date INTEGER,
    event_end_date INTEGER,
    event_location TEXT,
    bracket_question TEXT,
    bracket_status TEXT
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    author_id TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    edited_at INTEGER,
    is_deleted INTEGER NOT NULL DEFAULT 0,
    thread_parent_id TEXT,
    thread_reply_count INTEGER NOT NULL DEFAULT 0,
    thread_last_reply_at INTEGER,
    forked_to_channel_id TEXT,
    message_type TEXT NOT NULL,
    senpai_trigger TEXT
);

CREATE TABLE IF NOT EXISTS reactions (
    id TEXT PRIMARY KEY,
    message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    emoji TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (message_id, user_id, emoji)
);

CREATE TABLE IF NOT EXISTS pins (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL,
    message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
    pinned_by TEXT NOT NULL,
    pinned_at INTEGER NOT NULL,
    UNIQUE (channel_id, message_id)
);

CREATE TABLE IF NOT EXISTS hall_of_fame (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    message_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    author_id TEXT NOT NULL,
    body TEXT NOT NULL,
    trophy_count INTEGER NOT NULL,
    enshrined_at INTEGER NOT NULL,
    UNIQUE (group_id, message_id)
);

CREATE TABLE IF NOT EXISTS splits (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    group_id TEXT NOT NULL,
    name TEXT NOT NULL,
    total_amount INTEGER NOT NULL,
    tax_amount INTEGER NOT NULL DEFAULT 0,
    tip_amount INTEGER NOT NULL DEFAULT 0,
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('claiming', 'calculated', 'settled'))
);

CREATE TABLE IF NOT EXISTS split_items (
    id TEXT PRIMARY KEY,
    split_id TEXT NOT NULL REFERENCES splits(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    price INTEGER NOT NULL,
    quantity INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS split_item_claims (
    item_id TEXT NOT NULL REFERENCES split_items(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    claimed_at INTEGER NOT NULL,
    PRIMARY KEY (item_id, user_id)
);

CREATE TABLE IF NOT EXISTS split_balances (
    id TEXT PRIMARY KEY,
    split_id TEXT NOT NULL REFERENCES splits(id) ON DELETE CASCADE,
    channel_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    from_user_id TEXT NOT NULL,
    to_user_id TEXT NOT NULL,
    amount INTEGER NOT NULL,
    is_paid INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER
);

CREATE TABLE IF NOT EXISTS event_rsvps (
    channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('going', 'maybe', 'not_going')),
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (channel_id, user_id)
);

CREATE TABLE IF NOT EXISTS event_checklist (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    item TEXT NOT NULL,
    assigned_to TEXT,
    is_completed INTEGER NOT NULL DEFAULT 0,
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_flights (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    created_by TEXT NOT NULL,
    airline TEXT NOT NULL,
    flight_number TEXT NOT NULL,
    departure_airport TEXT NOT NULL,
    arrival_airport TEXT NOT NULL,
    departure_time INTEGER NOT NULL,
    arrival_time INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('option', 'booked')),
    passengers TEXT NOT NULL DEFAULT '[]',
    notes TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_accommodations (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
    created_by TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('airbnb', 'hotel', 'hostel', 'other')),
    address TEXT,
    check_in INTEGER,
    check_out INTEGER,
    booking_link TEXT,
    price_per_night INTEGER,
    total_price INTEGER,
    status TEXT NOT NULL CHECK (status IN ('option', 'booked')),
    guests TEXT NOT NULL DEFAULT '[]',
    notes TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS senpai_memory (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    memory_type TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    relevance_score REAL NOT NULL DEFAULT 1.0
);

CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_channels_group_type ON channels(group_id, type);
CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages(channel_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_parent_id, created_at);
CREATE INDEX IF NOT EXISTS idx_reactions_message_emoji ON reactions(message_id, emoji);
CREATE INDEX IF NOT EXISTS idx_pins_channel ON pins(channel_id, pinned_at);
CREATE INDEX IF NOT EXISTS idx_hall_of_fame_group ON hall_of_fame(group_id, enshrined_at);
CREATE INDEX IF NOT EXISTS idx_splits_channel ON splits(channel_id);
CREATE INDEX IF NOT EXISTS idx_split_items_split ON split_items(split_id);
CREATE INDEX IF NOT EXISTS idx_split_balances_channel ON split_balances(channel_id, is_paid);
CREATE INDEX IF NOT EXISTS idx_senpai_memory_group ON senpai_memory(group_id, relevance_score);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
