package store

const schema = `
CREATE SEQUENCE IF NOT EXISTS events_id_seq START 1;

CREATE TABLE IF NOT EXISTS sessions (
    pane_id          VARCHAR PRIMARY KEY,
    tmux_session     VARCHAR NOT NULL,
    tmux_window      INTEGER NOT NULL,
    tmux_pane        INTEGER NOT NULL,
    tmux_location    VARCHAR NOT NULL,
    session_id       VARCHAR NOT NULL,
    cwd              VARCHAR,
    transcript_path  VARCHAR,
    state            VARCHAR NOT NULL,
    first_seen       TIMESTAMP NOT NULL,
    last_updated     TIMESTAMP NOT NULL,
    last_session_id  VARCHAR
);
CREATE INDEX IF NOT EXISTS idx_sessions_session ON sessions(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_state   ON sessions(state);

CREATE TABLE IF NOT EXISTS events (
    id          BIGINT DEFAULT nextval('events_id_seq') PRIMARY KEY,
    pane_id     VARCHAR NOT NULL,
    session_id  VARCHAR NOT NULL,
    event_type  VARCHAR NOT NULL,
    detail      VARCHAR,
    timestamp   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_pane ON events(pane_id);
CREATE INDEX IF NOT EXISTS idx_events_ts   ON events(timestamp);
`
