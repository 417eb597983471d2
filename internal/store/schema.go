package store

// schemaSQL defines the backend tables. All tables use IF NOT EXISTS
// so the statement is safe to run on every startup.
const schemaSQL = `
    -- Conversation memory, one row per turn, windowed per session.
    DEFINE TABLE IF NOT EXISTS session_message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session_id ON session_message TYPE string;
    DEFINE FIELD IF NOT EXISTS role ON session_message TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON session_message TYPE string;
    DEFINE FIELD IF NOT EXISTS timestamp ON session_message TYPE string;
    DEFINE FIELD IF NOT EXISTS created ON session_message TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS session_message_session ON session_message FIELDS session_id;

    -- Telemetry shipped by the assistant after each reply.
    DEFINE TABLE IF NOT EXISTS usage_record SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session_id ON usage_record TYPE string;
    DEFINE FIELD IF NOT EXISTS model ON usage_record TYPE string;
    DEFINE FIELD IF NOT EXISTS response_time ON usage_record TYPE float;
    DEFINE FIELD IF NOT EXISTS token_cost ON usage_record TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS handover_triggered ON usage_record TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS knowledge_applied ON usage_record TYPE option<array<object>> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS recorded_at ON usage_record TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS usage_record_recorded ON usage_record FIELDS recorded_at;

    -- Escalations received on the Chatwood intake route.
    DEFINE TABLE IF NOT EXISTS handover_record SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session_id ON handover_record TYPE string;
    DEFINE FIELD IF NOT EXISTS user_message ON handover_record TYPE string;
    DEFINE FIELD IF NOT EXISTS assistant_reply ON handover_record TYPE string;
    DEFINE FIELD IF NOT EXISTS received_at ON handover_record TYPE datetime DEFAULT time::now();

    -- Captured visitor contacts.
    DEFINE TABLE IF NOT EXISTS lead SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS lead_id ON lead TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS email ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS company ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS status ON lead TYPE string DEFAULT 'synced';
    DEFINE FIELD IF NOT EXISTS submitted_at ON lead TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS lead_lead_id ON lead FIELDS lead_id UNIQUE;

    -- Generated LinkedIn drafts, capped per calendar month.
    DEFINE TABLE IF NOT EXISTS post SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS post_id ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS persona ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS locale ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON post TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS approved ON post TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS approved_at ON post TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS month_key ON post TYPE string;
    DEFINE INDEX IF NOT EXISTS post_post_id ON post FIELDS post_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS post_month ON post FIELDS month_key;
`
