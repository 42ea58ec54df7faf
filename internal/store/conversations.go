package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/venue-scout/internal/intent"
)

// Conversations persists per-session conversation state. The engine's
// context record is caller-owned; this is where the serving layer keeps
// it between turns.
type Conversations struct {
	db *DB
}

// NewConversations creates the conversation store.
func NewConversations(db *DB) *Conversations {
	return &Conversations{db: db}
}

// Create opens a new conversation for the venue and returns its id.
func (c *Conversations) Create(ctx context.Context, venueID string) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO conversations (id, venue_id, context, created_at, updated_at) VALUES (?, ?, '{}', ?, ?)`,
		id, venueID, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating conversation: %w", err)
	}
	return id, nil
}

// Save stores the updated context for a session.
func (c *Conversations) Save(ctx context.Context, id string, cc intent.Context) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}
	res, err := c.db.ExecContext(ctx,
		`UPDATE conversations SET context = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("saving conversation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s does not exist", id)
	}
	return nil
}

// Load returns the stored context for a session. An unknown id yields a
// fresh zero context and ok=false.
func (c *Conversations) Load(ctx context.Context, id string) (intent.Context, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT context FROM conversations WHERE id = ?`, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return intent.NewContext(), false, nil
	}
	if err != nil {
		return intent.Context{}, false, fmt.Errorf("loading conversation %s: %w", id, err)
	}

	var cc intent.Context
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		return intent.Context{}, false, fmt.Errorf("decoding conversation %s: %w", id, err)
	}
	if cc.Version == 0 {
		cc.Version = intent.ContextVersion
	}
	return cc, true, nil
}

// VenueFor returns the venue a conversation is about.
func (c *Conversations) VenueFor(ctx context.Context, id string) (string, error) {
	var venueID string
	err := c.db.QueryRowContext(ctx,
		`SELECT venue_id FROM conversations WHERE id = ?`, id,
	).Scan(&venueID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("conversation %s does not exist", id)
	}
	if err != nil {
		return "", fmt.Errorf("looking up conversation %s: %w", id, err)
	}
	return venueID, nil
}

// Count returns the total number of conversations.
func (c *Conversations) Count(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&count)
	return count, err
}
