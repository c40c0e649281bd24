package archive

import (
	"context"
	"time"
)

// TurnRecord is one archived user or assistant turn. The archive is a
// best-effort transcript log; it is never read back into prompts, so the
// in-memory session contract (wiped on restart) is unaffected.
type TurnRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves archived turns.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	RecentTurns(ctx context.Context, userID string, limit int) ([]TurnRecord, error)
	Close() error
}
