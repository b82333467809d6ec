package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nidhogg/hearthvale/internal/memory"
	"go.uber.org/zap"
)

// TranscriptArchive appends every conversation entry to Postgres so a
// play session can be inspected after the fact. Optional at runtime;
// the game runs fine without it.
type TranscriptArchive struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewTranscriptArchive connects to Postgres and verifies the connection.
func NewTranscriptArchive(dsn string, logger *zap.Logger) (*TranscriptArchive, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("PostgreSQL connected")
	return &TranscriptArchive{db: pool, logger: logger}, nil
}

// Migrate creates the transcripts table if needed.
func (t *TranscriptArchive) Migrate(ctx context.Context) error {
	_, err := t.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transcripts (
			id UUID PRIMARY KEY,
			npc TEXT NOT NULL,
			participant TEXT NOT NULL,
			direction TEXT NOT NULL,
			message TEXT NOT NULL,
			sentiment DOUBLE PRECISION NOT NULL,
			importance INT NOT NULL,
			topics TEXT[],
			created_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create transcripts table: %w", err)
	}
	return nil
}

// Append stores one conversation entry.
func (t *TranscriptArchive) Append(ctx context.Context, npc string, e memory.ConversationEntry) error {
	_, err := t.db.Exec(ctx, `
		INSERT INTO transcripts (id, npc, participant, direction, message, sentiment, importance, topics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, npc, e.ParticipantName, string(e.Direction), e.Message,
		e.Sentiment, int(e.Importance), e.Topics, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Observer returns a memory observer that archives conversation entries
// as they are added. Failures are logged, never propagated into the
// conversation path.
func (t *TranscriptArchive) Observer() memory.ObserverFuncs {
	return memory.ObserverFuncs{
		ConversationAdded: func(agent string, entry memory.ConversationEntry) {
			if err := t.Append(context.Background(), agent, entry); err != nil {
				t.logger.Warn("transcript append failed",
					zap.String("npc", agent), zap.Error(err))
			}
		},
	}
}

// Close shuts down the connection pool.
func (t *TranscriptArchive) Close() {
	t.db.Close()
}
