package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/log"
)

// ChatRepo implements core.ChatStore on top of the messages and
// chat_topics tables.
type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// AddMessage appends msg to the chat. A message without an id gets a
// random one.
func (r *ChatRepo) AddMessage(ctx context.Context, chatID string, msg core.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	query := `INSERT INTO messages (id, chat_id, role, content) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, msg.ID, chatID, msg.Role, msg.Content); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *ChatRepo) LoadChat(ctx context.Context, chatID string) (core.ChatData, error) {
	msgs, err := r.messages(ctx, chatID)
	if err != nil {
		return core.ChatData{}, err
	}

	topics, err := r.topics(ctx, chatID)
	if err != nil {
		return core.ChatData{}, err
	}

	log.FromCtx(ctx).Debug().
		Str("chat_id", chatID).
		Int("messages", len(msgs)).
		Int("topics", len(topics)).
		Msg("loaded chat")

	return core.ChatData{
		ChatID:   chatID,
		Messages: msgs,
		Topics:   topics,
	}, nil
}

// SaveTopics replaces the chat's topic set.
func (r *ChatRepo) SaveTopics(ctx context.Context, chatID string, topics []core.Topic) error {
	if topics == nil {
		topics = []core.Topic{}
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `INSERT INTO chat_topics (chat_id, topics, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id) DO UPDATE SET topics = excluded.topics, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, chatID, string(raw)); err != nil {
		return fmt.Errorf("failed to save topics: %w", err)
	}
	return nil
}

// ListChats returns the ids of chats that have at least one message.
func (r *ChatRepo) ListChats(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT chat_id FROM messages GROUP BY chat_id ORDER BY MAX(seq) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chat id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ChatRepo) messages(ctx context.Context, chatID string) ([]core.Message, error) {
	query := `SELECT id, role, content FROM messages WHERE chat_id = ? ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ChatRepo) topics(ctx context.Context, chatID string) ([]core.Topic, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT topics FROM chat_topics WHERE chat_id = ?`, chatID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}

	var topics []core.Topic
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, fmt.Errorf("%w: topics of chat %s: %w", core.ErrStore, chatID, err)
	}
	return topics, nil
}
