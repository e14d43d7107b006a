package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
)

type ChatRepo struct {
	session *gocql.Session
}

// NewChatRepo connects to Cassandra, creating keyspace if it is missing.
func NewChatRepo(hosts []string, keyspace string) (*ChatRepo, error) {
	if len(hosts) == 0 {
		hosts = []string{"127.0.0.1"}
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASSANDRA_CONNECT_FAILED, Description: %v", err)
		return nil, err
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		logging.Logger.Errorf("Event ID: KEYSPACE_CREATE_FAILED, Description: keyspace %s: %v", keyspace, err)
		return nil, err
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASSANDRA_CONNECT_FAILED, Description: keyspace %s: %v", keyspace, err)
		return nil, err
	}

	logging.Logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: connected to keyspace %s", keyspace)
	return &ChatRepo{session: session}, nil
}

func (cr *ChatRepo) CloseSession() {
	cr.session.Close()
	logging.Logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed")
}

// CreateTables creates the messages and presence tables.
func (cr *ChatRepo) CreateTables() error {
	err := cr.session.Query(
		`CREATE TABLE IF NOT EXISTS messages (
			tenant_id TEXT,
			room_id TEXT,
			created_at TIMESTAMP,
			id TIMEUUID,
			sender_id TEXT,
			text TEXT,
			read_by SET<TEXT>,
			PRIMARY KEY ((tenant_id, room_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}

	err = cr.session.Query(
		`CREATE TABLE IF NOT EXISTS presence (
			tenant_id TEXT,
			user_id TEXT,
			last_seen TIMESTAMP,
			PRIMARY KEY ((tenant_id), user_id)
		)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create presence table: %w", err)
	}

	logging.Logger.Info("Event ID: CHAT_TABLES_READY, Description: chat tables created")
	return nil
}

func (cr *ChatRepo) SaveMessage(ctx context.Context, tenant string, m *models.ChatMessage) error {
	id := gocql.TimeUUID()
	m.ID = id.String()
	m.CreatedAt = id.Time().UTC().Truncate(time.Millisecond)

	err := cr.session.Query(
		`INSERT INTO messages (tenant_id, room_id, created_at, id, sender_id, text, read_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tenant, m.RoomID, m.CreatedAt, id, m.SenderID, m.Text, m.ReadBy,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to save message in room %s: %w", m.RoomID, err)
	}
	return nil
}

// ListMessages returns up to limit messages of a room, newest first.
func (cr *ChatRepo) ListMessages(ctx context.Context, tenant, roomID string, limit int) ([]models.ChatMessage, error) {
	iter := cr.session.Query(
		`SELECT id, sender_id, text, created_at, read_by
		 FROM messages WHERE tenant_id = ? AND room_id = ? LIMIT ?`,
		tenant, roomID, limit,
	).WithContext(ctx).Iter()

	messages := []models.ChatMessage{}
	err := scanMessages(iter, roomID, func(m models.ChatMessage) error {
		messages = append(messages, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of room %s: %w", roomID, err)
	}
	return messages, nil
}

// ScanMessages calls fn for every message of a room, newest first. The
// driver fetches the partition page by page, so rooms of any size work.
func (cr *ChatRepo) ScanMessages(ctx context.Context, tenant, roomID string, fn func(models.ChatMessage) error) error {
	iter := cr.session.Query(
		`SELECT id, sender_id, text, created_at, read_by
		 FROM messages WHERE tenant_id = ? AND room_id = ?`,
		tenant, roomID,
	).WithContext(ctx).PageSize(scanPageSize).Iter()

	if err := scanMessages(iter, roomID, fn); err != nil {
		return fmt.Errorf("failed to scan messages of room %s: %w", roomID, err)
	}
	return nil
}

const scanPageSize = 500

func scanMessages(iter *gocql.Iter, roomID string, fn func(models.ChatMessage) error) error {
	var (
		id        gocql.UUID
		senderID  string
		text      string
		createdAt time.Time
		readBy    []string
	)
	for iter.Scan(&id, &senderID, &text, &createdAt, &readBy) {
		err := fn(models.ChatMessage{
			RoomID:    roomID,
			ID:        id.String(),
			SenderID:  senderID,
			Text:      text,
			CreatedAt: createdAt,
			ReadBy:    readBy,
		})
		if err != nil {
			iter.Close()
			return err
		}
		readBy = nil
	}
	return iter.Close()
}

// AddReader adds userID to the read_by set of m. Set union makes repeated
// calls harmless.
func (cr *ChatRepo) AddReader(ctx context.Context, tenant string, m models.ChatMessage, userID string) error {
	id, err := gocql.ParseUUID(m.ID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", m.ID, err)
	}
	err = cr.session.Query(
		`UPDATE messages SET read_by = read_by + ?
		 WHERE tenant_id = ? AND room_id = ? AND created_at = ? AND id = ?`,
		[]string{userID}, tenant, m.RoomID, m.CreatedAt, id,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to mark message %s read: %w", m.ID, err)
	}
	return nil
}

func (cr *ChatRepo) TouchPresence(ctx context.Context, tenant, userID string, at time.Time) error {
	err := cr.session.Query(
		`UPDATE presence SET last_seen = ? WHERE tenant_id = ? AND user_id = ?`,
		at, tenant, userID,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to record presence of %s: %w", userID, err)
	}
	return nil
}

// GetPresence returns a zero LastSeen for users never seen.
func (cr *ChatRepo) GetPresence(ctx context.Context, tenant, userID string) (models.Presence, error) {
	pr := models.Presence{UserID: userID}
	err := cr.session.Query(
		`SELECT last_seen FROM presence WHERE tenant_id = ? AND user_id = ?`,
		tenant, userID,
	).WithContext(ctx).Scan(&pr.LastSeen)
	if err == gocql.ErrNotFound {
		return pr, nil
	}
	if err != nil {
		return pr, fmt.Errorf("failed to read presence of %s: %w", userID, err)
	}
	return pr, nil
}
