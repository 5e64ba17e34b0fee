package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/infra/database/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Upsert merge-writes a message by id. Fields not carried by the message
// are left untouched, so partial updates never destroy unrelated columns.
func (r *MessageRepository) Upsert(ctx context.Context, partition string, msg shiftwyse.Message) error {

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	record := models.Message{
		ID:        msg.ID,
		Partition: partition,
		Owner:     msg.OwnerID,
		Sender:    string(msg.Sender),
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sender", "text", "timestamp", "owner"}),
	}).Create(&record).Error
}

// List returns the full current record set for the partition. The store
// gives no ordering guarantee; callers sort as their resource kind
// requires.
func (r *MessageRepository) List(ctx context.Context, partition string) ([]shiftwyse.Message, error) {

	var records []models.Message
	err := r.db.WithContext(ctx).
		Where("partition = ?", partition).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	messages := make([]shiftwyse.Message, 0, len(records))
	for _, record := range records {
		messages = append(messages, shiftwyse.Message{
			ID:        record.ID,
			Sender:    shiftwyse.Sender(record.Sender),
			Text:      record.Text,
			Timestamp: record.Timestamp,
			OwnerID:   record.Owner,
		})
	}
	return messages, nil
}
