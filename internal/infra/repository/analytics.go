package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/infra/database/models"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Append writes a new counter sample and returns the store-assigned id.
func (r *AnalyticsRepository) Append(ctx context.Context, partition string, event shiftwyse.AnalyticsEvent) (string, error) {

	data, err := json.Marshal(event.Data)
	if err != nil {
		return "", err
	}

	record := models.AnalyticsEvent{
		ID:        uuid.New().String(),
		Partition: partition,
		Type:      string(event.Type),
		Data:      string(data),
	}

	err = r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (r *AnalyticsRepository) List(ctx context.Context, partition string) ([]shiftwyse.AnalyticsEvent, error) {

	var records []models.AnalyticsEvent
	err := r.db.WithContext(ctx).
		Where("partition = ?", partition).
		Order("c_date asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	events := make([]shiftwyse.AnalyticsEvent, 0, len(records))
	for _, record := range records {
		var data map[string]string
		if err := json.Unmarshal([]byte(record.Data), &data); err != nil {
			data = map[string]string{}
		}
		events = append(events, shiftwyse.AnalyticsEvent{
			ID:        record.ID,
			Type:      shiftwyse.AnalyticsEventType(record.Type),
			Data:      data,
			Timestamp: record.CDate,
		})
	}
	return events, nil
}
