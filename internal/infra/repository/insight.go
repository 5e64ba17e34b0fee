package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/infra/database/models"
)

type InsightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Upsert merge-writes an insight by id, so re-ingesting the same document
// refreshes the existing record instead of duplicating it.
func (r *InsightRepository) Upsert(ctx context.Context, partition string, insight shiftwyse.Insight) error {

	keywords, err := json.Marshal(insight.Keywords)
	if err != nil {
		return err
	}

	record := models.Insight{
		ID:        insight.ID,
		Partition: partition,
		Title:     insight.Title,
		Summary:   insight.Summary,
		Keywords:  string(keywords),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "summary", "keywords"}),
	}).Create(&record).Error
}

func (r *InsightRepository) List(ctx context.Context, partition string) ([]shiftwyse.Insight, error) {

	var records []models.Insight
	err := r.db.WithContext(ctx).
		Where("partition = ?", partition).
		Order("c_date asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	insights := make([]shiftwyse.Insight, 0, len(records))
	for _, record := range records {
		var keywords []string
		if err := json.Unmarshal([]byte(record.Keywords), &keywords); err != nil {
			keywords = nil
		}
		insights = append(insights, shiftwyse.Insight{
			ID:       record.ID,
			Title:    record.Title,
			Summary:  record.Summary,
			Keywords: keywords,
		})
	}
	return insights, nil
}
