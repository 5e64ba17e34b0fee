package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/infra/database/models"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Upsert(ctx context.Context, partition string, snapshot shiftwyse.CompetencySnapshot) error {

	ratings, err := json.Marshal(snapshot.Ratings)
	if err != nil {
		return err
	}

	record := models.CompetencySnapshot{
		ID:        snapshot.ID,
		Partition: partition,
		Owner:     snapshot.OwnerID,
		Timestamp: snapshot.Timestamp,
		Ratings:   string(ratings),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp", "ratings", "owner"}),
	}).Create(&record).Error
}

func (r *SnapshotRepository) List(ctx context.Context, partition string) ([]shiftwyse.CompetencySnapshot, error) {

	var records []models.CompetencySnapshot
	err := r.db.WithContext(ctx).
		Where("partition = ?", partition).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]shiftwyse.CompetencySnapshot, 0, len(records))
	for _, record := range records {
		var ratings map[string]int
		if err := json.Unmarshal([]byte(record.Ratings), &ratings); err != nil {
			ratings = map[string]int{}
		}
		snapshots = append(snapshots, shiftwyse.CompetencySnapshot{
			ID:        record.ID,
			OwnerID:   record.Owner,
			Timestamp: record.Timestamp,
			Ratings:   ratings,
		})
	}
	return snapshots, nil
}
