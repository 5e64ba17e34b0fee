package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/internal/infra/database/models"
)

const mentorCacheTTL = 60 // seconds

type MentorRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewMentorRepository(db *gorm.DB, mc *memcache.Client) *MentorRepository {
	return &MentorRepository{db: db, mc: mc}
}

// Append writes a new mentor profile and returns the store-assigned id.
// The directory is append-only; there is no edit or delete path.
func (r *MentorRepository) Append(ctx context.Context, partition string, profile shiftwyse.MentorProfile) (string, error) {

	record := models.MentorProfile{
		ID:        uuid.New().String(),
		Partition: partition,
		Owner:     profile.OwnerID,
		Name:      profile.Name,
		Expertise: profile.Expertise,
		Bio:       profile.Bio,
		Contact:   profile.Contact,
	}

	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return "", err
	}

	if r.mc != nil {
		_ = r.mc.Delete(cacheKey(partition))
	}

	return record.ID, nil
}

// List returns the public directory in arrival order, served from
// memcached when the cached copy is still fresh.
func (r *MentorRepository) List(ctx context.Context, partition string) ([]shiftwyse.MentorProfile, error) {

	if r.mc != nil {
		if item, err := r.mc.Get(cacheKey(partition)); err == nil {
			var cached []shiftwyse.MentorProfile
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var records []models.MentorProfile
	err := r.db.WithContext(ctx).
		Where("partition = ?", partition).
		Order("c_date asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	mentors := make([]shiftwyse.MentorProfile, 0, len(records))
	for _, record := range records {
		mentors = append(mentors, shiftwyse.MentorProfile{
			ID:        record.ID,
			Name:      record.Name,
			Expertise: record.Expertise,
			Bio:       record.Bio,
			Contact:   record.Contact,
			OwnerID:   record.Owner,
			Timestamp: record.CDate,
		})
	}

	if r.mc != nil {
		if serialized, err := json.Marshal(mentors); err == nil {
			_ = r.mc.Set(&memcache.Item{
				Key:        cacheKey(partition),
				Value:      serialized,
				Expiration: mentorCacheTTL,
			})
		}
	}

	return mentors, nil
}

// memcached keys must not contain whitespace or control characters and the
// partition path is safe, but slashes are replaced for readability in
// stats output.
func cacheKey(partition string) string {
	return "mentors:" + strings.ReplaceAll(partition, "/", ":")
}
