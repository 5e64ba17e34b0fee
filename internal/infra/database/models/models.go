package models

import (
	"time"
)

// Every model carries its partition path so a repository query never spans
// partitions. The owner column repeats the partition's owner segment for
// indexed lookups.

type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Partition string    `json:"partition" gorm:"type:text;index"`
	Owner     string    `json:"owner" gorm:"type:text;index"`
	Sender    string    `json:"sender" gorm:"type:text"`
	Text      string    `json:"text" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type CompetencySnapshot struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Partition string    `json:"partition" gorm:"type:text;index"`
	Owner     string    `json:"owner" gorm:"type:text;index"`
	Timestamp string    `json:"timestamp" gorm:"type:text"`
	Ratings   string    `json:"ratings" gorm:"type:text"` // JSON, kind -> 0..5
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type MentorProfile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Partition string    `json:"partition" gorm:"type:text;index"`
	Owner     string    `json:"owner" gorm:"type:text"`
	Name      string    `json:"name" gorm:"type:text"`
	Expertise string    `json:"expertise" gorm:"type:text"`
	Bio       string    `json:"bio" gorm:"type:text"`
	Contact   string    `json:"contact" gorm:"type:text"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type AnalyticsEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Partition string    `json:"partition" gorm:"type:text;index"`
	Type      string    `json:"type" gorm:"type:text;index"`
	Data      string    `json:"data" gorm:"type:text"` // JSON, label -> value
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Insight struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Partition string    `json:"partition" gorm:"type:text;index"`
	Title     string    `json:"title" gorm:"type:text"`
	Summary   string    `json:"summary" gorm:"type:text"`
	Keywords  string    `json:"keywords" gorm:"type:text"` // JSON array
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
