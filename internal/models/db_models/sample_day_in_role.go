package db_models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// SampleDayInRole is curated demo content browseable on the free tier.
// Samples are looked up by embedding similarity against the visitor's query.
type SampleDayInRole struct {
	ID        string `gorm:"primaryKey;column:sample_id"`
	Title     string
	Company   string
	Language  string
	Summary   string
	Tags      pq.StringArray  `gorm:"type:text[]"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}
