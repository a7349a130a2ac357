package sqlstore

import (
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// settingsRowID is the primary key of the only settings row.
const settingsRowID = 1

// bookmarkRow is the relational representation of a bookmark.
// Timestamps are written as given; gorm must not touch them.
type bookmarkRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Title       string    `gorm:"not null"`
	URL         string    `gorm:"column:url;not null"`
	Category    string    `gorm:"not null;index"`
	Description string    `gorm:"not null"`
	Visible     bool      `gorm:"not null"`
	Order       int       `gorm:"column:order;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (bookmarkRow) TableName() string { return "bookmarks" }

// settingsRow holds the settings singleton under settingsRowID.
type settingsRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement:false"`
	Theme     string `gorm:"size:16;not null"`
	SiteTitle string `gorm:"size:60;not null"`
	SiteIcon  string `gorm:"size:512;not null"`
}

func (settingsRow) TableName() string { return "settings" }

func toRow(b domain.Bookmark) bookmarkRow {
	return bookmarkRow{
		ID:          b.ID,
		Title:       b.Title,
		URL:         b.URL,
		Category:    domain.NormalizeCategory(b.Category),
		Description: b.Description,
		Visible:     b.Visible,
		Order:       b.Order,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (r bookmarkRow) toDomain() domain.Bookmark {
	return domain.Bookmark{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Category:    r.Category,
		Description: r.Description,
		Visible:     r.Visible,
		Order:       r.Order,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}
