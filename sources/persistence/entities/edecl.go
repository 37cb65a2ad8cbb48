package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type (
	// User is the registry record for one sender identity.
	User struct {
		ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		UserID      int64          `gorm:"uniqueIndex;not null" json:"user_id"`
		Username    *string        `gorm:"size:255" json:"username"`
		Fullname    *string        `gorm:"size:255" json:"fullname"`
		Language    string         `gorm:"size:8;not null;default:'uz'" json:"language"`
		IsBlocked   *bool          `gorm:"not null;default:false" json:"is_blocked"`
		IsAdmin     *bool          `gorm:"not null;default:false" json:"is_admin"`
		Permissions pq.StringArray `gorm:"type:text[];not null;default:ARRAY[]::text[]" json:"permissions"`
		CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

		SavedFiles []SavedFile `gorm:"foreignKey:UserID;references:ID" json:"saved_files"`
		Downloads  []Download  `gorm:"foreignKey:UserID;references:ID" json:"downloads"`
	}

	File struct {
		ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		TelegramID    string    `gorm:"size:255;uniqueIndex;not null" json:"telegram_id"`
		Title         string    `gorm:"size:512;not null" json:"title"`
		Kind          string    `gorm:"size:32;not null" json:"kind"`
		Tags          *string   `gorm:"type:text" json:"tags"`
		FileName      *string   `gorm:"size:512" json:"file_name"`
		FileSize      int64     `gorm:"not null;default:0" json:"file_size"`
		DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
		CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
		CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"created_by"`

		Uploader *User `gorm:"foreignKey:CreatedBy;references:ID" json:"uploader"`
	}

	SavedFile struct {
		ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_file" json:"user_id"`
		FileID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_file" json:"file_id"`
		CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

		File File `gorm:"foreignKey:FileID;references:ID" json:"file"`
	}

	Download struct {
		ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
		FileID    uuid.UUID `gorm:"type:uuid;not null" json:"file_id"`
		CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

		File File `gorm:"foreignKey:FileID;references:ID" json:"file"`
	}

	Setting struct {
		Key   string  `gorm:"size:255;primaryKey" json:"key"`
		Value *string `gorm:"type:text" json:"value"`
	}

	Broadcast struct {
		ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
		Text        string    `gorm:"type:text;not null" json:"text"`
		SentCount   int64     `gorm:"not null;default:0" json:"sent_count"`
		FailedCount int64     `gorm:"not null;default:0" json:"failed_count"`
		CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	}
)

func (User) TableName() string      { return "lv_users" }
func (File) TableName() string      { return "lv_files" }
func (SavedFile) TableName() string { return "lv_saved_files" }
func (Download) TableName() string  { return "lv_downloads" }
func (Setting) TableName() string   { return "lv_settings" }
func (Broadcast) TableName() string { return "lv_broadcasts" }
