package founder

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/desplega-ai/mood/internal/domain/tenant"
)

// Founder receives mood-check prompts. Email is the identity checked against
// reply senders and is stored normalized.
type Founder struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	APIKeyID  uuid.UUID      `gorm:"column:api_key_id;type:uuid;not null;index" json:"apiKeyId"`
	APIKey    *tenant.APIKey `gorm:"foreignKey:APIKeyID" json:"-"`
	Name      string         `gorm:"type:text;not null" json:"name"`
	Email     string         `gorm:"type:text;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Founder) TableName() string { return "founder" }

func (f *Founder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *Founder) BeforeSave(tx *gorm.DB) error {
	f.Email = NormalizeEmail(f.Email)
	f.Name = strings.TrimSpace(f.Name)
	return nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
