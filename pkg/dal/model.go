package dal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityBase provides the common columns for entities with a UUIDv7 primary
// key. Embed it in entity structs; UUIDv7 keys keep index pages ordered by
// insertion time.
type EntityBase struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updated_at"`
}

// BeforeCreate assigns a UUIDv7 primary key when none was set.
func (b *EntityBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	return nil
}

// GetID returns the entity's primary key.
func (b *EntityBase) GetID() uuid.UUID {
	return b.ID
}

// SetID sets the entity's primary key.
func (b *EntityBase) SetID(id uuid.UUID) {
	b.ID = id
}

// IsNew reports whether the entity has not been persisted yet.
func (b *EntityBase) IsNew() bool {
	return b.ID == uuid.Nil
}
