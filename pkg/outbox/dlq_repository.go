package outbox

import (
	"errors"

	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
)

// Error reasons longer than this are cut so a pathological driver message
// cannot bloat the dead letter table.
const maxDLQErrorLen = 1024

// DLQRepository stores events the publisher gave up on. Rows are written
// on the same transaction that marks the source event terminal.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil && len(*entry.ErrorMessage) > maxDLQErrorLen {
		trimmed := (*entry.ErrorMessage)[:maxDLQErrorLen]
		entry.ErrorMessage = &trimmed
	}
	return tx.Create(&entry).Error
}
