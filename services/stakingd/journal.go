package stakingd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Journal entry kinds.
const (
	EntryDeposit   = "deposit"
	EntryWithdraw  = "withdraw"
	EntryClaim     = "claim"
	EntryMassClaim = "mass_claim"
	EntryReceive   = "receive"
	EntryTrigger   = "trigger"
	EntryEmission  = "emission"
	EntryRedeem    = "redeem"
	EntryPause     = "pause"
	EntryResume    = "resume"
)

// Entry is one append-only journal row. Amounts are decimal strings.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string    `gorm:"size:32;index" json:"kind"`
	Account   string    `gorm:"size:42;index" json:"account,omitempty"`
	Subject   string    `gorm:"size:64;index" json:"subject,omitempty"`
	Amount    string    `gorm:"size:80" json:"amount"`
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	RequestID string    `gorm:"size:64" json:"requestId,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// TableName pins the table name.
func (Entry) TableName() string { return "journal_entries" }

// Journal persists operation outcomes to SQL.
type Journal struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenJournal connects to the configured driver and migrates the schema.
func OpenJournal(cfg JournalConfig) (*Journal, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("journal: unknown driver %q", cfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	return NewJournal(db)
}

// NewJournal wraps an open gorm handle.
func NewJournal(db *gorm.DB) (*Journal, error) {
	if db == nil {
		return nil, fmt.Errorf("journal: database required")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Record appends entry, assigning its id and timestamp.
func (j *Journal) Record(ctx context.Context, entry Entry) (*Entry, error) {
	if j == nil {
		return nil, nil
	}
	entry.ID = uuid.New()
	entry.CreatedAt = j.now().UTC()
	if entry.Amount == "" {
		entry.Amount = "0"
	}
	if err := j.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("journal: record: %w", err)
	}
	return &entry, nil
}

// List returns the newest entries first, optionally filtered by account.
func (j *Journal) List(ctx context.Context, account string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := j.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if account = strings.TrimSpace(account); account != "" {
		query = query.Where("account = ?", account)
	}
	var entries []Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	return entries, nil
}

// Close releases the underlying connection pool.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
