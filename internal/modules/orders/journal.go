package orders

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/modules/session"
)

type Step string

const (
	StepCreateOrder Step = "create_order"
	StepRelay       Step = "relay"
)

// JournalEntry records one pipeline step outcome per submission attempt.
// The journal is what makes the saga resumable and auditable; the widget
// itself keeps nothing.
type JournalEntry struct {
	ID           string    `gorm:"column:id;primaryKey"`
	SessionID    string    `gorm:"column:session_id;index"`
	MerchantCode string    `gorm:"column:merchant_code;index"`
	CartToken    string    `gorm:"column:cart_token"`
	Step         string    `gorm:"column:step"`
	Status       string    `gorm:"column:status"` // ok | failed
	ResultURL    string    `gorm:"column:result_url"`
	ErrorMessage string    `gorm:"column:error_message"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (JournalEntry) TableName() string { return "relay_journal" }

type Journal struct{ db *gorm.DB }

func NewJournal(db *gorm.DB) *Journal { return &Journal{db: db} }

func (j *Journal) Record(ctx context.Context, sess *session.Checkout, m merchants.Merchant, step Step, url string, stepErr error) error {
	e := JournalEntry{
		ID:           uuid.NewString(),
		SessionID:    sess.ID,
		MerchantCode: m.Code,
		CartToken:    sess.Cart.Token,
		Step:         string(step),
		Status:       "ok",
		ResultURL:    url,
		CreatedAt:    time.Now(),
	}
	if stepErr != nil {
		e.Status = "failed"
		e.ErrorMessage = stepErr.Error()
	}

	return withTxRetry(ctx, j.db, 3, func(tx *gorm.DB) error {
		return tx.WithContext(ctx).Create(&e).Error
	})
}

func (j *Journal) BySession(ctx context.Context, sessionID string) ([]JournalEntry, error) {
	var out []JournalEntry
	err := j.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// --- retry helpers (deadlock/lock timeout) ---

func withTxRetry(ctx context.Context, db *gorm.DB, attempts int, fn func(tx *gorm.DB) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(tx)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if isRetryableMySQLError(err) && i < attempts-1 {
			time.Sleep(time.Duration(50*(i+1)) * time.Millisecond)
			continue
		}
		return err
	}
	return lastErr
}

func isRetryableMySQLError(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		// 1213: Deadlock found; 1205: Lock wait timeout
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
