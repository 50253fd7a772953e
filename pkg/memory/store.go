package memory

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDraftPosted = errors.New("draft already posted")
	ErrDraftExists = errors.New("comment already has an unposted draft")
)

// Store is the local mirror of the page. All writes that touch more than
// one row run in a single transaction.
type Store struct {
	logger *logrus.Logger
	db     *gorm.DB
	now    func() time.Time
}

func NewStore(logger *logrus.Logger, db *gorm.DB) *Store {
	return &Store{
		logger: logger,
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// DB exposes the handle for components that keep their own tables.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func strPtr(s string) *string {
	return &s
}
