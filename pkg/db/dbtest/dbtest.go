// Package dbtest opens migrated sqlite databases for package tests.
package dbtest

import (
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lisanmuaddib/pagesync/pkg/db"
)

// Open migrates a fresh sqlite file inside dir and returns a handle to it.
func Open(dir string) (*gorm.DB, error) {
	return db.SetupDatabase(QuietLogger(), &db.Config{
		URL: "sqlite://" + filepath.Join(dir, "pagesync_test.db"),
	})
}

func QuietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
