package db_test

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/lisanmuaddib/pagesync/pkg/db"
	"github.com/lisanmuaddib/pagesync/pkg/db/dbtest"
	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

var _ = Describe("Config", func() {
	It("prefers DATABASE_URL", func() {
		cfg := &db.Config{URL: "postgres://u:p@h:5432/d?sslmode=disable", Host: "ignored"}
		Expect(cfg.Dialect()).To(Equal(db.DialectPostgres))
		Expect(cfg.DatabaseURL()).To(Equal("postgres://u:p@h:5432/d?sslmode=disable"))
	})

	It("builds a postgres url from DB_* fields", func() {
		cfg := &db.Config{Host: "localhost", Port: "5432", User: "u", Password: "p", Name: "pages", SSLMode: "disable"}
		Expect(cfg.DatabaseURL()).To(Equal("postgres://u:p@localhost:5432/pages?sslmode=disable"))
	})

	It("defaults to a local sqlite file", func() {
		cfg := &db.Config{}
		Expect(cfg.Dialect()).To(Equal(db.DialectSQLite))
		Expect(cfg.SQLitePath()).To(Equal("social_media.db"))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("rejects unknown schemes", func() {
		cfg := &db.Config{URL: "mysql://localhost/x"}
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("unsupported database url")))
	})
})

var _ = Describe("SetupDatabase", func() {
	var (
		dir    string
		testDB *gorm.DB
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		testDB, err = dbtest.Open(dir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("is safe to run twice", func() {
		cfg := &db.Config{URL: "sqlite://" + filepath.Join(dir, "pagesync_test.db")}
		Expect(db.RunMigrations(dbtest.QuietLogger(), cfg)).To(Succeed())

		version, dirty, err := db.MigrationStatus(dbtest.QuietLogger(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(BeEquivalentTo(1))
	})

	It("allows only one unposted draft per comment", func() {
		now := time.Now().UTC()
		Expect(testDB.Create(&models.Post{PostID: "p1", PageID: "page", CreatedTime: now, SyncedAt: now}).Error).To(Succeed())
		Expect(testDB.Create(&models.Comment{CommentID: "c1", PostID: "p1", Message: "hi", CreatedTime: now, SyncedAt: now}).Error).To(Succeed())

		Expect(testDB.Create(&models.ResponseDraft{CommentID: "c1", Message: "one", GeneratedAt: now}).Error).To(Succeed())
		Expect(testDB.Create(&models.ResponseDraft{CommentID: "c1", Message: "two", GeneratedAt: now}).Error).To(HaveOccurred())
		Expect(testDB.Create(&models.ResponseDraft{CommentID: "c1", Message: "done", GeneratedAt: now, Posted: true}).Error).To(Succeed())
	})

	It("keeps a single settings row", func() {
		s := models.DefaultAutoReplySettings()
		Expect(testDB.Create(&s).Error).To(Succeed())

		other := models.DefaultAutoReplySettings()
		other.ID = 2
		Expect(testDB.Create(&other).Error).To(HaveOccurred())
	})

	It("cascades post deletion to comments", func() {
		now := time.Now().UTC()
		Expect(testDB.Create(&models.Post{PostID: "p1", PageID: "page", CreatedTime: now, SyncedAt: now}).Error).To(Succeed())
		Expect(testDB.Create(&models.Comment{CommentID: "c1", PostID: "p1", Message: "hi", CreatedTime: now, SyncedAt: now}).Error).To(Succeed())

		Expect(testDB.Where("post_id = ?", "p1").Delete(&models.Post{}).Error).To(Succeed())

		var count int64
		Expect(testDB.Model(&models.Comment{}).Count(&count).Error).To(Succeed())
		Expect(count).To(BeZero())
	})
})
