package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/roadsmart/backend/internal/config"
	"github.com/roadsmart/backend/internal/db"
	"github.com/roadsmart/backend/internal/events"
	"github.com/roadsmart/backend/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(config.Database{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{Username: username, Password: "not-a-real-hash", Role: role}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.StatusChanged
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, evt events.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Events() []events.StatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.StatusChanged(nil), p.events...)
}

// fixture wires every service against one database with a standard cast of users.
type fixture struct {
	db         *gorm.DB
	publisher  *recordingPublisher
	reports    *ReportService
	tasks      *TaskService
	complaints *ComplaintService
	users      *UserService

	citizen   *models.User
	municipal *models.User
	repair    *models.User
	admin     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := newTestDB(t)
	pub := &recordingPublisher{}
	return &fixture{
		db:         gdb,
		publisher:  pub,
		reports:    NewReportService(gdb, pub),
		tasks:      NewTaskService(gdb, pub),
		complaints: NewComplaintService(gdb, pub),
		users:      NewUserService(gdb),
		citizen:    createUser(t, gdb, "citizen", models.RoleCitizen),
		municipal:  createUser(t, gdb, "municipal", models.RoleMunicipal),
		repair:     createUser(t, gdb, "repair", models.RoleRepairTeam),
		admin:      createUser(t, gdb, "admin", models.RoleAdmin),
	}
}

func (f *fixture) submit(t *testing.T, title string) *models.Report {
	t.Helper()

	report, err := f.reports.Create(context.Background(), f.citizen.ID, ReportInput{
		Title:       title,
		Description: "Large hole in the left lane",
		Location:    "Main St & 3rd Ave",
	})
	if err != nil {
		t.Fatalf("failed to create report: %v", err)
	}
	return report
}

func (f *fixture) timeline(t *testing.T, reportID uint) []models.StatusUpdate {
	t.Helper()

	updates, err := f.reports.Timeline(context.Background(), reportID)
	if err != nil {
		t.Fatalf("failed to load timeline: %v", err)
	}
	return updates
}

func (f *fixture) reload(t *testing.T, reportID uint) *models.Report {
	t.Helper()

	var report models.Report
	if err := f.db.First(&report, reportID).Error; err != nil {
		t.Fatalf("failed to reload report: %v", err)
	}
	return &report
}

// interleaveReportWrite makes the next UPDATE on reports observe status as if another
// writer had committed it after the service read the row. The write runs on the
// service's own transaction, so a rollback discards it too.
func interleaveReportWrite(t *testing.T, gdb *gorm.DB, reportID uint, status models.ReportStatus) {
	t.Helper()

	fired := false
	err := gdb.Callback().Update().Before("gorm:update").Register("test:interleave_report", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "reports" {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE reports SET status = ? WHERE id = ?", status, reportID).Error; err != nil {
			t.Errorf("interleaved write failed: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}
}

func (f *fixture) countUpdates(t *testing.T, reportID uint) int64 {
	t.Helper()

	var count int64
	if err := f.db.Model(&models.StatusUpdate{}).Where("report_id = ?", reportID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count status updates: %v", err)
	}
	return count
}
