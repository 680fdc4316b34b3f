package audit

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/snipsnap/internal/database/audit"
	"github.com/mrlokans/snipsnap/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	dbPath := "./test_audit_service_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.AuditEvent{})
	require.NoError(t, err)
	require.NoError(t, db.Create(&entities.User{ID: 1, Email: "owner@x.com", PasswordHash: "hash"}).Error)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	})

	repo := auditRepo.NewRepository(db)
	svc := NewService(repo)

	return svc, db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventSnip,
		Action:      "snip_create",
		Description: "hello.go",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "snip_create", saved.Action)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful login", func(t *testing.T) {
		svc.LogAuth(1, "login", "10.0.0.1", "curl/8.0", true)
		svc.Flush()

		var event entities.AuditEvent
		err := db.Where("action = ? AND status = ?", "login", entities.AuditStatusSuccess).First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditEventAuth, event.EventType)
		assert.Equal(t, "10.0.0.1", event.IPAddress)
	})

	t.Run("failed login", func(t *testing.T) {
		svc.LogAuth(0, "login", "10.0.0.1", strings.Repeat("a", 600), false)
		svc.Flush()

		var event entities.AuditEvent
		err := db.Where("action = ? AND status = ?", "login", entities.AuditStatusFailed).First(&event).Error
		require.NoError(t, err)
		assert.Len(t, event.UserAgent, 500)
	})
}

func TestService_LogAccount(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAccount(3, "password_change", "Password changed", errors.New("wrong password"))
	svc.Flush()

	var event entities.AuditEvent
	err := db.Where("action = ?", "password_change").First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Contains(t, event.ErrorMsg, "wrong password")
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(3), *event.EntityID)
}

func TestService_LogSnipAndSharing(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.LogSnip(1, "delete", "snip", 42, "hello.go")
	svc.LogSharing(1, "contact_add", "bob@x.com", 2)
	svc.Flush()

	events, total, err := svc.GetEvents(1, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	actions := []string{events[0].Action, events[1].Action}
	assert.Contains(t, actions, "snip_delete")
	assert.Contains(t, actions, "contact_add")

	snipEvents, _, err := svc.GetEvents(1, entities.AuditEventSnip, 10, 0)
	require.NoError(t, err)
	require.Len(t, snipEvents, 1)
	assert.Equal(t, "snip", snipEvents[0].EntityType)
}

func TestService_Cleanup(t *testing.T) {
	svc, db := setupTestService(t)

	old := &entities.AuditEvent{UserID: 1, Action: "old", CreatedAt: time.Now().AddDate(0, 0, -40)}
	require.NoError(t, svc.Log(old))
	require.NoError(t, svc.Log(&entities.AuditEvent{UserID: 1, Action: "recent"}))
	// Written for an account that has since been deleted.
	require.NoError(t, svc.Log(&entities.AuditEvent{UserID: 99, Action: "snip_create"}))

	deleted, err := svc.Cleanup(30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining []entities.AuditEvent
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Action)
}
