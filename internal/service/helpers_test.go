package service

import (
	"context"
	"sync"
	"testing"

	"drheal-be/internal/model"
	"drheal-be/internal/pkg/mailer"
	"drheal-be/internal/repository/unitofwork"
	"drheal-be/pkg/events"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newTestFactory(t *testing.T) (unitofwork.RepositoryFactory, *gorm.DB) {
	db := newTestDB(t)
	return unitofwork.NewRepositoryFactory(db), db
}

func seedUser(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()
	u := &model.User{Id: uuid.New(), Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u.Id
}

func loadHistory(t *testing.T, db *gorm.DB, userId uuid.UUID) []*model.MedicalHistory {
	t.Helper()
	var rows []*model.MedicalHistory
	require.NoError(t, db.Where("user_id = ?", userId).Find(&rows).Error)
	return rows
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.err
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingEvents) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingEvents) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type recordingMailer struct {
	mu     sync.Mutex
	to     []string
	alerts []mailer.EmergencyAlert
}

func (m *recordingMailer) SendEmergencyAlert(toEmail string, alert mailer.EmergencyAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, toEmail)
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

type recordingNotifier struct {
	mu     sync.Mutex
	users  []uuid.UUID
	alerts []interface{}
}

func (n *recordingNotifier) Notify(userId uuid.UUID, kind string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userId)
	n.alerts = append(n.alerts, data)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}
