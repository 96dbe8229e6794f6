package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewJob(t *testing.T) {
	// Setup
	userID := uuid.New()

	// Execute
	job := domain.NewJob(userID)

	// Assert
	assert.Equal(t, domain.JobTypeDailyAutomation, job.JobType)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Zero(t, job.Progress)
	assert.Equal(t, userID, job.Payload.UserID)
	assert.False(t, job.Terminal())
}

func TestJob_Terminal(t *testing.T) {
	tests := []struct {
		status domain.JobStatus
		want   bool
	}{
		{domain.JobStatusPending, false},
		{domain.JobStatusRunning, false},
		{domain.JobStatusCompleted, true},
		{domain.JobStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			job := &domain.Job{Status: tt.status}
			assert.Equal(t, tt.want, job.Terminal())
		})
	}
}

func TestNewSiteReport(t *testing.T) {
	// Setup
	conn := &domain.Connection{
		ID:       uuid.New(),
		Platform: domain.PlatformShopify,
		Domain:   "store.example.com",
		Status:   domain.ConnectionStatusConnected,
	}

	// Execute
	report := domain.NewSiteReport(conn)

	// Assert: 新規レポートは完全アクセスから始まり、機能セットを引き継ぐ
	assert.Equal(t, conn.ID, report.ConnectionID)
	assert.Equal(t, domain.AccessLevelFull, report.AccessLevel)
	assert.Equal(t, domain.CapabilitiesFor(domain.PlatformShopify), report.Capabilities)
	assert.Empty(t, report.Errors)
}

func TestSiteImage_MissingAlt(t *testing.T) {
	assert.True(t, domain.SiteImage{URL: "https://example.com/a.jpg"}.MissingAlt())
	assert.False(t, domain.SiteImage{URL: "https://example.com/b.jpg", AltText: "Product"}.MissingAlt())
}

func TestAutomationSnapshot_Expired(t *testing.T) {
	now := time.Now()
	snapshot := &domain.AutomationSnapshot{
		CanRollback:    true,
		RollbackExpiry: now.Add(24 * time.Hour),
	}

	assert.False(t, snapshot.Expired(now))
	assert.True(t, snapshot.Expired(now.Add(25*time.Hour)))

	// ロールバック不可のスナップショットは期限に関わらず失効扱い
	snapshot.CanRollback = false
	assert.True(t, snapshot.Expired(now))
}
