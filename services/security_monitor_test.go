package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityMonitor(t *testing.T) {
	InitSecurityMonitor()
	ip := "127.0.0.1"

	t.Run("Below the threshold no alert fires", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			Monitor.TrackFailedLogin(ip)
		}
		assert.Empty(t, Monitor.GetRecentAlerts())
	})

	t.Run("Fifth failure within the window triggers an alert", func(t *testing.T) {
		Monitor.TrackFailedLogin(ip)

		alerts := Monitor.GetRecentAlerts()
		assert.NotEmpty(t, alerts)
		assert.Equal(t, ip, alerts[0].IP)
		assert.Equal(t, "CRITICAL", alerts[0].Level)
		assert.Contains(t, alerts[0].Reason, "Multiple failed logins")
	})

	t.Run("Repeat alerts for the same IP are rate limited", func(t *testing.T) {
		initialAlertCount := len(Monitor.GetRecentAlerts())

		for i := 0; i < 5; i++ {
			Monitor.TrackFailedLogin(ip)
		}

		assert.Equal(t, initialAlertCount, len(Monitor.GetRecentAlerts()))
	})

	t.Run("Different IPs alert independently", func(t *testing.T) {
		other := "10.1.2.3"
		for i := 0; i < 5; i++ {
			Monitor.TrackFailedLogin(other)
		}

		alerts := Monitor.GetRecentAlerts()
		assert.Len(t, alerts, 2)
		assert.Equal(t, other, alerts[0].IP) // newest first
	})

	t.Run("GetRecentAlerts returns a copy", func(t *testing.T) {
		alerts := Monitor.GetRecentAlerts()
		alerts[0].IP = "tampered"

		fresh := Monitor.GetRecentAlerts()
		assert.NotEqual(t, "tampered", fresh[0].IP)
	})
}
