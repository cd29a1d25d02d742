package services

import (
	"fmt"
	"log"
	"sync"
	"talent_flow_app_go/config"
	"time"
)

const (
	failureWindow    = 10 * time.Minute
	failureThreshold = 5
	alertCooldown    = 1 * time.Hour
	maxStoredAlerts  = 100
)

// SecurityEventMonitor watches failed logins per source IP and raises alerts
// when a burst crosses the threshold. State is in-memory; a restart starts
// counting fresh, which is acceptable for a brute-force tripwire.
type SecurityEventMonitor struct {
	mu        sync.Mutex
	failures  map[string][]time.Time
	lastAlert map[string]time.Time
	alerts    []SecurityAlert
}

// SecurityAlert is one raised alert, newest kept first.
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"`
}

// Monitor is the global monitor instance.
var Monitor *SecurityEventMonitor

func InitSecurityMonitor() {
	Monitor = &SecurityEventMonitor{
		failures:  make(map[string][]time.Time),
		lastAlert: make(map[string]time.Time),
		alerts:    make([]SecurityAlert, 0),
	}
	go Monitor.prune()
}

// TrackFailedLogin records one failed attempt for ip and raises an alert when
// the rolling window crosses the threshold.
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	attempts := append(m.failures[ip], now)

	// Timestamps are appended in order, so everything before the first
	// in-window entry can be cut in one slice.
	cutoff := now.Add(-failureWindow)
	start := 0
	for start < len(attempts) && !attempts[start].After(cutoff) {
		start++
	}
	attempts = attempts[start:]
	m.failures[ip] = attempts

	if len(attempts) >= failureThreshold {
		m.raiseAlert(ip, "Multiple failed logins detected")
	}
}

// raiseAlert records and notifies an alert. Callers must hold m.mu. Repeat
// alerts for the same IP are suppressed for the cooldown period.
func (m *SecurityEventMonitor) raiseAlert(ip, reason string) {
	if last, ok := m.lastAlert[ip]; ok && time.Since(last) < alertCooldown {
		return
	}
	m.lastAlert[ip] = time.Now()

	alert := SecurityAlert{
		Timestamp: time.Now(),
		IP:        ip,
		Reason:    reason,
		Level:     "CRITICAL",
	}

	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxStoredAlerts {
		m.alerts = m.alerts[:maxStoredAlerts]
	}

	log.Printf("[SECURITY ALERT] %s from IP: %s", reason, ip)

	cfg := config.Load()
	if cfg.AdminEmail != "" {
		SendEmailAsync(cfg, &Email{
			To:       []string{cfg.AdminEmail},
			Subject:  fmt.Sprintf("Security Alert: %s", reason),
			TextBody: fmt.Sprintf("System detected a security event:\n\nType: %s\nIP Address: %s\nTime: %s\n\nPlease investigate.", reason, ip, time.Now().Format(time.RFC1123)),
		})
	}
}

// GetRecentAlerts returns a snapshot of stored alerts, newest first.
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]SecurityAlert, len(m.alerts))
	copy(snapshot, m.alerts)
	return snapshot
}

// prune drops idle IPs hourly so the maps track only recent activity.
func (m *SecurityEventMonitor) prune() {
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for ip, attempts := range m.failures {
			if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failureWindow {
				delete(m.failures, ip)
			}
		}
		for ip, last := range m.lastAlert {
			if now.Sub(last) > alertCooldown {
				delete(m.lastAlert, ip)
			}
		}
		m.mu.Unlock()
	}
}
