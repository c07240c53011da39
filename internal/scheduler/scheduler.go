package scheduler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"hse-compliance/internal/config"
	"hse-compliance/internal/email"
	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
)

// Reminder stages for expiring documents. A stage is sent at most once per
// document; updating the expiry date resets the stage.
const (
	StageNone    = 0
	Stage30Days  = 1
	Stage15Days  = 2
	Stage7Days   = 3
	StageExpired = 4
)

// Scheduler handles periodic tasks
type Scheduler struct {
	documentRepo *repository.DocumentRepository
	supplierRepo *repository.SupplierRepository
	userRepo     *repository.UserRepository
	emailService *email.Service
	config       *config.SchedulerConfig
	stopChan     chan bool
}

// NewScheduler creates a new scheduler
func NewScheduler(
	documentRepo *repository.DocumentRepository,
	supplierRepo *repository.SupplierRepository,
	userRepo *repository.UserRepository,
	emailService *email.Service,
	cfg *config.SchedulerConfig,
) *Scheduler {
	return &Scheduler{
		documentRepo: documentRepo,
		supplierRepo: supplierRepo,
		userRepo:     userRepo,
		emailService: emailService,
		config:       cfg,
		stopChan:     make(chan bool),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler",
		"expiry_scan_enabled", s.config.EnableExpiryScan,
		"suspensions_enabled", s.config.EnableSuspensions)

	if s.config.EnableExpiryScan {
		if err := s.startCronTask(s.config.ExpiryScanCron, "document_expiry_scan", s.RunExpiryScan); err != nil {
			slog.Error("Failed to start document expiry scan", "error", err)
		}
	}

	slog.Info("Scheduler started")
}

// startCronTask parses a cron expression and starts the task
// Supports simple cron format: "minute hour day month weekday"
// Examples: "0 7 * * *" = Daily 7 AM, "0 9 * * 1" = Monday 9 AM, "*/5 * * * *" = Every 5 minutes
func (s *Scheduler) startCronTask(cronExpr, taskName string, task func()) error {
	parts := strings.Fields(cronExpr)
	if len(parts) != 5 {
		return fmt.Errorf("invalid cron expression: %s (expected 5 fields)", cronExpr)
	}

	// Parse minute field (supports */n for intervals)
	if strings.HasPrefix(parts[0], "*/") {
		interval, err := strconv.Atoi(parts[0][2:])
		if err != nil || interval < 1 || interval > 59 {
			return fmt.Errorf("invalid minute interval in cron: %s", parts[0])
		}
		go s.scheduleIntervalTask(time.Duration(interval)*time.Minute, taskName, task)
		return nil
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute in cron: %s", parts[0])
	}

	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour in cron: %s", parts[1])
	}

	if parts[4] == "*" {
		go s.scheduleDailyTask(hour, minute, taskName, task)
	} else {
		weekday, err := strconv.Atoi(parts[4])
		if err != nil || weekday < 0 || weekday > 6 {
			return fmt.Errorf("invalid weekday in cron: %s (0-6, 0=Sunday)", parts[4])
		}
		go s.scheduleWeeklyTask(time.Weekday(weekday), hour, minute, taskName, task)
	}

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
}

// scheduleIntervalTask runs a task at regular intervals
func (s *Scheduler) scheduleIntervalTask(interval time.Duration, taskName string, task func()) {
	slog.Info("Starting interval task", "task", taskName, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	slog.Info("Running interval task", "task", taskName)
	task()

	for {
		select {
		case <-ticker.C:
			slog.Info("Running interval task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// scheduleDailyTask runs a task daily at a specific time
func (s *Scheduler) scheduleDailyTask(hour, minute int, taskName string, task func()) {
	for {
		now := time.Now()
		next := s.nextDailyRun(now, hour, minute)
		duration := next.Sub(now)

		slog.Info("Next daily task scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		select {
		case <-time.After(duration):
			slog.Info("Running daily task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// scheduleWeeklyTask runs a task weekly on a specific weekday and time
func (s *Scheduler) scheduleWeeklyTask(weekday time.Weekday, hour, minute int, taskName string, task func()) {
	for {
		now := time.Now()
		next := s.nextWeekday(now, weekday, hour, minute)
		duration := next.Sub(now)

		slog.Info("Next weekly task scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		select {
		case <-time.After(duration):
			slog.Info("Running weekly task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// nextDailyRun calculates the next daily run time
func (s *Scheduler) nextDailyRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	// If the time has already passed today, schedule for tomorrow
	if next.Before(from) || next.Equal(from) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// nextWeekday calculates the next occurrence of a specific weekday and time
func (s *Scheduler) nextWeekday(from time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	daysUntil := int(weekday - from.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}

	next = next.AddDate(0, 0, daysUntil)

	if next.Before(from) || next.Equal(from) {
		next = next.AddDate(0, 0, 7)
	}

	return next
}

// DueStage returns the reminder stage a document has reached at the given
// time, based on days until expiry. StageNone means no reminder is due yet.
func DueStage(expiresAt, now time.Time) int {
	daysLeft := DaysUntil(expiresAt, now)
	switch {
	case daysLeft <= 0:
		return StageExpired
	case daysLeft <= 7:
		return Stage7Days
	case daysLeft <= 15:
		return Stage15Days
	case daysLeft <= 30:
		return Stage30Days
	default:
		return StageNone
	}
}

// DaysUntil returns whole calendar days from now until the expiry date.
// Negative when the document is already expired.
func DaysUntil(expiresAt, now time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	expiryDay := time.Date(expiresAt.Year(), expiresAt.Month(), expiresAt.Day(), 0, 0, 0, 0, now.Location())
	return int(expiryDay.Sub(nowDay).Hours() / 24)
}

// RunExpiryScan scans supplier documents approaching or past expiry, sends
// the staged reminders and suspends suppliers whose documents stayed expired
// beyond the grace period. Exposed for manual triggering from the admin API.
func (s *Scheduler) RunExpiryScan() {
	s.runExpiryScanAt(time.Now())
}

func (s *Scheduler) runExpiryScanAt(now time.Time) {
	slog.Info("Starting document expiry scan")

	cutoff := now.AddDate(0, 0, 31)
	documents, err := s.documentRepo.ListExpiringBefore(cutoff)
	if err != nil {
		slog.Error("Failed to list expiring documents", "error", err)
		return
	}

	remindersSent := 0
	expiredBySupplier := make(map[uint][]models.SupplierDocument)

	for _, doc := range documents {
		daysLeft := DaysUntil(doc.ExpiresAt, now)

		if daysLeft <= -s.config.SuspensionGrace {
			expiredBySupplier[doc.SupplierID] = append(expiredBySupplier[doc.SupplierID], doc)
		}

		stage := DueStage(doc.ExpiresAt, now)
		if stage <= doc.ReminderStage {
			continue
		}

		supplier, err := s.supplierRepo.GetByID(doc.SupplierID)
		if err != nil || supplier == nil {
			slog.Error("Failed to get supplier for document", "document_id", doc.ID, "supplier_id", doc.SupplierID, "error", err)
			continue
		}

		// Claim the stage before sending so concurrent scans cannot
		// double-send. A lost email for a claimed stage is acceptable.
		claimed, err := s.documentRepo.RecordReminder(doc.ID, stage, now)
		if err != nil {
			slog.Error("Failed to record reminder stage", "document_id", doc.ID, "stage", stage, "error", err)
			continue
		}
		if !claimed {
			continue
		}

		if daysLeft < 0 {
			daysLeft = 0
		}
		err = s.emailService.SendExpiryReminder(supplier.Email, supplier.Name, doc.Title, doc.ExpiresAt, daysLeft)
		if err != nil {
			slog.Error("Failed to send expiry reminder",
				"document_id", doc.ID,
				"supplier_email", supplier.Email,
				"error", err,
			)
			continue
		}

		remindersSent++
		slog.Info("Expiry reminder sent",
			"document_id", doc.ID,
			"supplier_id", doc.SupplierID,
			"stage", stage,
			"days_left", daysLeft,
		)
	}

	suspended := 0
	if s.config.EnableSuspensions {
		suspended = s.suspendOverdueSuppliers(expiredBySupplier, now)
	}

	slog.Info("Document expiry scan completed",
		"documents_checked", len(documents),
		"reminders_sent", remindersSent,
		"suppliers_suspended", suspended,
	)
}

// suspendOverdueSuppliers suspends each supplier with documents expired past
// the grace period and notifies the supplier and the admins
func (s *Scheduler) suspendOverdueSuppliers(expiredBySupplier map[uint][]models.SupplierDocument, now time.Time) int {
	suspended := 0

	for supplierID, docs := range expiredBySupplier {
		supplier, err := s.supplierRepo.GetByID(supplierID)
		if err != nil || supplier == nil {
			slog.Error("Failed to get supplier for suspension", "supplier_id", supplierID, "error", err)
			continue
		}
		if supplier.Status != models.SupplierActive {
			continue
		}

		// Conditional update keeps the suspension idempotent across scans
		applied, err := s.supplierRepo.Suspend(supplierID, now)
		if err != nil {
			slog.Error("Failed to suspend supplier", "supplier_id", supplierID, "error", err)
			continue
		}
		if !applied {
			continue
		}

		suspended++
		docTitles := make([]string, 0, len(docs))
		for _, doc := range docs {
			docTitles = append(docTitles, doc.Title)
		}

		slog.Warn("Supplier suspended for expired documentation",
			"supplier_id", supplierID,
			"supplier_name", supplier.Name,
			"expired_documents", len(docTitles),
		)

		if err := s.emailService.SendSuspensionNotice(supplier.Email, supplier.Name, docTitles); err != nil {
			slog.Error("Failed to send suspension notice", "supplier_email", supplier.Email, "error", err)
		}

		s.alertAdmins(supplier.Name, docTitles, now)
	}

	return suspended
}

// alertAdmins sends a suspension alert to all admin users
func (s *Scheduler) alertAdmins(supplierName string, docTitles []string, now time.Time) {
	admins, err := s.userRepo.GetUsersByRoleName("admin")
	if err != nil {
		slog.Error("Failed to get admin users for suspension alert", "error", err)
		return
	}

	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}

		if err := s.emailService.SendSuspensionAlert(admin.Email, admin.FirstName, supplierName, docTitles, now); err != nil {
			slog.Error("Failed to send suspension alert", "admin_email", admin.Email, "error", err)
			continue
		}

		slog.Info("Suspension alert sent", "admin_email", admin.Email)
	}
}
