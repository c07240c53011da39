package repository_test

import (
	"testing"
	"time"

	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/internal/testutil"
)

func TestRecordReminderClaimsEachStageOnce(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	documentRepo := repository.NewDocumentRepository(containers.DB)

	doc := fixtures.CreateDocument(t, fixtures.Supplier.ID, models.DocumentCertification,
		"Certificazione ISO 45001", time.Now().AddDate(0, 0, 20))

	now := time.Now()

	claimed, err := documentRepo.RecordReminder(doc.ID, 1, now)
	if err != nil {
		t.Fatalf("RecordReminder failed: %v", err)
	}
	if !claimed {
		t.Fatal("First claim of stage 1 should succeed")
	}

	// Same stage again, as a second overlapping scan would attempt
	claimed, err = documentRepo.RecordReminder(doc.ID, 1, now)
	if err != nil {
		t.Fatalf("RecordReminder failed: %v", err)
	}
	if claimed {
		t.Error("Stage 1 was claimed twice")
	}

	// A lower stage must never be claimed after a higher one
	claimed, err = documentRepo.RecordReminder(doc.ID, 0, now)
	if err != nil {
		t.Fatalf("RecordReminder failed: %v", err)
	}
	if claimed {
		t.Error("Stage went backwards")
	}

	// Advancing to the next stage still works
	claimed, err = documentRepo.RecordReminder(doc.ID, 2, now)
	if err != nil {
		t.Fatalf("RecordReminder failed: %v", err)
	}
	if !claimed {
		t.Error("Advancing to stage 2 should succeed")
	}
}

func TestUpdateExpiryResetsReminderCycle(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	documentRepo := repository.NewDocumentRepository(containers.DB)

	doc := fixtures.CreateDocument(t, fixtures.Supplier.ID, models.DocumentTraining,
		"Corso antincendio", time.Now().AddDate(0, 0, 5))

	if _, err := documentRepo.RecordReminder(doc.ID, 3, time.Now()); err != nil {
		t.Fatalf("RecordReminder failed: %v", err)
	}

	newExpiry := time.Now().AddDate(1, 0, 0)
	if err := documentRepo.UpdateExpiry(doc.ID, newExpiry); err != nil {
		t.Fatalf("UpdateExpiry failed: %v", err)
	}

	renewed, err := documentRepo.GetByID(doc.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if renewed.ReminderStage != 0 {
		t.Errorf("ReminderStage = %d after renewal, want 0", renewed.ReminderStage)
	}
	if renewed.LastReminderAt != nil {
		t.Error("LastReminderAt should be cleared after renewal")
	}
}

func TestListExpiringBefore(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	documentRepo := repository.NewDocumentRepository(containers.DB)

	fixtures.CreateDocument(t, fixtures.Supplier.ID, models.DocumentCertification,
		"Scade presto", time.Now().AddDate(0, 0, 10))
	fixtures.CreateDocument(t, fixtures.Supplier.ID, models.DocumentVehicleInspection,
		"Scade tra un anno", time.Now().AddDate(1, 0, 0))

	docs, err := documentRepo.ListExpiringBefore(time.Now().AddDate(0, 0, 31))
	if err != nil {
		t.Fatalf("ListExpiringBefore failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Got %d documents, want 1", len(docs))
	}
	if docs[0].Title != "Scade presto" {
		t.Errorf("Wrong document returned: %s", docs[0].Title)
	}
}
