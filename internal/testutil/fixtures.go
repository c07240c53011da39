package testutil

import (
	"database/sql"
	"testing"
	"time"

	"hse-compliance/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Fixtures holds test data
type Fixtures struct {
	DB            *sql.DB
	AdminUser     *models.User
	ManagerUser   *models.User
	Questionnaire *models.Questionnaire
	Areas         []models.Area
	Questions     []models.Question
	Options       []models.Option
	Supplier      *models.Supplier
}

// SetupFixtures creates a published questionnaire tree, an active supplier and
// two users covering both roles
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	fixtures := &Fixtures{
		DB: db,
	}

	adminRole := getRole(t, db, "admin")
	managerRole := getRole(t, db, "hse_manager")

	fixtures.AdminUser = CreateUser(t, db, "admin@test.com", "Admin", "User", []uint{adminRole.ID, managerRole.ID})
	fixtures.ManagerUser = CreateUser(t, db, "manager@test.com", "HSE", "Manager", []uint{managerRole.ID})

	fixtures.Questionnaire = createQuestionnaire(t, db, fixtures.AdminUser.ID)
	fixtures.Areas = createAreas(t, db, fixtures.Questionnaire.ID)
	for _, area := range fixtures.Areas {
		questions := createQuestions(t, db, area.ID)
		fixtures.Questions = append(fixtures.Questions, questions...)
		for _, question := range questions {
			fixtures.Options = append(fixtures.Options, createOptions(t, db, question.ID)...)
		}
	}

	fixtures.Supplier = CreateSupplier(t, db, "Rossi Trasporti", "rossi@example.com")

	return fixtures
}

// getRole looks up one of the seeded roles
func getRole(t *testing.T, db *sql.DB, name string) *models.Role {
	t.Helper()

	var role models.Role
	err := db.QueryRow(
		"SELECT id, name, description, created_at FROM roles WHERE name = $1",
		name,
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to get role %s: %v", name, err)
	}

	return &role
}

// CreateUser creates a user with the given roles
func CreateUser(t *testing.T, db *sql.DB, email, firstName, lastName string, roleIDs []uint) *models.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var user models.User
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, email, first_name, last_name, is_active, created_at, updated_at
	`, email, string(hashedPassword), firstName, lastName).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}

	for _, roleID := range roleIDs {
		_, err := db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)", user.ID, roleID)
		if err != nil {
			t.Fatalf("Failed to assign role %d to user %s: %v", roleID, email, err)
		}
	}

	return &user
}

// createQuestionnaire creates a published questionnaire
func createQuestionnaire(t *testing.T, db *sql.DB, createdBy uint) *models.Questionnaire {
	t.Helper()

	var q models.Questionnaire
	err := db.QueryRow(`
		INSERT INTO questionnaires (title, description, status, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, status, created_at, updated_at
	`, "Valutazione HSE Fornitori", "Questionario di test", models.QuestionnairePublished, createdBy).Scan(
		&q.ID, &q.Title, &q.Status, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create questionnaire: %v", err)
	}

	return &q
}

// createAreas creates two weighted areas
func createAreas(t *testing.T, db *sql.DB, questionnaireID uint) []models.Area {
	t.Helper()

	areas := []models.Area{}
	areaData := []struct {
		title  string
		weight float64
	}{
		{"Sicurezza sul lavoro", 2.0},
		{"Gestione ambientale", 1.0},
	}

	for i, data := range areaData {
		var area models.Area
		err := db.QueryRow(`
			INSERT INTO areas (questionnaire_id, title, weight, sort_order)
			VALUES ($1, $2, $3, $4)
			RETURNING id, questionnaire_id, title, weight, sort_order, created_at, updated_at
		`, questionnaireID, data.title, data.weight, i+1).Scan(
			&area.ID, &area.QuestionnaireID, &area.Title, &area.Weight,
			&area.SortOrder, &area.CreatedAt, &area.UpdatedAt,
		)
		if err != nil {
			t.Fatalf("Failed to create area %s: %v", data.title, err)
		}

		areas = append(areas, area)
	}

	return areas
}

// createQuestions creates one required question per area
func createQuestions(t *testing.T, db *sql.DB, areaID uint) []models.Question {
	t.Helper()

	var question models.Question
	err := db.QueryRow(`
		INSERT INTO questions (area_id, text, required, sort_order)
		VALUES ($1, $2, true, 1)
		RETURNING id, area_id, text, required, sort_order, created_at, updated_at
	`, areaID, "Domanda di conformità").Scan(
		&question.ID, &question.AreaID, &question.Text, &question.Required,
		&question.SortOrder, &question.CreatedAt, &question.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create question: %v", err)
	}

	return []models.Question{question}
}

// createOptions creates a scorable option ladder plus an N/A option
func createOptions(t *testing.T, db *sql.DB, questionID uint) []models.Option {
	t.Helper()

	options := []models.Option{}
	optionData := []struct {
		text   string
		weight float64
		isNA   bool
	}{
		{"Conforme", 5, false},
		{"Parzialmente conforme", 3, false},
		{"Non conforme", 0, false},
		{"Non applicabile", 0, true},
	}

	for i, data := range optionData {
		var option models.Option
		err := db.QueryRow(`
			INSERT INTO options (question_id, text, weight, sort_order, is_na)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, question_id, text, weight, sort_order, is_na, created_at, updated_at
		`, questionID, data.text, data.weight, i+1, data.isNA).Scan(
			&option.ID, &option.QuestionID, &option.Text, &option.Weight,
			&option.SortOrder, &option.IsNA, &option.CreatedAt, &option.UpdatedAt,
		)
		if err != nil {
			t.Fatalf("Failed to create option %s: %v", data.text, err)
		}

		options = append(options, option)
	}

	return options
}

// CreateSupplier creates an active supplier
func CreateSupplier(t *testing.T, db *sql.DB, name, email string) *models.Supplier {
	t.Helper()

	var supplier models.Supplier
	err := db.QueryRow(`
		INSERT INTO suppliers (name, email, status)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, status, created_at, updated_at
	`, name, email, models.SupplierActive).Scan(
		&supplier.ID, &supplier.Name, &supplier.Email, &supplier.Status,
		&supplier.CreatedAt, &supplier.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create supplier %s: %v", name, err)
	}

	return &supplier
}

// CreateDocument creates a supplier document with the given expiry
func (f *Fixtures) CreateDocument(t *testing.T, supplierID uint, kind, title string, expiresAt time.Time) *models.SupplierDocument {
	t.Helper()

	var doc models.SupplierDocument
	err := f.DB.QueryRow(`
		INSERT INTO supplier_documents (supplier_id, kind, title, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, supplier_id, kind, title, expires_at, reminder_stage, created_at, updated_at
	`, supplierID, kind, title, expiresAt).Scan(
		&doc.ID, &doc.SupplierID, &doc.Kind, &doc.Title, &doc.ExpiresAt,
		&doc.ReminderStage, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create document %s: %v", title, err)
	}

	return &doc
}
