package models

import (
	"time"
)

// User represents an administrative user of the compliance portal
type User struct {
	ID           uint       `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Role represents a user role
type Role struct {
	ID          uint      `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UserWithRoles extends User with roles information
type UserWithRoles struct {
	User
	Roles []Role `json:"roles"`
}

// Session represents an authenticated session
type Session struct {
	ID             string    `json:"id" db:"id"`
	UserID         uint      `json:"user_id" db:"user_id"`
	JTI            string    `json:"jti" db:"jti"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      string    `json:"user_agent,omitempty" db:"user_agent"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    *uint     `json:"user_id,omitempty" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Questionnaire statuses
const (
	QuestionnaireDraft     = "draft"
	QuestionnairePublished = "published"
)

// Questionnaire represents an HSE compliance questionnaire
type Questionnaire struct {
	ID          uint      `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Status      string    `json:"status" db:"status"` // draft, published
	CreatedBy   *uint     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Area represents a thematic grouping of questions carrying its own weight
type Area struct {
	ID              uint      `json:"id" db:"id"`
	QuestionnaireID uint      `json:"questionnaire_id" db:"questionnaire_id"`
	Title           string    `json:"title" db:"title"`
	Weight          float64   `json:"weight" db:"weight"`
	SortOrder       int       `json:"sort_order" db:"sort_order"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Question represents a single question within an area
type Question struct {
	ID        uint      `json:"id" db:"id"`
	AreaID    uint      `json:"area_id" db:"area_id"`
	Text      string    `json:"text" db:"text"`
	Required  bool      `json:"required" db:"required"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Option represents an answer choice. IsNA marks a "not applicable" choice
// that is excluded from both the score numerator and denominator; its stored
// weight is kept only as a reference value and never contributes to a score.
type Option struct {
	ID         uint      `json:"id" db:"id"`
	QuestionID uint      `json:"question_id" db:"question_id"`
	Text       string    `json:"text" db:"text"`
	Weight     float64   `json:"weight" db:"weight"`
	SortOrder  int       `json:"sort_order" db:"sort_order"`
	IsNA       bool      `json:"is_na" db:"is_na"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// QuestionnaireWithDetails extends Questionnaire with the nested tree
type QuestionnaireWithDetails struct {
	Questionnaire
	Areas []AreaWithQuestions `json:"areas,omitempty"`
}

// AreaWithQuestions extends Area with its questions
type AreaWithQuestions struct {
	Area
	Questions []QuestionWithOptions `json:"questions,omitempty"`
}

// QuestionWithOptions extends Question with its options
type QuestionWithOptions struct {
	Question
	Options []Option `json:"options,omitempty"`
}

// Supplier statuses
const (
	SupplierActive    = "active"
	SupplierSuspended = "suspended"
)

// Supplier represents an evaluated supplier company
type Supplier struct {
	ID          uint       `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Status      string     `json:"status" db:"status"` // active, suspended
	SuspendedAt *time.Time `json:"suspended_at,omitempty" db:"suspended_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Supplier document kinds
const (
	DocumentCertification     = "certification"
	DocumentTraining          = "training"
	DocumentVehicleInspection = "vehicle_inspection"
)

// SupplierDocument represents an expiring compliance document
// (certification, training record, vehicle inspection). ReminderStage records
// the last reminder tier sent so the expiry scan never re-sends a stage.
type SupplierDocument struct {
	ID             uint       `json:"id" db:"id"`
	SupplierID     uint       `json:"supplier_id" db:"supplier_id"`
	Kind           string     `json:"kind" db:"kind"`
	Title          string     `json:"title" db:"title"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	ReminderStage  int        `json:"reminder_stage" db:"reminder_stage"`
	LastReminderAt *time.Time `json:"last_reminder_at,omitempty" db:"last_reminder_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Assignment statuses
const (
	AssignmentPending   = "pending"
	AssignmentCompleted = "completed"
	AssignmentExpired   = "expired"
)

// Assignment represents one dispatch of a questionnaire to one inspector
// evaluating one supplier. The token is the sole credential for the public
// intake flow. StructureSnapshot freezes the questionnaire tree at dispatch
// time so later edits never alter historical scores.
type Assignment struct {
	ID                uint       `json:"id" db:"id"`
	QuestionnaireID   uint       `json:"questionnaire_id" db:"questionnaire_id"`
	SupplierID        uint       `json:"supplier_id" db:"supplier_id"`
	InspectorEmail    string     `json:"inspector_email" db:"inspector_email"`
	CreatedBy         *uint      `json:"created_by,omitempty" db:"created_by"`
	Status            string     `json:"status" db:"status"` // pending, completed, expired
	Token             string     `json:"-" db:"token"`
	StructureSnapshot []byte     `json:"-" db:"structure_snapshot"`
	SentAt            time.Time  `json:"sent_at" db:"sent_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// AssignmentWithDetails includes questionnaire and supplier information
type AssignmentWithDetails struct {
	Assignment
	QuestionnaireTitle string   `json:"questionnaire_title,omitempty"`
	SupplierName       string   `json:"supplier_name,omitempty"`
	FinalScore         *float64 `json:"final_score,omitempty"`
	Rating             string   `json:"rating,omitempty"`
}

// Response represents an inspector's answer to one question.
// ComputedScore is the selected option's weight frozen at answer time; it is
// never re-derived from the live option except through the admin edit flow.
type Response struct {
	ID            uint      `json:"id" db:"id"`
	AssignmentID  uint      `json:"assignment_id" db:"assignment_id"`
	QuestionID    uint      `json:"question_id" db:"question_id"`
	OptionID      uint      `json:"option_id" db:"option_id"`
	ComputedScore float64   `json:"computed_score" db:"computed_score"`
	AnsweredAt    time.Time `json:"answered_at" db:"answered_at"`
}

// ScoreRecord is the materialized final score for a completed assignment
type ScoreRecord struct {
	AssignmentID uint      `json:"assignment_id" db:"assignment_id"`
	FinalScore   float64   `json:"final_score" db:"final_score"`
	Rating       string    `json:"rating" db:"rating"`
	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
}
