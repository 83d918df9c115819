package models

import (
	"encoding/json"
	"time"
)

// Identity is the user record carried by a session.
type Identity struct {
	ID        string `json:"id"`
	Sub       string `json:"sub,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Входные данные

type RequestCreate struct {
	ProjectType string  `json:"projectType"`
	ProjectArea *string `json:"projectArea"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

// RequestPatch carries a partial update. Nil fields are left unchanged.
type RequestPatch struct {
	Status       *string `json:"status"`
	ProjectType  *string `json:"projectType"`
	ProjectArea  *string `json:"projectArea"`
	Location     *string `json:"location"`
	Description  *string `json:"description"`
	PriceQuote   *int64  `json:"priceQuote"`
	AdminComment *string `json:"adminComment"`
	AuditorID    *string `json:"auditorId"`
}

type FileCreate struct {
	RequestID int    `json:"requestId"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Type      string `json:"type"`
}

// AuditInput is used both for creation and partial update.
type AuditInput struct {
	ChecklistData map[string]interface{} `json:"checklistData"`
	Conclusion    *string                `json:"conclusion"`
}

type ProfileInput struct {
	Role             string  `json:"role"`
	OrganizationName *string `json:"organizationName"`
	PhoneNumber      *string `json:"phoneNumber"`
	Address          *string `json:"address"`
}

type RegisterInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UploadRequest struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Представления для ответов API

type RequestView struct {
	ID           int       `json:"id"`
	UserID       string    `json:"userId"`
	AuditorID    *string   `json:"auditorId"`
	Status       string    `json:"status"`
	ProjectType  string    `json:"projectType"`
	ProjectArea  *string   `json:"projectArea"`
	Location     *string   `json:"location"`
	Description  *string   `json:"description"`
	PriceQuote   *int64    `json:"priceQuote"`
	AdminComment *string   `json:"adminComment"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	User    *UserSummary    `json:"user,omitempty"`
	Auditor *AuditorSummary `json:"auditor,omitempty"`
	Files   []FileSummary   `json:"files,omitempty"`
	Audit   *AuditSummary   `json:"audit,omitempty"`
}

type UserSummary struct {
	ID               string  `json:"id"`
	Email            *string `json:"email"`
	FirstName        *string `json:"firstName"`
	LastName         *string `json:"lastName"`
	OrganizationName *string `json:"organizationName"`
}

type AuditorSummary struct {
	ID        string  `json:"id"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type FileSummary struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuditSummary struct {
	ID            int             `json:"id"`
	ChecklistData json.RawMessage `json:"checklistData"`
	Conclusion    *string         `json:"conclusion"`
	SubmittedAt   time.Time       `json:"submittedAt"`
}

type FileView struct {
	ID        int       `json:"id"`
	RequestID int       `json:"requestId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuditView struct {
	ID            int             `json:"id"`
	RequestID     int             `json:"requestId"`
	AuditorID     string          `json:"auditorId"`
	ChecklistData json.RawMessage `json:"checklistData"`
	Conclusion    *string         `json:"conclusion"`
	SubmittedAt   time.Time       `json:"submittedAt"`
}

type ProfileView struct {
	ID               int     `json:"id"`
	UserID           string  `json:"userId"`
	Role             string  `json:"role"`
	OrganizationName *string `json:"organizationName"`
	PhoneNumber      *string `json:"phoneNumber"`
	Address          *string `json:"address"`
	Email            *string `json:"email,omitempty"`
	FirstName        *string `json:"firstName,omitempty"`
	LastName         *string `json:"lastName,omitempty"`
}

// FixtureUser is a hard-coded account available for test login.
type FixtureUser struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Role             string  `json:"role"`
	OrganizationName *string `json:"organizationName"`
}
