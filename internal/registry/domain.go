// Package registry manages the university catalog: record CRUD plus the
// filtered, paginated listing endpoint.
package registry

import (
	"time"

	"github.com/google/uuid"
)

// ContactInfo holds a record's contact block. The email doubles as the
// ingestion dedup key.
type ContactInfo struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// University represents a catalog record.
type University struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Country           string      `json:"country"`
	AlphaTwoCode      string      `json:"alpha_two_code"`
	Continent         string      `json:"continent"`
	StateProvince     *string     `json:"state_province"`
	Domains           []string    `json:"domains"`
	WebPages          []string    `json:"web_pages"`
	EstablishedYear   int         `json:"established_year"`
	StudentPopulation int         `json:"student_population"`
	ProgramsOffered   []string    `json:"programs_offered"`
	ContactInfo       ContactInfo `json:"contact_info"`
	Latitude          *float64    `json:"latitude"`
	Longitude         *float64    `json:"longitude"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
