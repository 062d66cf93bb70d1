package models

import (
	"time"
)

// Employee is one person in the organizational directory
type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	JobTitle   string    `json:"job_title"`
	Department string    `json:"department,omitempty"`
	ManagerID  string    `json:"manager_id,omitempty"`
	Location   string    `json:"location,omitempty"`
	StartDate  time.Time `json:"start_date,omitempty"`
}
