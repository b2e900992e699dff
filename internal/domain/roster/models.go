package roster

import "time"

type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Mark struct {
	ProfileID string `json:"profileId"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

type AttendanceRow struct {
	ProfileID string `json:"profileId"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

type State struct {
	Profiles []Profile `json:"profiles"`
	Marks    []Mark    `json:"marks"`
}
