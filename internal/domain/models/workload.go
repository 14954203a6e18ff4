package models

import "time"

// HorseHours is one horse's share of a bucket total.
type HorseHours struct {
	HorseID string  `json:"horseId" bson:"horse_id"`
	Name    string  `json:"name" bson:"name"`
	Hours   float64 `json:"hours" bson:"hours"`
}

// MonthlyWorkload is the carga horária of a single month.
type MonthlyWorkload struct {
	Month      string       `json:"month" bson:"month"`
	Total      float64      `json:"total" bson:"total"`
	Color      string       `json:"color" bson:"color"`
	Highlights []string     `json:"highlights" bson:"highlights"`
	PerHorse   []HorseHours `json:"perHorse" bson:"per_horse"`
}

// WorkloadPoint is one month on the annual chart x-axis.
type WorkloadPoint struct {
	Month      string   `json:"month"`
	Label      string   `json:"label"`
	Total      float64  `json:"total"`
	Color      string   `json:"color"`
	Highlights []string `json:"highlights"`
}

// AnnualWorkload always carries twelve points, January first.
type AnnualWorkload struct {
	Year   int             `json:"year"`
	Total  float64         `json:"total"`
	Points []WorkloadPoint `json:"points"`
}

// WorkloadSnapshot is the archived form of a closed month.
type WorkloadSnapshot struct {
	ID        string          `bson:"_id" json:"id"`
	Workload  MonthlyWorkload `bson:"workload" json:"workload"`
	Records   int             `bson:"records" json:"records"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}
