package models

// DueStatus classifies a next-action date against today.
type DueStatus string

const (
	DueNone    DueStatus = "NONE"
	DueToday   DueStatus = "DUE_TODAY"
	DueSoon    DueStatus = "DUE_SOON"
	DueNotYet  DueStatus = "NOT_YET_DUE"
	DueOverdue DueStatus = "OVERDUE"
)

// ReminderRow is a treatment row annotated for highlighting.
type ReminderRow struct {
	ID             string        `json:"id"`
	Kind           TreatmentKind `json:"kind"`
	HorseID        string        `json:"horseId"`
	Horse          string        `json:"horse"`
	ProductName    string        `json:"productName"`
	Date           string        `json:"date"`
	DueDate        string        `json:"dueDate,omitempty"`
	Status         DueStatus     `json:"status"`
	NeedsAttention bool          `json:"needsAttention"`
	DaysUntil      *int          `json:"daysUntil,omitempty"`
}
