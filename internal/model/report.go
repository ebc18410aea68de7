package model

import "time"

// DashboardStats mirrors the office overview cards.
type DashboardStats struct {
	AsOf            time.Time `json:"as_of"`
	TotalClients    int64     `json:"total_clients"`
	ActiveContracts int64     `json:"active_contracts"`
	TodaysVisits    int       `json:"todays_visits"`
	MissedVisits    int       `json:"missed_visits"`
	Completed       int       `json:"completed"`
	Pending         int       `json:"pending"`
	Canceled        int       `json:"canceled"`
}

// DaySchedule is one calendar cell.
type DaySchedule struct {
	Date   time.Time     `json:"date"`
	Visits []VisitRecord `json:"visits"`
}

// VisitRecord is a visit enriched for display, carrying the derived status.
type VisitRecord struct {
	Visit
	Number          string      `json:"visit_number"`
	EffectiveStatus VisitStatus `json:"effective_status"`
	ClientName      string      `json:"client_name,omitempty"`
	TechnicianName  string      `json:"technician_name,omitempty"`
}

// MonthSchedule is the calendar export payload.
type MonthSchedule struct {
	Month time.Time     `json:"month"`
	Days  []DaySchedule `json:"days"`
}

// VisitDocument is everything the completion report renders.
type VisitDocument struct {
	Visit      Visit
	Contract   Contract
	Client     Client
	Technician *Technician
}

// TechnicianFeed is the content of a technician's calendar subscription.
type TechnicianFeed struct {
	Technician  Technician
	GeneratedAt time.Time
	Visits      []VisitRecord
}
