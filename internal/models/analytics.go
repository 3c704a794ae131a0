package models

import "time"

// AnalyticsFilter bounds analytics by exam date (epoch seconds, inclusive).
type AnalyticsFilter struct {
	From   *int64
	To     *int64
	Status *DeckStatus
}

// DeckCounts is the per-status deck tally.
type DeckCounts struct {
	Pending  int `json:"PENDING"`
	PickedUp int `json:"PICKED_UP"`
	Dropped  int `json:"DROPPED"`
	Total    int `json:"total"`
}

// StatusCount is a raw grouped row.
type StatusCount struct {
	Status DeckStatus `db:"status_of_deck"`
	Count  int        `db:"count"`
}

// DashboardOverview headlines the admin dashboard.
type DashboardOverview struct {
	TotalDecks     int `json:"totalDecks"`
	TotalUsers     int `json:"totalUsers"`
	TotalSchools   int `json:"totalSchools"`
	CompletionRate int `json:"completionRate"`
	Pending        int `json:"pending"`
	PickedUp       int `json:"pickedUp"`
	Dropped        int `json:"dropped"`
}

// NameValue is a chart slice.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DeckActivity is one recent pickup or drop.
type DeckActivity struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Evaluator string    `json:"evaluator"`
	Course    string    `json:"course"`
	School    string    `json:"school"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardStats is the composed dashboard payload.
type DashboardStats struct {
	Overview           DashboardOverview `json:"overview"`
	StatusDistribution []NameValue       `json:"statusDistribution"`
	RecentActivity     []DeckActivity    `json:"recentActivity"`
}

// DailyTrend aggregates decks by exam day.
type DailyTrend struct {
	Date          string             `json:"date"`
	StatusCounts  map[DeckStatus]int `json:"statusCounts"`
	TotalStudents int                `json:"totalStudents"`
	TotalDecks    int                `json:"totalDecks"`
}

// DailyTrendRow is the grouped query row behind DailyTrend.
type DailyTrendRow struct {
	Day           string     `db:"day"`
	Status        DeckStatus `db:"status_of_deck"`
	Decks         int        `db:"decks"`
	TotalStudents int        `db:"total_students"`
}

// EvaluatorStat summarises one evaluator's workload.
type EvaluatorStat struct {
	EvaluatorID string  `db:"evaluator_id" json:"id"`
	FirstName   string  `db:"first_name" json:"-"`
	LastName    string  `db:"last_name" json:"-"`
	Name        string  `db:"-" json:"name"`
	Email       string  `db:"email" json:"email"`
	Total       int     `db:"total" json:"totalDecks"`
	Completed   int     `db:"completed" json:"completedDecks"`
	Pending     int     `db:"pending" json:"pendingDecks"`
	PickedUp    int     `db:"picked_up" json:"pickedUpDecks"`
	Efficiency  float64 `db:"-" json:"efficiency"`
}

// RecentActivityRow is the raw row behind DeckActivity.
type RecentActivityRow struct {
	ID              string     `db:"id"`
	Status          DeckStatus `db:"status_of_deck"`
	CourseCode      string     `db:"course_code"`
	CourseName      string     `db:"course_name"`
	School          string     `db:"school"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	PickUpTimestamp *int64     `db:"pick_up_timestamp"`
	DropTimestamp   *int64     `db:"drop_timestamp"`
}
