package requests

import "time"

type Request struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName,omitempty"`
	Type         string    `json:"requestType"`
	Date         time.Time `json:"date"`
	TimeStart    string    `json:"timeStart"`
	TimeEnd      string    `json:"timeEnd"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	AdminRemarks string    `json:"adminRemarks,omitempty"`
	FollowUpNote string    `json:"followUpNote,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type SubmitInput struct {
	EmployeeID string
	Type       string
	Date       time.Time
	TimeStart  string
	TimeEnd    string
	Reason     string
}

type Filter struct {
	Status     string
	EmployeeID string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

type StatusCounts struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
}
