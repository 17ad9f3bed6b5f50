package rostersync

import "github.com/shopspring/decimal"

const (
	customSSS        = "sss-number"
	customPhilHealth = "philhealth-number"
	customPagIBIG    = "pagibig-number"
)

// RemoteEmployee is one row of the directory's /employees listing.
type RemoteEmployee struct {
	Code       string         `json:"code"`
	FullName   string         `json:"full_name"`
	Email      string         `json:"email"`
	Department string         `json:"department"`
	Position   string         `json:"position"`
	CustomData map[string]any `json:"custom_data"`
}

type LeaveBalance struct {
	Employee struct {
		Code string `json:"code"`
	} `json:"employee"`
	Balance decimal.Decimal `json:"balance"`
}

type LocalEmployee struct {
	ID   string
	Code string
	Name string
}

type Matched struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Updated []string `json:"updated"`
}

type Unmatched struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Failure struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type Summary struct {
	TotalRemote  int `json:"totalInDirectory"`
	TotalLocal   int `json:"totalInLocalDB"`
	Matched      int `json:"matched"`
	Updated      int `json:"updated"`
	UnmatchedRem int `json:"unmatchedInDirectory"`
	NotInRemote  int `json:"notInDirectory"`
	Errors       int `json:"errors"`
}

type Details struct {
	Matched     []Matched   `json:"matched"`
	Unmatched   []Unmatched `json:"unmatchedInDirectory"`
	NotInRemote []Unmatched `json:"notInDirectory"`
	Errors      []Failure   `json:"errors"`
}

type Result struct {
	Summary Summary `json:"summary"`
	Details Details `json:"details"`
}
