package importer

// JobImportRecord is the normalized job posting produced from one valid
// import row. It is the contract job creation depends on; everything past
// the importer consumes this shape, never raw CSV fields.
type JobImportRecord struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    JobLocation `json:"location"`

	// Category is only checked for non-emptiness at import time; enforcing
	// the closed category set is the job-creation layer's responsibility.
	Category string `json:"category"`

	PayRate           PayRate     `json:"payRate"`
	Schedule          JobSchedule `json:"schedule"`
	Requirements      []string    `json:"requirements"`
	Urgency           string      `json:"urgency"`
	WorkerCount       int         `json:"workerCount"`
	EstimatedDuration int         `json:"estimatedDuration"`
	ClientNotes       string      `json:"clientNotes,omitempty"`

	BackgroundCheckRequired bool `json:"backgroundCheckRequired"`
	EquipmentProvided       bool `json:"equipmentProvided"`
	ParkingAvailable        bool `json:"parkingAvailable"`
}

// JobLocation is the nested location of a job posting.
type JobLocation struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
}

// PayRate is the pay terms of a job posting. Imported jobs are always USD.
type PayRate struct {
	Type     string  `json:"type"` // "fixed" or "hourly"
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// JobSchedule is the nested schedule of a job posting. Imports never create
// recurring jobs.
type JobSchedule struct {
	StartDate string `json:"startDate"` // RFC 3339, UTC
	Recurring bool   `json:"recurring"`
}

// JobCategories is the closed category set used elsewhere in the system.
// The importer does not enforce it (see Category above); it is exported so
// downstream validation and UI pickers share one source of truth.
var JobCategories = []string{"cleaning", "maintenance", "security", "landscaping", "moving"}
