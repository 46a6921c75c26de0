package importer

import "github.com/fixerhq/job-import/internal/csvio"

// TemplateColumns is the canonical column order for the downloadable
// import template and for exported error reports.
var TemplateColumns = []string{
	colTitle,
	colDescription,
	colCategory,
	colAddress,
	colCity,
	colState,
	colZipCode,
	colLatitude,
	colLongitude,
	colPayAmount,
	colPayType,
	colEstimatedDuration,
	colRequirements,
	colUrgency,
	colWorkerCount,
	colBackgroundCheck,
	colEquipment,
	colScheduledStart,
	colClientNotes,
}

// sampleRows are the example rows shipped with the template so clients can
// see one hourly and one fixed-price job filled in end to end.
var sampleRows = []map[string]string{
	{
		colTitle:             "Office Cleaning",
		colDescription:       "Deep clean of 2-floor office space including windows",
		colCategory:          "cleaning",
		colAddress:           "123 Main St",
		colCity:              "Springfield",
		colState:             "IL",
		colZipCode:           "62701",
		colLatitude:          "39.7817",
		colLongitude:         "-89.6501",
		colPayAmount:         "25.00",
		colPayType:           "hourly",
		colEstimatedDuration: "240",
		colRequirements:      "cleaning supplies;references",
		colUrgency:           "medium",
		colWorkerCount:       "2",
		colBackgroundCheck:   "false",
		colEquipment:         "true",
		colScheduledStart:    "2024-01-15T09:00:00Z",
		colClientNotes:       "Park in the rear lot",
	},
	{
		colTitle:             "Backyard Landscaping",
		colDescription:       "Trim hedges, mow lawn, and clear leaves from gutters",
		colCategory:          "landscaping",
		colAddress:           "456 Oak Ave",
		colCity:              "Springfield",
		colState:             "IL",
		colZipCode:           "62704",
		colLatitude:          "39.7725",
		colLongitude:         "-89.6889",
		colPayAmount:         "180.00",
		colPayType:           "fixed",
		colEstimatedDuration: "180",
		colRequirements:      "own tools",
		colUrgency:           "low",
		colWorkerCount:       "1",
		colBackgroundCheck:   "false",
		colEquipment:         "false",
		colScheduledStart:    "2024-01-20",
		colClientNotes:       "",
	},
}

// TemplateCSV renders the import template with headers and sample rows.
func TemplateCSV() string {
	return csvio.Generate(sampleRows, csvio.GenerateOptions{Headers: TemplateColumns})
}
