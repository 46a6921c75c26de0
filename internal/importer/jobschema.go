package importer

import "time"

// Column names recognized by the job import schema, in template order.
const (
	colTitle             = "title"
	colDescription       = "description"
	colCategory          = "category"
	colAddress           = "address"
	colCity              = "city"
	colState             = "state"
	colZipCode           = "zipCode"
	colLatitude          = "latitude"
	colLongitude         = "longitude"
	colPayAmount         = "payAmount"
	colPayType           = "payType"
	colEstimatedDuration = "estimatedDuration"
	colRequirements      = "requirements"
	colUrgency           = "urgency"
	colWorkerCount       = "workerCount"
	colBackgroundCheck   = "backgroundCheckRequired"
	colEquipment         = "equipmentProvided"
	colScheduledStart    = "scheduledStart"
	colClientNotes       = "clientNotes"
)

// jobRules is the declarative schema for one import row. Order matters only
// for error readability; every failing field reports independently.
var jobRules = []Rule{
	{Field: colTitle, Kind: RuleText, Required: true},
	{Field: colDescription, Kind: RuleText, Required: true},
	{Field: colCategory, Kind: RuleText, Required: true},
	{Field: colAddress, Kind: RuleText, Required: true},
	{Field: colCity, Kind: RuleText, Required: true},
	{Field: colState, Kind: RuleText, Required: true},
	{Field: colZipCode, Kind: RuleText, Required: true},
	{Field: colLatitude, Kind: RuleFloat, Required: true},
	{Field: colLongitude, Kind: RuleFloat, Required: true},
	{Field: colPayAmount, Kind: RuleFloat, Required: true, Positive: true},
	{Field: colPayType, Kind: RuleEnum, Required: true, Enum: []string{"fixed", "hourly"}},
	{Field: colEstimatedDuration, Kind: RuleInt, Required: true, Positive: true},
	{Field: colRequirements, Kind: RuleList},
	{Field: colUrgency, Kind: RuleEnum, Default: "medium", Enum: []string{"low", "medium", "high", "urgent"}},
	{Field: colWorkerCount, Kind: RuleInt, Min: 1, Max: 50, FallbackOnBadInt: true, IntFallback: 1},
	{Field: colBackgroundCheck, Kind: RuleBool},
	{Field: colEquipment, Kind: RuleBool},
	{Field: colScheduledStart, Kind: RuleDate, Required: true},
	{Field: colClientNotes, Kind: RuleText},
}

// BuildJobRecord evaluates the job schema against one mapped row and
// assembles the normalized record. A row with any field error produces no
// record; all of its field errors are returned together.
func BuildJobRecord(fields Fields) (JobImportRecord, []FieldError) {
	vals, errs := Eval(fields, jobRules)
	if len(errs) > 0 {
		return JobImportRecord{}, errs
	}

	return JobImportRecord{
		Title:       vals.Str(colTitle),
		Description: vals.Str(colDescription),
		Category:    vals.Str(colCategory),
		Location: JobLocation{
			Address:   vals.Str(colAddress),
			Latitude:  vals.Float(colLatitude),
			Longitude: vals.Float(colLongitude),
			City:      vals.Str(colCity),
			State:     vals.Str(colState),
			ZipCode:   vals.Str(colZipCode),
		},
		PayRate: PayRate{
			Type:     vals.Str(colPayType),
			Amount:   vals.Float(colPayAmount),
			Currency: "USD",
		},
		Schedule: JobSchedule{
			StartDate: vals.Time(colScheduledStart).UTC().Format(time.RFC3339),
			Recurring: false,
		},
		Requirements:            vals.List(colRequirements),
		Urgency:                 vals.Str(colUrgency),
		WorkerCount:             vals.Int(colWorkerCount),
		EstimatedDuration:       vals.Int(colEstimatedDuration),
		ClientNotes:             vals.Str(colClientNotes),
		BackgroundCheckRequired: vals.Bool(colBackgroundCheck),
		EquipmentProvided:       vals.Bool(colEquipment),
		ParkingAvailable:        false,
	}, nil
}
