package model

// Driver is a roster entry
type Driver struct {
	ID                  string
	Name                string
	BaseShift           Shift
	OfferedPostalPrefix string // raw postal code from the roster, e.g. "04567-000"
}

// Region maps a cluster to its base postal code
type Region struct {
	Cluster    string
	PostalCode string
}

// AvailabilityRecord is one offered shift of a driver on a date
type AvailabilityRecord struct {
	DriverID            string `ssql_header:"driver_id" ssql_type:"text"`
	DriverName          string `ssql_header:"driver_name" ssql_type:"text"`
	Cluster             string `ssql_header:"cluster" ssql_type:"text"`
	VehicleType         string `ssql_header:"vehicle_type" ssql_type:"text"`
	OfferedPostalPrefix string `ssql_header:"offered_postal_prefix" ssql_type:"text"`
	BasePostalPrefix    string `ssql_header:"base_postal_prefix" ssql_type:"text"`
	IsInRegion          bool   `ssql_header:"is_in_region" ssql_type:"bool"`
	Date                string `ssql_header:"date" ssql_type:"date"`
	WeekKey             string `ssql_header:"week_key" ssql_type:"week"`
	BaseShift           Shift  `ssql_header:"base_shift" ssql_type:"shift"`
	OfferedShift        Shift  `ssql_header:"offered_shift" ssql_type:"shift"`
	ImportTimestamp     string `ssql_header:"import_timestamp" ssql_type:"datetime"`
}

// LoadingRecord is one fulfilled delivery task
type LoadingRecord struct {
	TaskID          string `ssql_header:"task_id" ssql_type:"text"`
	DriverID        string `ssql_header:"driver_id" ssql_type:"text"`
	DriverName      string `ssql_header:"driver_name" ssql_type:"text"`
	VehicleType     string `ssql_header:"vehicle_type" ssql_type:"text"`
	Date            string `ssql_header:"date" ssql_type:"date"`
	WeekKey         string `ssql_header:"week_key" ssql_type:"week"`
	LoadingShift    Shift  `ssql_header:"loading_shift" ssql_type:"shift"`
	BaseShift       Shift  `ssql_header:"base_shift" ssql_type:"shift"`
	IsOffShift      bool   `ssql_header:"is_off_shift" ssql_type:"bool"`
	ImportTimestamp string `ssql_header:"import_timestamp" ssql_type:"datetime"`
}

// ReturnRecord is a batch of packages returned by a driver
type ReturnRecord struct {
	DriverID        string  `ssql_header:"driver_id" ssql_type:"text"`
	DriverName      string  `ssql_header:"driver_name" ssql_type:"text"`
	PackageCount    float64 `ssql_header:"package_count" ssql_type:"number"`
	Date            string  `ssql_header:"date" ssql_type:"date"`
	WeekKey         string  `ssql_header:"week_key" ssql_type:"week"`
	BaseShift       Shift   `ssql_header:"base_shift" ssql_type:"shift"`
	ImportTimestamp string  `ssql_header:"import_timestamp" ssql_type:"datetime"`
}

// CancellationRecord is a shift the driver cancelled
type CancellationRecord struct {
	DriverID        string `ssql_header:"driver_id" ssql_type:"text"`
	DriverName      string `ssql_header:"driver_name" ssql_type:"text"`
	Date            string `ssql_header:"date" ssql_type:"date"`
	WeekKey         string `ssql_header:"week_key" ssql_type:"week"`
	Shift           Shift  `ssql_header:"shift" ssql_type:"shift"`
	ImportTimestamp string `ssql_header:"import_timestamp" ssql_type:"datetime"`
}

// RefusalRecord is a call-up notification the driver refused
type RefusalRecord struct {
	NotificationID  string `ssql_header:"notification_id" ssql_type:"text"`
	DriverID        string `ssql_header:"driver_id" ssql_type:"text"`
	DriverName      string `ssql_header:"driver_name" ssql_type:"text"`
	Date            string `ssql_header:"date" ssql_type:"date"`
	WeekKey         string `ssql_header:"week_key" ssql_type:"week"`
	RefusalShift    Shift  `ssql_header:"refusal_shift" ssql_type:"shift"`
	BaseShift       Shift  `ssql_header:"base_shift" ssql_type:"shift"`
	ImportTimestamp string `ssql_header:"import_timestamp" ssql_type:"datetime"`
}

// ImportLog records one appended upload batch
type ImportLog struct {
	ID          string `ssql_header:"id" ssql_type:"uuid"`
	Stream      string `ssql_header:"stream" ssql_type:"text"`
	FileName    string `ssql_header:"file_name" ssql_type:"text"`
	RowsIn      int    `ssql_header:"rows_in" ssql_type:"int"`
	RowsOut     int    `ssql_header:"rows_out" ssql_type:"int"`
	RowsSkipped int    `ssql_header:"rows_skipped" ssql_type:"int"`
	ImportedAt  string `ssql_header:"imported_at" ssql_type:"datetime"`
}

// Origin of a driver's reference shift
const (
	OriginRoster   = "BASE_MOTORISTAS"
	OriginInferred = "INFERIDO_PELA_DISP"
)

// Rotation status of a driver in the selected week
const (
	StatusActive         = "ATIVO"
	StatusNoAvailability = "SEM DISPONIBILIDADE"
)

// RodizioRow is one driver's line in the weekly rotation report
type RodizioRow struct {
	DriverID                string
	DriverName              string
	BaseShift               Shift
	DispAM                  int
	DispSD                  int
	DispTotal               int
	PredominantShift        Shift
	ReferenceShift          Shift
	CargTotal               int
	CargInShift             int
	CargAM                  int
	CargSD                  int
	Returns                 float64
	Cancellations           int
	Refusals                int
	DispInShift             int
	ShiftUtilisationRate    float64
	ShiftUtilisationRatePct float64
	Penalty                 float64
	PriorityIndex           float64
	ShiftOrigin             string
	Status                  string
}
