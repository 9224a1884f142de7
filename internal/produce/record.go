package produce

// Sentinel values used when the model did not supply a field.
const (
	DefaultName                     = "Not identified"
	DefaultEstimatedShelfLife       = "Not estimated"
	DefaultOptimalStorageConditions = "Not specified"
	DefaultRefrigerationRequired    = "Not specified"
	DefaultStorageTip               = "Not provided"
)

// Record is the extracted produce detail set. Every field is always populated.
type Record struct {
	Name                     string `json:"name"`
	EstimatedShelfLife       string `json:"estimatedShelfLife"`
	OptimalStorageConditions string `json:"optimalStorageConditions"`
	RefrigerationRequired    string `json:"refrigerationRequired"`
	StorageTip               string `json:"storageTip"`
}

// NewRecord returns a record with every field set to its sentinel default.
func NewRecord() Record {
	return Record{
		Name:                     DefaultName,
		EstimatedShelfLife:       DefaultEstimatedShelfLife,
		OptimalStorageConditions: DefaultOptimalStorageConditions,
		RefrigerationRequired:    DefaultRefrigerationRequired,
		StorageTip:               DefaultStorageTip,
	}
}

var columns = []string{
	"Name",
	"Estimated Shelf Life",
	"Optimal Storage Conditions",
	"Refrigeration Required",
	"Storage Tip",
}

// Columns returns the fixed table header used for every tabular rendering.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Row returns the record values in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Name,
		r.EstimatedShelfLife,
		r.OptimalStorageConditions,
		r.RefrigerationRequired,
		r.StorageTip,
	}
}

// Field pairs a column title with its value, for detail views.
type Field struct {
	Title string
	Value string
}

// Fields returns the record as titled fields in Columns order.
func (r Record) Fields() []Field {
	row := r.Row()
	fields := make([]Field, len(row))
	for i, v := range row {
		fields[i] = Field{Title: columns[i], Value: v}
	}
	return fields
}
