package intake

// locationMode determines how coordinates are read from a row.
type locationMode int

const (
	// locationSingle is one "lat,lng" column.
	locationSingle locationMode = iota
	// locationSplit is separate latitude and longitude columns.
	locationSplit
)

// Profile describes the column layout of a submission sheet. Column names
// are matched case-insensitively after trimming.
type Profile struct {
	Name           string
	ProjectCol     string
	DateCol        string
	SubmittedByCol string
	CarbonCol      string // optional
	LocationMode   locationMode
	LocationCol    string // used when LocationMode == locationSingle
	LatCol         string // used when LocationMode == locationSplit
	LngCol         string // used when LocationMode == locationSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.ProjectCol, p.DateCol}

	switch p.LocationMode {
	case locationSingle:
		cols = append(cols, p.LocationCol)
	case locationSplit:
		cols = append(cols, p.LatCol, p.LngCol)
	}

	return cols
}

// profiles are tried in order; split layouts come first since their sheets
// often carry a free-text location column as well.
var profiles = []Profile{
	{
		Name:           "split",
		ProjectCol:     "project name",
		DateCol:        "collection date",
		SubmittedByCol: "submitted by",
		CarbonCol:      "carbon value",
		LocationMode:   locationSplit,
		LatCol:         "latitude",
		LngCol:         "longitude",
	},
	{
		Name:           "single",
		ProjectCol:     "project name",
		DateCol:        "collection date",
		SubmittedByCol: "submitted by",
		CarbonCol:      "carbon value",
		LocationMode:   locationSingle,
		LocationCol:    "location",
	},
	{
		Name:           "form",
		ProjectCol:     "projectname",
		DateCol:        "collectiondate",
		SubmittedByCol: "submittedby",
		CarbonCol:      "carbonvalue",
		LocationMode:   locationSingle,
		LocationCol:    "location",
	},
}
