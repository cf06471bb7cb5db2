package types

// Region is an axis-aligned bounding box, in image coordinates, around one
// connected area of significant difference.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ComparisonResult holds the outcome of comparing one image pair
type ComparisonResult struct {
	FirstPath    string   `json:"first_path"`
	SecondPath   string   `json:"second_path"`
	Score        float64  `json:"score"`
	Threshold    float64  `json:"threshold"`
	Regions      []Region `json:"regions,omitempty"`
	ArtifactPath string   `json:"artifact_path,omitempty"` // empty when no diff was written
}

// ComparisonRecord is one persisted row of comparison history
type ComparisonRecord struct {
	ID           int64
	FirstPath    string
	SecondPath   string
	Score        float64
	Threshold    float64
	RegionCount  int
	ArtifactPath string
	ComparedAt   string
}
