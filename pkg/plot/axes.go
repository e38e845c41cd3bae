package plot

type axis struct {
	column string
	label  string
	suffix string
}

// yAxes maps a y_axis setting to its column, label and file suffix.
var yAxes = map[string]axis{
	"distance":       {column: "dist", label: "Full distance", suffix: "fd"},
	"distance_to_bb": {column: "dist_to_bb", label: "Distance to backbone", suffix: "cbd"},
	"vertebrae":      {column: "closest_vert", label: "Closest vertebra", suffix: "vert"},
	"peak":           {column: "peak", label: "Peak value", suffix: "peak"},
	"peak_slope":     {column: "peak_slope", label: "Peak Slope", suffix: "peak_slope"},
}

// colorings maps a colorization setting to its column and title.
var colorings = map[string]axis{
	"distance":       {column: "dist", label: "Full distance"},
	"distance_to_bb": {column: "dist_to_bb", label: "Distance to backbone"},
	"value":          {column: "value", label: "Value"},
	"vertebrae":      {column: "closest_vert", label: "Closest vertebrae"},
	"peak":           {column: "peak", label: "Peak"},
	"peak_slope":     {column: "peak_slope", label: "Peak slope"},
	"odd_parent":     {column: "odd_parent", label: "Odd parent present"},
}

// FileSuffix is the short name of a y axis used in output file names.
func FileSuffix(yAxis string) string {
	return yAxes[yAxis].suffix
}
