package projection

// MobileBreakpoint is the viewport width, in CSS pixels, below which the
// compact layout applies.
const MobileBreakpoint = 768

// Display holds the chart presentation parameters for one viewport width.
type Display struct {
	Mobile          bool    `json:"mobile"`
	AspectRatio     float64 `json:"aspectRatio"`
	ChartHeight     int     `json:"chartHeight"`
	TimeUnit        string  `json:"timeUnit"`
	TimeFormat      string  `json:"timeFormat"`
	XStepSize       int     `json:"xStepSize"`
	XMaxTicks       int     `json:"xMaxTicks"`
	YMaxTicks       int     `json:"yMaxTicks"`
	YTickPadding    int     `json:"yTickPadding"`
	ShowAxisTitles  bool    `json:"showAxisTitles"`
	FontSize        int     `json:"fontSize"`
	LegendPadding   int     `json:"legendPadding"`
	LegendBoxWidth  int     `json:"legendBoxWidth"`
	BeginAtZero     bool    `json:"beginAtZero"`
	AnimationMillis int     `json:"animationMillis"`
}

// DisplayParams derives the chart parameters for a viewport width. Widths
// below MobileBreakpoint get the compact layout.
func DisplayParams(viewportWidth int) Display {
	d := Display{
		TimeUnit:     "minute",
		TimeFormat:   "HH:mm",
		YTickPadding: 10,
		BeginAtZero:  true,
	}
	if viewportWidth < MobileBreakpoint {
		d.Mobile = true
		d.AspectRatio = 1.2
		d.ChartHeight = 250
		d.XStepSize = 2
		d.XMaxTicks = 4
		d.YMaxTicks = 4
		d.FontSize = 10
		d.LegendPadding = 10
		d.LegendBoxWidth = 20
		return d
	}
	d.AspectRatio = 2
	d.ChartHeight = 300
	d.XStepSize = 1
	d.XMaxTicks = 8
	d.YMaxTicks = 8
	d.ShowAxisTitles = true
	d.FontSize = 12
	d.LegendPadding = 20
	d.LegendBoxWidth = 30
	return d
}
