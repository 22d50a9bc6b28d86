package views

import (
	"sort"
	"strings"

	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
)

const CologneName = "Köln, Germany"

type ParameterColumn struct {
	Name  string
	Label string
	Unit  string
}

type Cell struct {
	Value   float64
	Present bool
}

type TrendRow struct {
	Date  string
	Cells []Cell
}

// DashboardData is the view model for the trends page: one row per day, one
// column per parameter.
type DashboardData struct {
	LocationName string
	Parameters   []ParameterColumn
	Rows         []TrendRow
	Failures     int
}

var subscriptDigits = strings.NewReplacer(
	"0", "₀", "1", "₁", "2", "₂", "3", "₃", "4", "₄",
	"5", "₅", "6", "₆", "7", "₇", "8", "₈", "9", "₉",
)

// FormatParameter renders digits as Unicode subscripts, e.g. "no2" -> "no₂".
func FormatParameter(name string) string {
	return subscriptDigits.Replace(name)
}

// BuildDashboard pivots measurements by day (the date part of the timestamp)
// and parameter. Parameters keep first-seen order, the first unit seen for a
// parameter labels its column, later values for the same day and parameter
// overwrite earlier ones, and error entries are only counted.
func BuildDashboard(locationName string, entries []types.Entry) *DashboardData {
	data := &DashboardData{LocationName: locationName}

	columnIndex := map[string]int{}
	byDay := map[string]map[int]float64{}

	for _, e := range entries {
		if e.IsError() {
			data.Failures++
			continue
		}
		if e.Measurement == nil {
			continue
		}
		m := e.Measurement
		col, ok := columnIndex[m.Parameter]
		if !ok {
			col = len(data.Parameters)
			columnIndex[m.Parameter] = col
			data.Parameters = append(data.Parameters, ParameterColumn{
				Name:  m.Parameter,
				Label: FormatParameter(m.Parameter),
				Unit:  m.Unit,
			})
		}
		day, _, _ := strings.Cut(m.Date, "T")
		if byDay[day] == nil {
			byDay[day] = map[int]float64{}
		}
		byDay[day][col] = m.Value
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		row := TrendRow{Date: day, Cells: make([]Cell, len(data.Parameters))}
		for col, v := range byDay[day] {
			row.Cells[col] = Cell{Value: v, Present: true}
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}
