package importer

import (
	"testing"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

func TestLocateHeader(t *testing.T) {
	tests := []struct {
		name      string
		grid      sheet.Grid
		wantFound bool
		wantHead  int
		wantData  int
	}{
		{
			name: "plain header on first row",
			grid: sheet.Grid{
				{"Vessel name", "IMO", "Departure country"},
				{"Tanzanite", "9456147", "Romania"},
			},
			wantFound: true, wantHead: 0, wantData: 1,
		},
		{
			name: "single group row",
			grid: sheet.Grid{
				{"VESSEL DETAILS", nil, nil},
				{"Vessel name", "IMO", "Departure country"},
				{"Tanzanite", "9456147", "Romania"},
			},
			wantFound: true, wantHead: 1, wantData: 2,
		},
		{
			name: "two group rows",
			grid: sheet.Grid{
				{"VESSEL DETAILS", nil, "Departure place", nil},
				{nil, "Loading details", nil, nil},
				{"Vessel name", "IMO", "Departure country", "Departure port"},
				{"Tanzanite", "9456147", "Romania", "Constantza"},
			},
			wantFound: true, wantHead: 2, wantData: 3,
		},
		{
			name: "group row then sparse row then report number",
			grid: sheet.Grid{
				{"VESSEL DETAILS", "", "VESSEL DEPARTURE PLACE", ""},
				{"", "", "", "as of"},
				{"1209"},
				{"Vessel name", "IMO", "Departure country", "Departure port"},
				{"Tanzanite", "9456147", "Romania", "Constantza"},
			},
			wantFound: true, wantHead: 3, wantData: 4,
		},
		{
			name: "metadata between header and data",
			grid: sheet.Grid{
				{"Vessel name", "IMO", "Departure country"},
				{nil, nil, nil},
				{float64(42), "total", nil},
				{"Tanzanite", "9456147", "Romania"},
			},
			wantFound: true, wantHead: 0, wantData: 3,
		},
		{
			name: "full header mentioning destination is not a group row",
			grid: sheet.Grid{
				{"Vessel name", "Destination country", "Destination port"},
				{"Tanzanite", "Egypt", "Damietta"},
			},
			wantFound: true, wantHead: 0, wantData: 1,
		},
		{
			name: "group row over every column is read as the header",
			grid: sheet.Grid{
				{"VESSEL DETAILS", "CARGO DETAILS", "DEPARTURE PLACE"},
				{"Vessel name", "Commodity", "Departure country"},
				{"Tanzanite", "Rapeseed meal", "Romania"},
			},
			wantFound: true, wantHead: 0, wantData: 1,
		},
		{
			name: "text note under the header is data",
			grid: sheet.Grid{
				{"Vessel name", "IMO", "Departure country"},
				{"Figures provisional", "see notes", nil},
				{"Tanzanite", "9456147", "Romania"},
			},
			wantFound: true, wantHead: 0, wantData: 1,
		},
		{
			name:      "single row",
			grid:      sheet.Grid{{"Vessel name", "IMO"}},
			wantFound: false,
		},
		{
			name:      "empty grid",
			grid:      nil,
			wantFound: false,
		},
		{
			name: "header with metadata body",
			grid: sheet.Grid{
				{"Vessel name", "IMO", "Departure country"},
				{nil, nil, nil},
				{"1209", nil, nil},
			},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocateHeader(tt.grid)
			if got.Found != tt.wantFound {
				t.Fatalf("Found = %v, want %v", got.Found, tt.wantFound)
			}
			if !got.Found {
				return
			}
			if got.HeaderRow != tt.wantHead {
				t.Errorf("HeaderRow = %d, want %d", got.HeaderRow, tt.wantHead)
			}
			if got.DataStart != tt.wantData {
				t.Errorf("DataStart = %d, want %d", got.DataStart, tt.wantData)
			}
			if got.DataStart <= got.HeaderRow {
				t.Errorf("DataStart %d not after HeaderRow %d", got.DataStart, got.HeaderRow)
			}
		})
	}
}

func TestIsMetadataRow(t *testing.T) {
	tests := []struct {
		name string
		row  []any
		want bool
	}{
		{"blank", []any{nil, "  ", ""}, true},
		{"lone number", []any{"1209", nil}, true},
		{"number plus label", []any{float64(7), "vessels"}, true},
		{"number plus two cells", []any{float64(7), "a", "b"}, false},
		{"text only", []any{"Tanzanite", nil}, false},
	}
	for _, tt := range tests {
		if got := isMetadataRow(tt.row); got != tt.want {
			t.Errorf("%s: isMetadataRow(%v) = %v, want %v", tt.name, tt.row, got, tt.want)
		}
	}
}
