package sheet

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into Sheet1 of a fresh workbook and returns the bytes.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestRead_Excelize_TypedCells(t *testing.T) {
	loaded := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	data := buildWorkbook(t, [][]interface{}{
		{"Vessel name", "IMO", "Loading start"},
		{"Tanzanite", 9456147, loaded},
	})

	grid, err := Read(data, EngineExcelize)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("len(grid) = %d, want 2", len(grid))
	}

	if got := grid[0][0]; got != "Vessel name" {
		t.Errorf("grid[0][0] = %#v, want %q", got, "Vessel name")
	}
	if got, ok := grid[1][1].(float64); !ok || got != 9456147 {
		t.Errorf("grid[1][1] = %#v, want float64 9456147", grid[1][1])
	}
	got, ok := grid[1][2].(time.Time)
	if !ok {
		t.Fatalf("grid[1][2] = %#v, want time.Time", grid[1][2])
	}
	if !got.Equal(loaded) {
		t.Errorf("grid[1][2] = %v, want %v", got, loaded)
	}
}

func TestRead_Unioffice_TypedCells(t *testing.T) {
	loaded := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	data := buildWorkbook(t, [][]interface{}{
		{"Vessel name", "IMO", "Loading start", "Sanctioned"},
		{"Tanzanite", 9456147, loaded, false},
	})

	grid, err := Read(data, EngineUnioffice)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("len(grid) = %d, want 2", len(grid))
	}

	if diff := cmp.Diff([]any{"Vessel name", "IMO", "Loading start", "Sanctioned"}, grid[0]); diff != "" {
		t.Errorf("header row mismatch (-want +got):\n%s", diff)
	}
	if got := grid[1][0]; got != "Tanzanite" {
		t.Errorf("grid[1][0] = %#v, want %q", got, "Tanzanite")
	}
	if got, ok := grid[1][1].(float64); !ok || got != 9456147 {
		t.Errorf("grid[1][1] = %#v, want float64 9456147", grid[1][1])
	}
	got, ok := grid[1][2].(time.Time)
	if !ok {
		t.Fatalf("grid[1][2] = %#v, want time.Time", grid[1][2])
	}
	if !got.Equal(loaded) {
		t.Errorf("grid[1][2] = %v, want %v", got, loaded)
	}
	if got := grid[1][3]; got != false {
		t.Errorf("grid[1][3] = %#v, want false", got)
	}
}

func TestRead_PadsRows(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"a", "b", "c", "d"},
		{"x"},
	})

	grid, err := Read(data, EngineExcelize)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	for i, row := range grid {
		if len(row) != 4 {
			t.Errorf("row %d has %d cells, want 4", i, len(row))
		}
	}
	if grid[1][3] != nil {
		t.Errorf("padding cell = %#v, want nil", grid[1][3])
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		engine  Engine
		wantErr error
	}{
		{name: "empty input", data: nil, engine: EngineExcelize, wantErr: ErrUnreadable},
		{name: "not a zip", data: []byte("vessel,imo\n"), engine: EngineExcelize, wantErr: ErrUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(tt.data, tt.engine)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Read() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Read([]byte("x"), Engine("lotus")); err == nil {
		t.Error("Read() with unknown engine expected error")
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"", EngineExcelize, false},
		{"excelize", EngineExcelize, false},
		{" UniOffice ", EngineUnioffice, false},
		{"calc", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEngine(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEngine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEngine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSerialRoundTrip(t *testing.T) {
	for _, serial := range []float64{2, 61, 25569, 44927, 45366, 73050, 999999} {
		day := FromSerial(serial)
		again := FromSerial(ToSerial(day))
		if got, want := again.Format("2006-01-02"), day.Format("2006-01-02"); got != want {
			t.Errorf("serial %v: round trip = %s, want %s", serial, got, want)
		}
	}
}

func TestFromSerial_KnownDates(t *testing.T) {
	tests := []struct {
		serial float64
		want   string
	}{
		{25569, "1970-01-01"},
		{45366, "2024-03-15"},
		{45366.75, "2024-03-15"},
		{61, "1900-03-01"},
	}
	for _, tt := range tests {
		if got := FromSerial(tt.serial).Format("2006-01-02"); got != tt.want {
			t.Errorf("FromSerial(%v) = %s, want %s", tt.serial, got, tt.want)
		}
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := map[string]bool{
		"dd/mm/yyyy":          true,
		"yyyy-mm-dd":          true,
		"[$-409]d-mmm-yy":     true,
		"0.00":                false,
		`#,##0 "days"`:        false,
		"[Red]0.00;[Blue]0.0": false,
	}
	for code, want := range tests {
		if got := isDateFormatCode(code); got != want {
			t.Errorf("isDateFormatCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestWriteTemplate_RoundTrip(t *testing.T) {
	headers := []string{"Vessel name (Mandatory)", "IMO", "Commodity"}
	example := []string{"Tanzanite", "9456147", "Rapeseed meal"}

	var buf bytes.Buffer
	if err := WriteTemplate(&buf, "", headers, example); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}

	want := Grid{
		{"Vessel name (Mandatory)", "IMO", "Commodity"},
		{"Tanzanite", "9456147", "Rapeseed meal"},
	}
	for _, engine := range []Engine{EngineExcelize, EngineUnioffice} {
		t.Run(string(engine), func(t *testing.T) {
			grid, err := Read(buf.Bytes(), engine)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if diff := cmp.Diff(want, grid); diff != "" {
				t.Errorf("template grid mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteTemplate_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, "", nil, nil); err == nil {
		t.Error("WriteTemplate() with no headers expected error")
	}
}
