package importer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

// recordingUpserter counts every row as inserted and remembers the batch.
type recordingUpserter struct {
	rows []ParsedRow
	info ImportInfo
	err  error
}

func (u *recordingUpserter) Upsert(ctx context.Context, schema ColumnSchema, rows []ParsedRow) (UpsertResult, error) {
	if u.err != nil {
		return UpsertResult{}, u.err
	}
	u.rows = rows
	u.info, _ = ImportFromContext(ctx)
	return UpsertResult{Total: len(rows), Inserted: len(rows)}, nil
}

func workbook(t *testing.T, rows [][]interface{}) []byte {
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

func registerTestSchema(t *testing.T) {
	t.Helper()
	Clear()
	t.Cleanup(Clear)
	Register(Definition{
		Schema: testSchema(),
		Enrich: func(rows []ParsedRow) []Warning {
			for i := range rows {
				rows[i].Key = rows[i].Get("imo")
			}
			return nil
		},
	})
}

var sampleRows = [][]interface{}{
	{"Vessel name", "IMO", "Departure country", "Departure port"},
	{"Tanzanite", "9456147", "Romania", "Constantza"},
	{"", "9123456", "Ukraine", "Odesa"},
	{"Aurora", "9234567", "Bulgaria", "Varna"},
}

func TestService_Import(t *testing.T) {
	registerTestSchema(t)
	store := &recordingUpserter{}
	svc := NewService(store, NewLimiter(1, 0), ServiceOptions{})

	report, err := svc.Import(context.Background(), Request{
		Schema:   "vessels",
		Filename: "movements.xlsx",
		Data:     workbook(t, sampleRows),
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if report.ImportID == "" {
		t.Error("ImportID is empty")
	}
	if report.Upsert == nil || report.Upsert.Inserted != 2 {
		t.Errorf("Upsert = %+v, want 2 inserted", report.Upsert)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if len(store.rows) != 2 || store.rows[1].Key != "9234567" {
		t.Errorf("upserted rows = %+v, want Tanzanite and Aurora", store.rows)
	}
	if store.info.ID != report.ImportID || store.info.Filename != "movements.xlsx" {
		t.Errorf("import info = %+v, want id %s", store.info, report.ImportID)
	}
	if got := svc.Limiter().ActiveCount(); got != 0 {
		t.Errorf("limiter ActiveCount = %d after import, want 0", got)
	}
}

func TestService_RejectInvalid(t *testing.T) {
	registerTestSchema(t)
	store := &recordingUpserter{}
	svc := NewService(store, nil, ServiceOptions{RejectInvalid: true})

	report, err := svc.Import(context.Background(), Request{Schema: "vessels", Data: workbook(t, sampleRows)})
	if !errors.Is(err, ErrInvalidRows) {
		t.Fatalf("Import() error = %v, want ErrInvalidRows", err)
	}
	if report == nil || len(report.Result.Validation.Errors) != 1 {
		t.Errorf("report = %+v, want one validation error", report)
	}
	if store.rows != nil {
		t.Error("upserter called for a rejected file")
	}
}

func TestService_Errors(t *testing.T) {
	registerTestSchema(t)

	tests := []struct {
		name    string
		svc     *Service
		req     Request
		wantErr error
	}{
		{
			name:    "unknown schema",
			svc:     NewService(&recordingUpserter{}, nil, ServiceOptions{}),
			req:     Request{Schema: "trains", Data: []byte("x")},
			wantErr: ErrUnknownSchema,
		},
		{
			name:    "file too large",
			svc:     NewService(&recordingUpserter{}, nil, ServiceOptions{MaxFileSize: 4}),
			req:     Request{Schema: "vessels", Data: []byte("12345")},
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "not a workbook",
			svc:     NewService(&recordingUpserter{}, nil, ServiceOptions{}),
			req:     Request{Schema: "vessels", Data: []byte("vessel,imo\n")},
			wantErr: sheet.ErrUnreadable,
		},
		{
			name: "structural mismatch",
			svc:  NewService(&recordingUpserter{}, nil, ServiceOptions{}),
			req: Request{Schema: "vessels", Data: workbook(t, [][]interface{}{
				{"Vessel name", "IMO", "Flag"},
				{"Tanzanite", "9456147", "MT"},
			})},
			wantErr: ErrStructuralMismatch,
		},
		{
			name:    "no store",
			svc:     NewService(nil, nil, ServiceOptions{}),
			req:     Request{Schema: "vessels", Data: workbook(t, sampleRows)},
			wantErr: ErrNoUpserter,
		},
		{
			name:    "store failure",
			svc:     NewService(&recordingUpserter{err: errors.New("connection refused")}, nil, ServiceOptions{}),
			req:     Request{Schema: "vessels", Data: workbook(t, sampleRows)},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Import(context.Background(), tt.req)
			if err == nil {
				t.Fatal("Import() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Import() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_PreviewDoesNotNeedStore(t *testing.T) {
	registerTestSchema(t)
	svc := NewService(nil, nil, ServiceOptions{})

	report, err := svc.Preview(context.Background(), Request{Schema: "vessels", Data: workbook(t, sampleRows)})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(report.Result.Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3", len(report.Result.Rows))
	}
	if report.Upsert != nil {
		t.Errorf("Preview returned upsert counts %+v", report.Upsert)
	}
}

func TestService_BusyLimiter(t *testing.T) {
	registerTestSchema(t)
	limiter := NewLimiter(1, 10*time.Millisecond)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	svc := NewService(&recordingUpserter{}, limiter, ServiceOptions{})
	_, err := svc.Preview(context.Background(), Request{Schema: "vessels", Data: workbook(t, sampleRows)})
	if !errors.Is(err, ErrTooManyImports) {
		t.Errorf("Preview() error = %v, want ErrTooManyImports", err)
	}
}
