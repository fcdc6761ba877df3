package parser

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/freedkr/orgchart/internal/model"
)

// newWorkbook 在内存中生成测试用的工作簿
func newWorkbook(t *testing.T, sheets map[string][][]interface{}, order ...string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range sheets[name] {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	return f
}

func workbookBytes(t *testing.T, f *excelize.File) *bytes.Reader {
	t.Helper()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

var staffSheet = [][]interface{}{
	{"Position", "Manager", "Name", "Headcount"},
	{"CEO", "", "Alice", 1},
	{"VP", "CEO", "Bob"},
	{"", "", "", ""},
	{"Engineer", "VP", "", 12},
}

func TestExcelParser_Parse(t *testing.T) {
	f := newWorkbook(t, map[string][][]interface{}{"Staff": staffSheet}, "Staff")
	defer f.Close()

	p := NewExcelParser(nil, nil)
	ds, err := p.Parse(context.Background(), workbookBytes(t, f))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if ds.Sheet != "Staff" {
		t.Errorf("Expected first sheet 'Staff', got %q", ds.Sheet)
	}
	if diff := cmp.Diff(model.ColumnSet{"Position", "Manager", "Name", "Headcount"}, ds.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if len(ds.Records) != 3 {
		t.Fatalf("Expected 3 records (blank row skipped), got %d", len(ds.Records))
	}

	vp := ds.Records[1]
	if vp.Get("Headcount") != "" {
		t.Errorf("Expected missing trailing cell to be empty, got %q", vp.Get("Headcount"))
	}
	if _, ok := vp["Headcount"]; !ok {
		t.Error("Expected every column key to be present")
	}
	if ds.Records[2].Get("Headcount") != "12" {
		t.Errorf("Expected numeric cell as text, got %q", ds.Records[2].Get("Headcount"))
	}
}

func TestExcelParser_ConfiguredSheetAndMaxRows(t *testing.T) {
	other := [][]interface{}{{"A"}, {"x"}}
	f := newWorkbook(t, map[string][][]interface{}{"Other": other, "Staff": staffSheet}, "Other", "Staff")
	defer f.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "org.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	p := NewExcelParser(&ParserConfig{SheetName: "Staff", SkipEmptyRows: true, MaxRows: 2}, nil)
	ds, err := p.ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ds.Sheet != "Staff" || len(ds.Records) != 2 {
		t.Errorf("Expected 2 records from Staff, got %d from %s", len(ds.Records), ds.Sheet)
	}

	names, err := p.GetSheetNames(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"Other", "Staff"}, names); diff != "" {
		t.Errorf("sheet names mismatch (-want +got):\n%s", diff)
	}
}

func TestExcelParser_Errors(t *testing.T) {
	p := NewExcelParser(nil, nil)

	_, err := p.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	if !model.IsErrorType(err, model.ErrCodeFileReadError) {
		t.Errorf("Expected file read error, got %v", err)
	}

	_, err = p.Parse(context.Background(), bytes.NewReader([]byte("not a workbook")))
	if !model.IsErrorType(err, model.ErrCodeInvalidFormat) {
		t.Errorf("Expected invalid format error, got %v", err)
	}

	f := newWorkbook(t, map[string][][]interface{}{"Empty": nil}, "Empty")
	defer f.Close()
	_, err = p.Parse(context.Background(), workbookBytes(t, f))
	if !model.IsErrorType(err, model.ErrCodeEmptySheet) {
		t.Errorf("Expected empty sheet error, got %v", err)
	}

	missingSheet := NewExcelParser(&ParserConfig{SheetName: "Nope"}, nil)
	f2 := newWorkbook(t, map[string][][]interface{}{"Staff": staffSheet}, "Staff")
	defer f2.Close()
	_, err = missingSheet.Parse(context.Background(), workbookBytes(t, f2))
	if !model.IsErrorType(err, model.ErrCodeSheetError) {
		t.Errorf("Expected sheet error, got %v", err)
	}
}

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		width    int
		expected []string
	}{
		{
			name:     "普通表头",
			header:   []string{"Position", "Manager"},
			width:    2,
			expected: []string{"Position", "Manager"},
		},
		{
			name:     "空表头",
			header:   []string{"Position", "", "Name", ""},
			width:    4,
			expected: []string{"Position", "__EMPTY", "Name", "__EMPTY_1"},
		},
		{
			name:     "重名表头",
			header:   []string{"Name", "Name", "Name_1", "Name"},
			width:    4,
			expected: []string{"Name", "Name_1", "Name_1_1", "Name_2"},
		},
		{
			name:     "数据行比表头宽",
			header:   []string{"Position"},
			width:    3,
			expected: []string{"Position", "__EMPTY", "__EMPTY_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, HeaderNames(tt.header, tt.width)); diff != "" {
				t.Errorf("HeaderNames() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		file    string
		want    string
		wantErr bool
	}{
		{"org.xlsx", "ExcelParser", false},
		{"ORG.XLSX", "ExcelParser", false},
		{"org.csv", "CSVParser", false},
		{"org.pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			p, err := ForFile(tt.file, nil, nil)
			if tt.wantErr {
				if !model.IsErrorType(err, model.ErrCodeInvalidFormat) {
					t.Errorf("Expected invalid format error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.GetName() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, p.GetName())
			}
		})
	}
}
