package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/freedkr/orgchart/internal/config"
	"github.com/freedkr/orgchart/internal/model"
)

func TestChartConfigRecord(t *testing.T) {
	cfg := model.DefaultChartConfig(model.ColumnSet{"Position", "Manager", "Name", "Type"})
	cfg.CategoryColumn = "Type"
	cfg.CategoryColors = map[string]string{"Contractor": "#ff0000"}
	cfg.Filters = model.FilterSpec{"Name": {Kind: model.FilterContains, Value: "a"}}

	record, err := NewChartConfigRecord("cfg-1", "default", cfg)
	require.NoError(t, err)
	assert.Equal(t, "cfg-1", record.ID)

	restored, err := record.ChartConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.PositionColumn, restored.PositionColumn)
	assert.Equal(t, cfg.DisplayColumns, restored.DisplayColumns)
	assert.Equal(t, "#ff0000", restored.CategoryColors["Contractor"])
	assert.Equal(t, "a", restored.Filters["Name"].Value)

	broken := &ChartConfigRecord{ID: "x", Config: datatypes.JSON(`{"position_column":`)}
	_, err = broken.ChartConfig()
	assert.True(t, model.IsErrorType(err, model.ErrCodeParseError))
}

func TestTaskRecord_IsFinished(t *testing.T) {
	for status, want := range map[string]bool{
		TaskStatusPending:    false,
		TaskStatusProcessing: false,
		TaskStatusCompleted:  true,
		TaskStatusFailed:     true,
	} {
		assert.Equal(t, want, (&TaskRecord{Status: status}).IsFinished(), status)
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.DatabaseConfig{
		Host: "db", Port: 5433, Username: "u", Password: "p", Database: "charts", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=charts sslmode=disable search_path=orgchart", dsn)
}
