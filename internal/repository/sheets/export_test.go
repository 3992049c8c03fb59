package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/piggery/internal/domain/models"
)

type memorySheet struct {
	ranges map[string][][]interface{}
	failOn string
}

func (m *memorySheet) ReplaceRange(_ context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == m.failOn {
		return errors.New("quota exceeded")
	}
	if m.ranges == nil {
		m.ranges = make(map[string][][]interface{})
	}
	m.ranges[sheetRange] = rows
	return nil
}

func (m *memorySheet) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	return m.ranges[sheetRange], nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExportWritesBothTabs(t *testing.T) {
	sheet := &memorySheet{}
	exporter := NewScheduleExporter(sheet, zaptest.NewLogger(t))
	fattening := date(2023, 12, 2)

	err := exporter.Export(context.Background(),
		[]models.FarrowEvent{
			{SowName: "Rosie", BreedDate: date(2023, 12, 18), ExpectedDate: date(2024, 4, 10), DaysUntilFarrow: -10, IsOverdue: true},
			{SowName: "Daisy", BoarBreed: "Duroc", ExpectedDate: date(2024, 4, 24), DaysUntilFarrow: 4},
		},
		[]models.SaleableEvent{
			{SowName: "Mabel", FatteningDate: &fattening, SaleableDate: date(2024, 4, 25), DaysUntilSaleable: 5, MaleCount: 5, FemaleCount: 6},
		},
	)
	require.NoError(t, err)

	farrowing := sheet.ranges[farrowingRange]
	require.Len(t, farrowing, 3)
	assert.Equal(t, farrowingHeader, farrowing[0])
	assert.Equal(t, []interface{}{"Rosie", "", "2023-12-18", "2024-04-10", -10, "overdue"}, farrowing[1])
	assert.Equal(t, []interface{}{"Daisy", "Duroc", "", "2024-04-24", 4, "upcoming"}, farrowing[2])

	saleable := sheet.ranges[saleableRange]
	require.Len(t, saleable, 2)
	assert.Equal(t, []interface{}{"Mabel", "", "2023-12-02", "2024-04-25", 5, 11}, saleable[1])
}

func TestExportEmptyScheduleKeepsHeader(t *testing.T) {
	sheet := &memorySheet{}

	require.NoError(t, NewScheduleExporter(sheet, nil).Export(context.Background(), nil, nil))
	assert.Equal(t, [][]interface{}{farrowingHeader}, sheet.ranges[farrowingRange])
	assert.Equal(t, [][]interface{}{saleableHeader}, sheet.ranges[saleableRange])
}

func TestExportStopsOnWriteError(t *testing.T) {
	sheet := &memorySheet{failOn: farrowingRange}

	err := NewScheduleExporter(sheet, nil).Export(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export farrowing schedule")
	assert.NotContains(t, sheet.ranges, saleableRange)
}

func TestGoogleSheetRepositoryReplaceRange(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	var written sheetsapi.ValueRange

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
			calls = append(calls, "clear")
		case r.Method == http.MethodPut:
			calls = append(calls, "update")
			assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&written))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	service, err := sheetsapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	repo := &GoogleSheetRepository{service: service, spreadsheetID: "sheet-1", logger: zaptest.NewLogger(t)}

	require.NoError(t, repo.ReplaceRange(context.Background(), farrowingRange, [][]interface{}{{"Sow"}, {"Daisy"}}))
	assert.Equal(t, []string{"clear", "update"}, calls)
	assert.Equal(t, [][]interface{}{{"Sow"}, {"Daisy"}}, written.Values)

	require.Error(t, repo.ReplaceRange(context.Background(), "", nil))
}
