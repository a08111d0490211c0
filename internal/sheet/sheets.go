package sheet

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore is the Google Sheets transport. One spreadsheet holds the five
// tables as worksheets, one header row each.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string

	// rowIndex maps table name → row key → 1-based sheet row, captured by
	// ReadTable and consumed by Update.
	rowIndex map[string]map[string]int
}

// NewSheetsStore authenticates with a service-account credentials file and
// opens the spreadsheet, creating missing worksheets and headers.
func NewSheetsStore(ctx context.Context, spreadsheetID, credentialsPath string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	s := &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		rowIndex:      make(map[string]map[string]int),
	}
	if err := s.ensureWorksheets(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureWorksheets creates any missing table worksheets and enforces the
// exact header row on each, replacing legacy headers.
func (s *SheetsStore) ensureWorksheets(ctx context.Context) error {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("opening spreadsheet %s: %w", s.spreadsheetID, err)
	}

	existing := make(map[string]bool, len(doc.Sheets))
	for _, ws := range doc.Sheets {
		existing[ws.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, t := range SyncOrder {
		if !existing[t.Name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: t.Name},
				},
			})
		}
	}
	if len(requests) > 0 {
		_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("creating worksheets: %w", err)
		}
	}

	for _, t := range SyncOrder {
		if err := s.ensureHeader(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *SheetsStore) ensureHeader(ctx context.Context, t Table) error {
	rng := rangeRef(t.Name, "1:1")
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", t.Name, err)
	}

	var current []string
	if len(resp.Values) > 0 {
		for _, v := range resp.Values[0] {
			current = append(current, fmt.Sprint(v))
		}
	}
	if headerMatches(current, t.Columns) {
		return nil
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing %s header: %w", t.Name, err)
	}
	return nil
}

func headerMatches(current, want []string) bool {
	if len(current) < len(want) {
		return false
	}
	for i, c := range want {
		if strings.TrimSpace(current[i]) != c {
			return false
		}
	}
	return true
}

// ReadTable implements Store. It also records each row's sheet position for
// later updates in the same pass.
func (s *SheetsStore) ReadTable(ctx context.Context, t Table) (map[string]Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeRef(t.Name, "A1:Z")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", t.Name, err)
	}

	rows := make(map[string]Row)
	index := make(map[string]int)
	if len(resp.Values) == 0 {
		s.rowIndex[t.Name] = index
		return rows, nil
	}

	header := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(v))
	}

	for i, raw := range resp.Values[1:] {
		row := make(Row, len(header))
		for j, v := range raw {
			if j < len(header) && header[j] != "" {
				row[header[j]] = fmt.Sprint(v)
			}
		}
		k := t.KeyOf(row)
		if k == "" || strings.Trim(k, "|") == "" {
			continue // blank or partial row
		}
		rows[k] = row
		index[k] = i + 2 // 1-based, after the header row
	}

	s.rowIndex[t.Name] = index
	return rows, nil
}

// Insert implements Store.
func (s *SheetsStore) Insert(ctx context.Context, t Table, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = rowValues(t, r)
	}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rangeRef(t.Name, "A1"), &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending to %s: %w", t.Name, err)
	}
	return nil
}

// Update implements Store. Rows are matched to sheet positions recorded by
// the preceding ReadTable.
func (s *SheetsStore) Update(ctx context.Context, t Table, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	index := s.rowIndex[t.Name]

	var data []*sheets.ValueRange
	for _, r := range rows {
		k := t.KeyOf(r)
		pos, ok := index[k]
		if !ok {
			return fmt.Errorf("updating %s: key %q not in snapshot", t.Name, k)
		}
		data = append(data, &sheets.ValueRange{
			Range:  rangeRef(t.Name, fmt.Sprintf("A%d", pos)),
			Values: [][]interface{}{rowValues(t, r)},
		})
	}

	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", t.Name, err)
	}
	return nil
}

// Close implements Store.
func (s *SheetsStore) Close() error { return nil }

// rowValues orders a row's values by the table header.
func rowValues(t Table, r Row) []interface{} {
	out := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = r[c]
	}
	return out
}

// rangeRef builds an A1-notation range with the sheet name quoted, since
// "Author-Title" contains a hyphen.
func rangeRef(sheetName, cells string) string {
	return "'" + sheetName + "'!" + cells
}
