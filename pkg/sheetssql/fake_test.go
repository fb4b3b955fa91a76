package sheetssql

import (
	"context"
	"errors"
	"strings"
)

// fakeSheets is an in-memory SheetsClient keyed by tab name
type fakeSheets struct {
	tabs    map[string][][]interface{}
	order   []string
	listErr error
	created []string
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{tabs: make(map[string][][]interface{})}
}

func (f *fakeSheets) addTab(name string, rows ...[]interface{}) {
	if _, ok := f.tabs[name]; !ok {
		f.order = append(f.order, name)
	}
	f.tabs[name] = rows
}

func (f *fakeSheets) GetValues(_ context.Context, _ string, sheetRange string) ([][]interface{}, error) {
	name, rng, _ := strings.Cut(sheetRange, "!")
	rows, ok := f.tabs[name]
	if !ok {
		return nil, errors.New("unable to parse range")
	}
	switch rng {
	case "1:1":
		if len(rows) > 1 {
			return rows[:1], nil
		}
	case "A1:ZZ2":
		if len(rows) > 2 {
			return rows[:2], nil
		}
	}
	return rows, nil
}

func (f *fakeSheets) AppendRows(_ context.Context, _ string, sheetRange string, values [][]interface{}) error {
	rows, ok := f.tabs[sheetRange]
	if !ok {
		return errors.New("unable to parse range")
	}
	f.tabs[sheetRange] = append(rows, values...)
	return nil
}

func (f *fakeSheets) CreateSheet(_ context.Context, _ string, sheetTitle string) (int64, error) {
	f.created = append(f.created, sheetTitle)
	f.addTab(sheetTitle)
	return int64(len(f.order)), nil
}

func (f *fakeSheets) ListSheets(context.Context, string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.order...), nil
}
