package pageutil

import (
	"context"
	"strings"

	"gitlab.com/osfpages/page"
	"gitlab.com/osfpages/pagek"
)

var (
	tableRows  = page.CSS("tbody > tr").All()
	tableCells = page.TagName("td")
)

// FindRowByText returns the first row whose text contains text
func FindRowByText(ctx context.Context, rows *page.Elements, text string) (pagek.Node, error) {
	return rows.FindByText(ctx, text)
}

// ReadTable collects the text of every body cell of table, row by row. When
// match is not empty reading stops at the first cell containing it and the
// 1-based number of that row is returned, otherwise the number of rows.
func ReadTable(ctx context.Context, scope page.Scope, table page.Locator, match string) (int, []string, error) {
	region := page.NewRegion(scope, &table)
	rows, err := region.FindAll(tableRows).All(ctx)
	if err != nil {
		return 0, nil, err
	}

	data := make([]string, 0)
	for i, row := range rows {
		cells, err := row.FindElements(ctx, tableCells.By, tableCells.Selector)
		if err != nil {
			return 0, nil, err
		}
		for _, cell := range cells {
			text, err := cell.Text(ctx)
			if err != nil {
				return 0, nil, err
			}
			data = append(data, text)
			if match != "" && strings.Contains(text, match) {
				return i + 1, data, nil
			}
		}
	}
	return len(rows), data, nil
}
