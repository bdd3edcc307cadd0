package report

import (
	"os"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// readHTML returns one grid per <table>. A first row made of <th> cells is
// the header row; otherwise the table has no headers and every row is data.
// Rows of nested tables belong to the nested table only.
func readHTML(path string) ([]Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Honour a BOM or <meta charset>; exports from older tools are often not UTF-8.
	r, err := charset.NewReader(f, "")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var grids []Grid
	doc.Find("table").Each(func(i int, tbl *goquery.Selection) {
		g := Grid{Name: tableName(tbl, i)}
		own := tbl.Get(0)
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.Closest("table").Get(0) != own {
				return
			}
			var cells []string
			tr.ChildrenFiltered("th,td").Each(func(_ int, c *goquery.Selection) {
				cells = append(cells, cleanCell(c.Text()))
			})
			if len(cells) == 0 {
				return
			}
			isHeader := tr.ChildrenFiltered("td").Length() == 0
			if g.Headers == nil && len(g.Rows) == 0 && isHeader {
				g.Headers = cells
				return
			}
			g.Rows = append(g.Rows, cells)
		})
		grids = append(grids, g)
	})
	return grids, nil
}

func tableName(tbl *goquery.Selection, i int) string {
	if c := cleanCell(tbl.ChildrenFiltered("caption").First().Text()); c != "" {
		return c
	}
	if id, ok := tbl.Attr("id"); ok && id != "" {
		return id
	}
	return "table " + strconv.Itoa(i+1)
}
