// Package export flattens snapshot sub-maps into ordered tabular rows for
// the document-generation pipeline. It stops at rows and headers; rendering
// PDF or spreadsheet files is the downstream collaborator's job.
package export

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

// Table is a flattened view of one snapshot dimension.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// TableKind names the tables the export surface can produce.
type TableKind string

const (
	TableStores   TableKind = "stores"
	TableProducts TableKind = "products"
	TableAreas    TableKind = "areas"
	TableAging    TableKind = "aging"
)

// ValidTableKinds lists every flattenable table.
var ValidTableKinds = []TableKind{TableStores, TableProducts, TableAreas, TableAging}

// IsValid reports whether the value names a known table.
func (k TableKind) IsValid() bool {
	for _, candidate := range ValidTableKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Flatten renders the requested table from the snapshot. Unknown kinds
// return an empty stores table; callers validate the kind at the boundary.
func Flatten(snap *aggregate.Snapshot, kind TableKind) Table {
	switch kind {
	case TableProducts:
		return ProductTable(snap)
	case TableAreas:
		return AreaTable(snap)
	case TableAging:
		return AgingTable(snap)
	default:
		return StoreTable(snap)
	}
}

// StoreTable flattens store summaries, largest invoice first.
func StoreTable(snap *aggregate.Snapshot) Table {
	stores := make([]*aggregate.StoreSummary, 0, len(snap.Stores))
	for _, store := range snap.Stores {
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool {
		if !stores[i].TotalInvoice.Equal(stores[j].TotalInvoice) {
			return stores[i].TotalInvoice.GreaterThan(stores[j].TotalInvoice)
		}
		return stores[i].StoreID < stores[j].StoreID
	})

	rows := make([][]string, 0, len(stores))
	for _, store := range stores {
		lastOrder := ""
		if !store.LastOrderDate.IsZero() {
			lastOrder = store.LastOrderDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			store.StoreID,
			store.StoreName,
			itoa(store.OrderCount),
			money(store.TotalInvoice),
			money(store.TotalProfit),
			money(store.AverageOrderValue),
			string(store.Status),
			lastOrder,
		})
	}

	return Table{
		Title:   "Store Summary",
		Headers: []string{"Store ID", "Store Name", "Orders", "Total Invoice", "Total Profit", "Avg Order Value", "Status", "Last Order"},
		Rows:    rows,
	}
}

// ProductTable flattens product summaries, largest invoice first.
func ProductTable(snap *aggregate.Snapshot) Table {
	products := make([]*aggregate.ProductSummary, 0, len(snap.Products))
	for _, product := range snap.Products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].TotalInvoice.Equal(products[j].TotalInvoice) {
			return products[i].TotalInvoice.GreaterThan(products[j].TotalInvoice)
		}
		return products[i].ProductID < products[j].ProductID
	})

	rows := make([][]string, 0, len(products))
	for _, product := range products {
		rows = append(rows, []string{
			product.ProductID,
			product.ProductName,
			itoa64(product.Quantity),
			money(product.TotalInvoice),
			money(product.AveragePrice),
			itoa(product.PriceChanges),
			money(product.TotalProfit),
		})
	}

	return Table{
		Title:   "Product Summary",
		Headers: []string{"Product ID", "Product Name", "Quantity", "Total Invoice", "Avg Price", "Price Changes", "Total Profit"},
		Rows:    rows,
	}
}

// AreaTable flattens area summaries, largest invoice first.
func AreaTable(snap *aggregate.Snapshot) Table {
	areas := make([]*aggregate.AreaSummary, 0, len(snap.Areas))
	for _, area := range snap.Areas {
		areas = append(areas, area)
	}
	sort.Slice(areas, func(i, j int) bool {
		if !areas[i].TotalInvoice.Equal(areas[j].TotalInvoice) {
			return areas[i].TotalInvoice.GreaterThan(areas[j].TotalInvoice)
		}
		return areas[i].Name < areas[j].Name
	})

	rows := make([][]string, 0, len(areas))
	for _, area := range areas {
		rows = append(rows, []string{
			area.Name,
			itoa(area.OrderCount),
			money(area.TotalInvoice),
			money(area.TotalProfit),
			money(area.CODInvoice),
			money(area.TOPInvoice),
			money(area.PaidInvoice),
			money(area.UnpaidInvoice),
		})
	}

	return Table{
		Title:   "Area Summary",
		Headers: []string{"Area", "Orders", "Total Invoice", "Total Profit", "COD", "TOP", "Paid", "Unpaid"},
		Rows:    rows,
	}
}

// AgingTable flattens the due-date histogram in aging order.
func AgingTable(snap *aggregate.Snapshot) Table {
	rows := make([][]string, 0, len(enums.DueDateStatuses))
	for _, bucket := range enums.DueDateStatuses {
		rows = append(rows, []string{string(bucket), itoa(snap.DueDateHistogram[bucket])})
	}
	return Table{
		Title:   "Invoice Aging",
		Headers: []string{"Bucket", "Orders"},
		Rows:    rows,
	}
}

func money(d decimal.Decimal) string {
	return d.Round(2).String()
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}
