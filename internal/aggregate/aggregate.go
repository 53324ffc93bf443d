// Package aggregate turns a flat batch of heterogeneous order records into
// the multi-dimensional dashboard rollups (store, product, area, segment,
// hub, month, week, due-date bucket) with derived metrics. It is a pure,
// synchronous computation: the whole batch is rescanned on every call, the
// accumulator is never exposed until fully built, and malformed input
// degrades to zero values instead of errors.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Aggregate folds the order batch into a fresh Snapshot under the provided
// options. A nil or empty batch yields a fully populated zero-valued
// snapshot, never an error.
func Aggregate(orders []Order, opts Options) *Snapshot {
	batch := orders
	if opts.Dedupe {
		batch = dedupe(orders)
	}

	acc := newAccumulator(opts)
	acc.setRef(resolveReferenceMonth(batch, opts))

	for _, order := range batch {
		acc.fold(order)
	}

	return acc.finalize()
}

// dedupe drops repeated order ids, preserving first-occurrence order.
func dedupe(orders []Order) []Order {
	seen := make(map[string]struct{}, len(orders))
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		if _, dup := seen[order.ID]; dup {
			continue
		}
		seen[order.ID] = struct{}{}
		result = append(result, order)
	}
	return result
}

// resolveReferenceMonth picks the anchor for "this month" metrics: the
// explicit option when set, otherwise the maximum month present in the batch.
func resolveReferenceMonth(orders []Order, opts Options) (MonthKey, bool) {
	if opts.ReferenceMonth != 0 {
		return opts.ReferenceMonth, true
	}
	var (
		max   MonthKey
		found bool
	)
	for _, order := range orders {
		key, ok := order.month()
		if !ok {
			continue
		}
		if !found || key > max {
			max = key
			found = true
		}
	}
	return max, found
}

type accumulator struct {
	opts Options
	ref  struct {
		key MonthKey
		ok  bool
	}

	snapshot *Snapshot

	daily   seriesAccum
	weekly  seriesAccum
	monthly seriesAccum

	allStores StringSet
}

func newAccumulator(opts Options) *accumulator {
	hist := make(map[enums.DueDateStatus]int, len(enums.DueDateStatuses))
	for _, bucket := range enums.DueDateStatuses {
		hist[bucket] = 0
	}

	return &accumulator{
		opts: opts,
		snapshot: &Snapshot{
			Stores:              map[string]*StoreSummary{},
			Products:            map[string]*ProductSummary{},
			Areas:               map[string]*AreaSummary{},
			Segments:            map[string]*SegmentSummary{},
			SubSegments:         map[string]*SegmentSummary{},
			Hubs:                map[string]*HubSummary{},
			MonthlyActiveStores: map[string]StringSet{},
			MonthlyOrderCounts:  map[string]int{},
			DueDateHistogram:    hist,
			PaymentStatuses:     map[enums.PaymentStatus]*PaymentStatusMetric{},
			Daily:               []SeriesPoint{},
			Weekly:              []SeriesPoint{},
			Monthly:             []SeriesPoint{},
		},
		daily:     seriesAccum{},
		weekly:    seriesAccum{},
		monthly:   seriesAccum{},
		allStores: StringSet{},
	}
}

func (a *accumulator) setRef(key MonthKey, ok bool) {
	a.ref.key = key
	a.ref.ok = ok
}

func (a *accumulator) fold(order Order) {
	month, hasMonth := order.month()
	inRef := a.ref.ok && hasMonth && month == a.ref.key
	// Breakdown scope: reference month only, or the whole batch.
	inScope := !a.opts.ScopeMostRecentMonthOnly || inRef

	profit := order.profitContribution(a.opts.ProfitFromLineItems)
	paid := a.opts.isPaid(order.PaymentStatus)

	a.foldBookkeeping(order, month, hasMonth)
	a.foldTotals(order, profit, paid)
	if inRef {
		a.foldThisMonth(order, profit)
	}
	if inScope {
		a.foldHistograms(order)
		a.foldProducts(order)
		a.foldArea(order, profit, paid)
		a.foldSegments(order, month, hasMonth, profit, paid)
	}
	a.foldStore(order, month, hasMonth, profit)
	a.foldHub(order, profit)
	a.foldSeries(order, month, hasMonth, profit)
}

func (a *accumulator) foldBookkeeping(order Order, month MonthKey, hasMonth bool) {
	if !hasMonth {
		return
	}
	label := month.Label()
	stores, ok := a.snapshot.MonthlyActiveStores[label]
	if !ok {
		stores = StringSet{}
		a.snapshot.MonthlyActiveStores[label] = stores
	}
	if order.StoreID != "" {
		stores.Add(order.StoreID)
	}
	a.snapshot.MonthlyOrderCounts[label]++
}

func (a *accumulator) foldTotals(order Order, profit decimal.Decimal, paid bool) {
	totals := &a.snapshot.Totals
	totals.OrderCount++
	totals.TotalInvoice = totals.TotalInvoice.Add(order.TotalInvoice)
	totals.TotalPayment = totals.TotalPayment.Add(order.TotalPayment)
	totals.TotalProfit = totals.TotalProfit.Add(profit)

	if paid {
		totals.PaidInvoice = totals.PaidInvoice.Add(order.TotalInvoice)
	} else {
		totals.UnpaidInvoice = totals.UnpaidInvoice.Add(order.TotalInvoice)
	}

	switch order.PaymentType {
	case enums.PaymentTypeCOD:
		totals.CODInvoice = totals.CODInvoice.Add(order.TotalInvoice)
	case enums.PaymentTypeTOP:
		totals.TOPInvoice = totals.TOPInvoice.Add(order.TotalInvoice)
	}

	if order.StoreID != "" {
		a.allStores.Add(order.StoreID)
	}
}

func (a *accumulator) foldThisMonth(order Order, profit decimal.Decimal) {
	tm := &a.snapshot.ThisMonth
	tm.OrderCount++
	tm.TotalInvoice = tm.TotalInvoice.Add(order.TotalInvoice)
	tm.TotalProfit = tm.TotalProfit.Add(profit)
}

func (a *accumulator) foldHistograms(order Order) {
	bucket := ClassifyDueDate(order.DueDate, order.PaymentStatus, a.opts.now())
	a.snapshot.DueDateHistogram[bucket]++

	metric, ok := a.snapshot.PaymentStatuses[order.PaymentStatus]
	if !ok {
		metric = &PaymentStatusMetric{}
		a.snapshot.PaymentStatuses[order.PaymentStatus] = metric
	}
	metric.Count++
	metric.TotalInvoice = metric.TotalInvoice.Add(order.TotalInvoice)
}

func (a *accumulator) foldProducts(order Order) {
	for _, item := range order.Items {
		if item.ProductID == "" {
			continue
		}
		summary, ok := a.snapshot.Products[item.ProductID]
		if !ok {
			summary = &ProductSummary{ProductID: item.ProductID, ProductName: item.ProductName}
			a.snapshot.Products[item.ProductID] = summary
		}
		if summary.ProductName == "" {
			summary.ProductName = item.ProductName
		}

		summary.TotalInvoice = summary.TotalInvoice.Add(item.LineTotal)
		summary.Quantity += item.Quantity

		cost := item.BuyPrice.Mul(decimal.NewFromInt(item.Quantity))
		if line := item.LineTotal.Sub(cost); line.IsPositive() {
			summary.TotalProfit = summary.TotalProfit.Add(line)
		}

		if summary.hasPrice && !item.UnitPrice.Equal(summary.lastPrice) {
			summary.PriceChanges++
		}
		summary.lastPrice = item.UnitPrice
		summary.hasPrice = true

		summary.AveragePrice = safeDiv(summary.TotalInvoice, decimal.NewFromInt(summary.Quantity))
	}
}

func (a *accumulator) foldArea(order Order, profit decimal.Decimal, paid bool) {
	if order.Area == "" {
		return
	}
	summary, ok := a.snapshot.Areas[order.Area]
	if !ok {
		summary = &AreaSummary{Name: order.Area}
		a.snapshot.Areas[order.Area] = summary
	}
	foldAreaShape(summary, order, profit, paid)
}

func (a *accumulator) foldSegments(order Order, month MonthKey, hasMonth bool, profit decimal.Decimal, paid bool) {
	a.foldSegment(a.snapshot.Segments, order.Segment, order, month, hasMonth, profit, paid)
	a.foldSegment(a.snapshot.SubSegments, order.SubSegment, order, month, hasMonth, profit, paid)
}

func (a *accumulator) foldSegment(into map[string]*SegmentSummary, name string, order Order, month MonthKey, hasMonth bool, profit decimal.Decimal, paid bool) {
	if name == "" {
		return
	}
	summary, ok := into[name]
	if !ok {
		summary = &SegmentSummary{
			AreaSummary:  AreaSummary{Name: name},
			ActiveMonths: StringSet{},
		}
		into[name] = summary
	}
	foldAreaShape(&summary.AreaSummary, order, profit, paid)
	if hasMonth {
		summary.ActiveMonths.Add(month.Label())
	}
}

func foldAreaShape(summary *AreaSummary, order Order, profit decimal.Decimal, paid bool) {
	summary.OrderCount++
	summary.TotalInvoice = summary.TotalInvoice.Add(order.TotalInvoice)
	summary.TotalProfit = summary.TotalProfit.Add(profit)

	switch order.PaymentType {
	case enums.PaymentTypeCOD:
		summary.CODInvoice = summary.CODInvoice.Add(order.TotalInvoice)
	case enums.PaymentTypeTOP:
		summary.TOPInvoice = summary.TOPInvoice.Add(order.TotalInvoice)
	}
	if paid {
		summary.PaidInvoice = summary.PaidInvoice.Add(order.TotalInvoice)
	} else {
		summary.UnpaidInvoice = summary.UnpaidInvoice.Add(order.TotalInvoice)
	}

	summary.Orders = append(summary.Orders, order)
}

func (a *accumulator) foldStore(order Order, month MonthKey, hasMonth bool, profit decimal.Decimal) {
	if order.StoreID == "" {
		return
	}
	summary, ok := a.snapshot.Stores[order.StoreID]
	if !ok {
		summary = &StoreSummary{
			StoreID:      order.StoreID,
			StoreName:    order.StoreName,
			ActiveMonths: StringSet{},
		}
		a.snapshot.Stores[order.StoreID] = summary
	}
	if summary.StoreName == "" {
		summary.StoreName = order.StoreName
	}

	summary.OrderCount++
	summary.TotalInvoice = summary.TotalInvoice.Add(order.TotalInvoice)
	summary.TotalProfit = summary.TotalProfit.Add(profit)
	// Running mean, recomputed after every fold.
	summary.AverageOrderValue = safeDiv(summary.TotalInvoice, decimal.NewFromInt(int64(summary.OrderCount)))

	if hasMonth {
		summary.ActiveMonths.Add(month.Label())
	}
	if order.OrderDate.After(summary.LastOrderDate) {
		summary.LastOrderDate = order.OrderDate
	}
	summary.Orders = append(summary.Orders, order)
}

func (a *accumulator) foldHub(order Order, profit decimal.Decimal) {
	if order.HubID == "" {
		return
	}
	summary, ok := a.snapshot.Hubs[order.HubID]
	if !ok {
		summary = &HubSummary{HubID: order.HubID}
		a.snapshot.Hubs[order.HubID] = summary
	}
	summary.OrderCount++
	summary.TotalInvoice = summary.TotalInvoice.Add(order.TotalInvoice)
	summary.TotalProfit = summary.TotalProfit.Add(profit)
	summary.TotalPayment = summary.TotalPayment.Add(order.TotalPayment)
}

func (a *accumulator) foldSeries(order Order, month MonthKey, hasMonth bool, profit decimal.Decimal) {
	if !order.OrderDate.IsZero() {
		day := order.OrderDate
		a.daily.add(day.Format("2006-01-02"), day.Unix(), order, profit)
		monday := weekMonday(day)
		a.weekly.add(WeekKey(day), monday.Unix(), order, profit)
	}
	if hasMonth {
		a.monthly.add(month.Label(), int64(month), order, profit)
	}
}

func (a *accumulator) finalize() *Snapshot {
	snapshot := a.snapshot
	now := a.opts.now()

	for _, store := range snapshot.Stores {
		store.Status = StoreStatusFor(store.LastOrderDate, now)
	}

	if a.ref.ok {
		snapshot.ReferenceMonth = a.ref.key.Label()
		snapshot.ThisMonth.MonthLabel = snapshot.ReferenceMonth
		snapshot.ThisMonth.ActiveStores = len(snapshot.MonthlyActiveStores[snapshot.ReferenceMonth])
	}

	snapshot.Totals.StoreCount = len(a.allStores)
	if snapshot.Totals.StoreCount > 0 {
		active := decimal.NewFromInt(int64(snapshot.ThisMonth.ActiveStores))
		total := decimal.NewFromInt(int64(snapshot.Totals.StoreCount))
		snapshot.ThisMonth.ActivationRate = active.Div(total).Mul(hundred).Round(2)
	}

	snapshot.Daily = a.daily.sorted()
	snapshot.Weekly = a.weekly.sorted()
	snapshot.Monthly = a.monthly.sorted()

	return snapshot
}

// safeDiv divides with a defined zero fallback so derived ratios never
// surface NaN or infinities.
func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

type seriesBucket struct {
	point   SeriesPoint
	sortKey int64
}

// seriesAccum accumulates chart buckets keyed by label, remembering a
// chronological sort key per bucket.
type seriesAccum map[string]*seriesBucket

func (s seriesAccum) add(label string, sortKey int64, order Order, profit decimal.Decimal) {
	bucket, ok := s[label]
	if !ok {
		bucket = &seriesBucket{point: SeriesPoint{Label: label}, sortKey: sortKey}
		s[label] = bucket
	}
	bucket.point.OrderCount++
	bucket.point.TotalInvoice = bucket.point.TotalInvoice.Add(order.TotalInvoice)
	bucket.point.TotalProfit = bucket.point.TotalProfit.Add(profit)
	if sortKey < bucket.sortKey {
		bucket.sortKey = sortKey
	}
}

func (s seriesAccum) sorted() []SeriesPoint {
	buckets := make([]*seriesBucket, 0, len(s))
	for _, bucket := range s {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].sortKey != buckets[j].sortKey {
			return buckets[i].sortKey < buckets[j].sortKey
		}
		return buckets[i].point.Label < buckets[j].point.Label
	})
	points := make([]SeriesPoint, len(buckets))
	for i, bucket := range buckets {
		points[i] = bucket.point
	}
	return points
}
