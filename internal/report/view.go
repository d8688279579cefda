package report

import (
	"hash/fnv"
	"strconv"
	"time"

	"expensedash/internal/cache"
	"expensedash/internal/core"
)

type (
	// ChartSlice is one proportional entry of the category breakdown.
	ChartSlice struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
		Share float64 `json:"share"`
	}

	// Row is an expense record projected for the table: cost formatted with
	// two fractional digits, date rendered in the display convention. The
	// stored date string is kept alongside.
	Row struct {
		ID          int64         `json:"id"`
		Header      string        `json:"header"`
		Description string        `json:"description"`
		Category    core.Category `json:"category"`
		Cost        string        `json:"cost"`
		Date        string        `json:"date"`
		DisplayDate string        `json:"display_date"`
	}

	// ViewState is the complete renderable snapshot derived from one fetched
	// (records, summary) pair. It is replaced wholesale on every applied
	// fetch and never mutated in place.
	ViewState struct {
		TotalCents int64        `json:"total_cents"`
		Total      string       `json:"total"`
		Chart      []ChartSlice `json:"chart"`
		Rows       []Row        `json:"rows"`
	}
)

// Deriver computes ViewState as a pure function of its inputs, memoized on a
// fingerprint of the fetched data so repeated renders of the same fetch do
// not recompute.
type Deriver struct {
	dateLayout string
	memo       *cache.LRU[ViewState]
}

// NewDeriver creates a deriver rendering display dates with the given
// layout.
func NewDeriver(dateLayout string) *Deriver {
	return &Deriver{
		dateLayout: dateLayout,
		memo:       cache.NewLRU[ViewState](64, 10*time.Minute),
	}
}

// Derive builds the view for a fetched pair.
//
// The grand total is summed over the record costs, never taken from the
// summary: the two queries may reflect different server states, and the
// on-screen total has to match the on-screen table. The chart is built from
// the summary with share = value / sum; when the summary sums to zero every
// share is zero. Rows keep the server-provided order.
func (d *Deriver) Derive(records []core.Expense, summary []core.CategorySummary) ViewState {
	key := fingerprint(records, summary)
	if v, ok := d.memo.Get(key); ok {
		return v
	}

	var totalCents int64
	rows := make([]Row, 0, len(records))
	for _, e := range records {
		totalCents += core.CostCentsOrZero(e.Cost)
		rows = append(rows, Row{
			ID:          e.ID,
			Header:      e.Header,
			Description: e.Description,
			Category:    e.Category,
			Cost:        core.FormatCents(core.CostCentsOrZero(e.Cost)),
			Date:        e.Date,
			DisplayDate: d.displayDate(e.Date),
		})
	}

	var sum float64
	for _, s := range summary {
		sum += s.Total
	}
	chart := make([]ChartSlice, 0, len(summary))
	for _, s := range summary {
		share := 0.0
		if sum != 0 {
			share = s.Total / sum
		}
		chart = append(chart, ChartSlice{Label: string(s.Category), Value: s.Total, Share: share})
	}

	v := ViewState{
		TotalCents: totalCents,
		Total:      core.FormatCents(totalCents),
		Chart:      chart,
		Rows:       rows,
	}
	d.memo.Set(key, v)
	return v
}

// displayDate renders a stored date for the viewer; the raw string is shown
// unchanged when it is not a plain calendar date.
func (d *Deriver) displayDate(stored string) string {
	t, err := core.ParseDate(stored)
	if err != nil {
		return stored
	}
	return t.Format(d.dateLayout)
}

func fingerprint(records []core.Expense, summary []core.CategorySummary) string {
	h := fnv.New64a()
	for _, e := range records {
		h.Write([]byte(strconv.FormatInt(e.ID, 10)))
		h.Write([]byte{0})
		h.Write([]byte(e.Header))
		h.Write([]byte{0})
		h.Write([]byte(e.Description))
		h.Write([]byte{0})
		h.Write([]byte(e.Category))
		h.Write([]byte{0})
		h.Write([]byte(e.Cost))
		h.Write([]byte{0})
		h.Write([]byte(e.Date))
		h.Write([]byte{1})
	}
	h.Write([]byte{2})
	for _, s := range summary {
		h.Write([]byte(s.Category))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(s.Total, 'g', -1, 64)))
		h.Write([]byte{1})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
