// Package listing implements the admin view over the enrollment collection:
// search, time-window filter, sort and fixed-size pagination, all applied in
// memory to a single bulk fetch.
package listing

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/model"
)

const (
	PageSize   = 10
	MaxButtons = 5
)

type Window string

const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowWeek  Window = "7d"
	WindowMonth Window = "30d"
)

// ParseWindow falls back to WindowAll for unknown input.
func ParseWindow(s string) Window {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowToday, WindowWeek, WindowMonth:
		return w
	default:
		return WindowAll
	}
}

// Since returns the inclusive lower bound of the window relative to now.
// The zero time means no bound.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortName   Sort = "name"
)

// ParseSort falls back to SortNewest for unknown input.
func ParseSort(s string) Sort {
	switch o := Sort(strings.ToLower(strings.TrimSpace(s))); o {
	case SortOldest, SortName:
		return o
	default:
		return SortNewest
	}
}

type Query struct {
	Search string
	Window Window
	Sort   Sort
	Page   int
}

// ParseQuery builds a Query from raw query-string values.
func ParseQuery(search, window, order, page string) Query {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil {
		p = 1
	}
	return Query{
		Search: strings.TrimSpace(search),
		Window: ParseWindow(window),
		Sort:   ParseSort(order),
		Page:   p,
	}
}

// Page is one rendered page of the listing.
type Page struct {
	Items      []model.Enrollment `json:"items"`
	Total      int                `json:"total"`   // whole collection
	Matched    int                `json:"matched"` // after search and window
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Buttons    []int              `json:"buttons"`
	Start      int                `json:"start"` // 1-based, 0 when empty
	End        int                `json:"end"`
	Empty      bool               `json:"empty"`
	Query      Query              `json:"-"`
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Apply filters, sorts and paginates all. The input slice is not modified.
func Apply(all []model.Enrollment, q Query, now time.Time) Page {
	matched := Filter(all, q.Search, q.Window, now)
	SortBy(matched, q.Sort)

	totalPages := (len(matched) + PageSize - 1) / PageSize
	page := clamp(q.Page, 1, max(totalPages, 1))

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(matched))

	p := Page{
		Items:      matched[start:end],
		Total:      len(all),
		Matched:    len(matched),
		Page:       page,
		TotalPages: totalPages,
		Buttons:    Buttons(page, totalPages),
		Empty:      len(matched) == 0,
		Query:      q,
	}
	if !p.Empty {
		p.Start, p.End = start+1, end
	}
	p.Query.Page = page
	return p
}

// Filter keeps entries whose name or email contains search (case-insensitive)
// and that were enrolled inside the window.
func Filter(all []model.Enrollment, search string, w Window, now time.Time) []model.Enrollment {
	needle := strings.ToLower(search)
	since := w.Since(now)

	out := make([]model.Enrollment, 0, len(all))
	for _, e := range all {
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Name), needle) &&
			!strings.Contains(strings.ToLower(e.Email), needle) {
			continue
		}
		if !since.IsZero() && e.EnrolledAt.Before(since) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortBy sorts in place; ties keep their incoming order.
func SortBy(list []model.Enrollment, s Sort) {
	switch s {
	case SortOldest:
		sort.SliceStable(list, func(i, j int) bool { return list[i].EnrolledAt.Before(list[j].EnrolledAt) })
	case SortName:
		sort.SliceStable(list, func(i, j int) bool {
			return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
		})
	default:
		sort.SliceStable(list, func(i, j int) bool { return list[i].EnrolledAt.After(list[j].EnrolledAt) })
	}
}

// Buttons returns at most MaxButtons page numbers centred on current and
// clamped to [1, total].
func Buttons(current, total int) []int {
	if total <= 0 {
		return nil
	}
	n := min(MaxButtons, total)

	var first int
	switch {
	case total <= MaxButtons || current <= 3:
		first = 1
	case current >= total-2:
		first = total - MaxButtons + 1
	default:
		first = current - 2
	}

	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
