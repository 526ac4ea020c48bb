package index

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/shelf/internal/article"
	"github.com/pders01/shelf/internal/metrics"
	"github.com/pders01/shelf/internal/pager"
)

func makeRecords(n int) []article.Record {
	records := make([]article.Record, n)
	for i := range n {
		loc := article.Location(fmt.Sprintf("http://h/articles/a%02d", i))
		title := fmt.Sprintf("Article %02d", i)
		summary := "general text"
		if i%2 == 0 {
			summary = "Even numbered Guide"
		}
		records[i] = article.New(loc, title, summary)
	}
	return records
}

func TestState_LoadAndPaginate(t *testing.T) {
	s := New(10, nil)
	s.Load(makeRecords(23))

	v := s.Snapshot()
	assert.Equal(t, 23, v.Total)
	assert.Equal(t, 23, v.Matches)
	assert.Equal(t, 3, v.PageCount)
	assert.Equal(t, 0, v.Page)
	assert.Len(t, v.Visible, 10)

	assert.True(t, s.SetPage(2))
	v = s.Snapshot()
	assert.Equal(t, pager.Window{Start: 20, End: 23}, v.Window)
	assert.Len(t, v.Visible, 3)
	assert.Equal(t, "Article 20", v.Visible[0].Title)

	assert.False(t, s.Next(), "next on the last page is a no-op")
	assert.Equal(t, 2, s.Snapshot().Page)

	assert.True(t, s.Prev())
	assert.Equal(t, 1, s.Snapshot().Page)
	assert.True(t, s.First())
	assert.False(t, s.Prev())
	assert.Equal(t, 0, s.Snapshot().Page)
	assert.True(t, s.Last())
	assert.Equal(t, 2, s.Snapshot().Page)
}

func TestState_SetPageClamps(t *testing.T) {
	s := New(10, nil)
	s.Load(makeRecords(23))

	s.SetPage(99)
	assert.Equal(t, 2, s.Snapshot().Page)
	s.SetPage(-4)
	assert.Equal(t, 0, s.Snapshot().Page)
}

func TestState_SetQuery(t *testing.T) {
	s := New(5, nil)
	records := makeRecords(23)
	s.Load(records)
	s.SetPage(3)

	s.SetQuery("  GUIDE ")
	v := s.Snapshot()
	assert.Equal(t, "guide", v.Query)
	assert.Equal(t, 0, v.Page, "query resets the page")
	assert.Equal(t, 12, v.Matches)
	for _, r := range v.Visible {
		assert.Contains(t, strings.ToLower(r.Summary), "guide")
	}

	s.SetQuery("article 07")
	v = s.Snapshot()
	require.Equal(t, 1, v.Matches)
	assert.Equal(t, records[7], v.Visible[0])

	s.SetQuery("")
	v = s.Snapshot()
	assert.Equal(t, 23, v.Matches)
	assert.Equal(t, records[:5], v.Visible, "empty query keeps original order")
}

func TestState_EmptyResult(t *testing.T) {
	s := New(10, nil)
	s.Load(makeRecords(23))
	s.SetPage(2)

	s.SetQuery("nothing matches this")
	v := s.Snapshot()
	assert.True(t, v.Empty())
	assert.Equal(t, 0, v.Page)
	assert.Equal(t, 0, v.PageCount)
	assert.Empty(t, v.Visible)
	assert.False(t, s.Next())
	assert.False(t, s.Last())
}

func TestState_LoadReappliesQuery(t *testing.T) {
	s := New(10, nil)
	s.SetQuery("guide")
	s.Load(makeRecords(10))

	v := s.Snapshot()
	assert.Equal(t, 10, v.Total)
	assert.Equal(t, 5, v.Matches)
}

func TestState_SetPageSize(t *testing.T) {
	s := New(5, nil)
	s.Load(makeRecords(23))
	s.SetPage(4)

	s.SetPageSize(10)
	assert.Equal(t, 2, s.Snapshot().Page)

	s.SetPageSize(0)
	assert.Equal(t, 23, s.Snapshot().PageCount)
}

func TestState_Record(t *testing.T) {
	s := New(10, nil)
	records := makeRecords(23)
	s.Load(records)
	s.SetPage(1)

	r, ok := s.Record(3)
	require.True(t, ok)
	assert.Equal(t, records[13], r)

	_, ok = s.Record(10)
	assert.False(t, ok)
}

func TestState_SnapshotIsACopy(t *testing.T) {
	s := New(10, nil)
	s.Load(makeRecords(3))

	v := s.Snapshot()
	v.Visible[0].Title = "mutated"
	assert.Equal(t, "Article 00", s.Snapshot().Visible[0].Title)
}

func TestState_Metrics(t *testing.T) {
	m := metrics.New()
	s := New(10, m)
	s.Load(makeRecords(23))

	s.SetQuery("")
	s.SetQuery("guide")
	s.SetQuery("zzz")
	s.SetPage(1)
	s.SetPage(1)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueriesTotal.WithLabelValues("empty")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueriesTotal.WithLabelValues("match")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueriesTotal.WithLabelValues("zero_result")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.PageChangesTotal), "zero results leave nowhere to page")
}

func TestState_ConcurrentAccess(t *testing.T) {
	s := New(10, nil)
	s.Load(makeRecords(50))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				switch (i + j) % 4 {
				case 0:
					s.SetQuery(fmt.Sprintf("article %d", j%5))
				case 1:
					s.Next()
				case 2:
					s.SetPage(j)
				default:
					v := s.Snapshot()
					assert.LessOrEqual(t, len(v.Visible), 10)
				}
			}
		}()
	}
	wg.Wait()

	v := s.Snapshot()
	assert.True(t, v.Page == 0 || v.Page < v.PageCount)
}
