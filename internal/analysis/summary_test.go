package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

var allRoles = asset.NewRoleMap(map[asset.Role]string{
	asset.RoleUnit:      "Kph",
	asset.RoleCondition: "Kondisi",
	asset.RoleCategory:  "Jenis",
	asset.RoleValue:     "Nilai",
})

func register() *asset.Table {
	return asset.NewTable([]string{"Kph", "Jenis", "Kondisi", "Nilai"}, []asset.Record{
		{asset.Text("A"), asset.Text("Kendaraan"), asset.Text("Baik"), asset.Number(100)},
		{asset.Text("A"), asset.Text("Bangunan"), asset.Text("Rusak Berat"), asset.Number(500)},
		{asset.Text("B"), asset.Text("Kendaraan"), asset.Text("Sangat Bagus"), asset.Number(300)},
		{asset.Text("B"), asset.Missing(), asset.Missing(), asset.Number(500)},
		{asset.Text("C"), asset.Text("Kendaraan"), asset.Text("GOOD"), asset.Missing()},
	})
}

func TestSummarizeWorkedExample(t *testing.T) {
	tb := asset.NewTable([]string{"Kph", "Nilai", "Kondisi"}, []asset.Record{
		{asset.Text("A"), asset.Number(100), asset.Text("Baik")},
		{asset.Text("B"), asset.Missing(), asset.Text("Rusak")},
	})
	roles := asset.NewRoleMap(map[asset.Role]string{
		asset.RoleUnit: "Kph", asset.RoleValue: "Nilai", asset.RoleCondition: "Kondisi",
	})
	s := Summarize(tb, roles, DefaultOptions())
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 100.0, s.ValueTotal)
	assert.Equal(t, 1, s.GoodCondition)
	assert.Equal(t, 1, s.ProblemCondition)
	assert.Equal(t, 0, s.Incomplete)
	assert.True(t, s.IncompleteAvailable)
}

func TestSummarizeRegister(t *testing.T) {
	s := Summarize(register(), allRoles, DefaultOptions())
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 4, s.ValueCount)
	assert.Equal(t, 1400.0, s.ValueTotal)
	assert.Equal(t, 350.0, s.ValueMean)
	assert.Equal(t, 400.0, s.ValueMedian)

	assert.Equal(t, 3, s.GoodCondition)
	assert.Equal(t, 2, s.ProblemCondition, "missing condition counts as a problem")
	assert.Equal(t, 1, s.Incomplete)

	assert.Equal(t, []CategoryCount{{"Kendaraan", 3}, {"Bangunan", 1}}, s.CategoryDistribution)
	require.Len(t, s.ConditionDistribution, 4)

	assert.Equal(t, []GroupValue{{"B", 800, 2}, {"A", 600, 2}, {"C", 0, 0}}, s.ValueByUnit)
	assert.Equal(t, []GroupValue{{"Bangunan", 500, 1}, {"Kendaraan", 200, 2}}, s.ValueByCategory)

	require.NotNil(t, s.Highest)
	assert.Equal(t, 1, s.Highest.Row, "first occurrence wins ties")
	assert.Equal(t, "Bangunan", s.Highest.Record["Jenis"].String())
	require.NotNil(t, s.Lowest)
	assert.Equal(t, 0, s.Lowest.Row)
	assert.Equal(t, []float64{100, 500, 300, 500}, s.ValueSeries)
}

func TestSummarizeEmptyAndUnresolved(t *testing.T) {
	empty := register().WithRecords(nil)
	s := Summarize(empty, allRoles, DefaultOptions())
	assert.Equal(t, 0, s.Count)
	assert.Zero(t, s.ValueTotal)
	assert.Zero(t, s.ValueMean)
	assert.Zero(t, s.ValueMedian)
	assert.Nil(t, s.Highest)
	assert.Empty(t, s.Histogram)

	s = Summarize(register(), asset.NewRoleMap(nil), DefaultOptions())
	assert.Equal(t, 5, s.Count)
	assert.False(t, s.ValueAvailable)
	assert.False(t, s.ConditionAvailable)
	assert.False(t, s.IncompleteAvailable)
	assert.Zero(t, s.ProblemCondition)
	assert.Zero(t, s.Incomplete)

	s = Summarize(nil, allRoles, DefaultOptions())
	assert.Equal(t, 0, s.Count)
}

func TestIncompleteIgnoresUnresolvedRoles(t *testing.T) {
	tb := asset.NewTable([]string{"Kph", "Nilai", "Other"}, []asset.Record{
		{asset.Missing(), asset.Number(1), asset.Missing()},
	})
	roles := asset.NewRoleMap(map[asset.Role]string{asset.RoleUnit: "Kph", asset.RoleValue: "Nilai"})
	s := Summarize(tb, roles, DefaultOptions())
	assert.Equal(t, 0, s.Incomplete)

	opt := DefaultOptions()
	opt.IncompleteThreshold = 1
	assert.Equal(t, 1, Summarize(tb, roles, opt).Incomplete)
}

func TestIncompleteIsMonotonic(t *testing.T) {
	tb := register().Clone()
	prev := Summarize(tb, allRoles, DefaultOptions()).Incomplete
	for row := range tb.Records {
		for col := range tb.Columns {
			tb.Records[row][col] = asset.Missing()
			cur := Summarize(tb, allRoles, DefaultOptions()).Incomplete
			assert.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
	}
	assert.Equal(t, tb.Len(), prev)
}

func TestHistogram(t *testing.T) {
	opt := DefaultOptions()
	opt.HistogramBins = 4
	s := Summarize(register(), allRoles, opt)
	require.Len(t, s.Histogram, 4)
	total := 0
	for _, b := range s.Histogram {
		total += b.Count
	}
	assert.Equal(t, s.ValueCount, total)
	assert.Equal(t, 100.0, s.Histogram[0].Lower)
	assert.Equal(t, 2, s.Histogram[3].Count)

	single := asset.NewTable([]string{"Nilai"}, []asset.Record{{asset.Number(7)}, {asset.Number(7)}})
	s = Summarize(single, asset.NewRoleMap(map[asset.Role]string{asset.RoleValue: "Nilai"}), opt)
	require.Len(t, s.Histogram, 1)
	assert.Equal(t, 2, s.Histogram[0].Count)
}

func TestCustomGoodKeywords(t *testing.T) {
	opt := DefaultOptions()
	opt.GoodKeywords = []string{" RUSAK "}
	s := Summarize(register(), allRoles, opt)
	assert.Equal(t, 1, s.GoodCondition)
}
