package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
	"github.com/KaramelBytes/assetboard-cli/internal/filter"
	"github.com/KaramelBytes/assetboard-cli/internal/ingest"
	"github.com/KaramelBytes/assetboard-cli/internal/testutil"
)

func TestWorkbookLayout(t *testing.T) {
	tb := asset.NewTable([]string{"Kph", "Nilai Aset"}, []asset.Record{
		{asset.Text("A"), asset.Number(1500)},
		{asset.Missing(), asset.Number(2.5)},
	})
	p, err := Workbook(tb, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "data_aset_filtered.xlsx", p.Filename)
	assert.Equal(t, ContentType, p.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(p.Data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Data Filtered"}, f.GetSheetList())
	rows, err := f.GetRows("Data Filtered", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Kph", "Nilai Aset"}, rows[0])
	assert.Equal(t, []string{"A", "1500"}, rows[1])
	assert.Equal(t, "", rows[2][0])
	assert.Equal(t, "2.5", rows[2][1])
}

func TestWorkbookEmptyTableHasHeaderOnly(t *testing.T) {
	tb := asset.NewTable([]string{"Kph"}, nil)
	p, err := Workbook(tb, Options{Sheet: "Out", Filename: "out.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, "out.xlsx", p.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(p.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Out")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Kph"}}, rows)
}

func TestWorkbookBadSheetName(t *testing.T) {
	_, err := Workbook(asset.NewTable([]string{"a"}, nil), Options{Sheet: "bad[name]"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, asset.ErrExportFailed))
}

func TestExportReloadRoundTrip(t *testing.T) {
	n := ingest.NewNormalizer(ingest.DefaultOptions())
	res, err := n.Normalize(bytes.NewReader(testutil.XLSXBytes(t, testutil.AssetRegister())), "register.xlsx")
	require.NoError(t, err)

	b := filter.Binding{Roles: res.Roles, YearColumn: res.YearColumn}
	filtered := filter.Apply(res.Table, b, filter.Selection{filter.FieldUnit: filter.NewSet("KPH Bogor", "KPH Cianjur")})
	require.Equal(t, 4, filtered.Len())

	p, err := Workbook(filtered, DefaultOptions())
	require.NoError(t, err)
	back, err := n.Normalize(bytes.NewReader(p.Data), p.Filename)
	require.NoError(t, err)

	assert.True(t, back.HeaderFound)
	assert.Equal(t, 0, back.HeaderRow)
	assert.Equal(t, filtered.Columns, back.Table.Columns)
	require.Equal(t, filtered.Len(), back.Table.Len())
	for i, rec := range filtered.Records {
		for j, v := range rec {
			if v.IsMissing() {
				continue
			}
			assert.True(t, v.Equal(back.Table.Records[i][j]), "row %d col %s: %v vs %v", i, filtered.Columns[j], v, back.Table.Records[i][j])
		}
	}
}
