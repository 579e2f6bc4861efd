package csv_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcsv "heartetl/internal/parser/csv"
	"heartetl/internal/table"
)

const sample = "\uFEFFAge,Sex,Chol,Ca,Thal,Num\n" +
	"63,1,233,0.0,6.0,0\n" +
	"67,1,?,3.0,,2\n" +
	"67,1,229,NaN,7.0\n" + // short row
	" 37 ,1,250,0.0,NA,0\n"

func TestParse_TypesNullsAndHeaders(t *testing.T) {
	t.Parallel()

	p := pcsv.NewParser(pcsv.Options{TrimSpace: true})
	tb, skipped, err := p.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"age", "sex", "chol", "ca", "thal", "num"}, tb.Columns())
	assert.Equal(t, []int64{0, 1, 2}, tb.RowIDs())

	assert.Equal(t, []any{int64(63), int64(1), int64(233), 0.0, 6.0, int64(0)}, tb.Row(0))
	assert.Equal(t, []any{int64(67), int64(1), nil, 3.0, nil, int64(2)}, tb.Row(1))
	assert.Equal(t, []any{int64(37), int64(1), int64(250), 0.0, nil, int64(0)}, tb.Row(2))
}

func TestParse_HeaderMapAndIDColumn(t *testing.T) {
	t.Parallel()

	in := "id,trestbps_raw,Vážený průměr\n10,145,1.5\n11,,2\n"
	p := pcsv.NewParser(pcsv.Options{
		HeaderMap: map[string]string{"trestbps_raw": "trestbps"},
		IDColumn:  "id",
	})
	tb, _, err := p.Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"trestbps", "vazeny_prumer"}, tb.Columns())
	assert.Equal(t, []int64{10, 11}, tb.RowIDs())
	v, _ := tb.Value(1, "trestbps")
	assert.Nil(t, v)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty input":      "",
		"duplicate header": "a,A\n1,2\n",
		"bad id":           "id,a\nx,1\n",
	}
	for name, in := range tests {
		in := in
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, _, err := pcsv.NewParser(pcsv.Options{IDColumn: "id"}).Parse(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestParse_CustomNullTokens(t *testing.T) {
	t.Parallel()

	p := pcsv.NewParser(pcsv.Options{NullTokens: []string{"-"}, Comma: ';'})
	tb, _, err := p.Parse(strings.NewReader("a;b\n-;?\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "?"}, tb.Row(0))
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Parallel()

	tb, err := table.New("age", "oldpeak", "thal", "flag")
	require.NoError(t, err)
	require.NoError(t, tb.AppendRow(5, 63, 2.3, 6.0, true))
	require.NoError(t, tb.AppendRow(9, nil, 0.0, nil, false))

	var buf bytes.Buffer
	require.NoError(t, pcsv.Write(&buf, tb, "id"))
	assert.Equal(t, "id,age,oldpeak,thal,flag\n5,63,2.3,6.0,true\n9,,0.0,,false\n", buf.String())

	back, skipped, err := pcsv.NewParser(pcsv.Options{IDColumn: "id"}).Parse(&buf)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, tb.RowIDs(), back.RowIDs())
	for _, c := range []string{"age", "oldpeak", "thal"} {
		want, _ := tb.Column(c)
		got, _ := back.Column(c)
		assert.Equal(t, want, got, c)
	}
}

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"Age", "age"},
		{" Resting BP ", "resting_bp"},
		{"ST-depression.value", "st_depression_value"},
		{"Důvod", "duvod"},
		{"???", "col"},
		{"a__b", "a_b"},
	}
	for _, tt := range tests {
		if got := pcsv.NormalizeHeader(tt.in); got != tt.want {
			t.Fatalf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
