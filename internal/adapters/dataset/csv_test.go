package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alejandrodnm/oilfield/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,f0,f1,f2,product
txEyH,0.705745,-0.497823,1.221170,105.280062
2acmU,1.334711,-0.340164,4.365080,73.037750
409Wp,1.022732,0.151990,1.419926,85.265647
`

func TestParseCSV_Valid(t *testing.T) {
	sites, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, sites, 3)

	assert.Equal(t, "txEyH", sites[0].ID)
	assert.InDelta(t, 0.705745, sites[0].F0, 1e-9)
	assert.InDelta(t, -0.497823, sites[0].F1, 1e-9)
	assert.InDelta(t, 1.221170, sites[0].F2, 1e-9)
	assert.InDelta(t, 105.280062, sites[0].Product, 1e-9)
	assert.Equal(t, "409Wp", sites[2].ID)
}

func TestParseCSV_ReorderedColumnsAndBOM(t *testing.T) {
	data := "\ufeffproduct,id,f2,f1,f0\n10.5,a,3,2,1\n"
	sites, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, domain.Site{ID: "a", F0: 1, F1: 2, F2: 3, Product: 10.5}, sites[0])
}

func TestParseCSV_SchemaMismatch(t *testing.T) {
	cases := map[string]string{
		"missing column": "id,f0,f1,product\na,1,2,3\n",
		"wrong name":     "id,f0,f1,f3,product\na,1,2,3,4\n",
		"field count":    "id,f0,f1,f2,product\na,1,2,3\n",
		"non numeric":    "id,f0,f1,f2,product\na,1,x,3,4\n",
		"nan value":      "id,f0,f1,f2,product\na,1,NaN,3,4\n",
		"empty id":       "id,f0,f1,f2,product\n,1,2,3,4\n",
		"empty file":     "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(data))
			assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
		})
	}
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geo_data_0.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	sites, err := FileSource{}.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, sites, 3)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := FileSource{}.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, domain.ErrDataSourceMissing)
}

func TestSource_Resolve(t *testing.T) {
	s := NewSource(nil, "https://data.example.com/datasets/")
	assert.Equal(t, "https://data.example.com/datasets/geo_data_0.csv", s.Resolve("geo_data_0.csv"))
	assert.Equal(t, "/abs/geo.csv", s.Resolve("/abs/geo.csv"))
	assert.Equal(t, "http://other/x.csv", s.Resolve("http://other/x.csv"))

	local := NewSource(nil, "")
	assert.Equal(t, "data/geo.csv", local.Resolve("data/geo.csv"))
}

func TestSource_RemoteWithoutLoader(t *testing.T) {
	_, err := NewSource(nil, "").Load(context.Background(), "https://example.com/x.csv")
	assert.Error(t, err)
}
