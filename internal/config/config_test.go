package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Pipeline decoding tests
// -----------------------------------------------------------------------------
//
// These tests validate that the YAML config maps onto the Go struct graph,
// that omitted keys keep their defaults, and that the strategies mapping
// keeps its document order.

const sampleYAML = `
job: heart
data:
  raw_data_dir: data/raw
  dataset_source: uci
  http:
    timeout: 5s
    max_retries: 2
transform:
  handle_missing:
    strategies:
      median: [trestbps, chol]
      most_frequent: [fbs, restecg]
      mean: [thalach]
      knn: [ca, thal]
    knn:
      neighbors: 3
load:
  host: db.local
  port: 5432
  dbname: heart
  user: etl
  password: secret
  db_table: heart_clean
`

func TestDecode_FullDocument(t *testing.T) {
	t.Parallel()

	p, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "heart", p.Job)
	assert.Equal(t, "data/raw", p.Data.RawDataDir)
	assert.Equal(t, 45, p.Data.DatasetID, "dataset_id default")
	assert.Equal(t, 5*time.Second, p.Data.HTTP.Timeout)
	assert.Equal(t, 2, p.Data.HTTP.MaxRetries)

	assert.Equal(t, 3, p.Transform.HandleMissing.KNN.Neighbors)
	assert.Equal(t, "uniform", p.Transform.HandleMissing.KNN.Weights, "weights default")
	assert.True(t, p.Transform.RemoveDuplicates, "remove_duplicates default")
	assert.True(t, p.Transform.ValidateTypes, "validate_types default")

	assert.Equal(t, "postgres", p.Load.Kind, "kind default")
	assert.Equal(t, 500, p.Load.BatchSize)
	assert.Equal(t, "heart_clean", p.Load.DBTable)
	assert.Equal(t, "none", p.Metrics.Backend)
}

func TestStrategies_PreserveDocumentOrder(t *testing.T) {
	t.Parallel()

	p, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	var names []string
	for _, g := range p.Transform.HandleMissing.Strategies {
		names = append(names, g.Strategy)
	}
	assert.Equal(t, []string{"median", "most_frequent", "mean", "knn"}, names)
	assert.Equal(t, []string{"trestbps", "chol"}, p.Transform.HandleMissing.Strategies.Columns(StrategyMedian))
	assert.Nil(t, p.Transform.HandleMissing.Strategies.Columns("missing"))
}

func TestStrategies_RejectsRepeatedKeyAndNonMapping(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"repeated":   "mean: [a]\nmean: [b]\n",
		"sequence":   "- mean\n- median\n",
		"bad columns": "mean: {a: 1}\n",
	}
	for name, doc := range cases {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var s Strategies
			assert.Error(t, yaml.Unmarshal([]byte(doc), &s))
		})
	}
}

func TestStrategies_MarshalRoundTripKeepsOrder(t *testing.T) {
	t.Parallel()

	in := Strategies{
		{Strategy: StrategyMostFrequent, Columns: []string{"fbs"}},
		{Strategy: StrategyMean, Columns: []string{"chol", "age"}},
	}
	b, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out Strategies
	require.NoError(t, yaml.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestDecode_MalformedYAMLIsConfigurationError(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("job: [unterminated"))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestApplyEnv_OverridesLoadSection(t *testing.T) {
	t.Parallel()

	p := Default()
	p.Load.Host = "from-yaml"
	env := map[string]string{
		EnvDBHost:     "from-env",
		EnvDBPort:     "6543",
		EnvDBPassword: "pw",
	}
	ApplyEnv(&p, func(k string) string { return env[k] })

	assert.Equal(t, "from-env", p.Load.Host)
	assert.Equal(t, 6543, p.Load.Port)
	assert.Equal(t, "pw", p.Load.Password)
	assert.Empty(t, p.Load.User, "unset variables leave fields alone")
}

func TestApplyEnv_BadPortFailsValidation(t *testing.T) {
	t.Parallel()

	p, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)
	ApplyEnv(&p, func(k string) string {
		if k == EnvDBPort {
			return "not-a-port"
		}
		return ""
	})
	assert.True(t, hasIssue(t, ValidatePipeline(p), SeverityError, "load.port", "gte"))
}

func TestLoadFile_WithDotEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(sampleYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvDBUser+"=dotenv_user\n"), 0o644))
	t.Setenv(EnvDBUser, "")
	os.Unsetenv(EnvDBUser)

	p, issues, err := LoadFile(cfgPath)
	require.NoError(t, err)
	for _, iss := range issues {
		assert.NotEqual(t, SeverityError, iss.Severity, iss.Error())
	}
	assert.Equal(t, "dotenv_user", p.Load.User)
}

func TestLoadFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.False(t, IsConfigurationError(err))
}

func TestLoadFile_OverlappingStrategiesRejected(t *testing.T) {
	t.Parallel()

	doc := `
data: {raw_data_dir: raw}
transform:
  handle_missing:
    strategies:
      mean: [thalach]
      median: [thalach]
load: {host: h, dbname: d, db_table: t}
`
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, _, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), `"thalach"`)
}
