package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"github.com/noah-isme/intervention-insights-api/internal/insights"
)

type operationDoc struct {
	Parameters []struct {
		Name    string      `json:"name"`
		Default interface{} `json:"default"`
	} `json:"parameters"`
}

func TestDocIsRegistered(t *testing.T) {
	doc, err := swag.ReadDoc(swag.Name)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "/api/v1", parsed["basePath"])
}

func TestTopLimitDefaultMatchesPipeline(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]operationDoc `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docTemplate), &doc))

	op, ok := doc.Paths["/analytics/interventions/top"]["get"]
	require.True(t, ok)
	for _, param := range op.Parameters {
		if param.Name == "limit" {
			assert.EqualValues(t, insights.DefaultTopLimit, param.Default)
			return
		}
	}
	t.Fatal("limit parameter not documented")
}
