package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/intervention-insights-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "insights", Password: "pw", Name: "intervention_insights", SSLMode: "disable"})
	assert.Contains(t, dsn, "host=db port=5432")
	assert.Contains(t, dsn, "dbname=intervention_insights sslmode=disable")
	assert.Contains(t, dsn, "application_name=intervention-insights-api")
	assert.Contains(t, dsn, "connect_timeout=5")
}
