package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The Cypher below runs only against a live server, so these guards pin
// the statement shapes that past bugs depended on.

func TestReportingChainQueryBindsPath(t *testing.T) {
	// Ordering must go through a bound path variable; Neo4j 5 rejects a
	// pattern expression used as an ORDER BY value.
	assert.Contains(t, reportingChainQuery, "MATCH p = (e:Employee")
	assert.Contains(t, reportingChainQuery, "ORDER BY length(p)")
	assert.NotContains(t, reportingChainQuery, "length((")
}

func TestUpsertEmployeeQueryWritesBothEdges(t *testing.T) {
	// ListDepartmentMembers reads MEMBER_OF, so the upsert must write it.
	assert.Contains(t, upsertEmployeeQuery, "MERGE (e)-[:REPORTS_TO]->(m)")
	assert.Contains(t, upsertEmployeeQuery, "MERGE (d:Department {id: $department})")
	assert.Contains(t, upsertEmployeeQuery, "MERGE (e)-[:MEMBER_OF]->(d)")
	// Stale edges are cleared before the new ones are written.
	assert.Contains(t, upsertEmployeeQuery, "OPTIONAL MATCH (e)-[dm:MEMBER_OF]->()")
}
