// Package directory is the organizational directory backed by Neo4j:
// employees and departments as nodes, REPORTS_TO and MEMBER_OF as edges.
// Org-chart rendering happens in the UI; this layer only serves the data.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/pkg/models"
)

type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jStore(cfg config.DirectoryConfig, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
			c.MaxConnectionLifetime = time.Hour
			c.ConnectionAcquisitionTimeout = cfg.ConnTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	store := &Neo4jStore{driver: driver}

	if err := store.initializeSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize directory schema: %w", err)
	}

	return store, nil
}

func (s *Neo4jStore) initializeSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT employee_id IF NOT EXISTS FOR (e:Employee) REQUIRE e.id IS UNIQUE",
		"CREATE CONSTRAINT department_id IF NOT EXISTS FOR (d:Department) REQUIRE d.id IS UNIQUE",
		"CREATE INDEX employee_email IF NOT EXISTS FOR (e:Employee) ON (e.email)",
	}

	for _, constraint := range constraints {
		if _, err := session.Run(ctx, constraint, nil); err != nil {
			return fmt.Errorf("failed to apply %q: %w", constraint, err)
		}
	}

	return nil
}

func (s *Neo4jStore) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (e:Employee {id: $id})
		OPTIONAL MATCH (e)-[:REPORTS_TO]->(m:Employee)
		OPTIONAL MATCH (e)-[:MEMBER_OF]->(d:Department)
		RETURN e, m.id AS manager_id, d.name AS department`,
		map[string]interface{}{"id": id},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee %s: %w", id, err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return nil, fmt.Errorf("employee %s not found: %w", id, err)
	}

	return employeeFromRecord(record)
}

// reportingChainQuery binds the traversal path so the chain can be
// ordered by hop count. A bare pattern expression inside ORDER BY is not
// legal Cypher on Neo4j 5.
const reportingChainQuery = `
	MATCH p = (e:Employee {id: $id})-[:REPORTS_TO*1..10]->(m:Employee)
	RETURN m ORDER BY length(p)`

// GetReportingChain walks REPORTS_TO edges upward from an employee to the
// top of the org.
func (s *Neo4jStore) GetReportingChain(ctx context.Context, id string) ([]models.Employee, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, reportingChainQuery,
		map[string]interface{}{"id": id},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load reporting chain for %s: %w", id, err)
	}

	var chain []models.Employee
	for result.Next(ctx) {
		employee, err := employeeFromNodeValue(result.Record().Values[0])
		if err != nil {
			return nil, err
		}
		chain = append(chain, *employee)
	}

	return chain, result.Err()
}

// ListDepartmentMembers returns every employee in a department
func (s *Neo4jStore) ListDepartmentMembers(ctx context.Context, departmentID string) ([]models.Employee, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (e:Employee)-[:MEMBER_OF]->(d:Department {id: $id})
		RETURN e ORDER BY e.name`,
		map[string]interface{}{"id": departmentID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", departmentID, err)
	}

	var members []models.Employee
	for result.Next(ctx) {
		employee, err := employeeFromNodeValue(result.Record().Values[0])
		if err != nil {
			return nil, err
		}
		members = append(members, *employee)
	}

	return members, result.Err()
}

// upsertEmployeeQuery rewrites the employee node and both outgoing edges.
// The REPORTS_TO and MEMBER_OF targets are merged so a manager or
// department can be referenced before its own upsert arrives.
const upsertEmployeeQuery = `
	MERGE (e:Employee {id: $id})
	SET e.name = $name, e.email = $email, e.job_title = $job_title, e.location = $location
	WITH e
	OPTIONAL MATCH (e)-[r:REPORTS_TO]->()
	DELETE r
	WITH e
	OPTIONAL MATCH (e)-[dm:MEMBER_OF]->()
	DELETE dm
	WITH e
	FOREACH (_ IN CASE WHEN $manager_id <> '' THEN [1] ELSE [] END |
		MERGE (m:Employee {id: $manager_id})
		MERGE (e)-[:REPORTS_TO]->(m))
	FOREACH (_ IN CASE WHEN $department <> '' THEN [1] ELSE [] END |
		MERGE (d:Department {id: $department})
		SET d.name = $department
		MERGE (e)-[:MEMBER_OF]->(d))`

// UpsertEmployee writes an employee node and its edges
func (s *Neo4jStore) UpsertEmployee(ctx context.Context, employee models.Employee) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx, upsertEmployeeQuery,
		map[string]interface{}{
			"id":         employee.ID,
			"name":       employee.Name,
			"email":      employee.Email,
			"job_title":  employee.JobTitle,
			"location":   employee.Location,
			"manager_id": employee.ManagerID,
			"department": employee.Department,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to upsert employee %s: %w", employee.ID, err)
	}

	return nil
}

func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func employeeFromRecord(record *neo4j.Record) (*models.Employee, error) {
	employee, err := employeeFromNodeValue(record.Values[0])
	if err != nil {
		return nil, err
	}

	if managerID, ok := record.Values[1].(string); ok {
		employee.ManagerID = managerID
	}
	if department, ok := record.Values[2].(string); ok {
		employee.Department = department
	}

	return employee, nil
}

func employeeFromNodeValue(value interface{}) (*models.Employee, error) {
	node, ok := value.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected node value %T", value)
	}

	employee := &models.Employee{}
	if v, ok := node.Props["id"].(string); ok {
		employee.ID = v
	}
	if v, ok := node.Props["name"].(string); ok {
		employee.Name = v
	}
	if v, ok := node.Props["email"].(string); ok {
		employee.Email = v
	}
	if v, ok := node.Props["job_title"].(string); ok {
		employee.JobTitle = v
	}
	if v, ok := node.Props["location"].(string); ok {
		employee.Location = v
	}

	return employee, nil
}
