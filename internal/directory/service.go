package directory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/atriumhq/atrium/pkg/models"
)

const employeeCacheTTL = 10 * time.Minute

// Cache is the read-through cache collaborator; nil-safe via NopCache
type Cache interface {
	Get(ctx context.Context, key string, target interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Service fronts the Neo4j store with caching for the hot lookup paths
type Service struct {
	store *Neo4jStore
	cache Cache
}

func NewService(store *Neo4jStore, cache Cache) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{store: store, cache: cache}
}

func (s *Service) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	key := "employee:" + id

	var cached models.Employee
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("directory: cache read failed for %s: %v", id, err)
	}
	if found {
		return &cached, nil
	}

	employee, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, employee, employeeCacheTTL); err != nil {
		log.Printf("directory: cache write failed for %s: %v", id, err)
	}

	return employee, nil
}

func (s *Service) GetReportingChain(ctx context.Context, id string) ([]models.Employee, error) {
	return s.store.GetReportingChain(ctx, id)
}

func (s *Service) ListDepartmentMembers(ctx context.Context, departmentID string) ([]models.Employee, error) {
	return s.store.ListDepartmentMembers(ctx, departmentID)
}

func (s *Service) UpsertEmployee(ctx context.Context, employee models.Employee) error {
	if employee.ID == "" {
		return fmt.Errorf("employee id is required")
	}

	if err := s.store.UpsertEmployee(ctx, employee); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, "employee:"+employee.ID); err != nil {
		log.Printf("directory: cache invalidation failed for %s: %v", employee.ID, err)
	}

	return nil
}

// NopCache disables caching when Redis is not configured
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string, target interface{}) (bool, error) {
	return false, nil
}

func (NopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (NopCache) Delete(ctx context.Context, key string) error { return nil }
