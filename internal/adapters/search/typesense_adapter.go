package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	tsclient "github.com/drivehub/drivehub-backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements instructor search using Typesense. Hits carry
// only the indexed discovery fields; callers needing the full record fetch
// it from the database by id.
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.InstructorSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the instructors collection exists.
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index adds or replaces an instructor in the index.
func (a *TypesenseAdapter) Index(ctx context.Context, instructor *entities.User) error {
	profile := instructor.Instructor
	if profile == nil {
		return fmt.Errorf("user %s has no instructor profile", instructor.ID)
	}

	document := map[string]interface{}{
		"id":               instructor.ID,
		"name":             instructor.FirstName + " " + instructor.LastName,
		"city":             profile.Location.City,
		"specialties":      profile.Specialties,
		"hourly_rate":      profile.HourlyRate,
		"rating":           profile.Rating,
		"review_count":     profile.ReviewCount,
		"experience_years": profile.ExperienceYears,
		"transmission":     profile.Vehicle.Transmission,
		"is_verified":      profile.IsVerified,
		"is_active":        instructor.IsActive,
		"created_at":       instructor.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(tsclient.InstructorsCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index instructor: %w", err)
	}
	return nil
}

// Delete removes an instructor from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.InstructorsCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete instructor from index: %w", err)
	}
	return nil
}

// Search finds instructors by free-text query plus filters.
func (a *TypesenseAdapter) Search(ctx context.Context, query string, filter repositories.InstructorFilter) ([]*entities.User, int, error) {
	if query == "" {
		query = "*"
	}

	page := 1
	if filter.Limit > 0 {
		page = filter.Offset/filter.Limit + 1
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("name,city,specialties"),
		FilterBy: pointer.String(buildFilterBy(filter)),
		SortBy:   pointer.String("rating:desc,review_count:desc"),
		Page:     pointer.Int(page),
		PerPage:  pointer.Int(filter.Limit),
	}

	result, err := a.client.Client().Collection(tsclient.InstructorsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search instructors: %w", err)
	}

	total := 0
	if result.Found != nil {
		total = *result.Found
	}

	instructors := []*entities.User{}
	if result.Hits == nil {
		return instructors, total, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document
		instructors = append(instructors, documentToInstructor(doc))
	}

	return instructors, total, nil
}

func buildFilterBy(filter repositories.InstructorFilter) string {
	parts := []string{"is_active:=true"}

	if filter.City != "" {
		parts = append(parts, fmt.Sprintf("city:=%s", filter.City))
	}
	for _, specialty := range filter.Specialties {
		if specialty == "" || specialty == "all" {
			continue
		}
		parts = append(parts, fmt.Sprintf("specialties:=%s", specialty))
	}
	if filter.MinRating > 0 {
		parts = append(parts, fmt.Sprintf("rating:>=%g", filter.MinRating))
	}
	if filter.MaxRate > 0 {
		parts = append(parts, fmt.Sprintf("hourly_rate:<=%g", filter.MaxRate))
	}

	return strings.Join(parts, " && ")
}

func documentToInstructor(doc map[string]interface{}) *entities.User {
	user := &entities.User{Role: entities.RoleInstructor, IsActive: true}
	profile := &entities.InstructorProfile{}

	if v, ok := doc["id"].(string); ok {
		user.ID = v
	}
	if v, ok := doc["name"].(string); ok {
		name := strings.SplitN(v, " ", 2)
		user.FirstName = name[0]
		if len(name) > 1 {
			user.LastName = name[1]
		}
	}
	if v, ok := doc["city"].(string); ok {
		profile.Location.City = v
	}
	if v, ok := doc["specialties"].([]interface{}); ok {
		for _, s := range v {
			if str, ok := s.(string); ok {
				profile.Specialties = append(profile.Specialties, str)
			}
		}
	}
	if v, ok := doc["hourly_rate"].(float64); ok {
		profile.HourlyRate = v
	}
	if v, ok := doc["rating"].(float64); ok {
		profile.Rating = v
	}
	if v, ok := doc["review_count"].(float64); ok {
		profile.ReviewCount = int(v)
	}
	if v, ok := doc["experience_years"].(float64); ok {
		profile.ExperienceYears = int(v)
	}
	if v, ok := doc["transmission"].(string); ok {
		profile.Vehicle.Transmission = v
	}
	if v, ok := doc["is_verified"].(bool); ok {
		profile.IsVerified = v
	}

	user.Instructor = profile
	return user
}
