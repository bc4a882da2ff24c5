package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/domain/repositories"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/drivehub/drivehub-backend/pkg/errors"
)

// UserAdapter implements the UserRepository interface over the users table
// and its role profile tables.
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new user and its role profile in one transaction.
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	userRecord := goqu.Record{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"phone":         user.Phone,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
	if user.Address != nil {
		userRecord["street"] = user.Address.Street
		userRecord["city"] = user.Address.City
		userRecord["state"] = user.Address.State
		userRecord["zip_code"] = user.Address.ZipCode
		userRecord["country"] = user.Address.Country
	}

	query, args, err := a.db.Insert("users").Rows(userRecord).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("email %s is already registered", user.Email))
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	switch user.Role {
	case entities.RoleStudent:
		if err := a.insertStudentProfile(ctx, tx, user); err != nil {
			return err
		}
	case entities.RoleInstructor:
		if err := a.insertInstructorProfile(ctx, tx, user); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}

func (a *UserAdapter) insertStudentProfile(ctx context.Context, tx *sql.Tx, user *entities.User) error {
	profile := user.Student
	if profile == nil {
		profile = &entities.StudentProfile{}
	}

	conditions, err := json.Marshal(profile.MedicalConditions)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal medical conditions", err)
	}

	query, args, err := a.db.Insert("student_profiles").Rows(goqu.Record{
		"user_id":            user.ID,
		"license_number":     profile.LicenseNumber,
		"emergency_contact":  profile.EmergencyContact,
		"medical_conditions": string(conditions),
		"instructor_gender":  profile.Preferences.InstructorGender,
		"transmission":       profile.Preferences.Transmission,
		"lesson_duration":    profile.Preferences.LessonDuration,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create student profile", err)
	}
	return nil
}

func (a *UserAdapter) insertInstructorProfile(ctx context.Context, tx *sql.Tx, user *entities.User) error {
	profile := user.Instructor

	specialties, err := json.Marshal(profile.Specialties)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal specialties", err)
	}
	availability, err := json.Marshal(profile.Availability)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal availability", err)
	}
	serviceAreas, err := json.Marshal(profile.Location.ServiceAreas)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal service areas", err)
	}

	record := goqu.Record{
		"user_id":               user.ID,
		"license_number":        profile.LicenseNumber,
		"badge_number":          profile.BadgeNumber,
		"experience_years":      profile.ExperienceYears,
		"specialties":           string(specialties),
		"hourly_rate":           profile.HourlyRate,
		"availability":          string(availability),
		"city":                  profile.Location.City,
		"service_areas":         string(serviceAreas),
		"vehicle_make":          profile.Vehicle.Make,
		"vehicle_model":         profile.Vehicle.Model,
		"vehicle_year":          profile.Vehicle.Year,
		"vehicle_transmission":  profile.Vehicle.Transmission,
		"vehicle_dual_controls": profile.Vehicle.DualControls,
		"rating":                profile.Rating,
		"review_count":          profile.ReviewCount,
		"is_verified":           profile.IsVerified,
		"doc_license":           profile.Documents.License,
		"doc_badge":             profile.Documents.Badge,
		"doc_insurance":         profile.Documents.Insurance,
		"doc_background_check":  profile.Documents.BackgroundCheck,
	}
	if profile.Location.Coordinates != nil {
		record["latitude"] = profile.Location.Coordinates.Latitude
		record["longitude"] = profile.Location.Coordinates.Longitude
	}

	query, args, err := a.db.Insert("instructor_profiles").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create instructor profile", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getByColumn(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getByColumn(ctx, "email", email)
}

func (a *UserAdapter) getByColumn(ctx context.Context, column, value string) (*entities.User, error) {
	query, args, err := a.db.Select(
		"id", "email", "password_hash", "first_name", "last_name", "phone",
		"role", "street", "city", "state", "zip_code", "country",
		"is_active", "created_at", "updated_at",
	).From("users").
		Where(goqu.Ex{column: value}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user := &entities.User{}
	addr := entities.Address{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&addr.Street,
		&addr.City,
		&addr.State,
		&addr.ZipCode,
		&addr.Country,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with %s %s not found", column, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	if addr != (entities.Address{}) {
		user.Address = &addr
	}

	if err := a.loadProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *UserAdapter) loadProfile(ctx context.Context, user *entities.User) error {
	switch user.Role {
	case entities.RoleStudent:
		return a.loadStudentProfile(ctx, user)
	case entities.RoleInstructor:
		return a.loadInstructorProfile(ctx, user)
	}
	return nil
}

func (a *UserAdapter) loadStudentProfile(ctx context.Context, user *entities.User) error {
	query, args, err := a.db.Select(
		"license_number", "emergency_contact", "medical_conditions",
		"instructor_gender", "transmission", "lesson_duration",
	).From("student_profiles").
		Where(goqu.Ex{"user_id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.StudentProfile{}
	var conditions []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.LicenseNumber,
		&profile.EmergencyContact,
		&conditions,
		&profile.Preferences.InstructorGender,
		&profile.Preferences.Transmission,
		&profile.Preferences.LessonDuration,
	)
	if err == sql.ErrNoRows {
		user.Student = &entities.StudentProfile{}
		return nil
	}
	if err != nil {
		return apperrors.NewInternalError("failed to get student profile", err)
	}

	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &profile.MedicalConditions); err != nil {
			return apperrors.NewInternalError("failed to unmarshal medical conditions", err)
		}
	}
	user.Student = profile
	return nil
}

var instructorProfileColumns = []interface{}{
	"license_number", "badge_number", "experience_years", "specialties",
	"hourly_rate", "availability", "city", "service_areas",
	"latitude", "longitude", "vehicle_make", "vehicle_model", "vehicle_year",
	"vehicle_transmission", "vehicle_dual_controls", "rating", "review_count",
	"is_verified", "doc_license", "doc_badge", "doc_insurance",
	"doc_background_check",
}

func (a *UserAdapter) loadInstructorProfile(ctx context.Context, user *entities.User) error {
	query, args, err := a.db.Select(instructorProfileColumns...).
		From("instructor_profiles").
		Where(goqu.Ex{"user_id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	profile, err := scanInstructorProfile(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return apperrors.NewInternalError("instructor has no profile row", nil)
	}
	if err != nil {
		return apperrors.NewInternalError("failed to get instructor profile", err)
	}

	user.Instructor = profile
	return nil
}

func scanInstructorProfile(row rowScanner) (*entities.InstructorProfile, error) {
	profile := &entities.InstructorProfile{}
	var specialties, availability, serviceAreas []byte
	var lat, lng sql.NullFloat64

	err := row.Scan(
		&profile.LicenseNumber,
		&profile.BadgeNumber,
		&profile.ExperienceYears,
		&specialties,
		&profile.HourlyRate,
		&availability,
		&profile.Location.City,
		&serviceAreas,
		&lat,
		&lng,
		&profile.Vehicle.Make,
		&profile.Vehicle.Model,
		&profile.Vehicle.Year,
		&profile.Vehicle.Transmission,
		&profile.Vehicle.DualControls,
		&profile.Rating,
		&profile.ReviewCount,
		&profile.IsVerified,
		&profile.Documents.License,
		&profile.Documents.Badge,
		&profile.Documents.Insurance,
		&profile.Documents.BackgroundCheck,
	)
	if err != nil {
		return nil, err
	}

	if len(specialties) > 0 {
		if err := json.Unmarshal(specialties, &profile.Specialties); err != nil {
			return nil, fmt.Errorf("unmarshal specialties: %w", err)
		}
	}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &profile.Availability); err != nil {
			return nil, fmt.Errorf("unmarshal availability: %w", err)
		}
	}
	if len(serviceAreas) > 0 {
		if err := json.Unmarshal(serviceAreas, &profile.Location.ServiceAreas); err != nil {
			return nil, fmt.Errorf("unmarshal service areas: %w", err)
		}
	}
	if lat.Valid && lng.Valid {
		profile.Location.Coordinates = &entities.Location{
			Latitude:  lat.Float64,
			Longitude: lng.Float64,
		}
	}

	return profile, nil
}

// Update updates a user's mutable account fields and, for instructors, the
// profile fields an instructor may edit. Role and email are never changed.
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = time.Now()

	record := goqu.Record{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"phone":      user.Phone,
		"is_active":  user.IsActive,
		"updated_at": user.UpdatedAt,
	}
	if user.Address != nil {
		record["street"] = user.Address.Street
		record["city"] = user.Address.City
		record["state"] = user.Address.State
		record["zip_code"] = user.Address.ZipCode
		record["country"] = user.Address.Country
	}

	query, args, err := a.db.Update("users").
		Set(record).
		Where(goqu.Ex{"id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update user", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}

	if user.Role == entities.RoleInstructor && user.Instructor != nil {
		return a.updateInstructorProfile(ctx, user)
	}
	return nil
}

func (a *UserAdapter) updateInstructorProfile(ctx context.Context, user *entities.User) error {
	profile := user.Instructor

	specialties, err := json.Marshal(profile.Specialties)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal specialties", err)
	}
	availability, err := json.Marshal(profile.Availability)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal availability", err)
	}

	query, args, err := a.db.Update("instructor_profiles").
		Set(goqu.Record{
			"experience_years":     profile.ExperienceYears,
			"specialties":          string(specialties),
			"hourly_rate":          profile.HourlyRate,
			"availability":         string(availability),
			"city":                 profile.Location.City,
			"vehicle_make":         profile.Vehicle.Make,
			"vehicle_model":        profile.Vehicle.Model,
			"vehicle_year":         profile.Vehicle.Year,
			"vehicle_transmission": profile.Vehicle.Transmission,
		}).
		Where(goqu.Ex{"user_id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to update instructor profile", err)
	}
	return nil
}

// UpdateInstructorRating sets the aggregate rating and review count.
func (a *UserAdapter) UpdateInstructorRating(ctx context.Context, instructorID string, rating float64, reviewCount int) error {
	query, args, err := a.db.Update("instructor_profiles").
		Set(goqu.Record{
			"rating":       rating,
			"review_count": reviewCount,
		}).
		Where(goqu.Ex{"user_id": instructorID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update instructor rating", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("instructor with id %s not found", instructorID))
	}
	return nil
}

// ListInstructors retrieves active instructors matching the filter plus the
// total match count. Ordering always ends with review_count DESC, id ASC so
// pagination is deterministic.
func (a *UserAdapter) ListInstructors(ctx context.Context, filter repositories.InstructorFilter) ([]*entities.User, int, error) {
	where := []goqu.Expression{
		goqu.Ex{"u.role": entities.RoleInstructor},
		goqu.Ex{"u.is_active": true},
	}

	if filter.City != "" {
		where = append(where, goqu.Ex{"ip.city": filter.City})
	}
	for _, specialty := range filter.Specialties {
		if specialty == "" || specialty == "all" {
			continue
		}
		// specialties is a JSONB array of strings
		where = append(where, goqu.L("ip.specialties @> ?", fmt.Sprintf("[%q]", specialty)))
	}
	if filter.MinRating > 0 {
		where = append(where, goqu.C("rating").Table("ip").Gte(filter.MinRating))
	}
	if filter.MaxRate > 0 {
		where = append(where, goqu.C("hourly_rate").Table("ip").Lte(filter.MaxRate))
	}

	base := a.db.From(goqu.T("users").As("u")).
		Join(
			goqu.T("instructor_profiles").As("ip"),
			goqu.On(goqu.Ex{"ip.user_id": goqu.I("u.id")}),
		).
		Where(where...)

	countQuery, countArgs, err := base.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count instructors", err)
	}

	ds := base.Select(instructorListColumns()...).
		Order(instructorOrder(filter.SortBy)...)

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list instructors", err)
	}
	defer rows.Close()

	var instructors []*entities.User
	for rows.Next() {
		user, err := scanInstructorRow(rows)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan instructor", err)
		}
		instructors = append(instructors, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("error iterating instructors", err)
	}

	return instructors, total, nil
}

func instructorListColumns() []interface{} {
	cols := []interface{}{
		goqu.I("u.id"), goqu.I("u.email"), goqu.I("u.password_hash"),
		goqu.I("u.first_name"), goqu.I("u.last_name"), goqu.I("u.phone"),
		goqu.I("u.role"), goqu.I("u.is_active"),
		goqu.I("u.created_at"), goqu.I("u.updated_at"),
	}
	for _, c := range []string{
		"license_number", "badge_number", "experience_years", "specialties",
		"hourly_rate", "availability", "city", "service_areas",
		"latitude", "longitude", "vehicle_make", "vehicle_model",
		"vehicle_year", "vehicle_transmission", "vehicle_dual_controls",
		"rating", "review_count", "is_verified", "doc_license", "doc_badge",
		"doc_insurance", "doc_background_check",
	} {
		cols = append(cols, goqu.I("ip."+c))
	}
	return cols
}

func instructorOrder(sortBy repositories.InstructorSort) []exp.OrderedExpression {
	switch sortBy {
	case repositories.SortByRate:
		return []exp.OrderedExpression{
			goqu.I("ip.hourly_rate").Asc(),
			goqu.I("ip.review_count").Desc(),
			goqu.I("u.id").Asc(),
		}
	case repositories.SortByExperience:
		return []exp.OrderedExpression{
			goqu.I("ip.experience_years").Desc(),
			goqu.I("ip.review_count").Desc(),
			goqu.I("u.id").Asc(),
		}
	default:
		return []exp.OrderedExpression{
			goqu.I("ip.rating").Desc(),
			goqu.I("ip.review_count").Desc(),
			goqu.I("u.id").Asc(),
		}
	}
}

func scanInstructorRow(rows *sql.Rows) (*entities.User, error) {
	user := &entities.User{}
	profile := &entities.InstructorProfile{}
	var specialties, availability, serviceAreas []byte
	var lat, lng sql.NullFloat64

	err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&profile.LicenseNumber,
		&profile.BadgeNumber,
		&profile.ExperienceYears,
		&specialties,
		&profile.HourlyRate,
		&availability,
		&profile.Location.City,
		&serviceAreas,
		&lat,
		&lng,
		&profile.Vehicle.Make,
		&profile.Vehicle.Model,
		&profile.Vehicle.Year,
		&profile.Vehicle.Transmission,
		&profile.Vehicle.DualControls,
		&profile.Rating,
		&profile.ReviewCount,
		&profile.IsVerified,
		&profile.Documents.License,
		&profile.Documents.Badge,
		&profile.Documents.Insurance,
		&profile.Documents.BackgroundCheck,
	)
	if err != nil {
		return nil, err
	}

	if len(specialties) > 0 {
		if err := json.Unmarshal(specialties, &profile.Specialties); err != nil {
			return nil, fmt.Errorf("unmarshal specialties: %w", err)
		}
	}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &profile.Availability); err != nil {
			return nil, fmt.Errorf("unmarshal availability: %w", err)
		}
	}
	if len(serviceAreas) > 0 {
		if err := json.Unmarshal(serviceAreas, &profile.Location.ServiceAreas); err != nil {
			return nil, fmt.Errorf("unmarshal service areas: %w", err)
		}
	}
	if lat.Valid && lng.Valid {
		profile.Location.Coordinates = &entities.Location{
			Latitude:  lat.Float64,
			Longitude: lng.Float64,
		}
	}

	user.Instructor = profile
	return user, nil
}

// SetResetToken stores a password-reset token hash for a user, replacing any
// previous one.
func (a *UserAdapter) SetResetToken(ctx context.Context, userID, tokenHash string) error {
	query := `
		INSERT INTO password_resets (user_id, token_hash, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash, created_at = now()
	`
	if _, err := a.client.DB().ExecContext(ctx, query, userID, tokenHash); err != nil {
		return apperrors.NewInternalError("failed to store reset token", err)
	}
	return nil
}
