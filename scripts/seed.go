package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivehub/drivehub-backend/internal/adapters/database"
	"github.com/drivehub/drivehub-backend/internal/adapters/search"
	"github.com/drivehub/drivehub-backend/internal/domain/entities"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/postgres"
	"github.com/drivehub/drivehub-backend/internal/infrastructure/clients/typesense"
	"github.com/drivehub/drivehub-backend/pkg/config"
)

// Seeds a development database with a handful of instructors, students,
// bookings and reviews. Run with RESET_DB=true to start from empty tables.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	var searchRepo *search.TypesenseAdapter
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
		if err := searchRepo.InitSchema(ctx); err != nil {
			log.Printf("Failed to init search schema, skipping indexing: %v", err)
			searchRepo = nil
		}
	} else {
		log.Printf("Typesense unavailable, skipping indexing: %v", err)
	}

	userRepo := database.NewUserAdapter(pgClient)
	bookingRepo := database.NewBookingAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				password_resets,
				reviews,
				bookings,
				instructor_profiles,
				student_profiles,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Seed-Password-1"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}
	now := time.Now()

	weekdays := entities.WeeklyAvailability{
		"monday":    {"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		"tuesday":   {"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		"wednesday": {"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		"thursday":  {"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		"friday":    {"09:00", "10:00", "11:00", "14:00"},
	}

	// 1. Instructors
	instructors := []*entities.User{
		{
			ID:        uuid.New().String(),
			Email:     "sarah.mitchell@drivehub.dev",
			FirstName: "Sarah",
			LastName:  "Mitchell",
			Phone:     "+44 7700 900101",
			Role:      entities.RoleInstructor,
			IsActive:  true,
			Instructor: &entities.InstructorProfile{
				LicenseNumber:   "ADI-448201",
				BadgeNumber:     "GB-9912",
				ExperienceYears: 12,
				Specialties:     []string{"motorway-driving", "nervous-drivers", "test-preparation"},
				HourlyRate:      42,
				Availability:    weekdays,
				Location: entities.ServiceLocation{
					City:         "Manchester",
					ServiceAreas: []string{"Didsbury", "Chorlton", "Sale"},
				},
				Vehicle: entities.Vehicle{
					Make: "Toyota", Model: "Yaris", Year: 2023,
					Transmission: "manual", DualControls: true,
				},
				IsVerified: true,
			},
		},
		{
			ID:        uuid.New().String(),
			Email:     "james.okafor@drivehub.dev",
			FirstName: "James",
			LastName:  "Okafor",
			Phone:     "+44 7700 900102",
			Role:      entities.RoleInstructor,
			IsActive:  true,
			Instructor: &entities.InstructorProfile{
				LicenseNumber:   "ADI-517744",
				BadgeNumber:     "GB-4471",
				ExperienceYears: 7,
				Specialties:     []string{"automatic", "city-driving", "refresher"},
				HourlyRate:      36,
				Availability: entities.WeeklyAvailability{
					"tuesday":  {"10:00", "11:00", "12:00", "15:00", "16:00", "17:00"},
					"thursday": {"10:00", "11:00", "12:00", "15:00", "16:00", "17:00"},
					"saturday": {"09:00", "10:00", "11:00", "12:00"},
				},
				Location: entities.ServiceLocation{
					City:         "Manchester",
					ServiceAreas: []string{"Salford", "Eccles"},
				},
				Vehicle: entities.Vehicle{
					Make: "Nissan", Model: "Leaf", Year: 2024,
					Transmission: "automatic", DualControls: true,
				},
				IsVerified: true,
			},
		},
		{
			ID:        uuid.New().String(),
			Email:     "priya.sharma@drivehub.dev",
			FirstName: "Priya",
			LastName:  "Sharma",
			Phone:     "+44 7700 900103",
			Role:      entities.RoleInstructor,
			IsActive:  true,
			Instructor: &entities.InstructorProfile{
				LicenseNumber:   "ADI-602318",
				BadgeNumber:     "GB-2208",
				ExperienceYears: 15,
				Specialties:     []string{"intensive", "pass-plus", "motorway-driving"},
				HourlyRate:      48,
				Availability:    weekdays,
				Location: entities.ServiceLocation{
					City:         "Leeds",
					ServiceAreas: []string{"Headingley", "Horsforth"},
				},
				Vehicle: entities.Vehicle{
					Make: "Ford", Model: "Fiesta", Year: 2022,
					Transmission: "manual", DualControls: true,
				},
				IsVerified: true,
			},
		},
	}

	for _, u := range instructors {
		u.PasswordHash = string(passwordHash)
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := userRepo.Create(ctx, u); err != nil {
			log.Printf("Failed to create instructor %s: %v", u.Email, err)
		}
	}

	// 2. Students
	students := []*entities.User{
		{
			ID:        uuid.New().String(),
			Email:     "tom.hughes@example.com",
			FirstName: "Tom",
			LastName:  "Hughes",
			Phone:     "+44 7700 900201",
			Role:      entities.RoleStudent,
			IsActive:  true,
			Student: &entities.StudentProfile{
				LicenseNumber:    "HUGHE750101TJ9AB",
				EmergencyContact: "+44 7700 900301",
				Preferences: entities.BookingPreferences{
					Transmission:   "manual",
					LessonDuration: 2,
				},
			},
		},
		{
			ID:        uuid.New().String(),
			Email:     "amelia.clark@example.com",
			FirstName: "Amelia",
			LastName:  "Clark",
			Phone:     "+44 7700 900202",
			Role:      entities.RoleStudent,
			IsActive:  true,
			Student: &entities.StudentProfile{
				LicenseNumber:    "CLARK820214AC7CD",
				EmergencyContact: "+44 7700 900302",
				Preferences: entities.BookingPreferences{
					Transmission:   "automatic",
					LessonDuration: 1,
				},
			},
		},
	}

	for _, u := range students {
		u.PasswordHash = string(passwordHash)
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := userRepo.Create(ctx, u); err != nil {
			log.Printf("Failed to create student %s: %v", u.Email, err)
		}
	}

	// 3. Bookings: one completed lesson in the past, two upcoming
	paidAt := now.AddDate(0, 0, -14)
	completed := &entities.Booking{
		ID:             uuid.New().String(),
		StudentID:      students[0].ID,
		InstructorID:   instructors[0].ID,
		LessonType:     entities.LessonTypeStandard,
		LessonDate:     midnight(now.AddDate(0, 0, -14)),
		StartTime:      "10:00",
		DurationHours:  2,
		Status:         entities.BookingStatusCompleted,
		PickupLocation: "12 Wilmslow Road, Manchester",
		Price:          entities.Price{LessonCost: 84, BookingFee: 2.5, Total: 86.5},
		Payment: entities.Payment{
			Status: entities.PaymentStatusCompleted,
			Method: "card",
			PaidAt: &paidAt,
		},
		CreatedAt: paidAt,
		UpdatedAt: paidAt,
	}

	upcoming := []*entities.Booking{
		{
			ID:             uuid.New().String(),
			StudentID:      students[0].ID,
			InstructorID:   instructors[0].ID,
			LessonType:     entities.LessonTypeTestPrep,
			LessonDate:     midnight(nextWeekday(now, time.Monday)),
			StartTime:      "09:00",
			DurationHours:  1,
			Status:         entities.BookingStatusConfirmed,
			PickupLocation: "12 Wilmslow Road, Manchester",
			StudentNotes:   "Practical test booked for next month",
			Price:          entities.Price{LessonCost: 42, BookingFee: 2.5, Total: 44.5},
			Payment:        entities.Payment{Status: entities.PaymentStatusPending, Method: "card"},
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:              uuid.New().String(),
			StudentID:       students[1].ID,
			InstructorID:    instructors[1].ID,
			LessonType:      entities.LessonTypeRefresher,
			LessonDate:      midnight(nextWeekday(now, time.Thursday)),
			StartTime:       "15:00",
			DurationHours:   1.5,
			Status:          entities.BookingStatusPending,
			PickupLocation:  "3 Chapel Street, Salford",
			DropoffLocation: "Salford Quays",
			Price:           entities.Price{LessonCost: 54, BookingFee: 2.5, Total: 56.5},
			Payment:         entities.Payment{Status: entities.PaymentStatusPending, Method: "card"},
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	if err := bookingRepo.Create(ctx, completed); err != nil {
		log.Printf("Failed to create completed booking: %v", err)
	}
	for _, b := range upcoming {
		if err := bookingRepo.Create(ctx, b); err != nil {
			log.Printf("Failed to create booking %s: %v", b.ID, err)
		}
	}

	// 4. A review on the completed lesson, plus the rating it implies
	review := &entities.Review{
		ID:           uuid.New().String(),
		BookingID:    completed.ID,
		StudentID:    completed.StudentID,
		InstructorID: completed.InstructorID,
		Rating:       5,
		Comment:      "Sarah was calm and thorough, great with roundabouts.",
		IsVerified:   true,
		CreatedAt:    now.AddDate(0, 0, -13),
	}
	if err := reviewRepo.Create(ctx, review); err != nil {
		log.Printf("Failed to create review: %v", err)
	}
	if err := userRepo.UpdateInstructorRating(ctx, completed.InstructorID, 5, 1); err != nil {
		log.Printf("Failed to update instructor rating: %v", err)
	}
	instructors[0].Instructor.Rating = 5
	instructors[0].Instructor.ReviewCount = 1

	// 5. Index instructors for search
	if searchRepo != nil {
		for _, u := range instructors {
			if err := searchRepo.Index(ctx, u); err != nil {
				log.Printf("Failed to index instructor %s: %v", u.Email, err)
			}
		}
	}

	log.Printf("Seeding complete: %d instructors, %d students, %d bookings, 1 review",
		len(instructors), len(students), 1+len(upcoming))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nextWeekday returns the next occurrence of the given weekday strictly
// after t.
func nextWeekday(t time.Time, day time.Weekday) time.Time {
	days := int(day-t.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days)
}
