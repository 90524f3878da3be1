package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkkean-backend/internal/model"
)

type seedLot struct {
	code, name          string
	capacity, occupancy int
	walkTime            int
	fullBy              string
	status              model.LotStatus
	age                 time.Duration
}

var seedLots = []seedLot{
	{"VAUGHN_EAMES", "Vaughn-Eames Lot", 140, 110, 4, "08:30", model.StatusLimited, 2*time.Hour + 15*time.Minute},
	{"LIBERTY_HALL", "Liberty Hall Academic Building Lot", 180, 95, 6, "09:45", model.StatusOpen, 3 * time.Hour},
	{"OVERNIGHT", "Overnight Lot", 220, 210, 10, "07:15", model.StatusFull, time.Hour + 40*time.Minute},
	{"STEM", "STEM Lot", 160, 120, 5, "09:30", model.StatusLimited, 2 * time.Hour},
	{"EAST_CAMPUS", "East Campus Lot", 200, 80, 8, "11:00", model.StatusOpen, 3*time.Hour + 30*time.Minute},
	{"HYNES_HALL", "Hynes Hall Lot", 90, 75, 3, "08:15", model.StatusLimited, 2*time.Hour + 45*time.Minute},
	{"KEAN_HALL", "Kean Hall Lot", 125, 60, 4, "12:00", model.StatusOpen, 4 * time.Hour},
	{"COUGAR_HALL", "Cougar Hall Lot", 150, 130, 7, "08:50", model.StatusLimited, time.Hour + 20*time.Minute},
	{"HARWOOD", "Harwood Lot", 110, 45, 9, "13:00", model.StatusOpen, 5 * time.Hour},
	{"D_ANGOLA", "D'Angola Lot", 95, 92, 6, "07:55", model.StatusFull, 2*time.Hour + 5*time.Minute},
	{"GLAB", "GLAB Lot", 130, 70, 4, "10:30", model.StatusOpen, 3*time.Hour + 50*time.Minute},
	{"ADMISSIONS", "Admissions Lot", 85, 65, 5, "09:10", model.StatusLimited, time.Hour + 55*time.Minute},
	{"MORRIS_AVE", "Morris Ave Lot", 210, 150, 12, "10:45", model.StatusOpen, 4*time.Hour + 10*time.Minute},
}

var seedUsers = []model.User{
	{Username: "michael", Points: 45, Reports: 9},
	{Username: "ava", Points: 30, Reports: 6},
	{Username: "jayden", Points: 25, Reports: 5},
}

// Seed fills empty lot and user tables with the campus demo data. Tables that
// already hold rows are left alone.
func Seed(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lotCount int64
		if err := tx.Model(&model.Lot{}).Count(&lotCount).Error; err != nil {
			return fmt.Errorf("failed to count lots: %w", err)
		}
		if lotCount == 0 {
			if err := seedLotRows(tx, now); err != nil {
				return err
			}
		}

		var userCount int64
		if err := tx.Model(&model.User{}).Count(&userCount).Error; err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if userCount == 0 {
			return seedUserRows(tx, now)
		}
		return nil
	})
}

func seedLotRows(tx *gorm.DB, now time.Time) error {
	lots := make([]model.Lot, 0, len(seedLots))
	for _, s := range seedLots {
		fullBy := s.fullBy
		lots = append(lots, model.Lot{
			Code:        s.code,
			Name:        s.name,
			Capacity:    s.capacity,
			Occupancy:   s.occupancy,
			Status:      s.status,
			WalkTime:    s.walkTime,
			FullBy:      &fullBy,
			LastUpdated: now.Add(-s.age).UnixMilli(),
		})
	}

	log.Printf("Seeding %d lots...", len(lots))
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lots).Error; err != nil {
		return fmt.Errorf("failed to seed lots: %w", err)
	}
	return nil
}

func seedUserRows(tx *gorm.DB, now time.Time) error {
	users := make([]model.User, len(seedUsers))
	for i, u := range seedUsers {
		u.CreatedAt = now.Add(-time.Duration(i+1) * 3 * time.Hour).UnixMilli()
		users[i] = u
	}

	log.Printf("Seeding %d users...", len(users))
	if err := tx.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	var lot model.Lot
	err := tx.Where("code = ?", "OVERNIGHT").First(&lot).Error
	if err != nil {
		log.Printf("Skipping seed report: %v", err)
		return nil
	}

	report := model.Report{
		LotID:          lot.ID,
		UserID:         users[0].ID,
		ReportedStatus: model.StatusFull,
		Note:           "Upper deck closed for event prep.",
		CreatedAt:      now.Add(-time.Hour).UnixMilli(),
	}
	if err := tx.Omit(clause.Associations).Create(&report).Error; err != nil {
		return fmt.Errorf("failed to seed report: %w", err)
	}
	return nil
}
