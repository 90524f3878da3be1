package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkkean-backend/internal/model"
)

// ReportPoints is the number of points awarded for each report.
const ReportPoints = 5

// Store defines the interface for all database operations.
type Store interface {
	ListLots(ctx context.Context) ([]StoredLot, error)
	GetLot(ctx context.Context, id int64) (*StoredLot, error)
	UpdateLotFields(ctx context.Context, id int64, fields LotFields) error
	ListReports(ctx context.Context, lotID int64, limit int) ([]ReportView, error)
	SubmitReport(ctx context.Context, report NewReport) (*ReportResult, error)
	FindOrCreateUser(ctx context.Context, username string) (*model.User, error)
	GetUser(ctx context.Context, username string) (*model.User, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	DB() *gorm.DB
}

// ReportResult is the outcome of a submitted report.
type ReportResult struct {
	User           model.User
	Lot            StoredLot
	PreviousStatus model.LotStatus
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListLots returns every lot ordered by name, each with its latest report.
func (s *gormStore) ListLots(ctx context.Context) ([]StoredLot, error) {
	var lots []model.Lot
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	if len(lots) == 0 {
		return []StoredLot{}, nil
	}

	ids := make([]int64, len(lots))
	for i, lot := range lots {
		ids[i] = lot.ID
	}
	latest, err := s.latestReports(ctx, ids)
	if err != nil {
		return nil, err
	}

	stored := make([]StoredLot, len(lots))
	for i, lot := range lots {
		stored[i] = StoredLot{Lot: lot, LastReport: latest[lot.ID]}
	}
	return stored, nil
}

// GetLot returns a single lot with its latest report, or ErrNotFound.
func (s *gormStore) GetLot(ctx context.Context, id int64) (*StoredLot, error) {
	var lot model.Lot
	if err := s.db.WithContext(ctx).First(&lot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load lot %d: %w", id, err)
	}

	latest, err := s.latestReports(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return &StoredLot{Lot: lot, LastReport: latest[id]}, nil
}

// UpdateLotFields writes the non-nil fields of a single lot.
func (s *gormStore) UpdateLotFields(ctx context.Context, id int64, fields LotFields) error {
	if fields.Empty() {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&model.Lot{}).Where("id = ?", id).Updates(fields.columns())
	if res.Error != nil {
		return fmt.Errorf("failed to update lot %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReports returns the most recent reports for a lot, newest first.
func (s *gormStore) ListReports(ctx context.Context, lotID int64, limit int) ([]ReportView, error) {
	reports := []ReportView{}
	err := reportQuery(s.db.WithContext(ctx)).
		Where("r.lot_id = ?", lotID).
		Limit(limit).
		Scan(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for lot %d: %w", lotID, err)
	}
	return reports, nil
}

// SubmitReport records a report, applies its status to the lot, and awards points.
func (s *gormStore) SubmitReport(ctx context.Context, report NewReport) (*ReportResult, error) {
	var result ReportResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot model.Lot
		if err := tx.First(&lot, report.LotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load lot %d: %w", report.LotID, err)
		}
		result.PreviousStatus = lot.Status

		user, err := findOrCreateUser(tx, report.Username, report.At)
		if err != nil {
			return err
		}

		row := model.Report{
			LotID:          lot.ID,
			UserID:         user.ID,
			ReportedStatus: report.Status,
			Note:           strings.TrimSpace(report.Note),
			CreatedAt:      report.At,
		}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert report for lot %d: %w", lot.ID, err)
		}

		if err := tx.Model(&model.Lot{}).Where("id = ?", lot.ID).Updates(map[string]any{
			"status":       report.Status,
			"last_updated": report.At,
		}).Error; err != nil {
			return fmt.Errorf("failed to apply report to lot %d: %w", lot.ID, err)
		}

		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			"points":  gorm.Expr("points + ?", ReportPoints),
			"reports": gorm.Expr("reports + ?", 1),
		}).Error; err != nil {
			return fmt.Errorf("failed to award points to user %d: %w", user.ID, err)
		}

		return tx.First(&result.User, user.ID).Error
	})
	if err != nil {
		return nil, err
	}

	lot, err := s.GetLot(ctx, report.LotID)
	if err != nil {
		return nil, err
	}
	result.Lot = *lot
	return &result, nil
}

// FindOrCreateUser looks a user up case-insensitively, creating it when absent.
func (s *gormStore) FindOrCreateUser(ctx context.Context, username string) (*model.User, error) {
	return findOrCreateUser(s.db.WithContext(ctx), username, 0)
}

// GetUser looks a user up case-insensitively.
func (s *gormStore) GetUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("lower(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", username, err)
	}
	return &user, nil
}

// Leaderboard returns the top users by points.
func (s *gormStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	entries := []LeaderboardEntry{}
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("username, points").
		Order("points DESC, username ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// --- Helper functions ---

func findOrCreateUser(tx *gorm.DB, username string, at int64) (*model.User, error) {
	name := strings.TrimSpace(username)
	var user model.User
	err := tx.Where("lower(username) = ?", strings.ToLower(name)).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %q: %w", name, err)
	}

	user = model.User{Username: name, CreatedAt: at}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", name, err)
	}
	return &user, nil
}

func reportQuery(db *gorm.DB) *gorm.DB {
	return db.Table("reports AS r").
		Select("r.id, r.lot_id, r.reported_status, r.note, r.created_at, u.username AS reporter").
		Joins("JOIN users u ON u.id = r.user_id").
		Order("r.created_at DESC, r.id DESC")
}

// latestReports returns the newest report per lot for the given lots.
func (s *gormStore) latestReports(ctx context.Context, lotIDs []int64) (map[int64]*ReportView, error) {
	var reports []ReportView
	if err := reportQuery(s.db.WithContext(ctx)).Where("r.lot_id IN ?", lotIDs).Scan(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	latest := make(map[int64]*ReportView, len(lotIDs))
	for i := range reports {
		r := reports[i]
		if _, seen := latest[r.LotID]; !seen {
			latest[r.LotID] = &r
		}
	}
	return latest, nil
}
