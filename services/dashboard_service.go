package services

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"graduation-project-api/models"
)

// DashboardStats is the read-mostly aggregate behind the dashboard and
// the public statistics endpoint.
type DashboardStats struct {
	TotalProjects      int64                          `json:"total_projects"`
	PublishedProjects  int64                          `json:"published_projects"`
	PendingSubmissions int64                          `json:"pending_submissions"`
	ByStatus           map[models.ProjectStatus]int64 `json:"by_status"`
	GeneratedAt        time.Time                      `json:"generated_at"`
}

// DashboardService serves stats through a TTL cache. The mutex guards
// cache population only, never business invariants; workflow writes
// invalidate through Invalidate.
type DashboardService struct {
	db  *gorm.DB
	ttl time.Duration

	mu      sync.RWMutex
	cached  *DashboardStats
	fetched time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, ttl: 5 * time.Minute}
}

// Stats returns the cached aggregate, repopulating when stale.
func (s *DashboardService) Stats() (*DashboardStats, error) {
	s.mu.RLock()
	cached := s.cached
	fetched := s.fetched
	s.mu.RUnlock()

	if cached != nil && time.Since(fetched) < s.ttl {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock so only one caller
	// populates.
	if s.cached != nil && time.Since(s.fetched) < s.ttl {
		return s.cached, nil
	}

	stats, err := s.compute()
	if err != nil {
		return nil, err
	}
	s.cached = stats
	s.fetched = time.Now()
	return stats, nil
}

// Invalidate drops the cached aggregate. Called after workflow writes.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

func (s *DashboardService) compute() (*DashboardStats, error) {
	stats := &DashboardStats{
		ByStatus:    make(map[models.ProjectStatus]int64),
		GeneratedAt: time.Now(),
	}

	if err := s.db.Model(&models.Project{}).
		Where("delete_at IS NULL").
		Count(&stats.TotalProjects).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Project{}).
		Where("delete_at IS NULL AND is_publicly_visible = ?", true).
		Count(&stats.PublishedProjects).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.ProjectSubmission{}).
		Where("status IN ?", []models.SubmissionStatus{models.SubmissionPending, models.SubmissionUnderReview}).
		Count(&stats.PendingSubmissions).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status models.ProjectStatus
		N      int64
	}
	if err := s.db.Model(&models.Project{}).
		Select("status, COUNT(*) AS n").
		Where("delete_at IS NULL").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.N
	}
	return stats, nil
}
