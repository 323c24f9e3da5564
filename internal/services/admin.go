package services

import (
	"ideaboard/internal/models"

	"gorm.io/gorm"
)

// Stats are the dashboard totals.
type Stats struct {
	TotalUsers    int64
	TotalIdeas    int64
	TotalVotes    int64
	TotalComments int64
}

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) Stats() (*Stats, error) {
	var st Stats
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &st.TotalUsers},
		{&models.Idea{}, &st.TotalIdeas},
		{&models.Vote{}, &st.TotalVotes},
		{&models.Comment{}, &st.TotalComments},
	}
	for _, c := range counts {
		if err := s.db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return &st, nil
}
