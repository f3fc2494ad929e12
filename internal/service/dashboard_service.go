package service

import (
	"context"

	"classhub/internal/domain"
)

// DashboardStats are the headline counts shown on the admin dashboard.
type DashboardStats struct {
	TotalStudents int `json:"totalStudents"`
	TotalCoaches  int `json:"totalCoaches"`
	TotalCourses  int `json:"totalCourses"`
	ActiveCourses int `json:"activeCourses"`
}

// DashboardService aggregates counts across the other repositories.
type DashboardService struct {
	students domain.StudentRepository
	coaches  domain.CoachRepository
	courses  domain.CourseRepository
}

func NewDashboardService(
	students domain.StudentRepository,
	coaches domain.CoachRepository,
	courses domain.CourseRepository,
) *DashboardService {
	return &DashboardService{students: students, coaches: coaches, courses: courses}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalStudents, err = s.students.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCoaches, err = s.coaches.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCourses, err = s.courses.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveCourses, err = s.courses.CountByStatus(ctx, domain.CourseActive); err != nil {
		return nil, err
	}
	return stats, nil
}
