package usecase

import (
	"context"
	"fmt"
	"strings"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTestCategory = "General"

type CatalogService interface {
	ListTests(ctx context.Context, query *request.TestListQuery) (*response.PaginatedResponse[response.TestResponse], error)
	GetTest(ctx context.Context, code string) (*response.TestResponse, error)
	UpsertTest(ctx context.Context, sess *utils.Session, req *request.UpsertTestRequest) (*response.TestResponse, bool, error)

	ListDoctors(ctx context.Context, query *request.DoctorListQuery) (*response.PaginatedResponse[response.DoctorResponse], error)
	GetDoctor(ctx context.Context, id string) (*response.DoctorResponse, error)
	CreateDoctor(ctx context.Context, sess *utils.Session, req *request.CreateDoctorRequest) (*response.DoctorResponse, error)
}

type catalogService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCatalogService(repo *repository.Repository, log *zap.Logger) CatalogService {
	return &catalogService{
		repo: repo,
		log:  log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) ListTests(ctx context.Context, query *request.TestListQuery) (*response.PaginatedResponse[response.TestResponse], error) {
	limit, offset := query.Limit(), query.Offset()

	tests, err := s.repo.Test.FindActive(ctx, query.Category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	total, err := s.repo.Test.CountActive(ctx, query.Category)
	if err != nil {
		return nil, fmt.Errorf("count tests: %w", err)
	}

	data := make([]response.TestResponse, 0, len(tests))
	for _, t := range tests {
		data = append(data, response.TestToResponse(t))
	}
	return response.NewPaginatedResponse(data, query.CurrentPage(), limit, total), nil
}

func (s *catalogService) GetTest(ctx context.Context, code string) (*response.TestResponse, error) {
	test, err := s.repo.Test.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("find test %s: %w", code, err)
	}
	if test == nil {
		return nil, fmt.Errorf("%w: test %s", ErrNotFound, code)
	}
	resp := response.TestToResponse(test)
	return &resp, nil
}

// UpsertTest reports whether the code was new.
func (s *catalogService) UpsertTest(ctx context.Context, sess *utils.Session, req *request.UpsertTestRequest) (*response.TestResponse, bool, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, false, err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, false, validationError(errs)
	}

	test := &entity.LabTest{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		Code:         strings.TrimSpace(req.Code),
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		MRP:          req.MRP,
		SampleType:   req.SampleType,
		TAT:          req.TAT,
		IsActive:     true,
		Description:  req.Description,
	}
	if test.Category == "" {
		test.Category = defaultTestCategory
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}

	inserted, err := s.repo.Test.Upsert(ctx, test)
	if err != nil {
		return nil, false, fmt.Errorf("upsert test %s: %w", test.Code, err)
	}

	s.log.Info("Test saved", zap.String("code", test.Code), zap.Bool("inserted", inserted))

	resp := response.TestToResponse(test)
	return &resp, inserted, nil
}

func (s *catalogService) ListDoctors(ctx context.Context, query *request.DoctorListQuery) (*response.PaginatedResponse[response.DoctorResponse], error) {
	limit, offset := query.Limit(), query.Offset()

	doctors, err := s.repo.Doctor.FindAvailable(ctx, query.Specialization, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	total, err := s.repo.Doctor.CountAvailable(ctx, query.Specialization)
	if err != nil {
		return nil, fmt.Errorf("count doctors: %w", err)
	}

	data := make([]response.DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		data = append(data, response.DoctorToResponse(d))
	}
	return response.NewPaginatedResponse(data, query.CurrentPage(), limit, total), nil
}

func (s *catalogService) GetDoctor(ctx context.Context, id string) (*response.DoctorResponse, error) {
	doctorID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id: Must be a valid UUID", ErrValidation)
	}

	doctor, err := s.repo.Doctor.FindByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("find doctor %s: %w", id, err)
	}
	if doctor == nil {
		return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, id)
	}
	resp := response.DoctorToResponse(doctor)
	return &resp, nil
}

func (s *catalogService) CreateDoctor(ctx context.Context, sess *utils.Session, req *request.CreateDoctorRequest) (*response.DoctorResponse, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	doctor := &entity.Doctor{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New()},
		FullName:        strings.TrimSpace(req.FullName),
		Specialization:  strings.TrimSpace(req.Specialization),
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
		ConsultationFee: req.ConsultationFee,
		IsAvailable:     true,
	}
	if err := s.repo.Doctor.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}

	s.log.Info("Doctor created", zap.String("doctor_id", doctor.ID.String()))

	resp := response.DoctorToResponse(doctor)
	return &resp, nil
}
