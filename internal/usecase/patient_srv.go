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

	"go.uber.org/zap"
)

type PatientService interface {
	GetProfile(ctx context.Context, sess *utils.Session) (*response.PatientResponse, error)
	UpdateProfile(ctx context.Context, sess *utils.Session, req *request.UpdatePatientRequest) (*response.PatientResponse, error)
}

type patientService struct {
	patientRepo repository.PatientRepository
	log         *zap.Logger
}

func NewPatientService(patientRepo repository.PatientRepository, log *zap.Logger) PatientService {
	return &patientService{
		patientRepo: patientRepo,
		log:         log.With(zap.String("service", "patient")),
	}
}

func (ps *patientService) profile(ctx context.Context, sess *utils.Session) (*entity.Patient, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	patient, err := ps.patientRepo.FindByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("find patient profile: %w", err)
	}
	if patient == nil {
		return nil, fmt.Errorf("%w: patient profile", ErrNotFound)
	}
	return patient, nil
}

func (ps *patientService) GetProfile(ctx context.Context, sess *utils.Session) (*response.PatientResponse, error) {
	patient, err := ps.profile(ctx, sess)
	if err != nil {
		return nil, err
	}
	resp := response.PatientToResponse(patient)
	return &resp, nil
}

func (ps *patientService) UpdateProfile(ctx context.Context, sess *utils.Session, req *request.UpdatePatientRequest) (*response.PatientResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		ps.log.Warn("Update profile validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	patient, err := ps.profile(ctx, sess)
	if err != nil {
		return nil, err
	}

	patient.FullName = strings.TrimSpace(req.FullName)
	patient.Mobile = req.Mobile
	patient.Email = strings.ToLower(strings.TrimSpace(req.Email))
	patient.Address = req.Address
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = req.Gender

	if err := ps.patientRepo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("update patient profile: %w", err)
	}

	ps.log.Info("Patient profile updated", zap.String("patient_id", patient.ID.String()))

	resp := response.PatientToResponse(patient)
	return &resp, nil
}
