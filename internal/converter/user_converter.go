package converter

import (
	"dental-clinic-booking/internal/delivery/dto"
	"dental-clinic-booking/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.Phone != nil {
		response.Phone = *user.Phone
	}
	if user.DateOfBirth != nil {
		response.DateOfBirth = user.DateOfBirth.Format("2006-01-02")
	}
	if user.Address != nil {
		response.Address = *user.Address
	}

	return response
}

// UserToParticipant converts a User entity to the short form embedded in other responses
func UserToParticipant(user *entity.User) *dto.ParticipantResponse {
	if user == nil {
		return nil
	}
	return &dto.ParticipantResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// UsersToDoctorResponses converts doctor users to DoctorResponse DTOs
func UsersToDoctorResponses(users []entity.User) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(users))
	for i, user := range users {
		responses[i] = dto.DoctorResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		}
		if user.Phone != nil {
			responses[i].Phone = *user.Phone
		}
	}
	return responses
}
