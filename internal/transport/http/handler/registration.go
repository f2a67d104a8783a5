package handler

import (
	"github.com/gin-gonic/gin"

	appsvc "pettech-backend/internal/app"
	"pettech-backend/internal/transport/http/response"
)

type RegistrationHandler struct {
	registration *appsvc.RegistrationService
}

type RegisterRequest struct {
	OwnerName   *string `json:"owner_name"`
	OwnerMobile *string `json:"owner_mobile"`
	AnimalType  *string `json:"animal_type"`
	AnimalAge   *int    `json:"animal_age"`
	OwnerEmail  *string `json:"owner_email"`
	Password    *string `json:"password"`
}

type LoginRequest struct {
	OwnerEmail *string `json:"owner_email"`
	Password   *string `json:"password"`
}

func NewRegistrationHandler(registration *appsvc.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	result, err := h.registration.Register(c.Request.Context(), appsvc.RegisterInput{
		OwnerName:   req.OwnerName,
		OwnerMobile: req.OwnerMobile,
		AnimalType:  req.AnimalType,
		AnimalAge:   req.AnimalAge,
		OwnerEmail:  req.OwnerEmail,
		Password:    req.Password,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"message": "Registration successful",
		"details": gin.H{
			"message":             "Registration successful",
			"registration_number": result.RegistrationNumber,
		},
	})
}

func (h *RegistrationHandler) VerifyLogin(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	result, err := h.registration.VerifyLogin(c.Request.Context(), appsvc.LoginInput{
		OwnerEmail: req.OwnerEmail,
		Password:   req.Password,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"message": "Login successful",
		"details": gin.H{
			"id":         result.ID,
			"owner_name": result.OwnerName,
		},
	})
}
