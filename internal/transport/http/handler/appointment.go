package handler

import (
	"github.com/gin-gonic/gin"

	appsvc "pettech-backend/internal/app"
	"pettech-backend/internal/transport/http/response"
)

type AppointmentHandler struct {
	appointments *appsvc.AppointmentService
}

type AppointmentRequest struct {
	AppointmentID *string `json:"appointment_id"`
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Mobile        *string `json:"mobile"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	Message       *string `json:"message"`
}

func NewAppointmentHandler(appointments *appsvc.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) Save(c *gin.Context) {
	var req AppointmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	id, err := h.appointments.Book(c.Request.Context(), appsvc.BookAppointmentInput{
		AppointmentID: req.AppointmentID,
		Name:          req.Name,
		Email:         req.Email,
		Mobile:        req.Mobile,
		Date:          req.Date,
		Time:          req.Time,
		Message:       req.Message,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, gin.H{
		"success": true,
		"details": gin.H{
			"message":        "Appointment saved successfully",
			"appointment_id": id,
		},
	})
}
