package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
	"github.com/labsync/labsync/scheduling"
	"github.com/labsync/labsync/services"
	"github.com/labsync/labsync/websocket"
)

// Scheduler is wired in main with the gorm ledger and the email gateway.
var Scheduler *scheduling.Service

func principal(c *fiber.Ctx) scheduling.Principal {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	role, _ := claims["role"].(string)
	return scheduling.Principal{ID: id, Role: role}
}

// respondError maps the core's error kinds to stable HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, scheduling.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, scheduling.ErrSlotConflict),
		errors.Is(err, scheduling.ErrTechnicianUnavailable):
		status = fiber.StatusConflict
	case errors.Is(err, scheduling.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, scheduling.ErrInvalidTransition),
		errors.Is(err, scheduling.ErrAlreadyAssigned),
		errors.Is(err, scheduling.ErrAlreadyInProgress),
		errors.Is(err, scheduling.ErrAlreadyCompleted),
		errors.Is(err, scheduling.ErrValidation):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

type PatientDetailsRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Age      int    `json:"age" validate:"required,gt=0"`
	Gender   string `json:"gender" validate:"omitempty,oneof=male female other"`
	Contact  string `json:"contact"`
	Email    string `json:"email" validate:"required,email"`
}

type CreateBookingRequest struct {
	PatientDetails PatientDetailsRequest `json:"patient_details" validate:"required"`
	TestType       []string              `json:"test_type" validate:"required,min=1"`
	ScheduledDate  string                `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime  string                `json:"scheduled_time" validate:"required"`
	Priority       string                `json:"priority" validate:"omitempty,oneof=high normal low"`
}

func CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := Scheduler.Book(c.Context(), principal(c), scheduling.BookingRequest{
		PatientDetails: models.PatientDetails{
			FullName: req.PatientDetails.FullName,
			Age:      req.PatientDetails.Age,
			Gender:   req.PatientDetails.Gender,
			Contact:  req.PatientDetails.Contact,
			Email:    req.PatientDetails.Email,
		},
		TestType:      req.TestType,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Priority:      req.Priority,
	})
	if err != nil {
		return respondError(c, err)
	}

	websocket.PublishStatus(booking)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":           "Appointment booked successfully.",
		"appointment":       booking,
		"estimatedDuration": booking.EstimatedDuration,
	})
}

func GetAvailableSlots(c *fiber.Ctx) error {
	slots, err := Scheduler.AvailableSlots(c.Context(), c.Params("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"date": c.Params("date"), "available_slots": slots})
}

func GetMyBookings(c *fiber.Ctx) error {
	bookings, err := Scheduler.ForPatient(c.Context(), principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookings)
}

func GetMyTechnicianBookings(c *fiber.Ctx) error {
	bookings, err := Scheduler.ForTechnician(c.Context(), principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookings)
}

func GetBooking(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := Scheduler.Get(c.Context(), principal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

type UpdateBookingRequest struct {
	ScheduledDate string   `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime string   `json:"scheduled_time"`
	TestType      []string `json:"test_type"`
	Priority      string   `json:"priority" validate:"omitempty,oneof=high normal low"`
	Notes         *string  `json:"notes"`
}

func UpdateBooking(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req UpdateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := Scheduler.Reschedule(c.Context(), principal(c), id, scheduling.UpdateRequest{
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		TestType:      req.TestType,
		Priority:      req.Priority,
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

type StartBookingRequest struct {
	Description       string   `json:"description"`
	Instructions      string   `json:"instructions"`
	RequiredEquipment []string `json:"required_equipment"`
}

func StartBooking(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	// Task details are optional; an empty body is fine.
	var req StartBookingRequest
	if err := c.BodyParser(&req); err != nil {
		req = StartBookingRequest{}
	}

	booking, task, err := Scheduler.Start(c.Context(), principal(c), id, scheduling.StartRequest{
		Description:       req.Description,
		Instructions:      req.Instructions,
		RequiredEquipment: req.RequiredEquipment,
	})
	if err != nil {
		return respondError(c, err)
	}

	websocket.PublishStatus(booking)

	return c.JSON(fiber.Map{
		"message":     "Lab appointment started successfully",
		"appointment": booking,
		"task":        task,
	})
}

type CompleteBookingRequest struct {
	Result string `json:"result" validate:"required"`
	Notes  string `json:"notes"`
}

func CompleteBooking(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req CompleteBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := Scheduler.Complete(c.Context(), principal(c), id, req.Result, req.Notes)
	if err != nil {
		return respondError(c, err)
	}

	websocket.PublishStatus(booking)
	go services.GenerateResultReport(*booking)

	return c.JSON(fiber.Map{
		"message":     "Booking completed and result recorded.",
		"appointment": booking,
	})
}

func CancelBooking(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := Scheduler.Cancel(c.Context(), principal(c), id)
	if err != nil {
		return respondError(c, err)
	}

	websocket.PublishStatus(booking)

	return c.JSON(fiber.Map{
		"message":     "Appointment cancelled successfully",
		"appointment": booking,
	})
}
