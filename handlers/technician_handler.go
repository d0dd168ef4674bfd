package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/labsync/labsync/configs"
	"github.com/labsync/labsync/database"
	"github.com/labsync/labsync/models"
	"github.com/labsync/labsync/notifications"
	"github.com/labsync/labsync/scheduling"
	"github.com/labsync/labsync/utils"
	"golang.org/x/crypto/bcrypt"
)

type InviteTechnicianRequest struct {
	FullName    string   `json:"full_name" validate:"required,min=3"`
	Email       string   `json:"email" validate:"required,email"`
	Specialties []string `json:"specialties"`
}

// InviteTechnician creates (or re-invites) a technician and emails them an
// activation link. Admin only.
func InviteTechnician(c *fiber.Ctx) error {
	var req InviteTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	for _, s := range req.Specialties {
		if !scheduling.ValidSpecialty(s) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown specialty: " + s})
		}
	}

	var technician models.Technician
	err := database.DB.Where("email = ?", req.Email).First(&technician).Error
	if err == nil && technician.IsActivated {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Technician already invited and activated."})
	}
	if err != nil {
		technician = models.Technician{Email: req.Email}
	}

	technician.FullName = req.FullName
	if len(req.Specialties) > 0 {
		technician.Specialties = req.Specialties
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate invitation token"})
	}
	expires := time.Now().Add(24 * time.Hour)
	technician.InvitationToken = &token
	technician.InvitationTokenExpiresAt = &expires
	technician.IsActivated = false

	if err := database.DB.Save(&technician).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save technician"})
	}

	link := config.Config("CLIENT_URL") + "/accept-invitation/" + token
	notifications.SendTechnicianInvitation(technician.FullName, technician.Email, link)

	return c.JSON(fiber.Map{"message": "Invitation sent successfully."})
}

type AcceptInvitationRequest struct {
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func AcceptInvitation(c *fiber.Ctx) error {
	var req AcceptInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	token := c.Params("token")

	var technician models.Technician
	err := database.DB.
		Where("invitation_token = ? AND invitation_token_expires_at > ?", token, time.Now()).
		First(&technician).Error
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	technician.Password = string(hashedPassword)
	technician.InvitationToken = nil
	technician.InvitationTokenExpiresAt = nil
	technician.IsActivated = true

	if err := database.DB.Save(&technician).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to activate account"})
	}

	return c.JSON(fiber.Map{"message": "Password set successfully. Please log in."})
}

func LoginTechnician(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var technician models.Technician
	if err := database.DB.Where("email = ?", req.Email).First(&technician).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if !technician.IsActivated {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account not activated. Please complete registration."})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(technician.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	t, err := signToken(technician.ID.String(), "technician")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{
		"token": t,
		"technician": fiber.Map{
			"id":          technician.ID,
			"full_name":   technician.FullName,
			"email":       technician.Email,
			"specialties": technician.Specialties,
		},
	})
}

func GetMyTechnicianProfile(c *fiber.Ctx) error {
	p := principal(c)

	var technician models.Technician
	if err := database.DB.First(&technician, "id = ?", p.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Technician not found"})
	}
	return c.JSON(technician)
}

type UpdateTechnicianProfileRequest struct {
	FullName    string   `json:"full_name" validate:"omitempty,min=3"`
	Specialties []string `json:"specialties"`
	IsAvailable *bool    `json:"is_available"`
}

// UpdateMyTechnicianProfile lets a technician maintain their own record,
// including taking themselves out of the assignment pool.
func UpdateMyTechnicianProfile(c *fiber.Ctx) error {
	p := principal(c)

	var req UpdateTechnicianProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var technician models.Technician
	if err := database.DB.First(&technician, "id = ?", p.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Technician not found"})
	}

	if req.FullName != "" {
		technician.FullName = req.FullName
	}
	if req.Specialties != nil {
		for _, s := range req.Specialties {
			if !scheduling.ValidSpecialty(s) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown specialty: " + s})
			}
		}
		technician.Specialties = req.Specialties
	}
	if req.IsAvailable != nil {
		technician.IsAvailable = *req.IsAvailable
	}

	if err := database.DB.Save(&technician).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}
	return c.JSON(technician)
}

func GetAllTechnicians(c *fiber.Ctx) error {
	var technicians []models.Technician
	if err := database.DB.Order("created_at desc").Find(&technicians).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch technicians"})
	}
	return c.JSON(technicians)
}

func GetTechnicianByID(c *fiber.Ctx) error {
	var technician models.Technician
	if err := database.DB.First(&technician, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Technician not found"})
	}
	return c.JSON(technician)
}

type AdminUpdateTechnicianRequest struct {
	FullName    string   `json:"full_name"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Specialties []string `json:"specialties"`
	IsActivated *bool    `json:"is_activated"`
	IsAvailable *bool    `json:"is_available"`
}

func UpdateTechnician(c *fiber.Ctx) error {
	var req AdminUpdateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var technician models.Technician
	if err := database.DB.First(&technician, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Technician not found"})
	}

	if req.FullName != "" {
		technician.FullName = req.FullName
	}
	if req.Email != "" {
		technician.Email = req.Email
	}
	if req.Specialties != nil {
		technician.Specialties = req.Specialties
	}
	if req.IsActivated != nil {
		technician.IsActivated = *req.IsActivated
	}
	if req.IsAvailable != nil {
		technician.IsAvailable = *req.IsAvailable
	}

	if err := database.DB.Save(&technician).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update technician"})
	}
	return c.JSON(fiber.Map{"message": "Technician updated successfully", "technician": technician})
}

func DeleteTechnician(c *fiber.Ctx) error {
	var technician models.Technician
	if err := database.DB.First(&technician, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Technician not found"})
	}

	if err := database.DB.Delete(&technician).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete technician"})
	}
	return c.JSON(fiber.Map{"message": "Technician deleted successfully."})
}
