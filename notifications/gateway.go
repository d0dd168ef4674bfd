package notifications

import (
	"fmt"
	"strings"

	"github.com/labsync/labsync/models"
)

// Gateway implements the core's Notifier contract. Every method dispatches in
// a goroutine and consumes no result: delivery is best-effort by design.
type Gateway struct{}

func NewGateway() *Gateway {
	return &Gateway{}
}

func (g *Gateway) BookingConfirmed(b *models.LabTestBooking) {
	testName := strings.Join(b.TestType, ", ")
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9;">
			<h2 style="color: #4CAF50;">Lab Test Booking Confirmed</h2>
			<p>Dear %s,</p>
			<p>Your booking for the lab test <strong>%s</strong> has been confirmed.</p>
			<p><strong>Date:</strong> %s<br/><strong>Time:</strong> %s<br/><strong>Estimated duration:</strong> %s</p>
			<p>Thank you for using LabSync!</p>
		</div>`,
		b.PatientDetails.FullName, testName, b.ScheduledDate, slotOf(b), b.EstimatedDuration)

	go SendEmail(b.PatientDetails.FullName, b.PatientDetails.Email,
		fmt.Sprintf("Your Lab Test Booking for %s", testName), body)
}

func (g *Gateway) TechnicianAssigned(b *models.LabTestBooking, t *models.Technician) {
	testName := strings.Join(b.TestType, ", ")

	patientBody := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f1f1f1;">
			<h2 style="color: #4CAF50;">Technician Assigned</h2>
			<p>Dear %s,</p>
			<p>We have assigned a technician to your upcoming lab test: <strong>%s</strong>.</p>
			<p><strong>Technician:</strong> %s<br/>
			   <strong>Date:</strong> %s<br/>
			   <strong>Time:</strong> %s</p>
			<p>Thank you for choosing LabSync. We look forward to serving you.</p>
		</div>`,
		b.PatientDetails.FullName, testName, t.FullName, b.ScheduledDate, slotOf(b))

	technicianBody := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9;">
			<h2 style="color: #4CAF50;">New Lab Test Assignment</h2>
			<p>Dear %s,</p>
			<p>You have been assigned a new lab test: <strong>%s</strong>.</p>
			<p><strong>Patient:</strong> %s<br/>
			   <strong>Date:</strong> %s<br/>
			   <strong>Time:</strong> %s<br/>
			   <strong>Priority:</strong> %s</p>
			<p>Please log in to your dashboard to review the appointment.</p>
		</div>`,
		t.FullName, testName, b.PatientDetails.FullName, b.ScheduledDate, slotOf(b), b.Priority)

	go SendEmail(b.PatientDetails.FullName, b.PatientDetails.Email, "Technician Assigned for Your Lab Test", patientBody)
	go SendEmail(t.FullName, t.Email, "You Have a New Lab Test Assignment", technicianBody)
}

func (g *Gateway) ResultReady(b *models.LabTestBooking) {
	testName := strings.Join(b.TestType, ", ")
	body := fmt.Sprintf(`
		<h3>Dear %s,</h3>
		<p>Your lab test result for <strong>%s</strong> is now available.</p>
		<pre>%s</pre>
		<p>Thank you for using LabSync.</p>`,
		b.PatientDetails.FullName, testName, b.Result)

	go SendEmail(b.PatientDetails.FullName, b.PatientDetails.Email,
		fmt.Sprintf("Lab Test Result for %s", testName), body)
}

// SendTechnicianInvitation emails the activation link to a newly invited
// technician.
func SendTechnicianInvitation(toName, toEmail, invitationLink string) {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9;">
			<h2 style="color: #4CAF50;">LabSync Technician Invitation</h2>
			<p>You have been invited to join LabSync as a technician.</p>
			<p>Click the link below to accept the invitation and set your password:</p>
			<a href="%s" style="display: inline-block; margin-top: 10px; padding: 10px 15px; background-color: #4CAF50; color: white; text-decoration: none; border-radius: 5px;">Accept Invitation</a>
			<p style="font-size: 14px; color: #777;">This link will expire in 24 hours.</p>
		</div>`, invitationLink)

	go SendEmail(toName, toEmail, "You're Invited to Join LabSync as a Technician", body)
}

// SendPasswordReset emails a password reset link to a patient account.
func SendPasswordReset(toName, toEmail, resetURL string) {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9;">
			<h2 style="color: #4CAF50;">Reset Your LabSync Password</h2>
			<p>Click the link below to reset your password:</p>
			<a href="%s" style="color: #4CAF50;">Reset Password</a>
			<p style="font-size: 14px; color: #777;">If you did not request this, please ignore this email.</p>
		</div>`, resetURL)

	go SendEmail(toName, toEmail, "LabSync Password Reset", body)
}

// SendReportReady emails the patient a link to their generated PDF report.
func SendReportReady(b *models.LabTestBooking, reportURL string) {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9;">
			<h2 style="color: #4CAF50;">Your Lab Report is Ready</h2>
			<p>Dear %s,</p>
			<p>The full PDF report for your lab test is ready for download:</p>
			<a href="%s" style="color: #4CAF50;">Download Report</a>
			<p>Thank you for using LabSync.</p>
		</div>`, b.PatientDetails.FullName, reportURL)

	go SendEmail(b.PatientDetails.FullName, b.PatientDetails.Email, "Your LabSync Report is Ready", body)
}

func slotOf(b *models.LabTestBooking) string {
	if b.ScheduledTime == nil {
		return "to be scheduled"
	}
	return *b.ScheduledTime
}
