package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/labsync/labsync/configs"
	"github.com/labsync/labsync/database"
	"github.com/labsync/labsync/models"
	"github.com/labsync/labsync/notifications"
)

// GenerateResultReport renders the completed booking into a PDF, uploads it
// and emails the patient a download link. Best-effort: runs after the
// completion has committed, any failure is logged and never unwinds the
// booking.
func GenerateResultReport(booking models.LabTestBooking) {
	if booking.Status != models.StatusCompleted || booking.Result == "" {
		return
	}

	var existing models.LabReport
	if err := database.DB.Where("booking_id = ?", booking.ID).First(&existing).Error; err == nil {
		return
	}

	technicianName := "LabSync Technician"
	if booking.TechnicianID != nil {
		var tech models.Technician
		if err := database.DB.First(&tech, "id = ?", *booking.TechnicianID).Error; err == nil {
			technicianName = tech.FullName
		}
	}

	htmlData, err := renderReportHTML(booking, technicianName)
	if err != nil {
		log.Printf("🔥 Failed to render report HTML for booking %s: %v", booking.ID, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate report PDF for booking %s: %v", booking.ID, err)
		return
	}

	reportURL, err := uploadToCloudinary(pdfBytes, booking.BookedBy.String())
	if err != nil {
		log.Printf("🔥 Failed to upload report for booking %s: %v", booking.ID, err)
		return
	}

	report := models.LabReport{
		BookingID: booking.ID,
		PatientID: booking.BookedBy,
		ReportURL: reportURL,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		log.Printf("🔥 Failed to save report record for booking %s: %v", booking.ID, err)
		return
	}

	notifications.SendReportReady(&booking, reportURL)
	log.Printf("✅ Generated result report for booking %s", booking.ID)
}

func renderReportHTML(booking models.LabTestBooking, technicianName string) (string, error) {
	tmpl, err := template.ParseFiles("templates/report.html")
	if err != nil {
		return "", err
	}

	slot := ""
	if booking.ScheduledTime != nil {
		slot = *booking.ScheduledTime
	}

	data := struct {
		PatientName    string
		PatientAge     int
		PatientGender  string
		Tests          string
		ScheduledDate  string
		ScheduledTime  string
		TechnicianName string
		Result         string
		Notes          string
		GeneratedOn    string
	}{
		PatientName:    booking.PatientDetails.FullName,
		PatientAge:     booking.PatientDetails.Age,
		PatientGender:  booking.PatientDetails.Gender,
		Tests:          strings.Join(booking.TestType, ", "),
		ScheduledDate:  booking.ScheduledDate,
		ScheduledTime:  slot,
		TechnicianName: technicianName,
		Result:         booking.Result,
		Notes:          booking.Notes,
		GeneratedOn:    time.Now().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, patientID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("reports/%s_%s", patientID, uuid.New().String()),
		Folder:       "labsync_reports",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
