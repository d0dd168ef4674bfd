package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// TestCatalog is the fixed menu of lab tests a patient can book.
var TestCatalog = []string{
	"Full Blood Count", "Blood Sugar", "Blood Film for Malaria Parasites", "Sickle Cell", "COVID-19",
	"HB Electrophoresis (Genotype)", "Erythrocyte Sedimentation Rate (ESR)", "Blood Grouping",
	"Typhidot", "H. Pylori", "VDRL for Syphillis", "Hepatitis B", "Hepatitis C",
	"Retro Screen for HIV", "Urine R/E", "Stool R/E", "Liver Function Test (LFT)",
	"Kidney Function Test (KFT)", "BUE & Cr", "PCR for Tuberculosis (Gene Xpert)", "Hormonal/Fertility Tests",
}

// TechnicianSpecialties are the groupings a technician can be credentialed in.
var TechnicianSpecialties = []string{
	"Blood Test", "Urine Test", "X-Ray", "MRI", "COVID-19", "Other",
}

func ValidTestType(name string) bool {
	for _, t := range TestCatalog {
		if t == name {
			return true
		}
	}
	return false
}

func ValidSpecialty(name string) bool {
	for _, s := range TechnicianSpecialties {
		if s == name {
			return true
		}
	}
	return false
}

// SpecialtyFor maps a catalog test onto the specialty best suited to run it.
// Used as a soft preference during assignment, never as a hard filter.
func SpecialtyFor(testName string) string {
	switch {
	case testName == "COVID-19":
		return "COVID-19"
	case strings.HasPrefix(testName, "Urine"):
		return "Urine Test"
	case strings.Contains(testName, "Blood") || testName == "Sickle Cell" ||
		strings.Contains(testName, "ESR") || strings.Contains(testName, "Genotype"):
		return "Blood Test"
	default:
		return "Other"
	}
}

const (
	baseDuration = 15 * time.Minute
	extraPerTest = 5 * time.Minute
)

// EstimatedDuration is informational only: multi-test appointments never
// reserve more than their single slot.
func EstimatedDuration(testCount int) time.Duration {
	if testCount < 1 {
		testCount = 1
	}
	return baseDuration + time.Duration(testCount-1)*extraPerTest
}

func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
