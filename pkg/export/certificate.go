package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData is the validated participation data handed to the renderer
// after certificate issuance succeeds.
type CertificateData struct {
	CertificateID string
	EventName     string
	EventDate     string
	StudentName   string
	EnrollmentNo  string
	Department    string
	TeamName      string
}

// CertificateRenderer produces the participation certificate PDF.
type CertificateRenderer struct {
	issuerName    string
	signatoryName string
}

// NewCertificateRenderer constructs a certificate renderer.
func NewCertificateRenderer(issuerName, signatoryName string) *CertificateRenderer {
	if issuerName == "" {
		issuerName = "Campus Events Cell"
	}
	if signatoryName == "" {
		signatoryName = "Event Coordinator"
	}
	return &CertificateRenderer{issuerName: issuerName, signatoryName: signatoryName}
}

// Render creates the certificate artifact as PDF bytes.
func (r *CertificateRenderer) Render(data CertificateData) ([]byte, error) {
	if data.StudentName == "" || data.EventName == "" {
		return nil, fmt.Errorf("certificate requires student and event names")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetDrawColor(40, 54, 85)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 277, 190, "D")

	pdf.SetFont("Arial", "B", 24)
	pdf.SetY(40)
	pdf.CellFormat(0, 14, "CERTIFICATE OF PARTICIPATION", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(6)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 20)
	pdf.Ln(2)
	pdf.CellFormat(0, 12, data.StudentName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Enrollment No: %s", data.EnrollmentNo), "", 1, "C", false, 0, "")

	line := fmt.Sprintf("has participated in %s", data.EventName)
	if data.TeamName != "" {
		line = fmt.Sprintf("%s as a member of team %q", line, data.TeamName)
	}
	if data.EventDate != "" {
		line = fmt.Sprintf("%s held on %s", line, data.EventDate)
	}
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(4)
	pdf.MultiCell(0, 8, line, "", "C", false)

	pdf.SetFont("Arial", "I", 9)
	pdf.SetY(160)
	pdf.CellFormat(0, 6, fmt.Sprintf("Certificate ID: %s", data.CertificateID), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.SetY(172)
	pdf.CellFormat(138, 7, r.issuerName, "", 0, "C", false, 0, "")
	pdf.CellFormat(0, 7, r.signatoryName, "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
