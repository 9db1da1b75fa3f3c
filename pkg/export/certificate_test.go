package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCertificate(t *testing.T) {
	r := NewCertificateRenderer("Campus Events Cell", "Event Coordinator")

	pdf, err := r.Render(CertificateData{
		CertificateID: "CERT_ABCDEF12_30043_9F2A",
		EventName:     "Hackathon 2026",
		EventDate:     "2026-03-20",
		StudentName:   "Asha Patel",
		EnrollmentNo:  "22BEIT30043",
		Department:    "IT",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Greater(t, len(pdf), 1000)
}

func TestRenderCertificateTeamLine(t *testing.T) {
	r := NewCertificateRenderer("", "")

	pdf, err := r.Render(CertificateData{
		CertificateID: "CERT_ABCDEF12_30043_9F2A",
		EventName:     "Hackathon 2026",
		StudentName:   "Asha Patel",
		EnrollmentNo:  "22BEIT30043",
		TeamName:      "Bit Benders",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRenderCertificateMissingNames(t *testing.T) {
	r := NewCertificateRenderer("", "")

	_, err := r.Render(CertificateData{CertificateID: "CERT_X"})
	require.Error(t, err)

	_, err = r.Render(CertificateData{StudentName: "Asha Patel"})
	require.Error(t, err)
}
