package lifecycle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Identifier kinds minted along the participation chain.
const (
	kindRegistration     = "REG"
	kindAttendance       = "ATT"
	kindFeedback         = "FBK"
	kindCertificate      = "CERT"
	kindTeamRegistration = "TEAM"
)

// newID builds a human-scannable identifier of the form
// KIND_EVENTPREFIX_ENROLLSUFFIX_HASH4. The event and student stay
// recognizable at a glance while the hash folds in the mint time, so two
// mints for the same pair at different instants diverge. Lifecycle rules
// guarantee each kind is minted at most once per participation, so the short
// hash is not a collision concern in practice.
func newID(kind, enrollmentNo, eventID, disambiguator string, now time.Time) string {
	eventPrefix := strings.ToUpper(eventID)
	if len(eventPrefix) > 8 {
		eventPrefix = eventPrefix[:8]
	}
	enrollSuffix := enrollmentNo
	if len(enrollSuffix) > 5 {
		enrollSuffix = enrollSuffix[len(enrollSuffix)-5:]
	}

	seed := strings.Join([]string{enrollmentNo, eventID, kind, disambiguator, now.Format(time.RFC3339Nano)}, "_")
	sum := sha256.Sum256([]byte(seed))
	hashSuffix := strings.ToUpper(hex.EncodeToString(sum[:2]))

	return fmt.Sprintf("%s_%s_%s_%s", kind, eventPrefix, enrollSuffix, hashSuffix)
}

// NewRegistrationID mints a registration identifier.
func NewRegistrationID(enrollmentNo, eventID, disambiguator string, now time.Time) string {
	return newID(kindRegistration, enrollmentNo, eventID, disambiguator, now)
}

// NewAttendanceID mints an attendance identifier.
func NewAttendanceID(enrollmentNo, eventID, disambiguator string, now time.Time) string {
	return newID(kindAttendance, enrollmentNo, eventID, disambiguator, now)
}

// NewFeedbackID mints a feedback identifier.
func NewFeedbackID(enrollmentNo, eventID string, now time.Time) string {
	return newID(kindFeedback, enrollmentNo, eventID, "", now)
}

// NewCertificateID mints a certificate identifier.
func NewCertificateID(enrollmentNo, eventID, disambiguator string, now time.Time) string {
	return newID(kindCertificate, enrollmentNo, eventID, disambiguator, now)
}

// NewTeamRegistrationID mints a team registration identifier from the
// leader's enrollment and the team name.
func NewTeamRegistrationID(leaderEnrollment, eventID, teamName string, now time.Time) string {
	return newID(kindTeamRegistration, leaderEnrollment, eventID, teamName, now)
}
