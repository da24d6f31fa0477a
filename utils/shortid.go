package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DOIPrefix is the registrant prefix used for generated DOIs.
const DOIPrefix = "10.52810"

// GenerateShortID returns a 12-character opaque hex id for publications.
func GenerateShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// GenerateDOI derives a unique DOI from a publication short id.
func GenerateDOI(publicationID string) string {
	return fmt.Sprintf("%s/scholar.%s", DOIPrefix, publicationID)
}

// GeneratePaymentReference returns a unique gateway reference for a payment.
func GeneratePaymentReference() string {
	return "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
