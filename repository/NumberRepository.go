package repository

import (
	"database/sql"
	"fmt"
	"strings"
)

// GenerateDocumentNumber builds a display number like "INV-0042" or
// "QTN-0017". The sequence is zero-padded to four digits; longer
// sequences widen naturally.
func GenerateDocumentNumber(prefix string, sequence int) string {
	formattedPrefix := strings.ToUpper(strings.TrimSpace(prefix))
	return fmt.Sprintf("%s-%04d", formattedPrefix, sequence)
}

// NextInvoiceSequence returns one past the highest invoice id, used to
// seed a default invoice number when the client supplies none. Document
// numbers are user-assigned and not guaranteed unique; this is only a
// convenience default.
func NextInvoiceSequence(db *sql.DB) (int, error) {
	var next int
	err := db.QueryRow(`SELECT COALESCE(MAX(id), 0) + 1 FROM invoice`).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}
