package ingest

import (
	"fmt"
	"strconv"
	"time"

	"email-report-pipeline/internal/model"
)

// bom is the UTF-8 byte-order mark some exports prepend to the first header.
const bom = "\uFEFF"

// MapRow coerces one header-keyed record into a ParsedRow. It never fails:
// unknown headers are ignored, missing or malformed cells land as NULL, and
// the identity fields are synthesized from whatever survived.
func MapRow(record map[string]string, clientID string) *model.ParsedRow {
	get := func(header string) string {
		if v, ok := record[header]; ok {
			return v
		}
		// The document-level BOM strip misses payloads that arrive already
		// split into records, so the first header may still carry it.
		return record[bom+header]
	}

	row := &model.ParsedRow{
		ContactID:          toText(get("Contact Id")),
		ContactFirstName:   toText(get("Contact First name")),
		ContactLastName:    toText(get("Contact Last name")),
		ContactEmail:       toText(get("Contact email")),
		ContactCountry:     toText(get("Contact country")),
		ContactCompany:     toText(get("Contact company")),
		ContactIndustry:    toText(get("Contact industry")),
		ContactCompanySize: toText(get("Contact company size")),
		EmailAccount:       toText(get("Email account")),
		Sequence:           toText(get("Sequence")),
		SequenceStep:       toInt(get("Sequence step")),
		Subject:            toText(get("Subject")),
		Template:           toText(get("Template")),
		Contacted:          toBool(get("Contacted")),
		DoNotContact:       toBool(get("Do not contact")),
		Delivered:          toBool(get("Delivered")),
		DeliveryDate:       toTimestamp(get("Delivery date")),
		Opened:             toBool(get("Opened")),
		Opens:              toInt(get("Opens")),
		Replied:            toBool(get("Replied")),
		Interested:         toBool(get("Interested")),
		NotInterested:      toBool(get("Not interested")),
		NotNow:             toBool(get("Not now")),
		OptedOut:           toBool(get("OptedOut")),
		Bounced:            toBool(get("Bounced")),
		AutoReplied:        toBool(get("AutoReplied")),
		Forwarded:          toBool(get("Forwarded")),
		OutOfOffice:        toBool(get("OutOfOffice")),
		Active:             toBool(get("Active")),
		Paused:             toBool(get("Paused")),
		Clicked:            toBool(get("Clicked")),
		Unsorted:           toBool(get("Unsorted")),

		ClientID:   clientID,
		UploadedAt: time.Now(),
	}
	row.RowIdentity = rowIdentity(row, clientID)

	return row
}

// rowIdentity builds the deterministic natural key downstream consumers use
// for dedup. A missing contact id, email account or sequence step contributes
// "NA"; a missing delivery date contributes "nodate". A sequence step of zero
// counts as missing.
func rowIdentity(row *model.ParsedRow, clientID string) string {
	contactID := "NA"
	if row.ContactID.Valid && row.ContactID.String != "" {
		contactID = row.ContactID.String
	}

	emailAccount := "NA"
	if row.EmailAccount.Valid && row.EmailAccount.String != "" {
		emailAccount = row.EmailAccount.String
	}

	sequenceStep := "NA"
	if row.SequenceStep.Valid && row.SequenceStep.Int32 != 0 {
		sequenceStep = strconv.Itoa(int(row.SequenceStep.Int32))
	}

	deliveryDate := "nodate"
	if row.DeliveryDate.Valid {
		deliveryDate = row.DeliveryDate.Time.Format("20060102")
	}

	return fmt.Sprintf("%s_%s_%s_%s_%s", contactID, emailAccount, sequenceStep, deliveryDate, clientID)
}
