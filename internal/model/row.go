package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ParsedRow is one CSV record coerced into the staging-table shape. Nullable
// columns use pgtype values so a failed coercion lands as SQL NULL instead of
// a zero value. ClientID, UploadedAt and RowIdentity are synthesized during
// mapping, never read from the source record.
type ParsedRow struct {
	ContactID          pgtype.Text
	ContactFirstName   pgtype.Text
	ContactLastName    pgtype.Text
	ContactEmail       pgtype.Text
	ContactCountry     pgtype.Text
	ContactCompany     pgtype.Text
	ContactIndustry    pgtype.Text
	ContactCompanySize pgtype.Text
	EmailAccount       pgtype.Text
	Sequence           pgtype.Text
	SequenceStep       pgtype.Int4
	Subject            pgtype.Text
	Template           pgtype.Text
	Contacted          pgtype.Bool
	DoNotContact       pgtype.Bool
	Delivered          pgtype.Bool
	DeliveryDate       pgtype.Timestamp
	Opened             pgtype.Bool
	Opens              pgtype.Int4
	Replied            pgtype.Bool
	Interested         pgtype.Bool
	NotInterested      pgtype.Bool
	NotNow             pgtype.Bool
	OptedOut           pgtype.Bool
	Bounced            pgtype.Bool
	AutoReplied        pgtype.Bool
	Forwarded          pgtype.Bool
	OutOfOffice        pgtype.Bool
	Active             pgtype.Bool
	Paused             pgtype.Bool
	Clicked            pgtype.Bool
	Unsorted           pgtype.Bool

	ClientID    string
	UploadedAt  time.Time
	RowIdentity string
}

// ParsedRowColumns is the staging-table column list, in insert order. Values
// must return the matching value for every entry.
var ParsedRowColumns = []string{
	"contact_id",
	"contact_first_name",
	"contact_last_name",
	"contact_email",
	"contact_country",
	"contact_company",
	"contact_industry",
	"contact_company_size",
	"email_account",
	"sequence",
	"sequence_step",
	"subject",
	"template",
	"contacted",
	"do_not_contact",
	"delivered",
	"delivery_date",
	"opened",
	"opens",
	"replied",
	"interested",
	"not_interested",
	"not_now",
	"opted_out",
	"bounced",
	"auto_replied",
	"forwarded",
	"out_of_office",
	"active",
	"paused",
	"clicked",
	"unsorted",
	"client_id",
	"uploaded_at",
	"row_identity",
}

// Values returns the row's column values aligned with ParsedRowColumns.
func (r *ParsedRow) Values() []any {
	return []any{
		r.ContactID,
		r.ContactFirstName,
		r.ContactLastName,
		r.ContactEmail,
		r.ContactCountry,
		r.ContactCompany,
		r.ContactIndustry,
		r.ContactCompanySize,
		r.EmailAccount,
		r.Sequence,
		r.SequenceStep,
		r.Subject,
		r.Template,
		r.Contacted,
		r.DoNotContact,
		r.Delivered,
		r.DeliveryDate,
		r.Opened,
		r.Opens,
		r.Replied,
		r.Interested,
		r.NotInterested,
		r.NotNow,
		r.OptedOut,
		r.Bounced,
		r.AutoReplied,
		r.Forwarded,
		r.OutOfOffice,
		r.Active,
		r.Paused,
		r.Clicked,
		r.Unsorted,
		r.ClientID,
		r.UploadedAt,
		r.RowIdentity,
	}
}
