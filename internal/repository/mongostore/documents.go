package mongostore

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/segyhp/payment-tracker/internal/domain"
)

type paymentDocument struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty"`
	PayeeFirstName       string                `bson:"payee_first_name"`
	PayeeLastName        string                `bson:"payee_last_name"`
	PayeePaymentStatus   string                `bson:"payee_payment_status"`
	PayeeAddedDateUTC    time.Time             `bson:"payee_added_date_utc"`
	PayeeDueDate         time.Time             `bson:"payee_due_date"`
	PayeeAddressLine1    string                `bson:"payee_address_line_1"`
	PayeeAddressLine2    string                `bson:"payee_address_line_2"`
	PayeeCity            string                `bson:"payee_city"`
	PayeeCountry         string                `bson:"payee_country"`
	PayeeProvinceOrState string                `bson:"payee_province_or_state"`
	PayeePostalCode      string                `bson:"payee_postal_code"`
	PayeePhoneNumber     string                `bson:"payee_phone_number"`
	PayeeEmail           string                `bson:"payee_email"`
	Currency             string                `bson:"currency"`
	DiscountPercent      *primitive.Decimal128 `bson:"discount_percent"`
	TaxPercent           *primitive.Decimal128 `bson:"tax_percent"`
	DueAmount            primitive.Decimal128  `bson:"due_amount"`
	TotalDue             primitive.Decimal128  `bson:"total_due"`
}

type evidenceDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	PaymentID   string             `bson:"payment_id"`
	Filename    string             `bson:"filename"`
	ContentType string             `bson:"content_type"`
	Size        int64              `bson:"size"`
	Content     []byte             `bson:"content"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type importLogDocument struct {
	FileName    string    `bson:"file_name"`
	RecordCount int       `bson:"record_count"`
	ImportedAt  time.Time `bson:"imported_at"`
}

// toDecimal128 converts a decimal for storage. Values that Decimal128 cannot
// represent become zero; payment amounts never come close to that range.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toNullableDecimal128(d decimal.NullDecimal) *primitive.Decimal128 {
	if !d.Valid {
		return nil
	}
	v := toDecimal128(d.Decimal)
	return &v
}

func fromNullableDecimal128(v *primitive.Decimal128) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(fromDecimal128(*v))
}

func newPaymentDocument(p *domain.Payment) *paymentDocument {
	return &paymentDocument{
		PayeeFirstName:       p.PayeeFirstName,
		PayeeLastName:        p.PayeeLastName,
		PayeePaymentStatus:   p.PayeePaymentStatus,
		PayeeAddedDateUTC:    p.PayeeAddedDateUTC,
		PayeeDueDate:         p.PayeeDueDate,
		PayeeAddressLine1:    p.PayeeAddressLine1,
		PayeeAddressLine2:    p.PayeeAddressLine2,
		PayeeCity:            p.PayeeCity,
		PayeeCountry:         p.PayeeCountry,
		PayeeProvinceOrState: p.PayeeProvinceOrState,
		PayeePostalCode:      p.PayeePostalCode,
		PayeePhoneNumber:     p.PayeePhoneNumber,
		PayeeEmail:           p.PayeeEmail,
		Currency:             p.Currency,
		DiscountPercent:      toNullableDecimal128(p.DiscountPercent),
		TaxPercent:           toNullableDecimal128(p.TaxPercent),
		DueAmount:            toDecimal128(p.DueAmount),
		TotalDue:             toDecimal128(p.TotalDue),
	}
}

func (d *paymentDocument) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:                   d.ID.Hex(),
		PayeeFirstName:       d.PayeeFirstName,
		PayeeLastName:        d.PayeeLastName,
		PayeePaymentStatus:   d.PayeePaymentStatus,
		PayeeAddedDateUTC:    d.PayeeAddedDateUTC.UTC(),
		PayeeDueDate:         d.PayeeDueDate.UTC(),
		PayeeAddressLine1:    d.PayeeAddressLine1,
		PayeeAddressLine2:    d.PayeeAddressLine2,
		PayeeCity:            d.PayeeCity,
		PayeeCountry:         d.PayeeCountry,
		PayeeProvinceOrState: d.PayeeProvinceOrState,
		PayeePostalCode:      d.PayeePostalCode,
		PayeePhoneNumber:     d.PayeePhoneNumber,
		PayeeEmail:           d.PayeeEmail,
		Currency:             d.Currency,
		DiscountPercent:      fromNullableDecimal128(d.DiscountPercent),
		TaxPercent:           fromNullableDecimal128(d.TaxPercent),
		DueAmount:            fromDecimal128(d.DueAmount),
		TotalDue:             fromDecimal128(d.TotalDue),
	}
}

func (d *evidenceDocument) toDomain() *domain.Evidence {
	return &domain.Evidence{
		ID:          d.ID.Hex(),
		PaymentID:   d.PaymentID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		Size:        d.Size,
		Content:     d.Content,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}
