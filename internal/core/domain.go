package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

const (
	USD Currency = "USD"
	GBP Currency = "GBP"
)

const (
	ContactCompany ContactType = "company"
	ContactClient  ContactType = "client"
)

// DateLayout is the wire format of issue and due dates.
const DateLayout = "2006-01-02"

type (
	Status      string
	Currency    string
	ContactType string

	// Date is a calendar date without time of day. The zero Date encodes as "".
	Date struct {
		time.Time
	}

	// Party holds the address block shared by clients, contacts and the company.
	Party struct {
		Name    string `json:"name" validate:"required"`
		Address string `json:"address"`
		City    string `json:"city"`
		State   string `json:"state"`
		ZipCode string `json:"zipCode"`
		Phone   string `json:"phone"`
		Email   string `json:"email" validate:"omitempty,email"`
	}

	PaymentDetails struct {
		AccountName   string `json:"accountName"`
		AccountNumber string `json:"accountNumber"`
		SortCode      string `json:"sortCode"`
	}

	// CompanyProfile is the issuer identity. Only one exists.
	CompanyProfile struct {
		Party
		PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
	}

	// Contact is a reusable address book entry. Invoices copy it, never reference it.
	Contact struct {
		ID string `json:"id" validate:"required"`
		Party
		Type      ContactType `json:"type" validate:"oneof=company client"`
		CreatedAt time.Time   `json:"createdAt"`
	}

	LineItem struct {
		ID          string  `json:"id"`
		Description string  `json:"description" validate:"required"`
		Quantity    float64 `json:"quantity" validate:"gt=0"`
		Price       float64 `json:"price" validate:"gt=0"`
		Total       float64 `json:"total"`
	}

	Invoice struct {
		ID            string         `json:"id" validate:"required"`
		InvoiceNumber string         `json:"invoiceNumber" validate:"required"`
		Date          Date           `json:"date"`
		DueDate       Date           `json:"dueDate"`
		Company       CompanyProfile `json:"company"`
		Client        Party          `json:"client"`
		Items         []LineItem     `json:"items" validate:"min=1,dive"`
		Subtotal      float64        `json:"subtotal"`
		TaxRate       float64        `json:"taxRate" validate:"gte=0"`
		TaxAmount     float64        `json:"taxAmount"`
		Total         float64        `json:"total"`
		PaymentTerms  string         `json:"paymentTerms"`
		Notes         string         `json:"notes"`
		Status        Status         `json:"status" validate:"oneof=draft sent paid overdue"`
		Currency      Currency       `json:"currency" validate:"oneof=USD GBP"`
		CreatedAt     time.Time      `json:"createdAt"`
		UpdatedAt     time.Time      `json:"updatedAt"`
	}
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNoItems         = errors.New("invoice needs at least one line item")
	ErrMissingDueDate  = errors.New("due date is required")
	ErrMissingCompany  = errors.New("company information is missing")
	ErrMissingClient   = errors.New("client is required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidDate     = errors.New("invalid date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string. The empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		// Older backups may carry a full timestamp.
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return DateOf(t), nil
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is unset
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	default:
		return false
	}
}

// Statuses lists every invoice status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue}
}

func (c Currency) IsValid() bool {
	return c == USD || c == GBP
}

// Symbol returns the display symbol. Unknown codes use the dollar sign.
func (c Currency) Symbol() string {
	if c == GBP {
		return "£"
	}
	return "$"
}

// ParseCurrency normalises a user supplied code. Unsupported codes are an error;
// formatting helpers fall back to USD instead.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	return c, nil
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// HasPaymentDetails reports whether any payment field is filled in.
func (c CompanyProfile) HasPaymentDetails() bool {
	p := c.PaymentDetails
	return p != nil && (p.AccountName != "" || p.AccountNumber != "" || p.SortCode != "")
}

// Clone returns a copy that shares no memory with c.
func (c CompanyProfile) Clone() CompanyProfile {
	if c.PaymentDetails != nil {
		pd := *c.PaymentDetails
		c.PaymentDetails = &pd
	}
	return c
}

// Snapshot copies the address block of a contact for embedding in an invoice.
func (c Contact) Snapshot() Party {
	return c.Party
}
