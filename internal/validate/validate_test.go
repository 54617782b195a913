package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souqnest/internal/domain"
)

type quoteForm struct {
	CompanyName string `json:"companyName" validate:"notblank"`
	Email       string `json:"email" validate:"notblank,email,corporate_email"`
	Message     string `json:"message" validate:"omitempty,min=10"`
}

func TestPersonalEmail(t *testing.T) {
	for _, e := range []string{"a@gmail.com", "b@YAHOO.com", "c@hotmail.com", "d@outlook.com", "e@live.com"} {
		assert.True(t, PersonalEmail(e), e)
	}
	for _, e := range []string{"buyer@acme-corp.com", "gmail.com", "x@mail.gmail.company.io"} {
		assert.False(t, PersonalEmail(e), e)
	}
}

func TestStructCorporateEmail(t *testing.T) {
	err := Struct(quoteForm{CompanyName: "Acme", Email: "buyer@gmail.com"})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 1)
	assert.Contains(t, fe["email"], "corporate email")

	assert.NoError(t, Struct(quoteForm{CompanyName: "Acme", Email: "buyer@acme-corp.com"}))
}

func TestStructMessages(t *testing.T) {
	err := Struct(quoteForm{CompanyName: "  ", Email: "nope", Message: "short"})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "is required", fe["companyName"])
	assert.Equal(t, "must be a valid email address", fe["email"])
	assert.Equal(t, "must be at least 10 characters", fe["message"])
	assert.Contains(t, fe.Error(), "companyName: is required")
}

func TestInputHelpers(t *testing.T) {
	q, ok := Q("  steel valves ")
	assert.True(t, ok)
	assert.Equal(t, "steel valves", q)
	_, ok = Q("<script>")
	assert.False(t, ok)

	assert.Equal(t, 1, Qty("abc"))
	assert.Equal(t, 1, Qty("0"))
	assert.Equal(t, 25, Qty(" 25 "))
	assert.Equal(t, 10000, Qty("999999"))

	_, ok = ID("prod-1")
	assert.True(t, ok)
	_, ok = ID("../etc")
	assert.False(t, ok)

	s, ok := Slug("industrial-valve-dn50")
	assert.True(t, ok)
	assert.Equal(t, "industrial-valve-dn50", s)

	_, ok = Email("jane@acme.io")
	assert.True(t, ok)
	assert.True(t, Password("Passw0rd!"))
	assert.False(t, Password("password"))
}

func TestEnquiry(t *testing.T) {
	e := domain.Enquiry{
		CompanyName: "Acme",
		ContactName: "Jane",
		Email:       "jane@acme.io",
		Description: "Need 40 gate valves, DN50.",
		LineItems:   []domain.LineItem{{Description: "", Category: "valves"}, {Description: "Gate valve", Category: "valves", Quantity: 40}},
	}
	assert.NoError(t, Enquiry(e))

	e.Description = "too short"
	e.LineItems = []domain.LineItem{{Description: "Gate valve"}}
	var fe FieldErrors
	require.True(t, errors.As(Enquiry(e), &fe))
	assert.Contains(t, fe, "description")
	assert.Contains(t, fe, "lineItems")
}

func TestAttachmentsDropOversize(t *testing.T) {
	in := []domain.Attachment{
		{Name: "datasheet.pdf", Data: make([]byte, 1024)},
		{Name: "huge.zip", Data: make([]byte, MaxAttachmentBytes+1)},
	}
	out, dropped := Attachments(in)
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 1)
	assert.Equal(t, "datasheet.pdf", out[0].Name)
}
