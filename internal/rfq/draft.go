// Package rfq models the quote-request wizard as a finite-state machine over
// a persisted draft.
package rfq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"souqnest/internal/cart"
	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/validate"
)

// StorageKey is the session storage key holding the serialized draft.
const StorageKey = "souqnest_rfq_draft"

var (
	ErrNoItems        = errors.New("rfq: at least one product is required")
	ErrInvalidContact = errors.New("rfq: contact details are incomplete")
)

type Step int

const (
	StepProducts Step = iota + 1
	StepCompany
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepProducts:
		return "products"
	case StepCompany:
		return "company"
	case StepReview:
		return "review"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Item is a product line in the draft, copied from the cart or a product page.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency,omitempty"`
}

type Contact struct {
	CompanyName string `json:"companyName" validate:"notblank"`
	ContactName string `json:"contactName" validate:"notblank"`
	Email       string `json:"email" validate:"notblank,email,corporate_email"`
	Phone       string `json:"phone" validate:"notblank"`
	Country     string `json:"country,omitempty"`
	Message     string `json:"message,omitempty"`
}

func (c Contact) trimmed() Contact {
	return Contact{
		CompanyName: strings.TrimSpace(c.CompanyName),
		ContactName: strings.TrimSpace(c.ContactName),
		Email:       strings.TrimSpace(c.Email),
		Phone:       strings.TrimSpace(c.Phone),
		Country:     strings.TrimSpace(c.Country),
		Message:     strings.TrimSpace(c.Message),
	}
}

// Validate returns validate.FieldErrors for missing or unacceptable fields.
func (c Contact) Validate() error {
	return validate.Struct(c.trimmed())
}

// Draft is the wizard state. The zero value is not usable; use New or Load.
type Draft struct {
	Step    Step    `json:"step"`
	Items   []Item  `json:"items"`
	Contact Contact `json:"contact"`
	Status  Status  `json:"status"`
	LastErr string  `json:"lastError,omitempty"`
	RFQID   string  `json:"rfqId,omitempty"`

	store cart.Storage
}

func New(store cart.Storage) *Draft {
	return &Draft{Step: StepProducts, Items: []Item{}, Status: StatusEditing, store: store}
}

// Load hydrates the session draft. Unparsable data is removed and a fresh
// draft returned.
func Load(store cart.Storage) *Draft {
	d := New(store)
	raw, ok, err := store.GetItem(StorageKey)
	if err != nil {
		applog.Warn(nil, "rfq.load.fail", err, nil)
		return d
	}
	if !ok || raw == "" {
		return d
	}
	if err := json.Unmarshal([]byte(raw), d); err != nil || d.Step < StepProducts || d.Step > StepReview {
		applog.Warn(nil, "rfq.parse.fail", err, nil)
		if rerr := store.RemoveItem(StorageKey); rerr != nil {
			applog.Error(nil, "rfq.remove.fail", rerr, nil)
		}
		return New(store)
	}
	if d.Items == nil {
		d.Items = []Item{}
	}
	return d
}

// Save writes the draft; failures drop the stored copy and are only logged.
func (d *Draft) Save() {
	b, err := json.Marshal(d)
	if err == nil {
		err = d.store.SetItem(StorageKey, string(b))
	}
	if err != nil {
		applog.Warn(nil, "rfq.save.fail", err, map[string]any{"items": len(d.Items)})
		if rerr := d.store.RemoveItem(StorageKey); rerr != nil {
			applog.Error(nil, "rfq.remove.fail", rerr, nil)
		}
	}
}

// TransferFromCart copies the cart contents into the draft and empties the
// cart. A product already in the draft takes the cart's quantity. The copy is
// one-way: the draft keeps its own items afterwards.
func (d *Draft) TransferFromCart(c *cart.Cart) {
	for _, it := range c.Items() {
		if !d.addItem(itemFrom(it.Product, it.Quantity)) {
			d.SetQuantity(it.Product.ID, it.Quantity)
		}
	}
	c.Clear()
	d.Status = StatusEditing
	d.Save()
}

// AddProduct adds p with qty unless it is already in the draft.
func (d *Draft) AddProduct(p domain.Product, qty int) bool {
	if qty < 1 {
		qty = 1
	}
	added := d.addItem(itemFrom(p, qty))
	if added {
		d.Status = StatusEditing
		d.Save()
	}
	return added
}

func (d *Draft) addItem(it Item) bool {
	for i := range d.Items {
		if d.Items[i].ProductID == it.ProductID {
			return false
		}
	}
	d.Items = append(d.Items, it)
	return true
}

func itemFrom(p domain.Product, qty int) Item {
	fp := p.FirstPrice()
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  qty,
		Image:     p.ImageURL,
		Price:     fp.Amount,
		Currency:  fp.Currency,
	}
}

func (d *Draft) RemoveItem(id string) {
	out := d.Items[:0]
	for _, it := range d.Items {
		if it.ProductID != id {
			out = append(out, it)
		}
	}
	d.Items = out
	d.Save()
}

// SetQuantity clamps n to at least 1.
func (d *Draft) SetQuantity(id string, n int) {
	if n < 1 {
		n = 1
	}
	for i := range d.Items {
		if d.Items[i].ProductID == id {
			d.Items[i].Quantity = n
		}
	}
	d.Save()
}

func (d *Draft) SetContact(c Contact) {
	d.Contact = c
	d.Save()
}

// CanAdvance reports whether Next would leave the current step.
func (d *Draft) CanAdvance() error {
	switch d.Step {
	case StepProducts:
		if len(d.Items) == 0 {
			return ErrNoItems
		}
	case StepCompany:
		if err := d.Contact.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidContact, err)
		}
	case StepReview:
		return fmt.Errorf("rfq: already on the last step")
	}
	return nil
}

// Next moves forward one step when the current step is complete.
func (d *Draft) Next() error {
	if err := d.CanAdvance(); err != nil {
		return err
	}
	d.Step++
	d.Save()
	return nil
}

func (d *Draft) Back() {
	if d.Step > StepProducts {
		d.Step--
		d.Save()
	}
}

// Payload serializes the draft into the create-RFQ request body.
func (d *Draft) Payload() domain.RFQRequest {
	c := d.Contact.trimmed()
	items := make([]domain.RFQItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.RFQItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return domain.RFQRequest{
		CompanyName: c.CompanyName,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Country:     c.Country,
		Message:     c.Message,
		Items:       items,
	}
}

// Submitter creates an RFQ on the backend.
type Submitter interface {
	CreateRFQ(ctx context.Context, req domain.RFQRequest) (domain.RFQ, error)
}

// Submit validates the draft and posts it once. Validation failures move the
// wizard back to the offending step. On success the draft is reset; on
// failure it is kept intact for a manual retry.
func (d *Draft) Submit(ctx context.Context, s Submitter) (domain.RFQ, error) {
	if len(d.Items) == 0 {
		d.Step = StepProducts
		d.Save()
		return domain.RFQ{}, ErrNoItems
	}
	if err := d.Contact.Validate(); err != nil {
		d.Step = StepCompany
		d.Save()
		return domain.RFQ{}, fmt.Errorf("%w: %w", ErrInvalidContact, err)
	}

	d.Status = StatusSubmitting
	created, err := s.CreateRFQ(ctx, d.Payload())
	if err != nil {
		d.Status = StatusFailed
		d.LastErr = err.Error()
		d.Save()
		return domain.RFQ{}, err
	}

	*d = Draft{Step: StepProducts, Items: []Item{}, Status: StatusSucceeded, RFQID: created.ID, store: d.store}
	d.Save()
	return created, nil
}

// Reset discards the draft and its stored copy.
func (d *Draft) Reset() {
	*d = *New(d.store)
	if err := d.store.RemoveItem(StorageKey); err != nil {
		applog.Error(nil, "rfq.remove.fail", err, nil)
	}
}

// Count is the number of distinct products in the draft.
func (d *Draft) Count() int { return len(d.Items) }
