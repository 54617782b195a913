package handlers

import (
	"io"
	"strconv"
	"strings"

	"souqnest/internal/domain"
	"souqnest/internal/log"
	"souqnest/internal/services"
	"souqnest/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ContactHandler struct {
	Enquiry *services.EnquiryService
}

// EnquiryTypes are the options of the enquiry type select.
var EnquiryTypes = []string{"General", "Product", "Supplier", "Partnership"}

func blankItem() domain.LineItem { return domain.LineItem{Quantity: 1} }

// GET /contact
func (h *ContactHandler) Form(c *fiber.Ctx) error {
	return h.page(c, domain.Enquiry{LineItems: []domain.LineItem{blankItem()}}, "", nil, "")
}

func (h *ContactHandler) page(c *fiber.Ctx, e domain.Enquiry, errMsg string, fields map[string]string, notice string) error {
	return render(c, "contact", fiber.Map{
		"Title":  "Contact us",
		"E":      e,
		"Types":  EnquiryTypes,
		"Err":    errMsg,
		"Fields": fields,
		"Notice": notice,
	})
}

// formValues returns every value posted under name, for urlencoded and
// multipart bodies alike.
func formValues(c *fiber.Ctx, name string) []string {
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		return mf.Value[name]
	}
	var out []string
	for _, v := range c.Request().PostArgs().PeekMulti(name) {
		out = append(out, string(v))
	}
	return out
}

func enquiryForm(c *fiber.Ctx) domain.Enquiry {
	e := domain.Enquiry{
		CompanyName: c.FormValue("companyName"),
		ContactName: c.FormValue("contactName"),
		Email:       c.FormValue("email"),
		Country:     c.FormValue("country"),
		City:        c.FormValue("city"),
		EnquiryType: c.FormValue("enquiryType"),
		Description: c.FormValue("description"),
	}
	desc := formValues(c, "item_description")
	cats := formValues(c, "item_category")
	models := formValues(c, "item_model")
	qtys := formValues(c, "item_quantity")
	units := formValues(c, "item_unit")
	at := func(s []string, i int) string {
		if i < len(s) {
			return s[i]
		}
		return ""
	}
	for i := range desc {
		e.LineItems = append(e.LineItems, domain.LineItem{
			Description: at(desc, i),
			Category:    at(cats, i),
			Model:       at(models, i),
			Quantity:    validate.Qty(at(qtys, i)),
			Unit:        at(units, i),
		})
	}
	if len(e.LineItems) == 0 {
		e.LineItems = []domain.LineItem{blankItem()}
	}
	return e
}

// editItems applies a line-item edit op ("add", "duplicate:N", "remove:N").
// The form always keeps at least one row.
func editItems(items []domain.LineItem, op string) ([]domain.LineItem, bool) {
	if op == "add" {
		return append(items, blankItem()), true
	}
	verb, idx, ok := strings.Cut(op, ":")
	if !ok {
		return items, false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(items) {
		return items, verb == "duplicate" || verb == "remove"
	}
	switch verb {
	case "duplicate":
		out := append([]domain.LineItem{}, items[:i+1]...)
		out = append(out, items[i])
		return append(out, items[i+1:]...), true
	case "remove":
		if len(items) == 1 {
			return []domain.LineItem{blankItem()}, true
		}
		return append(append([]domain.LineItem{}, items[:i]...), items[i+1:]...), true
	}
	return items, false
}

// attachments reads the uploaded files. Reads stop one byte past the limit
// so oversized files are recognised and dropped without buffering them.
func attachments(c *fiber.Ctx) ([]domain.Attachment, error) {
	mf, err := c.MultipartForm()
	if err != nil || mf == nil {
		return nil, nil
	}
	var out []domain.Attachment
	for _, fh := range mf.File["attachments"] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, validate.MaxAttachmentBytes+1))
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Attachment{Name: fh.Filename, Data: data})
	}
	return out, nil
}

// POST /contact
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	e := enquiryForm(c)
	if op := c.FormValue("op"); op != "" && op != "send" {
		if items, ok := editItems(e.LineItems, op); ok {
			e.LineItems = items
			return h.page(c, e, "", nil, "")
		}
	}

	files, err := attachments(c)
	if err != nil {
		log.Error(c, "enquiry.attachment.read", err, nil)
		c.Status(fiber.StatusBadRequest)
		return h.page(c, e, "We couldn't read one of your attachments.", nil, "")
	}
	res, err := h.Enquiry.Submit(c.UserContext(), e, files)
	if err != nil {
		f := classify(err)
		logFailure(c, "enquiry.submit", err, f)
		c.Status(f.Status)
		return h.page(c, e, f.Message, f.Fields, "")
	}
	notice := "Thank you. Our team will get back to you shortly."
	if res.Dropped > 0 {
		notice += " Some attachments were larger than 10 MB and were not sent."
	}
	log.Info(c, "enquiry.accepted", map[string]any{"files": res.Attachments, "dropped": res.Dropped})
	return h.page(c, domain.Enquiry{LineItems: []domain.LineItem{blankItem()}}, "", nil, notice)
}
