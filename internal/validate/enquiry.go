package validate

import (
	"strings"

	"souqnest/internal/domain"
)

// MaxAttachmentBytes is the largest file accepted with an enquiry.
const MaxAttachmentBytes = 10 << 20

// Enquiry checks the contact form. Besides the struct rules, at least one
// line item must carry both a description and a category.
func Enquiry(e domain.Enquiry) error {
	e.Description = strings.TrimSpace(e.Description)
	fe := FieldErrors{}
	if err := Struct(e); err != nil {
		errs, ok := err.(FieldErrors)
		if !ok {
			return err
		}
		fe = errs
	}
	complete := false
	for _, li := range e.LineItems {
		if strings.TrimSpace(li.Description) != "" && strings.TrimSpace(li.Category) != "" {
			complete = true
			break
		}
	}
	if !complete {
		fe["lineItems"] = "at least one item needs a description and a category"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Attachments drops files larger than MaxAttachmentBytes and reports how
// many were dropped.
func Attachments(in []domain.Attachment) ([]domain.Attachment, int) {
	out := make([]domain.Attachment, 0, len(in))
	for _, a := range in {
		if len(a.Data) <= MaxAttachmentBytes {
			out = append(out, a)
		}
	}
	return out, len(in) - len(out)
}
