package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Price struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Specification struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Feature struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

type Product struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Name           string          `json:"name"`
	Overview       string          `json:"overview,omitempty"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Images         []string        `json:"images,omitempty"`
	Category       *CategoryRef    `json:"category,omitempty"`
	Industries     []Industry      `json:"industries,omitempty"`
	IndustryID     string          `json:"industryId,omitempty"` // demo data only
	Prices         []Price         `json:"prices,omitempty"`
	Features       []Feature       `json:"features,omitempty"`
	Specifications []Specification `json:"specifications,omitempty"`
	FAQs           []FAQ           `json:"faqs,omitempty"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// FirstPrice returns the first listed price, or a zero amount when none exist.
func (p Product) FirstPrice() Price {
	if len(p.Prices) == 0 {
		return Price{}
	}
	return p.Prices[0]
}

// PriceIn returns the amount in currency and whether such a price exists.
func (p Product) PriceIn(currency string) (decimal.Decimal, bool) {
	for _, pr := range p.Prices {
		if pr.Currency == currency {
			return pr.Amount, true
		}
	}
	return decimal.Zero, false
}

// InIndustry reports whether the product is tagged with the industry id.
func (p Product) InIndustry(id string) bool {
	if p.IndustryID == id {
		return true
	}
	for _, ind := range p.Industries {
		if ind.ID == id {
			return true
		}
	}
	return false
}

type SupplierType string

const (
	Manufacturer    SupplierType = "MANUFACTURER"
	Trader          SupplierType = "TRADER"
	Contractor      SupplierType = "CONTRACTOR"
	ServiceProvider SupplierType = "SERVICE_PROVIDER"
)

func (t SupplierType) Valid() bool {
	switch t {
	case Manufacturer, Trader, Contractor, ServiceProvider:
		return true
	}
	return false
}

type Supplier struct {
	ID                  string       `json:"id"`
	CompanyName         string       `json:"companyName"`
	SupplierType        SupplierType `json:"supplierType,omitempty"`
	WebsiteURL          string       `json:"websiteUrl,omitempty"`
	Description         string       `json:"description,omitempty"`
	LogoURL             string       `json:"logoUrl,omitempty"`
	ContactEmail        string       `json:"contactEmail,omitempty"`
	ContactPhone        string       `json:"contactPhone,omitempty"`
	Location            string       `json:"location,omitempty"`
	IsFeatured          bool         `json:"isFeatured"`
	IsVerified          bool         `json:"isVerified"`
	IsAuthorizedPartner bool         `json:"isAuthorizedPartner"`
	Industries          []Industry   `json:"industries,omitempty"`
	IndustryIDs         []string     `json:"industryIds,omitempty"`
}

func (s Supplier) InIndustry(id string) bool {
	for _, x := range s.IndustryIDs {
		if x == id {
			return true
		}
	}
	for _, ind := range s.Industries {
		if ind.ID == id {
			return true
		}
	}
	return false
}

type Category struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug,omitempty"`
	Description   string     `json:"description,omitempty"`
	Icon          string     `json:"icon,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	ParentID      *string    `json:"parentId,omitempty"`
	Subcategories []Category `json:"subcategories,omitempty"`
}

func (c Category) IsRoot() bool { return c.ParentID == nil || *c.ParentID == "" }

type Industry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type RFQStatus string

const (
	RFQPending   RFQStatus = "PENDING"
	RFQResponded RFQStatus = "RESPONDED"
)

func (s RFQStatus) Valid() bool { return s == RFQPending || s == RFQResponded }

type RFQItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type RFQ struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Country     string    `json:"country,omitempty"`
	Message     string    `json:"message,omitempty"`
	Status      RFQStatus `json:"status"`
	Items       []RFQItem `json:"items"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RFQRequest is the body POSTed to create an RFQ.
type RFQRequest struct {
	CompanyName string    `json:"companyName"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Country     string    `json:"country,omitempty"`
	Message     string    `json:"message,omitempty"`
	Items       []RFQItem `json:"items"`
}

// CartItem is a product snapshot plus the selected quantity. The embedded
// product fields serialize flat next to "quantity".
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

type LineItem struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Model       string `json:"model"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
}

type Enquiry struct {
	CompanyName string     `json:"companyName" validate:"notblank"`
	ContactName string     `json:"contactName" validate:"notblank"`
	Email       string     `json:"email" validate:"notblank,email"`
	Country     string     `json:"country"`
	City        string     `json:"city"`
	EnquiryType string     `json:"enquiryType"`
	Description string     `json:"description" validate:"min=10"`
	LineItems   []LineItem `json:"lineItems"`
}

// Attachment is a file sent with an enquiry or bulk upload.
type Attachment struct {
	Name string
	Data []byte
}

type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type Page[T any] struct {
	Data []T   `json:"data"`
	Meta *Meta `json:"meta"`
}

type ProductQuery struct {
	Search     string `query:"search" json:"search,omitempty"`
	CategoryID string `query:"categoryId" json:"categoryId,omitempty"`
	IndustryID string `query:"industryId" json:"industryId,omitempty"`
	Currency   string `query:"currency" json:"currency,omitempty"`
	MinPrice   string `query:"minPrice" json:"minPrice,omitempty"`
	MaxPrice   string `query:"maxPrice" json:"maxPrice,omitempty"`
	Sort       string `query:"sort" json:"sort,omitempty"`
	Page       int    `query:"page" json:"page,omitempty"`
	Limit      int    `query:"limit" json:"limit,omitempty"`
}

type SupplierQuery struct {
	Search       string `query:"search" json:"search,omitempty"`
	SupplierType string `query:"supplierType" json:"supplierType,omitempty"`
	IndustryID   string `query:"industryId" json:"industryId,omitempty"`
	Page         int    `query:"page" json:"page,omitempty"`
	Limit        int    `query:"limit" json:"limit,omitempty"`
}

type RFQQuery struct {
	Status string `query:"status" json:"status,omitempty"`
	Page   int    `query:"page" json:"page,omitempty"`
	Limit  int    `query:"limit" json:"limit,omitempty"`
}

type PopularityEntry struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Count       int    `json:"count"`
}
