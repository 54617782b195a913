package domain

// Admin write payloads. Empty fields are omitted so the same structs serve
// POST (create) and PATCH (partial update).

type SupplierInput struct {
	CompanyName         string       `json:"companyName,omitempty" validate:"required"`
	SupplierType        SupplierType `json:"supplierType,omitempty" validate:"omitempty,oneof=MANUFACTURER TRADER CONTRACTOR SERVICE_PROVIDER"`
	WebsiteURL          string       `json:"websiteUrl,omitempty" validate:"omitempty,url"`
	Description         string       `json:"description,omitempty"`
	LogoURL             string       `json:"logoUrl,omitempty" validate:"omitempty,url"`
	ContactEmail        string       `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone        string       `json:"contactPhone,omitempty"`
	Location            string       `json:"location,omitempty"`
	IsFeatured          *bool        `json:"isFeatured,omitempty"`
	IsVerified          *bool        `json:"isVerified,omitempty"`
	IsAuthorizedPartner *bool        `json:"isAuthorizedPartner,omitempty"`
}

type ProductInput struct {
	Name       string   `json:"name,omitempty" validate:"required"`
	Slug       string   `json:"slug,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Images     []string `json:"images,omitempty"`
	CategoryID string   `json:"categoryId,omitempty"`
	IsActive   *bool    `json:"isActive,omitempty"`
}

type CategoryInput struct {
	Name        string  `json:"name,omitempty" validate:"required"`
	Slug        string  `json:"slug,omitempty"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	ParentID    *string `json:"parentId,omitempty"`
}

type IndustryInput struct {
	Name        string `json:"name,omitempty" validate:"required"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// SearchResults is the admin global search answer.
type SearchResults struct {
	Products   []Product  `json:"products"`
	Suppliers  []Supplier `json:"suppliers"`
	Categories []Category `json:"categories"`
}
