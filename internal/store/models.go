package store

import "time"

// Owner is the landlord profile attached to a property.
type Owner struct {
	ID          int64
	FirstName   string
	LastName    string
	CompanyName string
	Address     string
	City        string
	PostalCode  string
	Email       string
}

// DisplayName prefers the company name ("SCI Dupont") over the person name.
func (o Owner) DisplayName() string {
	if o.CompanyName != "" {
		return o.CompanyName
	}
	return joinName(o.FirstName, o.LastName)
}

// Property is a rental unit.
type Property struct {
	ID         int64
	OwnerID    int64
	Address    string
	City       string
	PostalCode string
	Kind       string
	Surface    float64
}

// Tenant is the renting party.
type Tenant struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// DisplayName returns "First Last" with whatever parts are present.
func (t Tenant) DisplayName() string {
	return joinName(t.FirstName, t.LastName)
}

// Lease ties a tenant to a property.
type Lease struct {
	ID         int64
	PropertyID int64
	TenantID   int64
	Kind       string // "vide", "meuble", ...
	StartDate  time.Time
	EndDate    *time.Time
	RentAmount float64
	Charges    float64
	Deposit    float64
	Status     string
}

// Inventory is an "état des lieux", entry or exit.
type Inventory struct {
	ID      int64
	LeaseID int64
	Kind    string // "entree" or "sortie"
	Date    time.Time
	Notes   string
}

// Room is one inspected room of an inventory.
type Room struct {
	ID          int64
	InventoryID int64
	Name        string
	Condition   string // "neuf", "bon", "moyen", "mauvais"
	Notes       string
}

// Rent is one monthly rent call on a lease.
type Rent struct {
	ID      int64
	LeaseID int64
	Month   int
	Year    int
	Amount  float64
	Charges float64
	Status  string // "paye", "en_attente", ...
	PaidAt  *time.Time
}

// Document is the metadata row recorded for a persisted generated file.
type Document struct {
	ID        int64
	OwnerKind string // entity the file belongs to: "rent", "lease", ...
	OwnerID   int64
	Kind      string // "quittance", "bail", "etat_des_lieux"
	Name      string
	Path      string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}

// LeaseRecord is a lease with every entity a document render needs,
// fetched in one join.
type LeaseRecord struct {
	Lease    Lease
	Property Property
	Tenant   Tenant
	Owner    Owner
}

// InventoryRecord is an inventory plus its rooms and lease joins.
type InventoryRecord struct {
	Inventory Inventory
	Rooms     []Room
	Lease     Lease
	Property  Property
	Tenant    Tenant
}

// RentRecord is a rent call plus its lease joins.
type RentRecord struct {
	Rent     Rent
	Lease    Lease
	Property Property
	Tenant   Tenant
	Owner    Owner
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
