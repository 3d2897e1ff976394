package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// seedLease inserts a full owner/property/tenant/lease chain and returns ids.
func seedLease(t *testing.T, s *Store) (*Lease, *Tenant, *Owner) {
	t.Helper()
	ctx := context.Background()

	owner := &Owner{CompanyName: "SCI Dupont", Address: "3 avenue Foch", City: "Lyon", PostalCode: "69006", Email: "sci@example.fr"}
	require.NoError(t, s.InsertOwner(ctx, owner))

	prop := &Property{OwnerID: owner.ID, Address: "12 rue de la Paix", City: "Paris", PostalCode: "75002", Kind: "appartement", Surface: 45}
	require.NoError(t, s.InsertProperty(ctx, prop))

	tenant := &Tenant{FirstName: "Jean", LastName: "Dupont", Email: "jean@example.fr"}
	require.NoError(t, s.InsertTenant(ctx, tenant))

	lease := &Lease{
		PropertyID: prop.ID,
		TenantID:   tenant.ID,
		Kind:       "vide",
		StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		RentAmount: 950,
		Charges:    50,
		Deposit:    950,
		Status:     "actif",
	}
	require.NoError(t, s.InsertLease(ctx, lease))
	return lease, tenant, owner
}

func TestGetLease(t *testing.T) {
	s := newTestStore(t)
	lease, _, _ := seedLease(t, s)

	rec, err := s.GetLease(context.Background(), lease.ID)
	require.NoError(t, err)

	assert.Equal(t, "vide", rec.Lease.Kind)
	assert.Equal(t, 950.0, rec.Lease.RentAmount)
	assert.Equal(t, "2024-01-01", rec.Lease.StartDate.Format("2006-01-02"))
	assert.Nil(t, rec.Lease.EndDate)
	assert.Equal(t, "12 rue de la Paix", rec.Property.Address)
	assert.Equal(t, "Jean Dupont", rec.Tenant.DisplayName())
	assert.Equal(t, "SCI Dupont", rec.Owner.DisplayName())
}

func TestGetLease_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetLease(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetInventory(t *testing.T) {
	s := newTestStore(t)
	lease, _, _ := seedLease(t, s)
	ctx := context.Background()

	inv := &Inventory{LeaseID: lease.ID, Kind: "entree", Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.InsertInventory(ctx, inv))
	require.NoError(t, s.InsertRoom(ctx, &Room{InventoryID: inv.ID, Name: "Salon", Condition: "bon"}))
	require.NoError(t, s.InsertRoom(ctx, &Room{InventoryID: inv.ID, Name: "Cuisine", Condition: "mauvais"}))

	rec, err := s.GetInventory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "entree", rec.Inventory.Kind)
	require.Len(t, rec.Rooms, 2)
	assert.Equal(t, "Salon", rec.Rooms[0].Name)
	assert.Equal(t, "mauvais", rec.Rooms[1].Condition)
	assert.Equal(t, "Jean Dupont", rec.Tenant.DisplayName())
}

func TestGetRent(t *testing.T) {
	s := newTestStore(t)
	lease, _, _ := seedLease(t, s)
	ctx := context.Background()

	paid := time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)
	rent := &Rent{LeaseID: lease.ID, Month: 1, Year: 2024, Amount: 950, Charges: 50, Status: "paye", PaidAt: &paid}
	require.NoError(t, s.InsertRent(ctx, rent))

	rec, err := s.GetRent(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Rent.Month)
	assert.Equal(t, 2024, rec.Rent.Year)
	require.NotNil(t, rec.Rent.PaidAt)
	assert.Equal(t, "2024-02-03", rec.Rent.PaidAt.Format("2006-01-02"))
	assert.Equal(t, "SCI Dupont", rec.Owner.DisplayName())
}

func TestGetRent_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRent(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertDocument(t *testing.T) {
	s := newTestStore(t)
	d := &Document{
		OwnerKind: "rent",
		OwnerID:   1,
		Kind:      "quittance",
		Name:      "quittance-1.pdf",
		Path:      "documents/quittances/quittance-1.pdf",
		MimeType:  "application/pdf",
		Size:      1234,
	}
	require.NoError(t, s.InsertDocument(context.Background(), d))
	assert.Positive(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestOwnerDisplayName(t *testing.T) {
	assert.Equal(t, "SCI Dupont", Owner{CompanyName: "SCI Dupont", FirstName: "Marie"}.DisplayName())
	assert.Equal(t, "Marie Martin", Owner{FirstName: "Marie", LastName: "Martin"}.DisplayName())
	assert.Equal(t, "Martin", Owner{LastName: "Martin"}.DisplayName())
}
