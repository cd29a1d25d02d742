package services

import (
	"talent_flow_app_go/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupClientServiceTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Client{}, &models.Case{}, &models.ClientContact{}, &models.ClientAddress{})
	return db
}

func TestEnsureUniqueClientSlug(t *testing.T) {
	t.Run("Slugifies the company name", func(t *testing.T) {
		db := setupClientServiceTestDB()

		slug, err := EnsureUniqueClientSlug(db, "Acme Group Holdings, Ltd.")
		assert.NoError(t, err)
		assert.Equal(t, "acme-group-holdings-ltd", slug)
	})

	t.Run("Appends a suffix on collision", func(t *testing.T) {
		db := setupClientServiceTestDB()
		db.Create(&models.Client{ID: "c1", Name: "Acme", Slug: "acme"})

		slug, err := EnsureUniqueClientSlug(db, "Acme")
		assert.NoError(t, err)
		assert.Equal(t, "acme-2", slug)

		db.Create(&models.Client{ID: "c2", Name: "Acme", Slug: "acme-2"})

		slug, err = EnsureUniqueClientSlug(db, "ACME!")
		assert.NoError(t, err)
		assert.Equal(t, "acme-3", slug)
	})
}

func TestCountOpenCases(t *testing.T) {
	db := setupClientServiceTestDB()
	client := &models.Client{ID: "c1", Name: "Acme", Slug: "acme"}
	other := &models.Client{ID: "c2", Name: "Borealis", Slug: "borealis"}
	db.Create(client)
	db.Create(other)

	db.Create(&models.Case{ClientID: client.ID, CaseNumber: "ACME-2026-00001", Title: "Open", Status: models.CaseStatusOpen})
	db.Create(&models.Case{ClientID: client.ID, CaseNumber: "ACME-2026-00002", Title: "In progress", Status: models.CaseStatusInProgress})
	db.Create(&models.Case{ClientID: client.ID, CaseNumber: "ACME-2026-00003", Title: "On hold", Status: models.CaseStatusOnHold})
	db.Create(&models.Case{ClientID: client.ID, CaseNumber: "ACME-2026-00004", Title: "Closed", Status: models.CaseStatusClosed})
	db.Create(&models.Case{ClientID: other.ID, CaseNumber: "BOREALIS-2026-00001", Title: "Other client", Status: models.CaseStatusOpen})

	count, err := CountOpenCases(db, client.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSetPrimaryContact(t *testing.T) {
	db := setupClientServiceTestDB()
	client := &models.Client{ID: "c1", Name: "Acme", Slug: "acme"}
	db.Create(client)

	jane := &models.ClientContact{ID: "ct1", ClientID: client.ID, Name: "Jane Smith", IsPrimary: true}
	tom := &models.ClientContact{ID: "ct2", ClientID: client.ID, Name: "Tom Becker"}
	db.Create(jane)
	db.Create(tom)

	err := SetPrimaryContact(db, client.ID, tom.ID)
	assert.NoError(t, err)

	var contacts []models.ClientContact
	db.Where("client_id = ? AND is_primary = ?", client.ID, true).Find(&contacts)
	assert.Len(t, contacts, 1)
	assert.Equal(t, tom.ID, contacts[0].ID)
}

func TestSetPrimaryAddress(t *testing.T) {
	db := setupClientServiceTestDB()
	client := &models.Client{ID: "c1", Name: "Acme", Slug: "acme"}
	db.Create(client)

	hq := &models.ClientAddress{ID: "a1", ClientID: client.ID, Label: models.AddressLabelHQ, Street: "12 Foundry Way", City: "Springfield", Country: "US", IsPrimary: true}
	site := &models.ClientAddress{ID: "a2", ClientID: client.ID, Label: models.AddressLabelSite, Street: "400 Plant Rd", City: "Peoria", Country: "US"}
	db.Create(hq)
	db.Create(site)

	err := SetPrimaryAddress(db, client.ID, site.ID)
	assert.NoError(t, err)

	var addresses []models.ClientAddress
	db.Where("client_id = ? AND is_primary = ?", client.ID, true).Find(&addresses)
	assert.Len(t, addresses, 1)
	assert.Equal(t, site.ID, addresses[0].ID)
}
