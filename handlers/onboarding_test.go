package handlers

import (
	"net/http"
	"strings"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGetClientOnboarding(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestAdmin(t, database)
	client := createTestClient(t, database, "acme")
	checklist, err := services.InstantiateChecklist(database, models.ChecklistTemplateClientSetup, client.ID, nil)
	assert.NoError(t, err)

	t.Run("Returns checklists with progress", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/clients/"+client.ID+"/onboarding", nil)
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err := GetClientOnboarding(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), checklist.ID)
		assert.Contains(t, rec.Body.String(), `"template_key":"client_setup"`)
		assert.Contains(t, rec.Body.String(), `"percent_complete":0`)
	})

	t.Run("Client not found", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/clients/missing/onboarding", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", admin)

		err := GetClientOnboarding(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateOnboardingItem(t *testing.T) {
	setup := func(t *testing.T) (*gorm.DB, *models.User, *models.OnboardingChecklist) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		checklist, err := services.InstantiateChecklist(database, models.ChecklistTemplateClientSetup, client.ID, nil)
		assert.NoError(t, err)
		assert.NotEmpty(t, checklist.Items)
		return database, admin, checklist
	}

	t.Run("Marks item done", func(t *testing.T) {
		database, admin, checklist := setup(t)
		item := checklist.Items[0]

		body := `{"done":true}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/onboarding/items/"+item.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(item.ID)
		c.Set("user", admin)

		err := UpdateOnboardingItem(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"required_done":1`)

		var reloaded models.OnboardingItem
		database.First(&reloaded, "id = ?", item.ID)
		assert.True(t, reloaded.Done)
		assert.NotNil(t, reloaded.DoneAt)
		assert.Equal(t, &admin.ID, reloaded.DoneByID)
	})

	t.Run("Unchecking clears completion metadata", func(t *testing.T) {
		database, admin, checklist := setup(t)
		item := checklist.Items[0]
		assert.NoError(t, services.SetChecklistItemDone(database, &item, true, admin.ID))

		body := `{"done":false}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/onboarding/items/"+item.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(item.ID)
		c.Set("user", admin)

		err := UpdateOnboardingItem(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.OnboardingItem
		database.First(&reloaded, "id = ?", item.ID)
		assert.False(t, reloaded.Done)
		assert.Nil(t, reloaded.DoneAt)
		assert.Nil(t, reloaded.DoneByID)
	})

	t.Run("Toggling to the same state is a no-op", func(t *testing.T) {
		database, admin, checklist := setup(t)
		item := checklist.Items[0]
		assert.NoError(t, services.SetChecklistItemDone(database, &item, true, admin.ID))

		var before models.OnboardingItem
		database.First(&before, "id = ?", item.ID)

		body := `{"done":true}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/onboarding/items/"+item.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(item.ID)
		c.Set("user", admin)

		err := UpdateOnboardingItem(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var after models.OnboardingItem
		database.First(&after, "id = ?", item.ID)
		assert.Equal(t, before.DoneAt.Unix(), after.DoneAt.Unix())
	})

	t.Run("Item not found", func(t *testing.T) {
		_, admin, _ := setup(t)

		body := `{"done":true}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/onboarding/items/missing", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", admin)

		err := UpdateOnboardingItem(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResetClientOnboarding(t *testing.T) {
	t.Run("Rebuilds checklists and discards completion", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		checklist, err := services.InstantiateChecklist(database, models.ChecklistTemplateClientSetup, client.ID, nil)
		assert.NoError(t, err)
		assert.NoError(t, services.SetChecklistItemDone(database, &checklist.Items[0], true, admin.ID))

		_, c, rec := setupJSONEcho(http.MethodPost, "/api/clients/"+client.ID+"/onboarding/reset", strings.NewReader(`{}`))
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err = ResetClientOnboarding(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var rebuilt models.OnboardingChecklist
		assert.NoError(t, database.Preload("Items").First(&rebuilt, "client_id = ?", client.ID).Error)
		assert.NotEqual(t, checklist.ID, rebuilt.ID)
		for _, item := range rebuilt.Items {
			assert.False(t, item.Done)
		}
	})

	t.Run("Template key limits the reset", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		contract := createTestContract(t, database, "v1", client.ID, 1, models.ContractStatusActive)
		setupList, err := services.InstantiateChecklist(database, models.ChecklistTemplateClientSetup, client.ID, nil)
		assert.NoError(t, err)
		kickoff, err := services.InstantiateChecklist(database, models.ChecklistTemplateContractKickoff, client.ID, &contract.ID)
		assert.NoError(t, err)

		body := `{"template_key":"contract_kickoff"}`
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/clients/"+client.ID+"/onboarding/reset", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err = ResetClientOnboarding(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		// The setup checklist is untouched, the kickoff one is rebuilt
		var stillThere models.OnboardingChecklist
		assert.NoError(t, database.First(&stillThere, "id = ?", setupList.ID).Error)
		var gone models.OnboardingChecklist
		assert.Error(t, database.First(&gone, "id = ?", kickoff.ID).Error)
	})

	t.Run("No checklists", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")

		_, c, rec := setupJSONEcho(http.MethodPost, "/api/clients/"+client.ID+"/onboarding/reset", strings.NewReader(`{}`))
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		c.Set("user", admin)

		err := ResetClientOnboarding(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
