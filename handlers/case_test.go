package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"talent_flow_app_go/models"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetCases(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestAdmin(t, database)
	consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
	client := createTestClient(t, database, "acme")
	createTestCase(t, database, "1", client.ID, &consultant.ID)
	unassigned := createTestCase(t, database, "2", client.ID, nil)
	database.Model(unassigned).Update("status", models.CaseStatusOnHold)

	t.Run("Admin sees all cases", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases", nil)
		c.Set("user", admin)

		err := GetCases(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total":2`)
	})

	t.Run("Consultant sees only assigned cases", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases", nil)
		c.Set("user", consultant)

		err := GetCases(c)
		assert.NoError(t, err)
		assert.Contains(t, rec.Body.String(), "case-1")
		assert.NotContains(t, rec.Body.String(), "case-2")
		assert.Contains(t, rec.Body.String(), `"total":1`)
	})

	t.Run("Filters by status", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases?status=ON_HOLD", nil)
		c.Set("user", admin)

		err := GetCases(c)
		assert.NoError(t, err)
		assert.Contains(t, rec.Body.String(), "case-2")
		assert.NotContains(t, rec.Body.String(), "case-1")
	})

	t.Run("Keyword matches case number", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases?keyword=HR-2026-1", nil)
		c.Set("user", admin)

		err := GetCases(c)
		assert.NoError(t, err)
		assert.Contains(t, rec.Body.String(), "case-1")
		assert.NotContains(t, rec.Body.String(), "case-2")
	})

	t.Run("Assignee filter is admin only", func(t *testing.T) {
		staff := createTestUser(t, database, "s1", "staff1@test.com", models.RoleStaff)
		_, c, rec := setupEcho(http.MethodGet, "/api/cases?assigned_to="+consultant.ID, nil)
		c.Set("user", staff)

		err := GetCases(c)
		assert.NoError(t, err)
		// Non-admins cannot pivot on assignee, so the filter is ignored
		assert.Contains(t, rec.Body.String(), `"total":2`)
	})
}

func TestGetCase(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestAdmin(t, database)
	consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
	client := createTestClient(t, database, "acme")
	assigned := createTestCase(t, database, "1", client.ID, &consultant.ID)
	other := createTestCase(t, database, "2", client.ID, nil)

	t.Run("Returns case with relations", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+assigned.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(assigned.ID)
		c.Set("user", admin)

		err := GetCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Client acme")
	})

	t.Run("Consultant reads own case", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+assigned.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(assigned.ID)
		c.Set("user", consultant)

		err := GetCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Consultant blocked from other cases", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/cases/"+other.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(other.ID)
		c.Set("user", consultant)

		err := GetCase(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
	})

	t.Run("Not found", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/missing", nil)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		c.Set("user", admin)

		err := GetCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateCase(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")

		body := fmt.Sprintf(`{"client_id":"%s","title":"Payroll dispute","category":"PAYROLL","priority":"HIGH"}`, client.ID)
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/cases", strings.NewReader(body))
		c.Set("user", admin)

		err := CreateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.Case
		assert.NoError(t, database.First(&created, "client_id = ?", client.ID).Error)
		assert.Equal(t, fmt.Sprintf("ACME-%d-00001", time.Now().Year()), created.CaseNumber)
		assert.Equal(t, models.CaseStatusOpen, created.Status)
		assert.Equal(t, "PAYROLL", created.Category)
		assert.Equal(t, &admin.ID, created.CreatedByID)
		assert.False(t, created.OpenedAt.IsZero())
	})

	t.Run("Sequence increments within client and year", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		first := &models.Case{
			ID:         "case-first",
			CaseNumber: fmt.Sprintf("ACME-%d-00007", time.Now().Year()),
			ClientID:   client.ID,
			Title:      "Earlier case",
		}
		assert.NoError(t, database.Create(first).Error)

		body := fmt.Sprintf(`{"client_id":"%s","title":"Next case"}`, client.ID)
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/cases", strings.NewReader(body))
		c.Set("user", admin)

		err := CreateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), fmt.Sprintf("ACME-%d-00008", time.Now().Year()))
	})

	t.Run("Defaults applied", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")

		body := fmt.Sprintf(`{"client_id":"%s","title":"Bare minimum"}`, client.ID)
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/cases", strings.NewReader(body))
		c.Set("user", admin)

		err := CreateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.Case
		database.First(&created, "client_id = ?", client.ID)
		assert.Equal(t, models.CaseCategoryOther, created.Category)
		assert.Equal(t, models.CasePriorityMedium, created.Priority)
	})

	t.Run("Assignment notifies the assignee", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
		client := createTestClient(t, database, "acme")

		body := fmt.Sprintf(`{"client_id":"%s","title":"Assigned case","assigned_to_id":"%s"}`, client.ID, consultant.ID)
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/cases", strings.NewReader(body))
		c.Set("user", admin)

		err := CreateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var notification models.Notification
		assert.NoError(t, database.First(&notification, "user_id = ? AND type = ?",
			consultant.ID, models.NotificationTypeCaseAssigned).Error)
		assert.Contains(t, notification.Message, "Client acme")
	})

	t.Run("Unknown client", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)

		body := `{"client_id":"missing","title":"Orphan"}`
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/cases", strings.NewReader(body))
		c.Set("user", admin)

		err := CreateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Client not found")
	})

	t.Run("Invalid category", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")

		body := fmt.Sprintf(`{"client_id":"%s","title":"Weird","category":"GOSSIP"}`, client.ID)
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/cases", strings.NewReader(body))
		c.Set("user", admin)

		err := CreateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid category")
	})

	t.Run("Inactive assignee rejected", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
		consultant.IsActive = false
		database.Save(consultant)
		client := createTestClient(t, database, "acme")

		body := fmt.Sprintf(`{"client_id":"%s","title":"Doomed","assigned_to_id":"%s"}`, client.ID, consultant.ID)
		_, c, rec := setupJSONEcho(http.MethodPost, "/api/cases", strings.NewReader(body))
		c.Set("user", admin)

		err := CreateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Assignee not found or inactive")
	})
}

func TestUpdateCase(t *testing.T) {
	t.Run("Lifecycle fields stay immutable", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := `{"title":"Retitled","category":"POLICY","priority":"URGENT","status":"CLOSED","case_number":"FAKE-1"}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated models.Case
		database.First(&updated, "id = ?", caseRecord.ID)
		assert.Equal(t, "Retitled", updated.Title)
		assert.Equal(t, "POLICY", updated.Category)
		assert.Equal(t, models.CaseStatusOpen, updated.Status)
		assert.Equal(t, caseRecord.CaseNumber, updated.CaseNumber)
	})

	t.Run("Title required", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := `{"title":"  ","category":"OTHER","priority":"LOW"}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Consultant blocked from unassigned case", func(t *testing.T) {
		database := setupTestDB(t)
		consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := `{"title":"Hijack","category":"OTHER","priority":"LOW"}`
		_, c, _ := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", consultant)

		err := UpdateCase(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
	})
}

func TestUpdateCaseStatus(t *testing.T) {
	t.Run("Valid transition", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := `{"status":"IN_PROGRESS"}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/status", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCaseStatus(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated models.Case
		database.First(&updated, "id = ?", caseRecord.ID)
		assert.Equal(t, models.CaseStatusInProgress, updated.Status)
		assert.NotNil(t, updated.StatusChangedAt)
		assert.Equal(t, &admin.ID, updated.StatusChangedBy)
	})

	t.Run("Same status rejected", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := `{"status":"OPEN"}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/status", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCaseStatus(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "already OPEN")
	})

	t.Run("Disallowed transition", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)
		database.Model(caseRecord).Update("status", models.CaseStatusInProgress)

		body := `{"status":"OPEN"}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/status", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCaseStatus(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Cannot transition from IN_PROGRESS to OPEN")
	})

	t.Run("Closing requires a resolution note", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := `{"status":"CLOSED","resolution_note":"  "}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/status", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCaseStatus(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "resolution note is required")
	})

	t.Run("Closing records the resolution", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := `{"status":"CLOSED","resolution_note":"Employee and manager signed the agreement."}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/status", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCaseStatus(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated models.Case
		database.First(&updated, "id = ?", caseRecord.ID)
		assert.Equal(t, models.CaseStatusClosed, updated.Status)
		assert.NotNil(t, updated.ClosedAt)
		assert.NotNil(t, updated.LastActivityAt)

		var note models.Interaction
		assert.NoError(t, database.First(&note, "case_id = ? AND kind = ?",
			caseRecord.ID, models.InteractionKindSystem).Error)
		assert.Equal(t, "Case closed", note.Subject)
		assert.Contains(t, note.Notes, "signed the agreement")
	})

	t.Run("Reopening clears the closed timestamp", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)
		closedAt := time.Now().Add(-24 * time.Hour)
		database.Model(caseRecord).Updates(map[string]interface{}{
			"status":    models.CaseStatusClosed,
			"closed_at": closedAt,
		})

		body := `{"status":"OPEN"}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/status", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCaseStatus(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var reopened models.Case
		database.First(&reopened, "id = ?", caseRecord.ID)
		assert.Equal(t, models.CaseStatusOpen, reopened.Status)
		assert.Nil(t, reopened.ClosedAt)
	})

	t.Run("Notifies the assignee", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, &consultant.ID)

		body := `{"status":"ON_HOLD"}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/status", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := UpdateCaseStatus(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var notification models.Notification
		assert.NoError(t, database.First(&notification, "user_id = ? AND type = ?",
			consultant.ID, models.NotificationTypeCaseStatus).Error)
	})
}

func TestAssignCase(t *testing.T) {
	t.Run("Assigns and notifies", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := fmt.Sprintf(`{"assigned_to_id":"%s"}`, consultant.ID)
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/assign", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := AssignCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated models.Case
		database.First(&updated, "id = ?", caseRecord.ID)
		assert.Equal(t, &consultant.ID, updated.AssignedToID)

		var notification models.Notification
		assert.NoError(t, database.First(&notification, "user_id = ? AND type = ?",
			consultant.ID, models.NotificationTypeCaseAssigned).Error)
	})

	t.Run("Empty assignee unassigns", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, &consultant.ID)

		body := `{"assigned_to_id":""}`
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/assign", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := AssignCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated models.Case
		database.First(&updated, "id = ?", caseRecord.ID)
		assert.Nil(t, updated.AssignedToID)
	})

	t.Run("Inactive assignee rejected", func(t *testing.T) {
		database := setupTestDB(t)
		admin := createTestAdmin(t, database)
		consultant := createTestUser(t, database, "c1", "consultant1@test.com", models.RoleConsultant)
		consultant.IsActive = false
		database.Save(consultant)
		client := createTestClient(t, database, "acme")
		caseRecord := createTestCase(t, database, "1", client.ID, nil)

		body := fmt.Sprintf(`{"assigned_to_id":"%s"}`, consultant.ID)
		_, c, rec := setupJSONEcho(http.MethodPut, "/api/cases/"+caseRecord.ID+"/assign", strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(caseRecord.ID)
		c.Set("user", admin)

		err := AssignCase(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteCase(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestAdmin(t, database)
	client := createTestClient(t, database, "acme")
	caseRecord := createTestCase(t, database, "1", client.ID, nil)

	_, c, rec := setupEcho(http.MethodDelete, "/api/cases/"+caseRecord.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(caseRecord.ID)
	c.Set("user", admin)

	err := DeleteCase(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var found models.Case
	assert.Error(t, database.First(&found, "id = ?", caseRecord.ID).Error)
}
