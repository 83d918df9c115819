package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"greenhome/internal/handlers"
	"greenhome/internal/handlers/testutils"
	"greenhome/internal/objectstore"
	"greenhome/internal/session"
	"greenhome/internal/workflow"
	"greenhome/internal/workflow/workflowtest"
	"greenhome/models"
)

func newTestHandler(t *testing.T, objects objectstore.Store) *handlers.Handler {
	t.Helper()
	svc := workflow.NewService(workflowtest.NewMemStore(), workflow.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, svc.SeedFixtures(context.Background()))

	cookies := session.NewCookieStore([]byte("handlers-test-secret-0123456789ab"), time.Hour, false)
	sessions := session.NewManager(cookies, session.NewMemoryBackend(), time.Hour)
	return handlers.NewHandler(svc, sessions, objects, handlers.Options{TestLogin: true, MaxUploadBytes: 1024})
}

// testClient прогоняет запросы через роутер и хранит cookie между ними.
type testClient struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, router http.Handler) *testClient {
	return &testClient{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func (c *testClient) send(method, path, contentType string, body io.Reader) *http.Response {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	res := w.Result()
	for _, ck := range res.Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	c.t.Cleanup(func() { res.Body.Close() })
	return res
}

func (c *testClient) do(method, path, body string) *http.Response {
	if body == "" {
		return c.send(method, path, "", nil)
	}
	return c.send(method, path, "application/json", strings.NewReader(body))
}

func (c *testClient) loginAs(userID string) {
	res := c.do(http.MethodPost, "/api/test/login/"+userID, "")
	require.Equal(c.t, http.StatusOK, res.StatusCode)
}

func decode(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func TestPingHandler(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	w := httptest.NewRecorder()
	handler.PingHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", string(body))
}

func TestHealthHandler(t *testing.T) {
	c := newClient(t, newTestHandler(t, nil).Routes())

	res := c.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]string
	decode(t, res, &body)
	require.Equal(t, "ok", body["status"])
}

func TestCreateRequestHandler(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(`{"projectType":"solar_install","location":"Darkhan"}`))
	req.Header.Set("Content-Type", "application/json")
	req = testutils.AsUser(req, "legal-001")
	w := httptest.NewRecorder()

	handler.CreateRequestHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var view models.RequestView
	decode(t, res, &view)
	require.Equal(t, "legal-001", view.UserID)
	require.Equal(t, "submitted", view.Status)
	require.Nil(t, view.AuditorID)
	require.Nil(t, view.PriceQuote)
}

func TestCreateRequestHandlerValidation(t *testing.T) {
	handler := newTestHandler(t, nil)

	for _, body := range []string{`{}`, `{"projectType":"  "}`, `not json`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(body))
		req = testutils.AsUser(req, "legal-001")
		w := httptest.NewRecorder()

		handler.CreateRequestHandler(w, req)

		res := w.Result()
		require.Equal(t, http.StatusBadRequest, res.StatusCode, body)
		var msg map[string]string
		decode(t, res, &msg)
		require.NotEmpty(t, msg["message"])
		res.Body.Close()
	}
}

func TestGetRequestHandlerInvalidID(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/abc", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"requestId": "abc"})
	req = testutils.AsUser(req, "admin-001")
	w := httptest.NewRecorder()

	handler.GetRequestHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGetRequestHandlerNotFound(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/999", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"requestId": "999"})
	req = testutils.AsUser(req, "admin-001")
	w := httptest.NewRecorder()

	handler.GetRequestHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHandlersRequireIdentity(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
	w := httptest.NewRecorder()
	handler.ListRequestsHandler(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRoutesRejectAnonymous(t *testing.T) {
	c := newClient(t, newTestHandler(t, nil).Routes())

	for _, p := range []string{"/api/requests", "/api/auth/user", "/api/profiles/me", "/api/auditors", "/objects/uploads/x.pdf"} {
		res := c.do(http.MethodGet, p, "")
		require.Equal(t, http.StatusUnauthorized, res.StatusCode, p)
	}
}

func TestTestLoginUnknownUser(t *testing.T) {
	c := newClient(t, newTestHandler(t, nil).Routes())

	res := c.do(http.MethodPost, "/api/test/login/ghost", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = c.do(http.MethodGet, "/api/test/users", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var users []models.FixtureUser
	decode(t, res, &users)
	require.Len(t, users, 6)
}

func TestCertificationScenarioOverHTTP(t *testing.T) {
	router := newTestHandler(t, nil).Routes()
	legal, admin, auditor, other := newClient(t, router), newClient(t, router), newClient(t, router), newClient(t, router)
	legal.loginAs("legal-001")
	admin.loginAs("admin-001")
	auditor.loginAs("auditor-002")
	other.loginAs("auditor-001")

	res := legal.do(http.MethodPost, "/api/requests", `{"projectType":"solar_install","projectArea":"120"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created models.RequestView
	decode(t, res, &created)
	require.Equal(t, "submitted", created.Status)
	require.Nil(t, created.AuditorID)
	path := "/api/requests/" + itoa(created.ID)

	res = admin.do(http.MethodPatch, path, `{"auditorId":"auditor-002","priceQuote":500000}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = admin.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got models.RequestView
	decode(t, res, &got)
	require.Equal(t, "auditor-002", *got.AuditorID)
	require.Equal(t, int64(500000), *got.PriceQuote)
	require.Equal(t, "submitted", got.Status)
	require.Equal(t, "120", *got.ProjectArea)
	require.NotNil(t, got.Auditor)
	require.Equal(t, "Maria", *got.Auditor.FirstName)
	require.Equal(t, "BuildCo ХХК", *got.User.OrganizationName)

	res = auditor.do(http.MethodPost, path+"/audit", `{"conclusion":"meets code","checklistData":{"insulation":true}}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var audit models.AuditView
	decode(t, res, &audit)
	require.Equal(t, "auditor-002", audit.AuditorID)
	require.JSONEq(t, `{"insulation":true}`, string(audit.ChecklistData))

	res = auditor.do(http.MethodPost, path+"/audits", `{"conclusion":"again"}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = auditor.do(http.MethodGet, "/api/requests", "")
	var mine []models.RequestView
	decode(t, res, &mine)
	require.Len(t, mine, 1)
	require.Equal(t, "meets code", *mine[0].Audit.Conclusion)

	res = other.do(http.MethodGet, "/api/requests", "")
	var none []models.RequestView
	decode(t, res, &none)
	require.Empty(t, none)

	res = other.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUpdateRequestFieldAllowListOverHTTP(t *testing.T) {
	router := newTestHandler(t, nil).Routes()
	legal := newClient(t, router)
	legal.loginAs("legal-001")

	res := legal.do(http.MethodPost, "/api/requests", `{"projectType":"insulation"}`)
	var created models.RequestView
	decode(t, res, &created)
	path := "/api/requests/" + itoa(created.ID)

	res = legal.do(http.MethodPatch, path, `{"priceQuote":1}`)
	require.Equal(t, http.StatusForbidden, res.StatusCode)

	res = legal.do(http.MethodPatch, path, `{"description":"two floors"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var updated models.RequestView
	decode(t, res, &updated)
	require.Equal(t, "two floors", *updated.Description)
	require.Nil(t, updated.PriceQuote)
}

func TestFilesOverHTTP(t *testing.T) {
	router := newTestHandler(t, nil).Routes()
	legal, stranger := newClient(t, router), newClient(t, router)
	legal.loginAs("legal-001")
	stranger.loginAs("legal-002")

	res := legal.do(http.MethodPost, "/api/requests", `{"projectType":"solar_install"}`)
	var created models.RequestView
	decode(t, res, &created)

	res = legal.do(http.MethodPost, "/api/files", `{"requestId":`+itoa(created.ID)+`,"name":"plan.pdf","url":"/objects/uploads/abc.pdf","type":"project_file"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = stranger.do(http.MethodPost, "/api/files", `{"requestId":`+itoa(created.ID)+`,"name":"x","url":"/objects/uploads/x"}`)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = legal.do(http.MethodGet, "/api/requests/"+itoa(created.ID)+"/files", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var files []models.FileView
	decode(t, res, &files)
	require.Len(t, files, 1)
	require.Equal(t, "plan.pdf", files[0].Name)
	require.Equal(t, "legal-001", files[0].UserID)
}

func TestUploadRoundTrip(t *testing.T) {
	store, err := objectstore.NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)
	c := newClient(t, newTestHandler(t, store).Routes())
	c.loginAs("legal-001")

	res := c.do(http.MethodPost, "/api/uploads/request-url", `{"name":"cert.pdf","size":8,"contentType":"application/pdf"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var target objectstore.UploadTarget
	decode(t, res, &target)
	require.Equal(t, http.MethodPut, target.Method)

	res = c.send(http.MethodPut, target.UploadURL, "application/pdf", strings.NewReader("%PDF-1.7"))
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = c.do(http.MethodGet, target.ObjectPath, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/pdf", res.Header.Get("Content-Type"))
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(body))

	res = c.send(http.MethodPut, target.UploadURL, "text/html", strings.NewReader("<script>evil</script>"))
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	res = c.do(http.MethodGet, target.ObjectPath, "")
	require.Equal(t, "application/pdf", res.Header.Get("Content-Type"))
	body, err = io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(body))

	res = c.do(http.MethodGet, "/objects/uploads/missing.pdf", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = c.do(http.MethodPost, "/api/uploads/request-url", `{"name":"huge.bin","size":4096}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestUploadsDisabled(t *testing.T) {
	c := newClient(t, newTestHandler(t, nil).Routes())
	c.loginAs("legal-001")

	res := c.do(http.MethodPost, "/api/uploads/request-url", `{"name":"cert.pdf","size":8}`)
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestRegisterLoginLogout(t *testing.T) {
	router := newTestHandler(t, nil).Routes()
	c := newClient(t, router)

	res := c.do(http.MethodPost, "/api/auth/register", `{"email":"eco@example.mn","password":"s3cret","firstName":"Eco"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var id models.Identity
	decode(t, res, &id)
	require.NotEmpty(t, id.ID)

	res = c.do(http.MethodGet, "/api/auth/user", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = c.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	res = c.do(http.MethodGet, "/api/auth/user", "")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = c.do(http.MethodPost, "/api/auth/login", `{"email":"eco@example.mn","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res = c.do(http.MethodPost, "/api/auth/login", `{"email":"eco@example.mn","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res = c.do(http.MethodGet, "/api/auth/user", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = newClient(t, router).do(http.MethodPost, "/api/auth/register", `{"email":"eco@example.mn","password":"other"}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestProfileOverHTTP(t *testing.T) {
	c := newClient(t, newTestHandler(t, nil).Routes())
	res := c.do(http.MethodPost, "/api/auth/register", `{"email":"new@example.mn","password":"pw"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = c.do(http.MethodGet, "/api/profiles/me", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = c.do(http.MethodPost, "/api/profiles", `{"role":"auditor","organizationName":null}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = c.do(http.MethodGet, "/api/profiles/me", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var profile models.ProfileView
	decode(t, res, &profile)
	require.Equal(t, "auditor", profile.Role)
	require.Nil(t, profile.OrganizationName)
	require.Equal(t, "new@example.mn", *profile.Email)

	res = c.do(http.MethodPost, "/api/profiles", `{"role":"superuser"}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = c.do(http.MethodGet, "/api/auditors", "")
	var auditors []models.AuditorSummary
	decode(t, res, &auditors)
	require.Len(t, auditors, 4)
}

func TestRedirects(t *testing.T) {
	c := newClient(t, newTestHandler(t, nil).Routes())
	c.loginAs("admin-001")

	res := c.do(http.MethodGet, "/api/logout", "")
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/", res.Header.Get("Location"))
	res = c.do(http.MethodGet, "/api/auth/user", "")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = c.do(http.MethodGet, "/api/login", "")
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/test-login", res.Header.Get("Location"))
}

func itoa(i int) string { return strconv.Itoa(i) }
