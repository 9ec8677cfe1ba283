package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"engage-api/internal/auth"
	"engage-api/internal/config"
	"engage-api/internal/domain"
	"engage-api/internal/http/handler"
	"engage-api/internal/http/httperr"
	"engage-api/internal/leadimport"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"
	"engage-api/internal/repo/memory"
	"engage-api/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

const (
	testCompany  = "company-1"
	testS2SToken = "s2s-web-token"
	testIssuer   = "engage-web"
	testAudience = "engage-api"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const leadsCSV = "Full Name,E-mail,Phone,Company\n" +
	"Ana Souza,ana@acme.io,+55 11 90000-0001,Acme\n" +
	"Bruno Lima,bruno@globex.io,,Globex\n"

// apiSuite sobe o router completo com stores em memória.
type apiSuite struct {
	suite.Suite
	router  http.Handler
	members *memory.MemberStore
}

func TestAPI(t *testing.T) {
	suite.Run(t, new(apiSuite))
}

func (s *apiSuite) SetupTest() {
	log := logger.NewWithCore("test", zapcore.NewNopCore())
	cfg := &config.Config{OTELServiceName: "test", AppEnv: "test"}

	keyStore := auth.NewKeyStore()
	keyStore.LoadHS256Key(testIssuer, "v1", testSecret)
	resolver := auth.NewKeyResolver([]string{testIssuer}, []string{testAudience})
	resolver.RegisterValidator(testIssuer, auth.NewHS256Validator(keyStore, testIssuer, time.Minute))

	s2s := auth.NewS2STokenStore()
	s2s.RegisterToken(testS2SToken, "web")

	s.members = memory.NewMemberStore()
	campaigns := memory.NewCampaignStore()
	audit := memory.NewAuditStore()

	campaignSvc := service.NewCampaignService(campaigns, s.members, audit, nil, leadimport.ModePermissive, log)
	ticketSvc := service.NewTicketService(memory.NewTicketStore(), s.members, audit, nil, log)
	bookingSvc := service.NewBookingService(memory.NewBookingStore(), campaigns, s.members, audit, log)

	s.router = buildRouter(RouterDeps{
		Cfg:             cfg,
		Log:             log,
		Resolver:        resolver,
		S2SStore:        s2s,
		Idempotency:     memory.NewIdempotencyStore(repo.DefaultIdempotencyTTL),
		CampaignHandler: handler.NewCampaignHandler(campaignSvc, 1<<20),
		TicketHandler:   handler.NewTicketHandler(ticketSvc),
		BookingHandler:  handler.NewBookingHandler(bookingSvc),
	})

	ctx := context.Background()
	for _, m := range []domain.CompanyMember{
		{UserID: "u-agent", CompanyID: testCompany, Name: "Carla Agent", Email: "carla@engage.io", Role: domain.RoleAgent},
		{UserID: "u-viewer", CompanyID: testCompany, Name: "Vic Viewer", Email: "vic@engage.io", Role: domain.RoleViewer},
	} {
		m := m
		s.Require().NoError(s.members.AddMember(ctx, &m))
	}
}

func (s *apiSuite) userToken(companyID, actorID string) string {
	claims := auth.CustomClaims{
		CompanyID: companyID,
		ActorID:   actorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	s.Require().NoError(err)
	return signed
}

// do envia a requisição; token vazio usa o s2s.
func (s *apiSuite) do(method, path, token string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token == "" {
		token = testS2SToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *apiSuite) doJSON(method, path, token string, payload any, headers ...string) *httptest.ResponseRecorder {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	return s.do(method, path, token, bytes.NewReader(raw), headers...)
}

func (s *apiSuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (s *apiSuite) errorCode(rec *httptest.ResponseRecorder) (string, map[string]string) {
	var resp httperr.ErrorResponse
	s.decode(rec, &resp)
	s.Require().False(resp.OK)
	s.Require().NotNil(resp.Error)
	return resp.Error.Code, resp.Error.Fields
}

func base(path string) string {
	return "/v1/companies/" + testCompany + path
}

func mappedSettings(nameCol, emailCol string) domain.CampaignSettings {
	settings := domain.DefaultCampaignSettings()
	for i, f := range settings.DataFields {
		switch f.FieldName {
		case domain.FieldName:
			settings.DataFields[i].CSVColumn = nameCol
		case domain.FieldEmail:
			settings.DataFields[i].CSVColumn = emailCol
		}
	}
	return settings
}

func (s *apiSuite) createCampaign(name string) domain.Campaign {
	rec := s.doJSON(http.MethodPost, base("/campaigns"), "", domain.CreateCampaignRequest{
		Name:     name,
		Settings: mappedSettings("Full Name", "E-mail"),
		CSV:      leadsCSV,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var c domain.Campaign
	s.decode(rec, &c)
	return c
}

func (s *apiSuite) TestPublicEndpoints() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("X-Request-Id"), "req_")

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ready","store":"memory"}`, rec.Body.String())
}

func (s *apiSuite) TestMissingAuthorization() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base("/campaigns"), nil))

	s.Equal(http.StatusUnauthorized, rec.Code)
	code, _ := s.errorCode(rec)
	s.Equal(httperr.ErrCodeMissingAuthorization, code)
}

func (s *apiSuite) TestPreviewImport_Multipart() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "leads.csv")
	s.Require().NoError(err)
	_, _ = fw.Write([]byte(leadsCSV))
	s.Require().NoError(mw.WriteField("mode", "strict"))
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, base("/campaigns/imports:preview"), &buf)
	req.Header.Set("Authorization", "Bearer "+testS2SToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var preview leadimport.Preview
	s.decode(rec, &preview)
	s.Equal(leadimport.ModeStrict, preview.Mode)
	s.Equal([]string{"Full Name", "E-mail", "Phone", "Company"}, preview.Headers)
	s.Equal(2, preview.RowCount)
	s.Empty(preview.MissingRequired)

	mapped := map[string]string{}
	for _, f := range preview.SuggestedMapping {
		mapped[f.FieldName] = f.CSVColumn
	}
	s.Equal("Full Name", mapped[domain.FieldName])
	s.Equal("E-mail", mapped[domain.FieldEmail])
}

func (s *apiSuite) TestPreviewImport_JSONEmptyCSV() {
	rec := s.doJSON(http.MethodPost, base("/campaigns/imports:preview"), "", map[string]string{"csv": "  "})

	s.Equal(http.StatusBadRequest, rec.Code)
	code, fields := s.errorCode(rec)
	s.Equal(httperr.ErrCodeValidationError, code)
	s.Contains(fields, "csv")
}

func (s *apiSuite) TestCreateCampaign_FromCSV() {
	c := s.createCampaign("Q3 outbound")

	s.Equal(domain.CampaignStatusDraft, c.Status)
	s.Require().Len(c.Leads, 2)
	s.Equal(2, c.Metrics.TotalLeads)
	s.Equal("Ana Souza", c.Leads[0].Name)
	s.Equal("ana@acme.io", c.Leads[0].Email)
	s.Equal(domain.LeadStatusNew, c.Leads[0].Status)

	rec := s.do(http.MethodGet, base("/campaigns/"+c.ID), "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *apiSuite) TestCreateCampaign_RequiredFieldUnmapped() {
	rec := s.doJSON(http.MethodPost, base("/campaigns"), "", domain.CreateCampaignRequest{
		Name:     "No email",
		Settings: mappedSettings("Full Name", ""),
		CSV:      leadsCSV,
	})

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	code, fields := s.errorCode(rec)
	s.Equal(httperr.ErrCodeRequiredFieldUnmapped, code)
	s.Contains(fields, domain.FieldEmail)

	list := s.do(http.MethodGet, base("/campaigns"), "", nil)
	var resp domain.CampaignListResponse
	s.decode(list, &resp)
	s.Empty(resp.Data, "failed create must not persist a campaign")
}

func (s *apiSuite) TestCreateCampaign_UnknownColumn() {
	rec := s.doJSON(http.MethodPost, base("/campaigns"), "", domain.CreateCampaignRequest{
		Name:     "Typo",
		Settings: mappedSettings("Full Name", "Email Address"),
		CSV:      leadsCSV,
	})

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	code, _ := s.errorCode(rec)
	s.Equal(httperr.ErrCodeUnknownColumn, code)
}

func (s *apiSuite) TestCreateCampaign_IdempotentReplay() {
	payload := domain.CreateCampaignRequest{
		Name:     "Replay",
		Settings: mappedSettings("Full Name", "E-mail"),
		CSV:      leadsCSV,
	}

	first := s.doJSON(http.MethodPost, base("/campaigns"), "", payload, "Idempotency-Key", "create-replay")
	second := s.doJSON(http.MethodPost, base("/campaigns"), "", payload, "Idempotency-Key", "create-replay")

	s.Require().Equal(http.StatusCreated, first.Code)
	s.Require().Equal(http.StatusCreated, second.Code)
	s.Equal("true", second.Header().Get("X-Idempotency-Replay"))
	s.Equal(first.Header().Get("Location"), second.Header().Get("Location"))

	var resp domain.CampaignListResponse
	s.decode(s.do(http.MethodGet, base("/campaigns"), "", nil), &resp)
	s.Len(resp.Data, 1)
}

func (s *apiSuite) TestCampaignLifecycle() {
	c := s.createCampaign("Lifecycle")
	path := base("/campaigns/" + c.ID)

	rec := s.do(http.MethodPost, path+"/:complete", "", nil)
	s.Equal(http.StatusConflict, rec.Code, "draft cannot complete")
	code, _ := s.errorCode(rec)
	s.Equal(httperr.ErrCodeInvalidTransition, code)

	for _, step := range []struct {
		action string
		want   domain.CampaignStatus
	}{
		{":start", domain.CampaignStatusActive},
		{":pause", domain.CampaignStatusPaused},
		{":start", domain.CampaignStatusActive},
		{":complete", domain.CampaignStatusCompleted},
	} {
		rec := s.do(http.MethodPost, path+"/"+step.action, "", nil)
		s.Require().Equal(http.StatusOK, rec.Code, step.action)
		var got domain.Campaign
		s.decode(rec, &got)
		s.Equal(step.want, got.Status)
	}

	rec = s.do(http.MethodPost, path+"/:start", "", nil)
	s.Equal(http.StatusConflict, rec.Code, "completed is terminal")
}

func (s *apiSuite) TestLeadStatusUpdateRecomputesMetrics() {
	c := s.createCampaign("Metrics")
	leadID := c.Leads[0].ID

	rec := s.doJSON(http.MethodPatch, base("/campaigns/"+c.ID+"/leads/"+leadID), "", map[string]string{"status": "booked"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var leads domain.LeadListResponse
	s.decode(s.do(http.MethodGet, base("/campaigns/"+c.ID+"/leads?status=booked"), "", nil), &leads)
	s.Require().Len(leads.Data, 1)
	s.Equal(leadID, leads.Data[0].ID)
	s.Equal(1, leads.Metrics.Booked)

	rec = s.doJSON(http.MethodPatch, base("/campaigns/"+c.ID+"/leads/"+leadID), "", map[string]string{"status": "archived"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *apiSuite) TestNotFound() {
	for _, path := range []string{"/campaigns/missing", "/tickets/missing", "/bookings/missing"} {
		rec := s.do(http.MethodGet, base(path), "", nil)
		s.Equal(http.StatusNotFound, rec.Code, path)
	}
}

func (s *apiSuite) TestTicketLifecycle() {
	rec := s.doJSON(http.MethodPost, base("/tickets"), s.userToken(testCompany, "u-agent"), map[string]any{
		"title":       "Cannot log in",
		"customer_id": "cust-42",
		"priority":    "medium",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Ticket
	s.decode(rec, &created)
	s.Equal(domain.TicketStatusNew, created.Status)
	s.NotEmpty(rec.Header().Get("Location"))

	path := base("/tickets/" + created.ID)
	before := len(created.History)

	rec = s.doJSON(http.MethodPatch, path, s.userToken(testCompany, "u-agent"), map[string]string{
		"status":   "in_progress",
		"priority": "high",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated domain.Ticket
	s.decode(rec, &updated)
	s.Equal(domain.TicketStatusInProgress, updated.Status)
	s.Equal(domain.TicketPriorityHigh, updated.Priority)
	s.Len(updated.History, before+2, "one history entry per changed field")

	rec = s.doJSON(http.MethodPatch, path, "", map[string]string{"assigned_to": "carla@engage.io"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.doJSON(http.MethodPatch, path, "", map[string]string{"assigned_to": "stranger@else.io"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	code, fields := s.errorCode(rec)
	s.Equal(httperr.ErrCodeInvalidAssignee, code)
	s.Contains(fields, "assigned_to")

	rec = s.doJSON(http.MethodPost, path+"/notes", "", map[string]any{"content": "Reset link sent", "is_internal": true})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var final domain.Ticket
	s.decode(s.do(http.MethodGet, path, "", nil), &final)
	s.Require().Len(final.Notes, 1)
	s.Equal("Reset link sent", final.Notes[0].Content)
	s.Require().NotNil(final.AssignedTo)
	s.Equal("carla@engage.io", *final.AssignedTo)

	var stats domain.TicketStats
	s.decode(s.do(http.MethodGet, base("/tickets/stats"), "", nil), &stats)
	s.Equal(1, stats.Total)
}

// ticket CLI -> ticketsvc.Client -> dashboard.TicketView -> router
func (s *apiSuite) TestTicketCommand_DispatchesThroughAPI() {
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	rec := s.doJSON(http.MethodPost, base("/tickets"), "", map[string]any{"title": "Refund", "customer_id": "cust-7"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Ticket
	s.decode(rec, &created)

	saved := ticketFlags
	ticketFlags.apiURL = srv.URL
	ticketFlags.token = testS2SToken
	ticketFlags.companyID = testCompany
	ticketFlags.actorID = "ops-bot"
	s.T().Cleanup(func() { ticketFlags = saved })

	var out bytes.Buffer
	ticketStatusCmd.SetOut(&out)
	ticketStatusCmd.SetContext(context.Background())
	s.T().Cleanup(func() { ticketStatusCmd.SetOut(nil) })

	s.Require().NoError(ticketStatusCmd.RunE(ticketStatusCmd, []string{created.ID, "in_progress"}))

	var local domain.Ticket
	s.Require().NoError(json.Unmarshal(out.Bytes(), &local))
	s.Equal(domain.TicketStatusInProgress, local.Status)
	s.Len(local.History, len(created.History)+1)

	var remote domain.Ticket
	s.decode(s.do(http.MethodGet, base("/tickets/"+created.ID), "", nil), &remote)
	s.Equal(domain.TicketStatusInProgress, remote.Status)
	s.Equal("ops-bot", remote.History[len(remote.History)-1].ChangedBy)

	ticketAssignCmd.SetContext(context.Background())
	err := ticketAssignCmd.RunE(ticketAssignCmd, []string{created.ID, "stranger@else.io"})
	s.Require().Error(err)
	s.Contains(err.Error(), "update_assignment failed")
}

func (s *apiSuite) TestTicketList_InvalidQuery() {
	for query, wantCode := range map[string]string{
		"?status=sleeping":  httperr.ErrCodeInvalidStatus,
		"?priority=urgent":  httperr.ErrCodeInvalidPriority,
		"?limit=0":          httperr.ErrCodeInvalidLimit,
		"?cursor=yesterday": httperr.ErrCodeInvalidParameter,
	} {
		rec := s.do(http.MethodGet, base("/tickets"+query), "", nil)
		s.Equal(http.StatusBadRequest, rec.Code, query)
		code, _ := s.errorCode(rec)
		s.Equal(wantCode, code, query)
	}
}

func (s *apiSuite) TestTeamMembers() {
	rec := s.do(http.MethodGet, base("/team-members"), s.userToken(testCompany, "u-viewer"), nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp domain.TeamMembersResponse
	s.decode(rec, &resp)
	emails := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		emails = append(emails, m.Email)
	}
	s.ElementsMatch([]string{"carla@engage.io", "vic@engage.io"}, emails)
}

func (s *apiSuite) TestBookings() {
	c := s.createCampaign("Bookings")
	confidence := 80

	rec := s.doJSON(http.MethodPost, base("/bookings"), "", domain.CreateBookingRequest{
		LeadName:          "Ana Souza",
		LeadEmail:         "ana@acme.io",
		ScheduledDate:     "2026-11-03",
		ScheduledTime:     "14:30",
		MeetingDuration:   30,
		BookingConfidence: &confidence,
		CampaignID:        c.ID,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var b domain.AutoBooking
	s.decode(rec, &b)
	s.Equal(domain.ConfidenceMediumHigh, b.ConfidenceBand)
	s.Equal(c.Name, b.CampaignName)

	rec = s.do(http.MethodGet, base("/bookings/"+b.ID), "", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.doJSON(http.MethodPost, base("/bookings"), "", domain.CreateBookingRequest{
		LeadName:        "Bruno",
		LeadEmail:       "bruno@globex.io",
		ScheduledDate:   "03/11/2026",
		ScheduledTime:   "14:30",
		MeetingDuration: 30,
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	_, fields := s.errorCode(rec)
	s.Contains(fields, "scheduledDate")
}

func (s *apiSuite) TestAuthorization() {
	viewer := s.userToken(testCompany, "u-viewer")

	rec := s.do(http.MethodGet, base("/campaigns"), viewer, nil)
	s.Equal(http.StatusOK, rec.Code, "viewers can read")

	rec = s.doJSON(http.MethodPost, base("/campaigns"), viewer, domain.CreateCampaignRequest{
		Name:     "Forbidden",
		Settings: mappedSettings("Full Name", "E-mail"),
		CSV:      leadsCSV,
	})
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, base("/campaigns"), s.userToken(testCompany, "u-stranger"), nil)
	s.Equal(http.StatusForbidden, rec.Code, "non-members are rejected")

	rec = s.do(http.MethodGet, "/v1/companies/company-2/campaigns", viewer, nil)
	s.Equal(http.StatusForbidden, rec.Code)
	code, _ := s.errorCode(rec)
	s.Equal(httperr.ErrCodeCompanyMismatch, code)
}

func TestReadyEndpoint_DatabaseUnhealthy(t *testing.T) {
	log := logger.NewWithCore("test", zapcore.NewNopCore())
	r := buildRouter(RouterDeps{
		Cfg:    &config.Config{OTELServiceName: "test"},
		Log:    log,
		Pinger: pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"database unavailable"}`, rec.Body.String())
}

func TestDebugRoutes_OnlyInDev(t *testing.T) {
	log := logger.NewWithCore("test", zapcore.NewNopCore())
	for appEnv, want := range map[string]int{"dev": http.StatusOK, "production": http.StatusNotFound} {
		r := buildRouter(RouterDeps{
			Cfg:          &config.Config{OTELServiceName: "test", AppEnv: appEnv},
			Log:          log,
			DebugHandler: handler.NewDebugHandler(appEnv, nil),
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/db/ping", nil))
		assert.Equal(t, want, rec.Code, appEnv)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSeedMembers(t *testing.T) {
	path := t.TempDir() + "/members.json"
	raw := `[
		{"user_id":"u-1","company_id":"company-1","name":"Ana","email":"ana@engage.io","role":"company_admin"},
		{"user_id":"u-2","company_id":"company-1","name":"Bad","email":"nope","role":"company_agent"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	store := memory.NewMemberStore()
	n, err := seedMembers(context.Background(), store, path)

	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "member 1: email must be a valid email")

	role, err := store.GetMemberRole(context.Background(), "u-1", "company-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestImportPreviewCommand(t *testing.T) {
	var out bytes.Buffer
	importPreviewCmd.SetOut(&out)
	importPreviewCmd.SetIn(strings.NewReader(leadsCSV))
	t.Cleanup(func() {
		importPreviewCmd.SetOut(nil)
		importPreviewCmd.SetIn(nil)
	})

	require.NoError(t, runImportPreview(importPreviewCmd, []string{"-"}))

	var preview leadimport.Preview
	require.NoError(t, json.Unmarshal(out.Bytes(), &preview))
	assert.Equal(t, 2, preview.RowCount)
	assert.Empty(t, preview.MissingRequired)
}
