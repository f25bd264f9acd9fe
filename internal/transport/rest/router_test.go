package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/audit"
	auditPostgres "github.com/frahmantamala/backoffice/internal/audit/postgres"
	"github.com/frahmantamala/backoffice/internal/auth"
	authPostgres "github.com/frahmantamala/backoffice/internal/auth/postgres"
	"github.com/frahmantamala/backoffice/internal/category"
	categoryPostgres "github.com/frahmantamala/backoffice/internal/category/postgres"
	auditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/audit"
	categoryDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/category"
	roleDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/pipeline"
	"github.com/frahmantamala/backoffice/internal/role"
	"github.com/frahmantamala/backoffice/internal/stats"
	statsPostgres "github.com/frahmantamala/backoffice/internal/stats/postgres"
	rolePostgres "github.com/frahmantamala/backoffice/internal/role/postgres"
	"github.com/frahmantamala/backoffice/internal/store"
	"github.com/frahmantamala/backoffice/internal/store/storetest"
	"github.com/frahmantamala/backoffice/internal/transport"
	"github.com/frahmantamala/backoffice/internal/transport/middleware"
	"github.com/frahmantamala/backoffice/internal/transport/rest"
	"github.com/frahmantamala/backoffice/internal/transport/swagger"
	"github.com/frahmantamala/backoffice/internal/user"
	userPostgres "github.com/frahmantamala/backoffice/internal/user/postgres"
	"github.com/frahmantamala/backoffice/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Code  int             `json:"code"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("Router", func() {
	var (
		db     *gorm.DB
		router *chi.Mux
		p      *pipeline.Pipeline

		editorRoleID int64
		leadID       int64
		travelID     int64
	)

	seed := func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		super := roleDatamodel.Role{Name: "superadmin", IsActive: true, IsSuper: true}
		editor := roleDatamodel.Role{Name: "editor", IsActive: true}
		Expect(db.Create(&super).Error).To(Succeed())
		Expect(db.Create(&editor).Error).To(Succeed())
		editorRoleID = editor.ID

		for _, perm := range []auth.Permission{auth.PermCategoriesView, auth.PermCategoriesCreate} {
			Expect(db.Create(&roleDatamodel.RolePrivilege{RoleID: editor.ID, Permission: string(perm)}).Error).To(Succeed())
		}

		Expect(db.Create(&userDatamodel.User{Email: "admin@example.com", Name: "Admin", PasswordHash: string(hash), RoleID: super.ID, IsActive: true}).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.User{Email: "editor@example.com", Name: "Editor", PasswordHash: string(hash), RoleID: editor.ID, IsActive: true}).Error).To(Succeed())
		lead := userDatamodel.User{Email: "lead@example.com", Name: "Lead", PasswordHash: string(hash), RoleID: super.ID, IsActive: true}
		Expect(db.Create(&lead).Error).To(Succeed())
		leadID = lead.ID

		travel := categoryDatamodel.Category{Name: "travel", IsActive: true}
		Expect(db.Create(&travel).Error).To(Succeed())
		travelID = travel.ID
	}

	do := func(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env envelope
		if w.Body.Len() > 0 {
			Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
		}
		return w, env
	}

	login := func(email string) string {
		w, env := do(http.MethodPost, "/api/users/login", "", map[string]string{"email": email, "password": "correct-horse"})
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp auth.LoginResponse
		Expect(json.Unmarshal(env.Data, &resp)).To(Succeed())
		Expect(resp.Token).NotTo(BeEmpty())
		return resp.Token
	}

	auditRows := func(action audit.ActionType) []auditDatamodel.AuditLog {
		var rows []auditDatamodel.AuditLog
		Expect(db.Where("action_type = ?", string(action)).Order("id").Find(&rows).Error).To(Succeed())
		return rows
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.Open(
			&roleDatamodel.Role{}, &roleDatamodel.RolePrivilege{}, &userDatamodel.User{},
			&categoryDatamodel.Category{}, &auditDatamodel.AuditLog{},
		)
		Expect(err).NotTo(HaveOccurred())
		seed()

		lg := logger.Discard()
		base := transport.NewBaseHandler(lg, nil)
		bus := events.NewEventBus(lg)

		recorder := audit.NewRecorder(auditPostgres.NewAuditRepository(db), lg, internal.AuditConfig{})
		authRepo := authPostgres.NewRepository(db)
		resolver := auth.NewPrivilegeResolver(authRepo, lg)
		resolver.Subscribe(bus)
		authService := auth.NewService(authRepo, auth.NewJWTTokenGenerator(testSecret, time.Hour), resolver, recorder, lg,
			auth.WithQueryTimeout(time.Second))

		p = pipeline.New(base, authService, auth.NewGate(resolver, lg), recorder, store.NewTxManager(db), 5*time.Second)

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		sqlxDB := sqlx.NewDb(sqlDB, "sqlite3")

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.RouterConfig{
			DB:       sqlxDB,
			Base:     base,
			Pipeline: p,
			Handlers: rest.Handlers{
				Auth:       auth.NewHandler(base, authService),
				Users:      user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(db), bcrypt.MinCost, lg)),
				Roles:      role.NewHandler(base, role.NewService(rolePostgres.NewRoleRepository(db), bus, lg)),
				Categories: category.NewHandler(base, category.NewService(categoryPostgres.NewCategoryRepository(db), lg)),
				Audit:      audit.NewHandler(base, recorder),
				Stats:      stats.NewHandler(base, statsPostgres.NewStatsRepository(sqlxDB)),
			},
			LoginLimiter: middleware.NewIPRateLimiter(1000, 1000),
			OpenAPIPath:  "../../../api/openapi.yml",
			Logger:       lg,
		})
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	It("logs in an active user and audits every failed attempt", func() {
		login("admin@example.com")
		Expect(auditRows(audit.ActionLogin)).To(HaveLen(1))

		for i := 0; i < 3; i++ {
			w, env := do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ghost@example.com", "password": "whatever1"})
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(env.Error.Code).To(Equal("INVALID_CREDENTIALS"))
		}

		var failures []auditDatamodel.AuditLog
		Expect(db.Where("action_type = ? AND outcome = ?", "Login", "failure").Find(&failures).Error).To(Succeed())
		Expect(failures).To(HaveLen(3))
		for _, row := range failures {
			Expect(row.ActorEmail).To(Equal("ghost@example.com"))
			Expect(row.ActorID).To(BeNil())
			Expect(row.Reason).To(Equal(audit.ReasonUserNotFound))
		}
	})

	It("rejects protected routes without a token and writes nothing", func() {
		w, env := do(http.MethodPost, "/api/categories", "", map[string]string{"name": "meals"})
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(env.Error.Code).To(Equal("MISSING_TOKEN"))

		var n int64
		Expect(db.Model(&auditDatamodel.AuditLog{}).Count(&n).Error).To(Succeed())
		Expect(n).To(BeZero())
	})

	It("rejects tampered tokens as invalid", func() {
		token := login("editor@example.com")
		w, env := do(http.MethodGet, "/api/categories", token+"x", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(env.Error.Code).To(Equal("INVALID_TOKEN"))
	})

	It("forbids a delete the role does not grant and leaves no trace", func() {
		token := login("editor@example.com")

		w, env := do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", travelID), token, nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(env.Error.Code).To(Equal("INSUFFICIENT_PRIVILEGE"))

		var remaining int64
		Expect(db.Model(&categoryDatamodel.Category{}).Where("id = ?", travelID).Count(&remaining).Error).To(Succeed())
		Expect(remaining).To(Equal(int64(1)))
		Expect(auditRows(audit.ActionDelete)).To(BeEmpty())
	})

	It("audits a permitted mutation with the actor", func() {
		token := login("editor@example.com")

		w, _ := do(http.MethodPost, "/api/categories", token, map[string]string{"name": "meals"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		rows := auditRows(audit.ActionAdd)
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].ResourceType).To(Equal("Categories"))
		Expect(rows[0].ActorEmail).To(Equal("editor@example.com"))
		Expect(string(rows[0].Payload)).To(ContainSubstring(`"request_id"`))
	})

	It("denies a revoked permission on the very next request", func() {
		editorToken := login("editor@example.com")
		adminToken := login("admin@example.com")

		w, _ := do(http.MethodPost, "/api/categories", editorToken, map[string]string{"name": "meals"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w, _ = do(http.MethodPut, fmt.Sprintf("/api/roles/%d/privileges", editorRoleID), adminToken,
			map[string][]string{"permissions": {"categories.view"}})
		Expect(w.Code).To(Equal(http.StatusOK))

		w, _ = do(http.MethodPost, "/api/categories", editorToken, map[string]string{"name": "office"})
		Expect(w.Code).To(Equal(http.StatusForbidden))

		w, _ = do(http.MethodGet, "/api/categories", editorToken, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("lets the super role through and marks the bypass in the trail", func() {
		token := login("admin@example.com")

		w, _ := do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", travelID), token, nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))

		rows := auditRows(audit.ActionDelete)
		Expect(rows).To(HaveLen(1))

		var payload map[string]interface{}
		Expect(json.Unmarshal(rows[0].Payload, &payload)).To(Succeed())
		Expect(payload).To(HaveKeyWithValue("super_role_bypass", true))
		Expect(payload["data"]).To(HaveKeyWithValue("name", "travel"))
	})

	It("clamps audit queries to the page ceiling", func() {
		token := login("admin@example.com")

		w, env := do(http.MethodPost, "/api/auditlogs", token, map[string]interface{}{"page": 0, "limit": 1000, "action": "Login"})
		Expect(w.Code).To(Equal(http.StatusOK))

		var page audit.ListResponse
		Expect(json.Unmarshal(env.Data, &page)).To(Succeed())
		Expect(page.Pagination.Page).To(Equal(1))
		Expect(page.Pagination.Limit).To(Equal(500))
		Expect(page.Pagination.Total).To(Equal(int64(1)))
		Expect(page.Data).To(HaveLen(1))
	})

	It("reports the caller's resolved permissions", func() {
		token := login("editor@example.com")

		w, env := do(http.MethodGet, "/api/auth/me", token, nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var profile auth.ProfileResponse
		Expect(json.Unmarshal(env.Data, &profile)).To(Succeed())
		Expect(profile.User.Email).To(Equal("editor@example.com"))
		Expect(profile.Permissions).To(ConsistOf(auth.PermCategoriesView, auth.PermCategoriesCreate))
		Expect(profile.SuperRole).To(BeFalse())
	})

	It("audits a login body that cannot be read", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString(`{"email":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		rows := auditRows(audit.ActionLogin)
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Outcome).To(Equal("failure"))
		Expect(rows[0].Reason).To(Equal(audit.ReasonValidationFailed))
		Expect(rows[0].ActorID).To(BeNil())
	})

	It("takes the role from the account, not the token", func() {
		leadToken := login("lead@example.com")
		adminToken := login("admin@example.com")

		w, _ := do(http.MethodPut, fmt.Sprintf("/api/users/%d", leadID), adminToken, map[string]int64{"role_id": editorRoleID})
		Expect(w.Code).To(Equal(http.StatusOK))

		w, env := do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", travelID), leadToken, nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(env.Error.Code).To(Equal("INSUFFICIENT_PRIVILEGE"))
		Expect(auditRows(audit.ActionDelete)).To(BeEmpty())

		w, _ = do(http.MethodGet, "/api/categories", leadToken, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("refuses a deactivated user's token on the next request", func() {
		leadToken := login("lead@example.com")
		adminToken := login("admin@example.com")

		w, _ := do(http.MethodDelete, fmt.Sprintf("/api/users/%d", leadID), adminToken, nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w, env := do(http.MethodGet, "/api/categories", leadToken, nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(env.Error.Code).To(Equal("USER_INACTIVE"))
	})

	It("closes registration once any user exists", func() {
		w, env := do(http.MethodPost, "/api/users/register", "", map[string]string{
			"email": "intruder@example.com", "name": "Intruder", "password": "correct-horse",
		})
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(env.Error.Code).To(Equal("REGISTRATION_CLOSED"))

		var n int64
		Expect(db.Model(&userDatamodel.User{}).Where("email = ?", "intruder@example.com").Count(&n).Error).To(Succeed())
		Expect(n).To(BeZero())
		Expect(auditRows(audit.ActionAdd)).To(BeEmpty())
	})

	It("serves dashboard counts behind stats.view", func() {
		w, env := do(http.MethodGet, "/api/stats", login("editor@example.com"), nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(env.Error.Code).To(Equal("INSUFFICIENT_PRIVILEGE"))

		w, env = do(http.MethodGet, "/api/stats", login("admin@example.com"), nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var counts stats.Dashboard
		Expect(json.Unmarshal(env.Data, &counts)).To(Succeed())
		Expect(counts).To(Equal(stats.Dashboard{Users: 3, Roles: 2, Categories: 1}))
	})

	Context("on an empty installation", func() {
		BeforeEach(func() {
			Expect(db.Exec("DELETE FROM users").Error).To(Succeed())
			Expect(db.Exec("DELETE FROM role_privileges").Error).To(Succeed())
			Expect(db.Exec("DELETE FROM roles").Error).To(Succeed())
		})

		It("registers the first user with the super role and attributes the trail to them", func() {
			w, env := do(http.MethodPost, "/api/users/register", "", map[string]string{
				"email": "founder@example.com", "name": "Founder", "password": "correct-horse",
			})
			Expect(w.Code).To(Equal(http.StatusCreated))

			var created user.User
			Expect(json.Unmarshal(env.Data, &created)).To(Succeed())

			var role roleDatamodel.Role
			Expect(db.First(&role, created.RoleID).Error).To(Succeed())
			Expect(role.IsSuper).To(BeTrue())

			rows := auditRows(audit.ActionAdd)
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ResourceType).To(Equal("Users"))
			Expect(rows[0].ActorEmail).To(Equal("founder@example.com"))
			Expect(rows[0].ActorID).NotTo(BeNil())
			Expect(*rows[0].ActorID).To(Equal(created.ID))
			Expect(string(rows[0].Payload)).NotTo(ContainSubstring("correct-horse"))

			token := login("founder@example.com")
			w, _ = do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", travelID), token, nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w, env = do(http.MethodPost, "/api/users/register", "", map[string]string{
				"email": "second@example.com", "name": "Second", "password": "correct-horse",
			})
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(env.Error.Code).To(Equal("REGISTRATION_CLOSED"))
		})
	})

	It("declares only catalog permissions", func() {
		Expect(p.Validate(logger.Discard())).To(Succeed())
		Expect(p.Declared()).To(HaveLen(len(rest.Operations())))
	})

	It("documents every API route", func() {
		doc, err := swagger.LoadSpec(context.Background(), "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		missing, err := swagger.Undocumented(doc, router, "/api")
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
	})
})
