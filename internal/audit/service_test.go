package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/audit"
	auditPostgres "github.com/frahmantamala/backoffice/internal/audit/postgres"
	datamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/audit"
	"github.com/frahmantamala/backoffice/internal/store/storetest"
	"github.com/frahmantamala/backoffice/pkg/ids"
	"github.com/frahmantamala/backoffice/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func ptrTime(t time.Time) *time.Time { return &t }

var _ = Describe("Recorder", func() {
	var (
		db       *gorm.DB
		repo     *auditPostgres.AuditRepository
		recorder *audit.Recorder
		ctx      context.Context
		clock    time.Time
	)

	seed := func(at time.Time, action audit.ActionType, resource audit.ResourceType, email string) {
		row := &datamodel.AuditLog{
			ID:           ids.NewAt(at),
			ActorEmail:   email,
			ActionType:   string(action),
			ResourceType: string(resource),
			Outcome:      string(audit.OutcomeSuccess),
			Payload:      json.RawMessage(`{}`),
			CreatedAt:    at.UTC(),
		}
		Expect(repo.Insert(ctx, row)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.Open(&datamodel.AuditLog{})
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		clock = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		repo = auditPostgres.NewAuditRepository(db)
		recorder = audit.NewRecorder(repo, logger.Discard(), internal.AuditConfig{},
			audit.WithClock(func() time.Time { return clock }))
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	Describe("Record", func() {
		It("stores a success entry with the actor and payload snapshot", func() {
			actor := internal.Identity{UserID: 4, RoleID: 2, Email: "ops@example.com"}
			entry, err := recorder.Record(ctx, actor, audit.ActionAdd, audit.ResourceCategories,
				map[string]interface{}{"data": map[string]string{"name": "travel"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids.Valid(entry.ID)).To(BeTrue())
			Expect(*entry.ActorID).To(Equal(int64(4)))
			Expect(entry.Outcome).To(Equal(audit.OutcomeSuccess))
			Expect(entry.CreatedAt).To(BeTemporally("==", clock))

			page, err := recorder.List(ctx, audit.Query{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Entries).To(HaveLen(1))
			Expect(string(page.Entries[0].Payload)).To(MatchJSON(`{"data":{"name":"travel"}}`))
		})

		It("rejects values outside the enumerations", func() {
			_, err := recorder.Record(ctx, internal.Identity{UserID: 1}, audit.ActionType("Purge"), audit.ResourceUsers, nil)
			Expect(err).To(HaveOccurred())
			_, err = recorder.Record(ctx, internal.Identity{UserID: 1}, audit.ActionAdd, audit.ResourceType("Expenses"), nil)
			Expect(err).To(HaveOccurred())
			_, err = recorder.Record(ctx, internal.Identity{UserID: 1}, audit.ActionLogin, audit.ResourceUsers, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RecordLogin", func() {
		It("records failures without an actor id", func() {
			entry, err := recorder.RecordLogin(ctx, audit.LoginAttempt{Email: "Ghost@Example.com", Reason: audit.ReasonUserNotFound})
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.ActorID).To(BeNil())
			Expect(entry.ActorEmail).To(Equal("ghost@example.com"))
			Expect(entry.Action).To(Equal(audit.ActionLogin))
			Expect(entry.Outcome).To(Equal(audit.OutcomeFailure))
			Expect(entry.Reason).To(Equal(audit.ReasonUserNotFound))
		})

		It("records successes with the user id and no reason", func() {
			entry, err := recorder.RecordLogin(ctx, audit.LoginAttempt{UserID: 9, Email: "a@b.co", Success: true, Reason: "ignored"})
			Expect(err).NotTo(HaveOccurred())
			Expect(*entry.ActorID).To(Equal(int64(9)))
			Expect(entry.Outcome).To(Equal(audit.OutcomeSuccess))
			Expect(entry.Reason).To(BeEmpty())
		})
	})

	Describe("List", func() {
		It("clamps the limit to the ceiling and lifts page 0 to page 1", func() {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			rows := make([]datamodel.AuditLog, 0, 510)
			for i := 0; i < 510; i++ {
				at := base.Add(time.Duration(i) * time.Minute)
				rows = append(rows, datamodel.AuditLog{
					ID: ids.NewAt(at), ActorEmail: "bulk@example.com", ActionType: "Add",
					ResourceType: "Users", Outcome: "success", Payload: json.RawMessage(`{}`), CreatedAt: at,
				})
			}
			Expect(db.CreateInBatches(rows, 100).Error).NotTo(HaveOccurred())

			page, err := recorder.List(ctx, audit.Query{Page: 0, Limit: 1000})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Page).To(Equal(1))
			Expect(page.Limit).To(Equal(500))
			Expect(len(page.Entries)).To(BeNumerically("<=", 500))
			Expect(page.Total).To(Equal(int64(510)))
			Expect(page.TotalPages).To(Equal(2))
		})

		It("defaults the limit to 20 and orders newest first", func() {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := 0; i < 25; i++ {
				seed(base.Add(time.Duration(i)*time.Hour), audit.ActionAdd, audit.ResourceUsers, "x@example.com")
			}

			page, err := recorder.List(ctx, audit.Query{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Entries).To(HaveLen(20))
			Expect(page.Entries[0].CreatedAt).To(BeTemporally("==", base.Add(24*time.Hour)))

			second, err := recorder.List(ctx, audit.Query{Page: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Entries).To(HaveLen(5))
		})

		It("treats the date range as whole inclusive days", func() {
			seed(time.Date(2023, 12, 31, 23, 59, 59, 999000000, time.UTC), audit.ActionAdd, audit.ResourceUsers, "a@example.com")
			seed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), audit.ActionAdd, audit.ResourceUsers, "a@example.com")
			seed(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), audit.ActionAdd, audit.ResourceUsers, "a@example.com")
			seed(time.Date(2024, 1, 31, 23, 59, 59, 999000000, time.UTC), audit.ActionAdd, audit.ResourceUsers, "a@example.com")
			seed(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), audit.ActionAdd, audit.ResourceUsers, "a@example.com")

			page, err := recorder.List(ctx, audit.Query{
				BeginDate: ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
				EndDate:   ptrTime(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(3)))

			openEnded, err := recorder.List(ctx, audit.Query{BeginDate: ptrTime(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))})
			Expect(err).NotTo(HaveOccurred())
			Expect(openEnded.Total).To(Equal(int64(2)))
		})

		It("ANDs action, resource and email filters", func() {
			at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
			seed(at, audit.ActionDelete, audit.ResourceCategories, "alice@example.com")
			seed(at.Add(time.Second), audit.ActionDelete, audit.ResourceUsers, "alice@example.com")
			seed(at.Add(2*time.Second), audit.ActionAdd, audit.ResourceCategories, "alice@example.com")
			seed(at.Add(3*time.Second), audit.ActionDelete, audit.ResourceCategories, "bob@example.com")

			page, err := recorder.List(ctx, audit.Query{Action: "Delete", Resource: "Categories", Email: "ALICE"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
			Expect(page.Entries[0].ActorEmail).To(Equal("alice@example.com"))
		})

		It("matches email wildcards literally", func() {
			at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
			seed(at, audit.ActionAdd, audit.ResourceUsers, "under_score@example.com")
			seed(at.Add(time.Second), audit.ActionAdd, audit.ResourceUsers, "underXscore@example.com")
			seed(at.Add(2*time.Second), audit.ActionAdd, audit.ResourceUsers, "percent@example.com")

			page, err := recorder.List(ctx, audit.Query{Email: "under_"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))

			none, err := recorder.List(ctx, audit.Query{Email: "%"})
			Expect(err).NotTo(HaveOccurred())
			Expect(none.Total).To(BeZero())
		})

		DescribeTable("rejects unknown enum filters",
			func(q audit.Query) {
				_, err := recorder.List(ctx, q)
				var appErr *internal.AppError
				Expect(errors.As(err, &appErr)).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(400))
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidFilter))
			},
			Entry("action", audit.Query{Action: "Purge"}),
			Entry("resource", audit.Query{Resource: "Expenses"}),
		)
	})

	It("refuses to update or delete stored entries", func() {
		seed(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), audit.ActionAdd, audit.ResourceUsers, "a@example.com")
		var row datamodel.AuditLog
		Expect(db.First(&row).Error).NotTo(HaveOccurred())

		Expect(db.Model(&row).Update("reason", "tampered").Error).To(MatchError(datamodel.ErrImmutable))
		Expect(db.Delete(&row).Error).To(MatchError(datamodel.ErrImmutable))

		var count int64
		Expect(db.Model(&datamodel.AuditLog{}).Where("reason = ?", "tampered").Count(&count).Error).NotTo(HaveOccurred())
		Expect(count).To(BeZero())
		Expect(db.Model(&datamodel.AuditLog{}).Count(&count).Error).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(1)))
	})
})

var _ = Describe("FlexInt", func() {
	DescribeTable("decoding",
		func(raw string, want int) {
			var dto audit.ListRequestDTO
			Expect(json.Unmarshal([]byte(`{"page":`+raw+`}`), &dto)).To(Succeed())
			Expect(int(dto.Page)).To(Equal(want))
		},
		Entry("number", `5`, 5),
		Entry("numeric string", `"7"`, 7),
		Entry("whole float", `3.0`, 3),
		Entry("fraction falls back to the default", `2.5`, 0),
		Entry("garbage falls back to the default", `"abc"`, 0),
		Entry("null", `null`, 0),
		Entry("huge string saturates", `"9223372036854775807999"`, math.MaxInt),
		Entry("huge number saturates", `1e30`, math.MaxInt),
	)
})

var _ = Describe("NormalizeQuery", func() {
	It("expands the end date to the last nanosecond of the day", func() {
		end := time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)
		f, _, _, err := audit.NormalizeQuery(audit.Query{EndDate: &end}, 20, 500)
		Expect(err).NotTo(HaveOccurred())
		Expect(*f.To).To(Equal(time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC)))
		Expect(f.From).To(BeNil())
	})

	DescribeTable("paging rules",
		func(page, limit, wantPage, wantLimit int) {
			_, p, l, err := audit.NormalizeQuery(audit.Query{Page: page, Limit: limit}, 20, 500)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(wantPage))
			Expect(l).To(Equal(wantLimit))
		},
		Entry("defaults", 0, 0, 1, 20),
		Entry("negative page", -3, 10, 1, 10),
		Entry("over ceiling", 2, 1000, 2, 500),
		Entry("at ceiling", 1, 500, 1, 500),
		Entry("page so large the offset would overflow", math.MaxInt, 500, math.MaxInt/500+1, 500),
	)

	It("keeps the row offset representable for the largest page", func() {
		_, p, l, err := audit.NormalizeQuery(audit.Query{Page: math.MaxInt, Limit: 7}, 20, 500)
		Expect(err).NotTo(HaveOccurred())
		Expect((p - 1) * l).To(BeNumerically(">=", 0))
		Expect((p - 1) * l).To(BeNumerically("<=", math.MaxInt))
	})

	It("describes itself in the error message", func() {
		_, _, _, err := audit.NormalizeQuery(audit.Query{Action: "x"}, 20, 500)
		Expect(fmt.Sprint(err)).To(ContainSubstring("action"))
	})
})
