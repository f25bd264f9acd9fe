package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/audit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubService struct {
	got  audit.Query
	page *audit.Page
}

func (s *stubService) Record(context.Context, internal.Identity, audit.ActionType, audit.ResourceType, interface{}) (*audit.Entry, error) {
	return nil, nil
}

func (s *stubService) RecordLogin(context.Context, audit.LoginAttempt) (*audit.Entry, error) {
	return nil, nil
}

func (s *stubService) List(_ context.Context, q audit.Query) (*audit.Page, error) {
	s.got = q
	return s.page, nil
}

var _ = Describe("Audit Handler", func() {
	var (
		svc     *stubService
		handler *audit.Handler
	)

	BeforeEach(func() {
		svc = &stubService{page: &audit.Page{Total: 0, Page: 1, Limit: 20}}
		handler = audit.NewHandler(nil, svc)
	})

	call := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/auditlogs", strings.NewReader(body))
		res, err := handler.List(context.Background(), req, internal.Identity{UserID: 1})
		if err == nil {
			Expect(res.Status).To(Equal(http.StatusOK))
			raw, _ := json.Marshal(res.Body)
			Expect(string(raw)).To(ContainSubstring(`"totalPages"`))
			Expect(string(raw)).To(ContainSubstring(`"data":[]`))
		}
		return err
	}

	It("accepts page and limit as strings", func() {
		Expect(call(`{"page":"2","limit":"50"}`)).To(Succeed())
		Expect(svc.got.Page).To(Equal(2))
		Expect(svc.got.Limit).To(Equal(50))
	})

	It("falls back to defaults for unparsable numbers", func() {
		Expect(call(`{"page":"abc","limit":null}`)).To(Succeed())
		Expect(svc.got.Page).To(BeZero())
		Expect(svc.got.Limit).To(BeZero())
	})

	It("parses plain dates and RFC3339 timestamps", func() {
		Expect(call(`{"begin_date":"2024-01-01","end_date":"2024-01-31T10:00:00Z"}`)).To(Succeed())
		Expect(*svc.got.BeginDate).To(BeTemporally("==", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		Expect(svc.got.EndDate.Day()).To(Equal(31))
	})

	It("rejects unparsable dates", func() {
		err := call(`{"begin_date":"01/02/2024"}`)
		Expect(err).To(HaveOccurred())
		Expect(internal.Classify(err).StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("treats an empty body as the default query", func() {
		Expect(call(``)).To(Succeed())
		Expect(svc.got).To(Equal(audit.Query{}))
	})

	It("rejects malformed JSON", func() {
		err := call(`{"page":`)
		Expect(internal.Classify(err).Code).To(Equal(internal.ErrCodeInvalidBody))
	})
})
