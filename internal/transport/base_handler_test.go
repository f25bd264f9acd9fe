package transport_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type payload struct {
	Name string `json:"name"`
}

func request(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

var _ = Describe("DecodeJSON", func() {
	It("decodes a single value followed by whitespace", func() {
		var dst payload
		Expect(transport.DecodeJSON(request("{\"name\":\"travel\"}\n  "), &dst)).To(Succeed())
		Expect(dst.Name).To(Equal("travel"))
	})

	DescribeTable("rejects",
		func(body string) {
			var dst payload
			err := transport.DecodeJSON(request(body), &dst)
			Expect(errors.Is(err, internal.ErrInvalidBody)).To(BeTrue(), "got %v", err)
		},
		Entry("an empty body", ""),
		Entry("malformed JSON", `{"name":`),
		Entry("a second value", `{"name":"a"}{"name":"b"}`),
		Entry("trailing garbage", `{"name":"a"} x`),
	)
})

var _ = Describe("DecodeOptionalJSON", func() {
	It("accepts an empty body", func() {
		var dst payload
		Expect(transport.DecodeOptionalJSON(request(""), &dst)).To(Succeed())
		Expect(dst.Name).To(BeEmpty())
	})

	It("rejects trailing data", func() {
		var dst payload
		err := transport.DecodeOptionalJSON(request(`{} {}`), &dst)
		Expect(errors.Is(err, internal.ErrInvalidBody)).To(BeTrue())
	})
})

var _ = Describe("BearerToken", func() {
	DescribeTable("extraction",
		func(header, want string) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			Expect(transport.BearerToken(r)).To(Equal(want))
		},
		Entry("standard", "Bearer abc.def", "abc.def"),
		Entry("case-insensitive scheme", "bearer abc", "abc"),
		Entry("missing", "", ""),
		Entry("other scheme", "Basic Zm9v", ""),
	)
})
