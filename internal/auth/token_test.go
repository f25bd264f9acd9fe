package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		now time.Time
		gen *JWTTokenGenerator
		sub TokenSubject
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		gen = NewJWTTokenGenerator(testSecret, time.Hour, WithClock(func() time.Time { return now }))
		sub = TokenSubject{UserID: 7, RoleID: 3, Email: "ops@example.com"}
	})

	ginkgo.It("verifies within the TTL and expires once it elapses", func() {
		// Given
		token, expiresAt, err := gen.Issue(sub)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(expiresAt).To(gomega.BeTemporally("==", now.Add(time.Hour)))

		// When / Then
		now = now.Add(59*time.Minute + 59*time.Second)
		claims, err := gen.Verify(token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		id, err := claims.Identity()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(id.UserID).To(gomega.Equal(int64(7)))
		gomega.Expect(id.RoleID).To(gomega.Equal(int64(3)))

		now = now.Add(time.Second)
		_, err = gen.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
	})

	ginkgo.It("rejects tokens signed with another secret", func() {
		other := NewJWTTokenGenerator("another-secret-that-is-32-bytes-long!!", time.Hour, WithClock(func() time.Time { return now }))
		token, _, err := other.Issue(sub)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenInvalid))
	})

	ginkgo.It("rejects other algorithms", func() {
		claims := &Claims{RoleID: 3, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenInvalid))

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		_, err = gen.Verify(unsigned)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenInvalid))
	})

	ginkgo.It("rejects tokens without an expiry", func() {
		claims := &Claims{RoleID: 3, RegisteredClaims: jwt.RegisteredClaims{Subject: "7", IssuedAt: jwt.NewNumericDate(now)}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenInvalid))
	})

	ginkgo.It("rejects tokens with a non-numeric subject", func() {
		claims := &Claims{RoleID: 3, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenInvalid))
	})

	ginkgo.It("reports garbage as malformed", func() {
		_, err := gen.Verify("garbage")
		gomega.Expect(err).To(gomega.MatchError(ErrTokenMalformed))
	})

	ginkgo.It("detects tampering with the payload", func() {
		token, _, err := gen.Issue(sub)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		other, _, err := gen.Issue(TokenSubject{UserID: 8, RoleID: 1, Email: "x@example.com"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		parts := strings.Split(token, ".")
		forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]
		_, err = gen.Verify(forged)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenInvalid))
	})

	ginkgo.It("enforces the issuer when configured", func() {
		issuing := NewJWTTokenGenerator(testSecret, time.Hour, WithIssuer("backoffice"), WithClock(func() time.Time { return now }))
		token, _, err := gen.Issue(sub)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = issuing.Verify(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenInvalid))

		good, _, err := issuing.Issue(sub)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		claims, err := issuing.Verify(good)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.Subject).To(gomega.Equal(strconv.FormatInt(sub.UserID, 10)))
	})
})
