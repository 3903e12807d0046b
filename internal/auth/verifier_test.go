package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

const testSecret = "test-secret"

func signToken(secret string, expiresAt time.Time) string {
	claims := jwt.MapClaims{
		"sub": "user-42",
		"exp": jwt.NewNumericDate(expiresAt),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("Verifier", func() {
	var verifier *auth.Verifier

	BeforeEach(func() {
		verifier = auth.NewVerifier(testSecret)
	})

	Describe("Verify", func() {
		It("should accept a valid token", func() {
			token := signToken(testSecret, time.Now().Add(time.Hour))

			identity, err := verifier.Verify(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(identity).NotTo(BeNil())
			Expect(identity.Subject()).To(Equal("user-42"))
		})

		It("should accept a token with a Bearer prefix", func() {
			token := signToken(testSecret, time.Now().Add(time.Hour))

			identity, err := verifier.Verify("Bearer " + token)
			Expect(err).NotTo(HaveOccurred())
			Expect(identity.Subject()).To(Equal("user-42"))
		})

		It("should reject an empty credential as missing", func() {
			_, err := verifier.Verify("")
			Expect(err).To(MatchError(auth.ErrMissingCredential))
		})

		It("should reject a whitespace credential as missing", func() {
			_, err := verifier.Verify("   ")
			Expect(err).To(MatchError(auth.ErrMissingCredential))
		})

		It("should reject a malformed token as invalid", func() {
			_, err := verifier.Verify("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("should reject a token signed with a different secret", func() {
			token := signToken("wrong-secret", time.Now().Add(time.Hour))

			_, err := verifier.Verify(token)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("should reject an expired token as invalid", func() {
			token := signToken(testSecret, time.Now().Add(-time.Hour))

			_, err := verifier.Verify(token)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("should reject a tampered token", func() {
			token := signToken(testSecret, time.Now().Add(time.Hour))
			tampered := token[:len(token)-4] + "AAAA"

			_, err := verifier.Verify(tampered)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("should expose the decoded claims", func() {
			token := signToken(testSecret, time.Now().Add(time.Hour))

			identity, err := verifier.Verify(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(identity.Claims).To(HaveKey("sub"))
			Expect(identity.Claims).To(HaveKey("exp"))
		})
	})
})
