package ocr

import (
	"context"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("OCRSpace", func() {
	var (
		server      *ghttp.Server
		engine      *OCRSpace
		image       []byte
		contentType string
		text        string
		err         error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		engine = NewOCRSpace(server.URL()+"/parse/image", "test-key")
		image = encodePNG()
		contentType = "image/png"
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = engine.ExtractText(context.Background(), image, contentType)
	})

	When("the service parses the image", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/parse/image"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
					Expect(r.FormValue("apikey")).To(Equal("test-key"))
					Expect(r.FormValue("language")).To(Equal("eng"))

					f, header, err := r.FormFile("file")
					Expect(err).NotTo(HaveOccurred())
					defer f.Close()
					Expect(header.Filename).To(Equal("screenshot.png"))
					uploaded, err := io.ReadAll(f)
					Expect(err).NotTo(HaveOccurred())
					Expect(uploaded).To(Equal(image))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"ParsedResults": []map[string]any{
						{"ParsedText": "₹ 250\r\n12 May 2024, 1:05 PM\r\nTo: Swiggy\r\n", "FileParseExitCode": 1},
					},
					"OCRExitCode":           1,
					"IsErroredOnProcessing": false,
				}),
			))
		})

		It("returns the parsed text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("₹ 250\r\n12 May 2024, 1:05 PM\r\nTo: Swiggy\r\n"))
		})

		It("makes exactly one request", func() {
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	When("the service returns no parsed results", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"OCRExitCode":           1,
				"IsErroredOnProcessing": false,
			}))
		})

		It("returns empty text without error", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})
	})

	When("processing fails with a list of messages", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"OCRExitCode":           99,
				"IsErroredOnProcessing": true,
				"ErrorMessage":          []string{"E101: Timed out", "try again"},
			}))
		})

		It("returns an error with the messages", func() {
			Expect(err).To(MatchError(ContainSubstring("E101: Timed out; try again")))
			Expect(text).To(BeEmpty())
		})
	})

	When("processing fails with a single message", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"IsErroredOnProcessing": true,
				"ErrorMessage":          "Invalid API key",
			}))
		})

		It("returns an error with the message", func() {
			Expect(err).To(MatchError(ContainSubstring("Invalid API key")))
		})
	})

	When("the service responds with an HTTP error", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusForbidden, "rate limit exceeded"))
		})

		It("returns an error with the status code", func() {
			Expect(err).To(MatchError(ContainSubstring("status 403")))
			Expect(err).To(MatchError(ContainSubstring("rate limit exceeded")))
		})
	})

	When("the image cannot be decoded", func() {
		BeforeEach(func() {
			image = []byte("garbage bytes, not an image")
			contentType = "image/gif"
		})

		It("fails before calling the service", func() {
			Expect(err).To(HaveOccurred())
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})
	})
})

var _ = Describe("NewOCRSpace", func() {
	It("falls back to the public endpoint and demo key", func() {
		engine := NewOCRSpace("", "")
		Expect(engine.url).To(Equal(DefaultOCRSpaceURL))
		Expect(engine.apiKey).To(Equal(DefaultOCRSpaceKey))
		Expect(engine.Close()).To(Succeed())
	})
})

var _ = Describe("stripCodeFence", func() {
	DescribeTable("removes markdown wrappers",
		func(input, expected string) {
			Expect(stripCodeFence(input)).To(Equal(expected))
		},
		Entry("plain text", "₹ 250\nTo: Swiggy", "₹ 250\nTo: Swiggy"),
		Entry("fenced with language", "```text\n₹ 250\nTo: Swiggy\n```", "₹ 250\nTo: Swiggy"),
		Entry("fenced without language", "```\n₹ 250\n```", "₹ 250"),
		Entry("surrounding whitespace", "  ₹ 250  \n", "₹ 250"),
	)
})
