package ocr

import (
	"bytes"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("prepareImage", func() {
	var (
		input       []byte
		contentType string
		output      []byte
		mimeType    string
		err         error
	)

	JustBeforeEach(func() {
		output, mimeType, err = prepareImage(input, contentType)
	})

	When("the image is a PNG", func() {
		BeforeEach(func() {
			input = encodePNG()
			contentType = "image/png"
		})

		It("passes the data through untouched", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/png"))
			Expect(output).To(Equal(input))
		})
	})

	When("the image is a JPEG with an image/jpg content type", func() {
		BeforeEach(func() {
			input = encodeJPEG()
			contentType = "IMAGE/JPG"
		})

		It("passes the data through with a normalized MIME type", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/jpeg"))
			Expect(output).To(Equal(input))
		})
	})

	When("the image is a GIF", func() {
		BeforeEach(func() {
			input = encodeGIF()
			contentType = "image/gif"
		})

		It("converts it to PNG", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/png"))
			_, decodeErr := png.Decode(bytes.NewReader(output))
			Expect(decodeErr).NotTo(HaveOccurred())
		})
	})

	When("the data is not an image", func() {
		BeforeEach(func() {
			input = []byte("definitely not an image")
			contentType = "application/octet-stream"
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported image format"))
		})
	})
})

var _ = Describe("isHEICFormat", func() {
	It("recognizes the ftyp heic brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("recognizes the mif1 brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypmif1")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("rejects short data", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
	})

	It("rejects PNG data", func() {
		Expect(isHEICFormat(encodePNG())).To(BeFalse())
	})
})

var _ = Describe("isHEICMimeType", func() {
	DescribeTable("detects HEIC MIME types",
		func(mimeType string, expected bool) {
			Expect(isHEICMimeType(mimeType)).To(Equal(expected))
		},
		Entry("image/heic", "image/heic", true),
		Entry("upper case heif", " IMAGE/HEIF ", true),
		Entry("png", "image/png", false),
		Entry("empty", "", false),
	)
})
