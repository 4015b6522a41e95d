package ai

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewOpenAIProvider", func() {
	It("defaults the model to gpt-4o", func() {
		provider, err := NewOpenAIProvider("sk-test", "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(provider.model).To(Equal("gpt-4o"))
	})

	It("keeps a configured model", func() {
		provider, err := NewOpenAIProvider("sk-test", "", "gpt-4o-mini")
		Expect(err).NotTo(HaveOccurred())
		Expect(provider.model).To(Equal("gpt-4o-mini"))
	})

	It("requires an api key", func() {
		_, err := NewOpenAIProvider("", "", "")
		Expect(err).To(HaveOccurred())
	})
})
